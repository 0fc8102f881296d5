package sdk

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/calamus-finance/calamus-sdk-go/pkg/api"
	"github.com/calamus-finance/calamus-sdk-go/pkg/blockchain"
	"github.com/calamus-finance/calamus-sdk-go/pkg/config"
	"github.com/calamus-finance/calamus-sdk-go/pkg/model"
	"github.com/calamus-finance/calamus-sdk-go/pkg/subgraph"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	walletAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	otherAddr  = common.HexToAddress("0x2222222222222222222222222222222222222222")
	busd       = common.HexToAddress("0x3333333333333333333333333333333333333333")
	errBoom    = errors.New("boom")
)

func testChain() config.ChainInfo {
	info, _ := config.Lookup("bnb", true)
	return info
}

type approval struct {
	token  common.Address
	amount *big.Int
}

type fakeChain struct {
	decimals    map[common.Address]uint8
	decimalsErr error
	fee         *big.Int
	feeErr      error
	balance     *big.Int
	balanceErr  error
	block       *big.Int
	events      []blockchain.Event
	confirmErr  error
	approveErr  error

	approvals  []approval
	feeQueries []common.Address
	closed     bool
}

func (f *fakeChain) Chain() config.ChainInfo { return testChain() }

func (f *fakeChain) GetCurrentBlockNumberCtx(context.Context) (*big.Int, error) {
	if f.block == nil {
		return nil, errBoom
	}
	return f.block, nil
}

func (f *fakeChain) FeeOf(_ context.Context, account, token common.Address) (*big.Int, error) {
	f.feeQueries = append(f.feeQueries, account, token)
	return f.fee, f.feeErr
}

func (f *fakeChain) BalanceOf(context.Context, *big.Int, common.Address) (*big.Int, error) {
	return f.balance, f.balanceErr
}

func (f *fakeChain) TokenDecimals(_ context.Context, token common.Address) (uint8, error) {
	if f.decimalsErr != nil {
		return 0, f.decimalsErr
	}
	if testChain().IsNative(token) {
		return 18, nil
	}
	d, ok := f.decimals[token]
	if !ok {
		return 0, errors.New("unknown token")
	}
	return d, nil
}

func (f *fakeChain) EnsureAllowance(_ context.Context, _ *bind.TransactOpts, token common.Address, need *big.Int) error {
	if f.approveErr != nil {
		return f.approveErr
	}
	f.approvals = append(f.approvals, approval{token: token, amount: need})
	return nil
}

func (f *fakeChain) ConfirmEvents(context.Context, common.Hash, time.Duration) ([]blockchain.Event, error) {
	return f.events, f.confirmErr
}

func (f *fakeChain) Close() { f.closed = true }

// fakeContract records the last transaction it was asked to send.
type fakeContract struct {
	method   string
	value    *big.Int
	streamID *big.Int
	amount   *big.Int
	to       common.Address
	create   *blockchain.CreateStreamArgs
	err      error
}

func (f *fakeContract) send(method string, opts *bind.TransactOpts) (*types.Transaction, error) {
	f.method = method
	f.value = opts.Value
	if f.err != nil {
		return nil, f.err
	}
	return types.NewTx(&types.LegacyTx{Nonce: 7}), nil
}

func (f *fakeContract) CreateStream(opts *bind.TransactOpts, args blockchain.CreateStreamArgs) (*types.Transaction, error) {
	f.create = &args
	return f.send("createStream", opts)
}

func (f *fakeContract) WithdrawFromStream(opts *bind.TransactOpts, streamID, amount *big.Int) (*types.Transaction, error) {
	f.streamID, f.amount = streamID, amount
	return f.send("withdrawFromStream", opts)
}

func (f *fakeContract) CancelStream(opts *bind.TransactOpts, streamID *big.Int) (*types.Transaction, error) {
	f.streamID = streamID
	return f.send("cancelStream", opts)
}

func (f *fakeContract) TransferStream(opts *bind.TransactOpts, streamID *big.Int, to common.Address) (*types.Transaction, error) {
	f.streamID, f.to = streamID, to
	return f.send("transferStream", opts)
}

func (f *fakeContract) TopupStream(opts *bind.TransactOpts, streamID, amount *big.Int) (*types.Transaction, error) {
	f.streamID, f.amount = streamID, amount
	return f.send("topupStream", opts)
}

type fakeWallet struct {
	account  common.Address
	none     bool
	chainErr error
}

func (w *fakeWallet) Account(context.Context) (common.Address, error) {
	if w.none {
		return common.Address{}, blockchain.ErrNoAccount
	}
	return w.account, nil
}

func (w *fakeWallet) EnsureChain(context.Context, *big.Int) error { return w.chainErr }

func (w *fakeWallet) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	if w.none {
		return nil, blockchain.ErrNoAccount
	}
	return &bind.TransactOpts{From: w.account, Context: ctx}, nil
}

type fakeIndex struct {
	incoming []*model.Stream
	outgoing []*model.Stream
	byID     map[int64]*model.Stream
	meta     *subgraph.Meta
	err      error

	queried common.Address
}

func (f *fakeIndex) IncomingStreams(_ context.Context, recipient common.Address) ([]*model.Stream, error) {
	f.queried = recipient
	return f.incoming, f.err
}

func (f *fakeIndex) OutgoingStreams(_ context.Context, sender common.Address) ([]*model.Stream, error) {
	f.queried = sender
	return f.outgoing, f.err
}

func (f *fakeIndex) Stream(_ context.Context, id *big.Int) (*model.Stream, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.byID[id.Int64()]
	if !ok {
		return nil, subgraph.ErrNotFound
	}
	return s, nil
}

func (f *fakeIndex) Meta(context.Context) (*subgraph.Meta, error) {
	if f.meta == nil {
		return nil, errBoom
	}
	return f.meta, nil
}

type fakeMeta struct {
	recipients []model.Recipient
	token      *model.Token
	err        error

	chain    string
	ids      []int64
	tokenReq api.TokenRequest
}

func (f *fakeMeta) Recipients(_ context.Context, ids []int64, chain string) ([]model.Recipient, error) {
	f.ids, f.chain = ids, chain
	return f.recipients, f.err
}

func (f *fakeMeta) Token(_ context.Context, req api.TokenRequest) (*model.Token, error) {
	f.tokenReq = req
	return f.token, f.err
}

type fakeTokens struct {
	resolved *api.ResolvedToken
	err      error
}

func (f *fakeTokens) ResolveToken(context.Context, int64, common.Address, common.Address) (*api.ResolvedToken, error) {
	return f.resolved, f.err
}

type fixture struct {
	core     *Core
	chain    *fakeChain
	contract *fakeContract
	wallet   *fakeWallet
	index    *fakeIndex
	meta     *fakeMeta
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		chain: &fakeChain{
			decimals: map[common.Address]uint8{busd: 18},
			fee:      big.NewInt(250),
			balance:  new(big.Int),
		},
		contract: &fakeContract{},
		wallet:   &fakeWallet{account: walletAddr},
		index:    &fakeIndex{byID: map[int64]*model.Stream{}},
		meta:     &fakeMeta{},
	}
	f.core = &Core{
		Config:   &config.Config{Chain: "bnb", Testnet: true, Timeouts: config.Timeouts{}.WithDefaults()},
		evm:      f.chain,
		contract: f.contract,
		wallet:   f.wallet,
		graph:    f.index,
		meta:     f.meta,
		now:      func() time.Time { return time.Unix(150, 0) },
	}
	return f
}

func streamEvent(name string, id int64) blockchain.Event {
	return blockchain.Event{
		Name:            name,
		Args:            map[string]any{"streamId": big.NewInt(id)},
		TransactionHash: common.HexToHash("0xfeed"),
	}
}

func wei(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return n
}
