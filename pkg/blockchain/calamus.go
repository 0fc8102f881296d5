package blockchain

import (
	_ "embed"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/calamus-finance/calamus-sdk-go/pkg/model"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

var (
	//go:embed abi/Calamus.json
	calamusABIJSON string
	//go:embed abi/ERC20.json
	erc20ABIJSON string

	// CalamusABI is the parsed ABI of the Calamus streaming contract.
	CalamusABI = mustParseABI(calamusABIJSON)
	// ERC20ABI is the parsed ABI of the ERC-20 subset the SDK calls.
	ERC20ABI = mustParseABI(erc20ABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded ABI: %v", err))
	}
	return parsed
}

// Calamus is a binding of the Calamus streaming contract.
type Calamus struct {
	Address  common.Address
	contract *bind.BoundContract
}

// NewCalamus binds the Calamus contract deployed at address.
func NewCalamus(address common.Address, backend bind.ContractBackend) (*Calamus, error) {
	if backend == nil {
		return nil, errors.New("nil contract backend")
	}
	return &Calamus{
		Address:  address,
		contract: bind.NewBoundContract(address, CalamusABI, backend, backend, backend),
	}, nil
}

// CreateStreamArgs are the createStream call arguments. Amounts are in token
// base units; ReleaseFrequency is in seconds.
type CreateStreamArgs struct {
	ReleaseAmount     *big.Int
	Recipient         common.Address
	StartTime         int64
	StopTime          int64
	VestingRelease    int64
	ReleaseFrequency  int64
	TransferPrivilege model.Privilege
	CancelPrivilege   model.Privilege
	TokenAddress      common.Address
}

// Params returns the arguments in contract order.
func (a CreateStreamArgs) Params() []any {
	return []any{
		a.ReleaseAmount,
		a.Recipient,
		big.NewInt(a.StartTime),
		big.NewInt(a.StopTime),
		big.NewInt(a.VestingRelease),
		big.NewInt(a.ReleaseFrequency),
		uint8(a.TransferPrivilege),
		uint8(a.CancelPrivilege),
		a.TokenAddress,
	}
}

// FeeOf calls feeOf(account, tokenAddress).
func (c *Calamus) FeeOf(opts *bind.CallOpts, account, token common.Address) (*big.Int, error) {
	return c.callUint(opts, "feeOf", account, token)
}

// BalanceOf calls balanceOf(streamId, who).
func (c *Calamus) BalanceOf(opts *bind.CallOpts, streamID *big.Int, who common.Address) (*big.Int, error) {
	return c.callUint(opts, "balanceOf", streamID, who)
}

func (c *Calamus) callUint(opts *bind.CallOpts, method string, params ...any) (*big.Int, error) {
	var out []any
	if err := c.contract.Call(opts, &out, method, params...); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: empty result", method)
	}
	v, ok := abi.ConvertType(out[0], new(big.Int)).(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type %T", method, out[0])
	}
	return v, nil
}

// CreateStream submits createStream. For native-currency streams the caller
// sets opts.Value to the locked amount.
func (c *Calamus) CreateStream(opts *bind.TransactOpts, args CreateStreamArgs) (*types.Transaction, error) {
	zap.L().Debug("createStream",
		zap.String("amount", args.ReleaseAmount.String()),
		zap.String("recipient", args.Recipient.Hex()),
		zap.Int64("start", args.StartTime),
		zap.Int64("stop", args.StopTime),
		zap.Int64("frequency", args.ReleaseFrequency),
		zap.String("token", args.TokenAddress.Hex()))
	return c.contract.Transact(opts, "createStream", args.Params()...)
}

// WithdrawFromStream submits withdrawFromStream(streamId, amount).
func (c *Calamus) WithdrawFromStream(opts *bind.TransactOpts, streamID, amount *big.Int) (*types.Transaction, error) {
	return c.contract.Transact(opts, "withdrawFromStream", streamID, amount)
}

// CancelStream submits cancelStream(streamId).
func (c *Calamus) CancelStream(opts *bind.TransactOpts, streamID *big.Int) (*types.Transaction, error) {
	return c.contract.Transact(opts, "cancelStream", streamID)
}

// TransferStream submits transferStream(streamId, newRecipient).
func (c *Calamus) TransferStream(opts *bind.TransactOpts, streamID *big.Int, newRecipient common.Address) (*types.Transaction, error) {
	return c.contract.Transact(opts, "transferStream", streamID, newRecipient)
}

// TopupStream submits topupStream(streamId, amount). For native-currency
// streams the caller sets opts.Value to amount.
func (c *Calamus) TopupStream(opts *bind.TransactOpts, streamID, amount *big.Int) (*types.Transaction, error) {
	return c.contract.Transact(opts, "topupStream", streamID, amount)
}
