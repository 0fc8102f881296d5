package sdk

import (
	"context"
	"math/big"
	"time"

	"github.com/calamus-finance/calamus-sdk-go/pkg/blockchain"
	"github.com/calamus-finance/calamus-sdk-go/pkg/model"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// receiptMaxBackoff caps the delay between receipt polls.
const receiptMaxBackoff = 10 * time.Second

// operation carries the name and log context of one SDK call.
type operation struct {
	name string
	log  *zap.Logger
}

func begin(name string, fields ...zap.Field) *operation {
	log := zap.L().With(zap.String("op", name), zap.String("op_id", uuid.NewString()))
	log.Debug("operation started", fields...)
	return &operation{name: name, log: log}
}

// fail logs err and wraps it in an OperationError.
func (o *operation) fail(msg string, err error) error {
	o.log.Error(msg, zap.Error(err))
	return &OperationError{Op: o.name, Message: msg, Err: err}
}

// account returns given, or the wallet account when given is the zero address.
func (c *Core) account(ctx context.Context, given common.Address) (common.Address, error) {
	if given != (common.Address{}) {
		return given, nil
	}
	return c.wallet.Account(ctx)
}

// signer checks that the wallet has an account on the configured chain and
// returns its transaction options.
func (c *Core) signer(ctx context.Context, op *operation) (common.Address, *bind.TransactOpts, error) {
	from, err := c.wallet.Account(ctx)
	if err != nil {
		return common.Address{}, nil, err
	}
	rctx, cancel := context.WithTimeout(ctx, c.Timeouts.ChainRead)
	defer cancel()
	if err := c.wallet.EnsureChain(rctx, c.Chain().ChainID()); err != nil {
		return common.Address{}, nil, op.fail("wallet is not on the configured chain", err)
	}
	opts, err := c.wallet.TransactOpts(rctx)
	if err != nil {
		return common.Address{}, nil, op.fail("failed to prepare transaction", err)
	}
	return from, opts, nil
}

// submit sends the transaction built by send and waits for its Calamus
// events. Submission is bounded by Timeouts.ChainSubmit, the wait by
// Timeouts.ReceiptWait.
func (c *Core) submit(ctx context.Context, op *operation, opts *bind.TransactOpts, send func(*bind.TransactOpts) (*types.Transaction, error)) (*types.Transaction, []blockchain.Event, error) {
	sctx, cancel := context.WithTimeout(ctx, c.Timeouts.ChainSubmit)
	defer cancel()
	o := *opts
	o.Context = sctx
	tx, err := send(&o)
	if err != nil {
		return nil, nil, op.fail("failed to submit transaction", err)
	}
	op.log.Info("transaction submitted", zap.String("tx", tx.Hash().Hex()))

	wctx, wcancel := context.WithTimeout(ctx, c.Timeouts.ReceiptWait)
	defer wcancel()
	events, err := c.evm.ConfirmEvents(wctx, tx.Hash(), receiptMaxBackoff)
	if err != nil {
		return nil, nil, op.fail("transaction was not confirmed", err)
	}
	op.log.Debug("transaction confirmed", zap.String("tx", tx.Hash().Hex()), zap.Int("events", len(events)))
	return tx, events, nil
}

// streamResult builds the result of a transaction acting on streamID from
// the event that describes it. Without events the result falls back to the
// transaction hash.
func streamResult(tx *types.Transaction, events []blockchain.Event, streamID *big.Int) *model.TxResult {
	res := &model.TxResult{StreamID: streamID.String(), TrxHash: tx.Hash().Hex()}
	ev, ok := blockchain.MatchStreamEvent(events, streamID)
	if !ok {
		return res
	}
	if id := ev.StreamID(); id != nil {
		res.StreamID = id.String()
	}
	if ev.TransactionHash != (common.Hash{}) {
		res.TrxHash = ev.TransactionHash.Hex()
	}
	return res
}
