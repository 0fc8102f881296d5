package sdk

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/calamus-finance/calamus-sdk-go/pkg/api"
	"github.com/calamus-finance/calamus-sdk-go/pkg/blockchain"
	"github.com/calamus-finance/calamus-sdk-go/pkg/model"
	"github.com/calamus-finance/calamus-sdk-go/pkg/stream"
	"github.com/calamus-finance/calamus-sdk-go/pkg/subgraph"
	"github.com/calamus-finance/calamus-sdk-go/pkg/units"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var validate = validator.New()

// CreateStreamParams describes a stream to create. ReleaseAmount is the
// amount the recipient should receive, in token units; the amount locked is
// raised to cover the protocol fee.
type CreateStreamParams struct {
	ReleaseAmount decimal.Decimal
	Recipient     string `validate:"required,eth_addr"`
	StartTime     int64  `validate:"gt=0"`
	StopTime      int64  `validate:"gtfield=StartTime"`
	// VestingRelease is the initial release percentage with two implied
	// decimals (250 = 2.50%).
	VestingRelease       int64           `validate:"gte=0,lte=10000"`
	ReleaseFrequency     int64           `validate:"gt=0"`
	ReleaseFrequencyType model.Frequency `validate:"gte=0,lte=6"`
	TransferPrivilege    model.Privilege `validate:"gte=0,lte=3"`
	CancelPrivilege      model.Privilege `validate:"gte=0,lte=3"`
	// TokenAddress is the ERC-20 token to stream. The zero address or the
	// Calamus contract address stream the native currency.
	TokenAddress string `validate:"required,eth_addr"`
}

// Validate checks the field constraints of p.
func (p CreateStreamParams) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid stream parameters: %w", err)
	}
	if !p.ReleaseAmount.IsPositive() {
		return ErrNonPositiveAmount
	}
	return nil
}

// CreateStream creates a stream from the wallet account. The token is
// resolved through Covalent when a key is configured, the locked amount is
// computed from the token precision and the account's fee rate, ERC-20
// tokens are approved for exactly that amount and native streams carry it
// as transaction value.
func (c *Core) CreateStream(ctx context.Context, p CreateStreamParams) (*model.TxResult, error) {
	op := begin("create_stream", zap.String("recipient", p.Recipient), zap.String("token", p.TokenAddress))
	if err := p.Validate(); err != nil {
		return nil, err
	}
	from, opts, err := c.signer(ctx, op)
	if err != nil {
		return nil, err
	}

	chain := c.Chain()
	token, err := c.resolveToken(ctx, op, from, common.HexToAddress(p.TokenAddress))
	if err != nil {
		return nil, err
	}
	native := chain.IsNative(token)
	if native {
		token = chain.ContractAddress
	}

	rctx, cancel := context.WithTimeout(ctx, c.Timeouts.ChainRead)
	defer cancel()
	decimals, err := c.evm.TokenDecimals(rctx, token)
	if err != nil {
		return nil, op.fail("failed to read token decimals", err)
	}
	fee, err := c.evm.FeeOf(rctx, from, token)
	if err != nil {
		return nil, op.fail("failed to read fee rate", err)
	}

	amount, err := stream.ComputeLockedAmount(stream.LockedAmountParams{
		Count:         p.ReleaseFrequency,
		Unit:          p.ReleaseFrequencyType,
		StartTime:     p.StartTime,
		StopTime:      p.StopTime,
		Nominal:       p.ReleaseAmount,
		TokenDecimals: int32(decimals),
		FeeRate:       fee,
	})
	if err != nil {
		return nil, op.fail("failed to compute locked amount", err)
	}
	if amount.Sign() <= 0 {
		return nil, ErrNonPositiveAmount
	}
	frequency, err := stream.ToSeconds(p.ReleaseFrequency, p.ReleaseFrequencyType)
	if err != nil {
		return nil, op.fail("failed to compute release frequency", err)
	}
	op.log.Debug("locked amount computed",
		zap.String("amount", amount.String()),
		zap.String("fee", fee.String()),
		zap.Uint8("decimals", decimals),
		zap.Int64("frequency_seconds", frequency))

	if native {
		opts.Value = amount
	} else if err := c.approve(ctx, op, opts, token, amount); err != nil {
		return nil, err
	}

	args := blockchain.CreateStreamArgs{
		ReleaseAmount:     amount,
		Recipient:         common.HexToAddress(p.Recipient),
		StartTime:         p.StartTime,
		StopTime:          p.StopTime,
		VestingRelease:    p.VestingRelease,
		ReleaseFrequency:  frequency,
		TransferPrivilege: p.TransferPrivilege,
		CancelPrivilege:   p.CancelPrivilege,
		TokenAddress:      token,
	}
	tx, events, err := c.submit(ctx, op, opts, func(o *bind.TransactOpts) (*types.Transaction, error) {
		return c.contract.CreateStream(o, args)
	})
	if err != nil {
		return nil, err
	}

	ev, ok := blockchain.LastEvent(events, blockchain.EventCreateStream)
	if !ok || ev.StreamID() == nil {
		return nil, op.fail("transaction emitted no CreateStream event", fmt.Errorf("tx %s", tx.Hash().Hex()))
	}
	res := &model.TxResult{StreamID: ev.StreamID().String(), TrxHash: tx.Hash().Hex()}
	op.log.Info("stream created", zap.String("stream_id", res.StreamID), zap.String("tx", res.TrxHash))
	return res, nil
}

// resolveToken maps token through Covalent balances when a key is
// configured. A token the account does not hold is used as given.
func (c *Core) resolveToken(ctx context.Context, op *operation, account, token common.Address) (common.Address, error) {
	if c.tokens == nil {
		return token, nil
	}
	hctx, cancel := context.WithTimeout(ctx, c.Timeouts.HTTP)
	defer cancel()
	resolved, err := c.tokens.ResolveToken(hctx, c.Chain().ID, account, token)
	switch {
	case errors.Is(err, api.ErrTokenNotHeld):
		op.log.Warn("token not found in account balances, using it as given", zap.String("token", token.Hex()))
		return token, nil
	case err != nil:
		return common.Address{}, op.fail("failed to resolve token", err)
	}
	return resolved.Address, nil
}

// approve makes sure the contract may pull amount of token from the signer.
func (c *Core) approve(ctx context.Context, op *operation, opts *bind.TransactOpts, token common.Address, amount *big.Int) error {
	wctx, cancel := context.WithTimeout(ctx, c.Timeouts.ChainSubmit+c.Timeouts.ReceiptWait)
	defer cancel()
	if err := c.evm.EnsureAllowance(wctx, opts, token, amount); err != nil {
		return op.fail("failed to approve token", err)
	}
	return nil
}

// Withdraw withdraws from a stream received by the wallet account. amount is
// in token units and converted with the precision of the stream's token.
// With withdrawAll the whole current balance is withdrawn and amount is
// ignored.
func (c *Core) Withdraw(ctx context.Context, streamID *big.Int, amount decimal.Decimal, withdrawAll bool) (*model.TxResult, error) {
	op := begin("withdraw", zap.Stringer("stream_id", streamID), zap.Bool("all", withdrawAll))
	if !withdrawAll && !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	from, opts, err := c.signer(ctx, op)
	if err != nil {
		return nil, err
	}

	hctx, hcancel := context.WithTimeout(ctx, c.Timeouts.HTTP)
	defer hcancel()
	s, err := c.graph.Stream(hctx, streamID)
	if errors.Is(err, subgraph.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrStreamNotFound, streamID)
	}
	if err != nil {
		return nil, op.fail("failed to query stream", err)
	}

	rctx, cancel := context.WithTimeout(ctx, c.Timeouts.ChainRead)
	defer cancel()
	decimals, err := c.evm.TokenDecimals(rctx, s.TokenAddress)
	if err != nil {
		return nil, op.fail("failed to read token decimals", err)
	}
	balance, err := c.evm.BalanceOf(rctx, streamID, from)
	if err != nil {
		return nil, op.fail("failed to read stream balance", err)
	}

	var raw *big.Int
	if withdrawAll {
		if balance.Sign() <= 0 {
			return nil, fmt.Errorf("%w: balance is %s", ErrInsufficientBalance, balance)
		}
		raw = balance
	} else {
		raw, err = units.ToRaw(amount, int32(decimals))
		if err != nil {
			return nil, op.fail("failed to convert amount", err)
		}
		if raw.Sign() <= 0 {
			return nil, ErrNonPositiveAmount
		}
		if balance.Cmp(raw) < 0 {
			return nil, fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientBalance, balance, raw)
		}
	}

	tx, events, err := c.submit(ctx, op, opts, func(o *bind.TransactOpts) (*types.Transaction, error) {
		return c.contract.WithdrawFromStream(o, streamID, raw)
	})
	if err != nil {
		return nil, err
	}
	op.log.Info("withdrawn", zap.String("amount", raw.String()))
	return streamResult(tx, events, streamID), nil
}

// Cancel cancels a stream. The contract checks the cancel privilege.
func (c *Core) Cancel(ctx context.Context, streamID *big.Int) (*model.TxResult, error) {
	op := begin("cancel", zap.Stringer("stream_id", streamID))
	_, opts, err := c.signer(ctx, op)
	if err != nil {
		return nil, err
	}
	tx, events, err := c.submit(ctx, op, opts, func(o *bind.TransactOpts) (*types.Transaction, error) {
		return c.contract.CancelStream(o, streamID)
	})
	if err != nil {
		return nil, err
	}
	return streamResult(tx, events, streamID), nil
}

// Transfer moves a stream to newRecipient. The contract checks the transfer
// privilege.
func (c *Core) Transfer(ctx context.Context, streamID *big.Int, newRecipient common.Address) (*model.TxResult, error) {
	op := begin("transfer", zap.Stringer("stream_id", streamID), zap.String("to", newRecipient.Hex()))
	if newRecipient == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	_, opts, err := c.signer(ctx, op)
	if err != nil {
		return nil, err
	}
	tx, events, err := c.submit(ctx, op, opts, func(o *bind.TransactOpts) (*types.Transaction, error) {
		return c.contract.TransferStream(o, streamID, newRecipient)
	})
	if err != nil {
		return nil, err
	}
	return streamResult(tx, events, streamID), nil
}

// Topup adds rawAmount base units of token to a stream. The token is first
// resolved against the account's holdings when a Covalent key is set. ERC-20
// tokens are approved first; native currency is sent as transaction value.
func (c *Core) Topup(ctx context.Context, token common.Address, streamID *big.Int, rawAmount *big.Int) (*model.TxResult, error) {
	op := begin("topup", zap.Stringer("stream_id", streamID), zap.String("token", token.Hex()))
	if rawAmount == nil || rawAmount.Sign() <= 0 {
		return nil, ErrNonPositiveAmount
	}
	from, opts, err := c.signer(ctx, op)
	if err != nil {
		return nil, err
	}
	token, err = c.resolveToken(ctx, op, from, token)
	if err != nil {
		return nil, err
	}

	if chain := c.Chain(); chain.IsNative(token) {
		token = chain.ContractAddress
		opts.Value = rawAmount
	} else if err := c.approve(ctx, op, opts, token, rawAmount); err != nil {
		return nil, err
	}
	op.log.Debug("topping up", zap.String("resolved_token", token.Hex()))

	tx, events, err := c.submit(ctx, op, opts, func(o *bind.TransactOpts) (*types.Transaction, error) {
		return c.contract.TopupStream(o, streamID, rawAmount)
	})
	if err != nil {
		return nil, err
	}
	return streamResult(tx, events, streamID), nil
}

// BalanceOf returns the balance of account in a stream, in base units.
// A zero account means the wallet account.
func (c *Core) BalanceOf(ctx context.Context, streamID *big.Int, account common.Address) (*big.Int, error) {
	op := begin("balance_of", zap.Stringer("stream_id", streamID))
	who, err := c.account(ctx, account)
	if err != nil {
		return nil, err
	}
	rctx, cancel := context.WithTimeout(ctx, c.Timeouts.ChainRead)
	defer cancel()
	balance, err := c.evm.BalanceOf(rctx, streamID, who)
	if err != nil {
		return nil, op.fail("failed to read stream balance", err)
	}
	return balance, nil
}

// FeeOf returns the fee rate in basis points charged to account for streams
// of token. A zero account means the wallet account.
func (c *Core) FeeOf(ctx context.Context, account, token common.Address) (*big.Int, error) {
	op := begin("fee_of", zap.String("token", token.Hex()))
	who, err := c.account(ctx, account)
	if err != nil {
		return nil, err
	}
	rctx, cancel := context.WithTimeout(ctx, c.Timeouts.ChainRead)
	defer cancel()
	fee, err := c.evm.FeeOf(rctx, who, token)
	if err != nil {
		return nil, op.fail("failed to read fee rate", err)
	}
	return fee, nil
}

// Token looks up a token by symbol for the wallet account.
func (c *Core) Token(ctx context.Context, symbol string) (*model.Token, error) {
	op := begin("token", zap.String("symbol", symbol))
	from, err := c.wallet.Account(ctx)
	if err != nil {
		return nil, err
	}
	hctx, cancel := context.WithTimeout(ctx, c.Timeouts.HTTP)
	defer cancel()
	tok, err := c.meta.Token(hctx, api.TokenRequest{
		ChainID:     c.Chain().ID,
		Account:     from.Hex(),
		TokenSymbol: symbol,
		CovalentKey: c.CovalentKey,
	})
	if err != nil {
		return nil, op.fail("failed to fetch token", err)
	}
	return tok, nil
}
