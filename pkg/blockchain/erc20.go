package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// approvalWaitBackoff caps the receipt polling interval while waiting for an
// approval to be mined.
const approvalWaitBackoff = 30 * time.Second

// ERC20 is a binding of the ERC-20 functions used around streams.
type ERC20 struct {
	Address  common.Address
	contract *bind.BoundContract
}

// NewERC20 binds the token contract at address.
func NewERC20(address common.Address, backend bind.ContractBackend) *ERC20 {
	return &ERC20{
		Address:  address,
		contract: bind.NewBoundContract(address, ERC20ABI, backend, backend, backend),
	}
}

// Decimals calls decimals().
func (t *ERC20) Decimals(opts *bind.CallOpts) (uint8, error) {
	var out []any
	if err := t.contract.Call(opts, &out, "decimals"); err != nil {
		return 0, fmt.Errorf("decimals: %w", err)
	}
	if len(out) == 0 {
		return 0, fmt.Errorf("decimals: empty result")
	}
	return *abi.ConvertType(out[0], new(uint8)).(*uint8), nil
}

// Allowance calls allowance(owner, spender).
func (t *ERC20) Allowance(opts *bind.CallOpts, owner, spender common.Address) (*big.Int, error) {
	var out []any
	if err := t.contract.Call(opts, &out, "allowance", owner, spender); err != nil {
		return nil, fmt.Errorf("allowance: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("allowance: empty result")
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

// Approve submits approve(spender, amount).
func (t *ERC20) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	return t.contract.Transact(opts, "approve", spender, amount)
}

// EnsureAllowance checks the ERC-20 allowance of token from opts.From to the
// Calamus contract. If it is less than need, it approves exactly need and
// waits for the approval to be mined. Native-currency tokens need no
// allowance and return immediately.
func (evm *EVMClient) EnsureAllowance(ctx context.Context, opts *bind.TransactOpts, token common.Address, need *big.Int) error {
	if evm.chain.IsNative(token) {
		return nil
	}
	allowance, err := evm.Allowance(ctx, token, opts.From)
	if err != nil {
		return err
	}
	if allowance != nil && allowance.Cmp(need) >= 0 {
		return nil
	}

	approveOpts := *opts
	approveOpts.Context = ctx
	approveOpts.Value = nil
	tx, err := NewERC20(token, evm.backend).Approve(&approveOpts, evm.Calamus.Address, need)
	if err != nil {
		return fmt.Errorf("approve: %w", err)
	}
	zap.L().Debug("approval submitted",
		zap.String("token", token.Hex()),
		zap.String("amount", need.String()),
		zap.String("tx", tx.Hash().Hex()))

	_, err = evm.WaitForTransaction(ctx, tx.Hash(), approvalWaitBackoff)
	return err
}
