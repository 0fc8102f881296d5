package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrNoAccount is returned when no signing account is available.
	ErrNoAccount = errors.New("no account connected")
	// ErrWrongChain is returned when the wallet is connected to another chain
	// than the one the SDK is configured for.
	ErrWrongChain = errors.New("wallet connected to the wrong chain")
)

// Wallet provides the signing account and transaction options.
type Wallet interface {
	// Account returns the connected account or ErrNoAccount.
	Account(ctx context.Context) (common.Address, error)
	// EnsureChain checks that the wallet signs for chainID.
	EnsureChain(ctx context.Context, chainID *big.Int) error
	// TransactOpts returns signing options bound to ctx.
	TransactOpts(ctx context.Context) (*bind.TransactOpts, error)
}

// ChainIDReader reports the chain ID of the connected node.
type ChainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// KeyWallet is a Wallet backed by a local ECDSA key. It signs for whatever
// chain the connected node reports.
type KeyWallet struct {
	key  *ecdsa.PrivateKey
	node ChainIDReader
}

// NewKeyWallet returns a wallet signing with key. A nil key yields a wallet
// without an account, usable for read-only operations.
func NewKeyWallet(key *ecdsa.PrivateKey, node ChainIDReader) *KeyWallet {
	return &KeyWallet{key: key, node: node}
}

// Account returns the address derived from the key.
func (w *KeyWallet) Account(context.Context) (common.Address, error) {
	addr := GetAddressFromPrivateKeyECDSA(w.key)
	if addr == nil {
		return common.Address{}, ErrNoAccount
	}
	return *addr, nil
}

// EnsureChain returns ErrWrongChain when the node's chain ID differs from chainID.
func (w *KeyWallet) EnsureChain(ctx context.Context, chainID *big.Int) error {
	got, err := w.node.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain id: %w", err)
	}
	if got.Cmp(chainID) != 0 {
		return fmt.Errorf("%w: connected %s, want %s", ErrWrongChain, got, chainID)
	}
	return nil
}

// TransactOpts returns keyed transactor options for the node's chain.
func (w *KeyWallet) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	if w.key == nil {
		return nil, ErrNoAccount
	}
	chainID, err := w.node.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	opts, err := GetTransactOpts(chainID, w.key)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}
