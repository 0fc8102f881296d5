package blockchain

import (
	"context"
	"math/big"

	"github.com/calamus-finance/calamus-sdk-go/pkg/config"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// Backend is the subset of an Ethereum client the SDK needs: contract calls
// and transactions, receipts and chain identity. *ethclient.Client
// satisfies it.
type Backend interface {
	bind.ContractBackend
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// EVMClient holds a connected backend and the Calamus contract binding for
// one entry of the chain table.
type EVMClient struct {
	// Client is the dialed ethclient. Nil when the client was built from a
	// custom Backend with NewEVMClient.
	Client  *ethclient.Client
	Calamus *Calamus

	backend Backend
	chain   config.ChainInfo
}

// InitEvm dials an Ethereum endpoint and binds the Calamus contract at the
// chain's contract address.
//
// Parameters:
//   - ctx: bounds the dial; websocket and IPC endpoints connect eagerly.
//   - chain: chain table entry (see config.Lookup).
//   - endpoint: RPC/WS endpoint URL to dial.
//
// Returns a ready-to-use EVMClient or an error.
func InitEvm(ctx context.Context, chain config.ChainInfo, endpoint string) (*EVMClient, error) {
	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		zap.L().Error("Failed to ethdial", zap.Error(err))
		return nil, err
	}

	evm, err := NewEVMClient(chain, client)
	if err != nil {
		client.Close()
		return nil, err
	}
	evm.Client = client
	return evm, nil
}

// NewEVMClient binds the Calamus contract of chain over an existing backend.
func NewEVMClient(chain config.ChainInfo, backend Backend) (*EVMClient, error) {
	calamus, err := NewCalamus(chain.ContractAddress, backend)
	if err != nil {
		zap.L().Error("Failed to bind Calamus", zap.Error(err))
		return nil, err
	}
	return &EVMClient{
		Calamus: calamus,
		backend: backend,
		chain:   chain,
	}, nil
}

// Chain returns the chain table entry the client is bound to.
func (evm *EVMClient) Chain() config.ChainInfo {
	return evm.chain
}

// Backend returns the backend used for calls and transactions.
func (evm *EVMClient) Backend() Backend {
	return evm.backend
}

// Close releases the underlying RPC connection, if any.
func (evm *EVMClient) Close() {
	if evm.Client != nil {
		evm.Client.Close()
	}
}

// GetCurrentBlockNumberCtx returns the latest block number using the provided context.
func (evm *EVMClient) GetCurrentBlockNumberCtx(ctx context.Context) (*big.Int, error) {
	header, err := evm.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		zap.L().Error("failed to get last block number", zap.Error(err))
		return nil, err
	}
	return header.Number, nil
}

// FeeOf returns the fee rate, in basis points, the contract charges account
// for streams of token.
func (evm *EVMClient) FeeOf(ctx context.Context, account, token common.Address) (*big.Int, error) {
	return evm.Calamus.FeeOf(&bind.CallOpts{Context: ctx, From: account}, account, token)
}

// BalanceOf returns the balance of who in stream streamID, in token base units.
func (evm *EVMClient) BalanceOf(ctx context.Context, streamID *big.Int, who common.Address) (*big.Int, error) {
	return evm.Calamus.BalanceOf(&bind.CallOpts{Context: ctx, From: who}, streamID, who)
}

// TokenDecimals returns the decimals of token. The chain's native currency
// resolves without a contract call.
func (evm *EVMClient) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	if evm.chain.IsNative(token) {
		return uint8(evm.chain.NativeCurrency.Decimals), nil
	}
	dec, err := NewERC20(token, evm.backend).Decimals(&bind.CallOpts{Context: ctx})
	if err != nil {
		zap.L().Debug("decimals() failed", zap.String("token", token.Hex()), zap.Error(err))
		return 0, err
	}
	return dec, nil
}

// Allowance returns how much of token owner allows the Calamus contract to spend.
func (evm *EVMClient) Allowance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	return NewERC20(token, evm.backend).Allowance(&bind.CallOpts{Context: ctx, From: owner}, owner, evm.Calamus.Address)
}
