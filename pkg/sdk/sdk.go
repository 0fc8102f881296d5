package sdk

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"time"

	"github.com/calamus-finance/calamus-sdk-go/pkg/api"
	"github.com/calamus-finance/calamus-sdk-go/pkg/blockchain"
	"github.com/calamus-finance/calamus-sdk-go/pkg/config"
	"github.com/calamus-finance/calamus-sdk-go/pkg/model"
	"github.com/calamus-finance/calamus-sdk-go/pkg/subgraph"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CalamusSDK is the public interface of the SDK. Zero addresses passed as an
// optional account mean the connected wallet account.
type CalamusSDK interface {
	// CreateStream locks the fee-adjusted amount and creates a stream.
	CreateStream(ctx context.Context, p CreateStreamParams) (*model.TxResult, error)

	// IncomingStreams lists the streams received by account.
	IncomingStreams(ctx context.Context, account common.Address) ([]model.DisplayStream, error)
	// OutgoingStreams lists the streams sent by account.
	OutgoingStreams(ctx context.Context, account common.Address) ([]model.DisplayStream, error)
	// StreamByID returns a single stream, or nil when it does not exist.
	StreamByID(ctx context.Context, streamID *big.Int) (*model.DisplayStream, error)

	// Withdraw withdraws amount token units, or the whole balance when
	// withdrawAll is set, from a stream received by the wallet account.
	Withdraw(ctx context.Context, streamID *big.Int, amount decimal.Decimal, withdrawAll bool) (*model.TxResult, error)
	Cancel(ctx context.Context, streamID *big.Int) (*model.TxResult, error)
	Transfer(ctx context.Context, streamID *big.Int, newRecipient common.Address) (*model.TxResult, error)
	// Topup adds rawAmount base units of token to a stream.
	Topup(ctx context.Context, token common.Address, streamID *big.Int, rawAmount *big.Int) (*model.TxResult, error)

	// BalanceOf returns the withdrawable balance of account in a stream.
	BalanceOf(ctx context.Context, streamID *big.Int, account common.Address) (*big.Int, error)
	// FeeOf returns the fee rate, in basis points, charged to account for token.
	FeeOf(ctx context.Context, account, token common.Address) (*big.Int, error)
	// Token looks up a token record by symbol through the Calamus API.
	Token(ctx context.Context, symbol string) (*model.Token, error)

	// Heartbeat reports the reachability of the chain and the subgraph.
	Heartbeat(ctx context.Context) (*Health, error)

	// Close releases resources associated with the SDK instance.
	Close()
}

// logLevel is shared by the global logger so that Config.Debug can raise
// verbosity after init.
var logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

// init configures a default global zap logger for the SDK. Applications may
// replace it with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	c := zap.Config{
		Level:            logLevel,
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// chainClient is the part of blockchain.EVMClient the SDK uses.
type chainClient interface {
	Chain() config.ChainInfo
	GetCurrentBlockNumberCtx(ctx context.Context) (*big.Int, error)
	FeeOf(ctx context.Context, account, token common.Address) (*big.Int, error)
	BalanceOf(ctx context.Context, streamID *big.Int, who common.Address) (*big.Int, error)
	TokenDecimals(ctx context.Context, token common.Address) (uint8, error)
	EnsureAllowance(ctx context.Context, opts *bind.TransactOpts, token common.Address, need *big.Int) error
	ConfirmEvents(ctx context.Context, txHash common.Hash, maxBackoff time.Duration) ([]blockchain.Event, error)
	Close()
}

// streamContract submits Calamus transactions. *blockchain.Calamus satisfies it.
type streamContract interface {
	CreateStream(opts *bind.TransactOpts, args blockchain.CreateStreamArgs) (*types.Transaction, error)
	WithdrawFromStream(opts *bind.TransactOpts, streamID, amount *big.Int) (*types.Transaction, error)
	CancelStream(opts *bind.TransactOpts, streamID *big.Int) (*types.Transaction, error)
	TransferStream(opts *bind.TransactOpts, streamID *big.Int, newRecipient common.Address) (*types.Transaction, error)
	TopupStream(opts *bind.TransactOpts, streamID, amount *big.Int) (*types.Transaction, error)
}

// streamIndex reads indexed streams. *subgraph.Client satisfies it.
type streamIndex interface {
	IncomingStreams(ctx context.Context, recipient common.Address) ([]*model.Stream, error)
	OutgoingStreams(ctx context.Context, sender common.Address) ([]*model.Stream, error)
	Stream(ctx context.Context, id *big.Int) (*model.Stream, error)
	Meta(ctx context.Context) (*subgraph.Meta, error)
}

// metadataSource reads off-chain records. *api.Client satisfies it.
type metadataSource interface {
	Recipients(ctx context.Context, streamIDs []int64, chain string) ([]model.Recipient, error)
	Token(ctx context.Context, req api.TokenRequest) (*model.Token, error)
}

// tokenResolver maps a token to the address the contract expects.
// *api.CovalentClient satisfies it.
type tokenResolver interface {
	ResolveToken(ctx context.Context, chainID int64, account, token common.Address) (*api.ResolvedToken, error)
}

// Core is the concrete SDK implementation.
type Core struct {
	*config.Config

	evm      chainClient
	contract streamContract
	wallet   blockchain.Wallet
	graph    streamIndex
	meta     metadataSource
	// tokens is nil when no Covalent key is configured.
	tokens tokenResolver

	now func() time.Time
}

// NewSDK validates cfg, dials the chain RPC and builds the wallet, subgraph,
// metadata API and (when a key is set) Covalent clients. A missing or
// malformed private key leaves the SDK in read-only mode.
func NewSDK(cfg *config.Config) (CalamusSDK, error) {
	if err := cfg.Validate(); err != nil {
		zap.L().Error("Invalid config", zap.Error(err))
		return nil, err
	}
	cfg.Timeouts = cfg.Timeouts.WithDefaults()
	if cfg.Debug {
		logLevel.SetLevel(zap.DebugLevel)
	}

	info := cfg.ChainInfo()
	dctx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Dial)
	defer cancel()
	evm, err := blockchain.InitEvm(dctx, info, cfg.RPCAddr)
	if err != nil {
		zap.L().Error("Init ethereum client failed", zap.Error(err))
		return nil, err
	}

	wallet := blockchain.NewKeyWallet(signingKey(cfg), evm.Backend())

	if cfg.Debug {
		if addr, err := wallet.Account(context.Background()); err == nil {
			zap.L().Debug("signer address", zap.String("addr", addr.Hex()))
		}
	}

	c := &Core{
		Config:   cfg,
		evm:      evm,
		contract: evm.Calamus,
		wallet:   wallet,
		graph:    subgraph.NewClient(cfg.SubgraphURL, cfg.Timeouts.HTTP),
		meta:     api.NewClient(cfg.APIURL, cfg.Timeouts.HTTP),
		now:      time.Now,
	}
	if cfg.CovalentKey != "" {
		c.tokens = api.NewCovalentClient(cfg.CovalentURL, cfg.CovalentKey, cfg.Testnet, cfg.Timeouts.HTTP)
	}
	zap.L().Info("Calamus SDK ready",
		zap.String("chain", info.Key),
		zap.Int64("chain_id", info.ID),
		zap.String("contract", info.ContractAddress.Hex()))
	return c, nil
}

// signingKey returns the configured key, or nil for read-only mode.
func signingKey(cfg *config.Config) *ecdsa.PrivateKey {
	key, err := cfg.RequirePrivateKey()
	if err == nil {
		return key
	}
	if cfg.HasPrivateKey() {
		zap.L().Warn("some methods disabled: private key parsing failed", zap.Error(err))
	} else {
		zap.L().Info("no private key configured, running read-only")
	}
	return nil
}

// Chain returns the chain table entry the SDK is bound to.
func (c *Core) Chain() config.ChainInfo {
	return c.evm.Chain()
}

// Close releases the RPC connection.
func (c *Core) Close() {
	if c.evm != nil {
		c.evm.Close()
	}
}
