// Package config defines the runtime configuration for the SDK: the target
// chain (resolved from an immutable chain table), RPC endpoint, Calamus API
// and subgraph URLs, the signing key, debug mode and operation timeouts. It
// also provides validation and defaulting helpers.
package config

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-playground/validator"
	"go.uber.org/zap"
)

// DefaultCovalentURL is the Covalent API used to resolve token balances.
const DefaultCovalentURL = "https://api.covalenthq.com"

// Config holds all SDK settings required to initialize the chain, subgraph
// and API clients. Use Validate to fill implicit defaults and to check for
// required fields.
type Config struct {
	// Chain is the chain key in the chain table, e.g. "bnb" (required).
	Chain string `json:"chain" yaml:"chain" validate:"required"`
	// Testnet selects the testnet entry of Chain instead of mainnet.
	Testnet bool `json:"testnet" yaml:"testnet"`
	// RPCAddr is the Ethereum RPC/WS endpoint URL. Default: the chain's public RPC.
	RPCAddr string `json:"rpc_addr" yaml:"rpc_addr" validate:"required,url"`
	// SubgraphURL overrides the chain's subgraph endpoint.
	SubgraphURL string `json:"subgraph_url" yaml:"subgraph_url" validate:"required,url"`
	// APIURL is the base URL of the Calamus metadata API (required).
	APIURL string `json:"api_url" yaml:"api_url" validate:"required,url"`
	// CovalentURL is the Covalent API base URL. Default: DefaultCovalentURL.
	CovalentURL string `json:"covalent_url" yaml:"covalent_url" validate:"omitempty,url"`
	// CovalentKey enables token resolution through Covalent balances when set.
	CovalentKey string `json:"covalent_key" yaml:"covalent_key"`
	// PrivateKey is the hex-encoded ECDSA private key used to sign
	// transactions (optional for read-only use).
	PrivateKey string `json:"private_key" yaml:"private_key"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug"`
	// Timeouts configures per-operation timeouts. See Timeouts.WithDefaults for defaults.
	Timeouts Timeouts `json:"timeouts" yaml:"timeouts"`

	chainInfo ChainInfo

	keyOnce sync.Once
	key     *ecdsa.PrivateKey
	keyErr  error
}

// Timeouts controls SDK operation deadlines.
// Zero values will be replaced by sane defaults in WithDefaults.
type Timeouts struct {
	Dial        time.Duration // Web3 dial/connect
	ChainRead   time.Duration // eth_call, balance, decimals
	ChainSubmit time.Duration // send tx
	ReceiptWait time.Duration // wait tx
	HTTP        time.Duration // subgraph and API requests
}

var validate = validator.New()

// Validate normalizes the configuration by resolving Chain in the chain table
// and applying implicit defaults for RPCAddr, SubgraphURL and CovalentURL,
// then checks the struct constraints. Returns an error when the chain is
// unknown or a required field is missing.
func (c *Config) Validate() error {
	c.Chain = strings.ToLower(strings.TrimSpace(c.Chain))
	if c.Chain == "" {
		return errors.New("chain is required")
	}

	info, ok := Lookup(c.Chain, c.Testnet)
	if !ok {
		return fmt.Errorf("unknown chain %q (testnet=%t)", c.Chain, c.Testnet)
	}
	c.chainInfo = info

	if c.RPCAddr == "" {
		c.RPCAddr = info.RPCURL
	}
	if c.SubgraphURL == "" {
		c.SubgraphURL = info.SubgraphURL
	}
	if c.CovalentURL == "" {
		c.CovalentURL = DefaultCovalentURL
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ChainInfo returns the chain table entry resolved by Validate.
func (c *Config) ChainInfo() ChainInfo {
	return c.chainInfo
}

// HasPrivateKey reports whether a signing key is configured.
func (c *Config) HasPrivateKey() bool {
	return c.PrivateKey != ""
}

// GetPrivateKey parses PrivateKey once and returns the cached key. It returns
// nil when no key is configured or the key is malformed.
func (c *Config) GetPrivateKey() *ecdsa.PrivateKey {
	key, err := c.privateKey()
	if err != nil {
		return nil
	}
	return key
}

// RequirePrivateKey is GetPrivateKey for operations that cannot run without
// a key; it reports why the key is unavailable.
func (c *Config) RequirePrivateKey() (*ecdsa.PrivateKey, error) {
	if !c.HasPrivateKey() {
		return nil, errors.New("private key is required for this operation")
	}
	return c.privateKey()
}

func (c *Config) privateKey() (*ecdsa.PrivateKey, error) {
	c.keyOnce.Do(func() {
		if c.PrivateKey == "" {
			c.keyErr = errors.New("private key not configured")
			return
		}
		c.key, c.keyErr = parsePrivateKey(c.PrivateKey)
		if c.keyErr != nil {
			zap.L().Warn("private key parsing failed", zap.Error(c.keyErr))
		}
	})
	return c.key, c.keyErr
}

func parsePrivateKey(keyHex string) (*ecdsa.PrivateKey, error) {
	keyHex = strings.TrimPrefix(keyHex, "0x")
	if len(keyHex) != 64 {
		return nil, fmt.Errorf("private key must be 32 bytes (64 hex characters), got %d", len(keyHex))
	}
	return crypto.HexToECDSA(keyHex)
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Dial:        5s
//	ChainRead:   12s
//	ChainSubmit: 25s
//	ReceiptWait: 90s
//	HTTP:        15s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Dial == 0 {
		tt.Dial = 5 * time.Second
	}
	if tt.ChainRead == 0 {
		tt.ChainRead = 12 * time.Second
	}
	if tt.ChainSubmit == 0 {
		tt.ChainSubmit = 25 * time.Second
	}
	if tt.ReceiptWait == 0 {
		tt.ReceiptWait = 90 * time.Second
	}
	if tt.HTTP == 0 {
		tt.HTTP = 15 * time.Second
	}
	return tt
}
