// Package config provides configuration management for the Calamus SDK.
//
// The Config structure selects the target chain, the RPC endpoint, the
// Calamus metadata API, the subgraph, the optional Covalent key used for
// token resolution, the signing key and per-operation timeouts.
//
// # Basic Configuration
//
// The minimum configuration names a chain and the metadata API:
//
//	cfg := &config.Config{
//		Chain:  "bnb",
//		APIURL: "https://api.calamus.finance",
//	}
//
// # Chain Table
//
// Chains are resolved from an immutable table keyed by chain key and
// network. Each entry carries the chain ID, the Calamus contract address,
// public RPC and explorer URLs, the subgraph URL and the native currency:
//
//	info, ok := config.Lookup("bnb", true) // BNB testnet, chain 97
//
// Validate resolves Chain into the table and fills RPCAddr and SubgraphURL
// from the entry when they are empty. Unknown chains are rejected.
//
// # Private Key
//
// A private key is required for write operations (create, withdraw,
// cancel, transfer, top up). Read-only listings work without it. The key
// is hex-encoded with or without the "0x" prefix:
//
//	cfg.PrivateKey = "YOUR_PRIVATE_KEY"
//
// # Environment
//
// FromEnv reads CALAMUS_* variables, optionally from a dotenv file:
//
//	cfg, err := config.FromEnv()
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//
// # Timeouts
//
// Zero values are replaced with defaults via WithDefaults():
//
//	cfg.Timeouts = config.Timeouts{
//		Dial:        10 * time.Second,
//		ChainRead:   15 * time.Second,
//		ReceiptWait: 180 * time.Second,
//	}
//
// # Thread Safety
//
// Config instances should be created once and not modified after passing
// to sdk.NewSDK().
package config
