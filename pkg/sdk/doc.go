// Package sdk provides the high-level entry point for interacting with the
// Calamus token-streaming contract.
//
// The SDK hides the moving parts behind a stream: contract calls and receipt
// decoding, ERC-20 approvals, fee-adjusted amount computation, the indexing
// subgraph that lists streams, and the Calamus API that stores display
// metadata.
//
// # Quick Start
//
//	cfg := &config.Config{
//		Chain:      "bnb",
//		Testnet:    true,
//		APIURL:     "https://testnet-api.calamus.finance",
//		PrivateKey: "YOUR_PRIVATE_KEY",
//	}
//
//	calamus, err := sdk.NewSDK(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer calamus.Close()
//
//	streams, err := calamus.IncomingStreams(ctx, common.Address{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, s := range streams {
//		fmt.Println(s.StreamID, s.ReleaseRate, s.Status)
//	}
//
// # Operations
//
// Listing (IncomingStreams, OutgoingStreams) reads the subgraph, resolves
// the precision of every distinct token concurrently, merges the metadata
// records of the Calamus API and returns display streams sorted by stream id,
// highest first. A listing that fails returns an empty slice together with
// the error. StreamByID runs the same pipeline for one stream and returns
// nil when the id is not indexed.
//
// Writes (CreateStream, Withdraw, Cancel, Transfer, Topup) need a private
// key. They check that the node serves the configured chain, submit the
// transaction, wait for its receipt and report the stream id and
// transaction hash taken from the emitted Calamus event.
//
// Reads (BalanceOf, FeeOf, Token, Heartbeat) take an optional account; the
// zero address means the wallet account.
//
// # Errors
//
// Missing accounts surface as ErrNoAccount. Input problems use the sentinels
// ErrNonPositiveAmount, ErrInsufficientBalance, ErrStreamNotFound and
// ErrZeroAddress. Failures of the RPC node, the subgraph or an HTTP API are
// wrapped in *OperationError, which names the operation and unwraps to the
// underlying error.
//
// # Logging
//
// The package installs a console zap logger at info level; Config.Debug
// raises it to debug. Every operation logs with an "op" name and a unique
// "op_id". Replace the logger with zap.ReplaceGlobals to customize it.
package sdk
