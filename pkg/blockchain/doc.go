// Package blockchain provides low-level EVM interaction for the Calamus
// streaming contract.
//
// This package contains clients and utilities for:
//   - the Calamus contract (create, withdraw, cancel, transfer, top up,
//     balances and fees)
//   - ERC-20 tokens streamed through Calamus (decimals, allowance, approve)
//   - signing wallets and receipt handling
//
// # EVMClient
//
// InitEvm dials an endpoint and binds the Calamus contract of a chain table
// entry:
//
//	info, _ := config.Lookup("bnb", true)
//	evm, err := blockchain.InitEvm(ctx, info, info.RPCURL)
//	if err != nil {
//		return err
//	}
//	defer evm.Close()
//
// Read helpers take a context:
//
//	fee, err := evm.FeeOf(ctx, account, token)       // basis points
//	bal, err := evm.BalanceOf(ctx, streamID, account) // base units
//	dec, err := evm.TokenDecimals(ctx, token)
//
// # Transactions
//
// Writes go through the Calamus binding with options from a Wallet:
//
//	wallet := blockchain.NewKeyWallet(key, evm.Backend())
//	opts, err := wallet.TransactOpts(ctx)
//	if err := evm.EnsureAllowance(ctx, opts, token, amount); err != nil {
//		return err
//	}
//	tx, err := evm.Calamus.CreateStream(opts, args)
//	receipt, err := evm.WaitForTransaction(ctx, tx.Hash(), 30*time.Second)
//
// WaitForTransaction polls with exponential backoff and reports reverted
// transactions as ErrTxReverted.
//
// # Events
//
// DecodeEvents turns receipt logs of the Calamus contract into Event values
// with named arguments. MatchStreamEvent picks the event of a given stream:
//
//	events, err := blockchain.DecodeEvents(receipt, evm.Calamus.Address)
//	ev, ok := blockchain.MatchStreamEvent(events, streamID)
//
// # Native Currency
//
// Streams of the chain's native coin use the zero address (subgraph) or the
// Calamus contract address (token resolution) as token address. Such
// streams need no allowance and carry the amount as transaction value.
package blockchain
