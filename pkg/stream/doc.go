// Package stream holds the arithmetic behind Calamus streams: converting a
// release frequency into seconds, computing the fee-adjusted amount to lock
// on creation, deriving the display status of a stream and projecting raw
// subgraph records into display records.
//
// Every function here is pure and safe for concurrent use. The only I/O
// happens in ResolveDecimals, through the DecimalsResolver supplied by the
// caller.
//
// # Locked amount
//
// ComputeLockedAmount grosses the nominal amount up by the protocol fee and
// spreads it over the stream window:
//
//	grossed   = nominal * (10000 + fee) / 10000
//	perPeriod = grossed * releaseTime / (stop - start)
//	locked    = perPeriod * ((stop - start) / releaseTime)
//
// Each division truncates. The contract performs the same two-step rounding,
// so the result must not be simplified into a single multiply-divide.
//
// # Status
//
// A raw status of 1 means active; DeriveStatus turns it into NotStarted,
// Processing or Completed from the stream window. Cancelled and Completed
// codes written by transactions pass through.
//
// # Projection
//
//	decimals, err := stream.ResolveDecimals(ctx, evm, raws)
//	if err != nil {
//		return err
//	}
//	rows := stream.ProjectBatch(stream.Batch{
//		Streams:    raws,
//		Decimals:   decimals,
//		Recipients: recipients,
//		Chain:      "bnb",
//		Now:        time.Now().Unix(),
//	})
package stream
