package sdk

import (
	"context"

	"go.uber.org/zap"
)

// Health reports what the SDK could reach.
type Health struct {
	Chain string `json:"chain"`
	// ChainBlock is the latest block reported by the RPC endpoint.
	ChainBlock int64 `json:"chain_block"`
	// IndexedBlock is the block the subgraph has indexed up to.
	IndexedBlock      int64 `json:"indexed_block"`
	HasIndexingErrors bool  `json:"has_indexing_errors"`
}

// Lag returns how many blocks the subgraph is behind the chain.
func (h *Health) Lag() int64 {
	if h.ChainBlock <= h.IndexedBlock {
		return 0
	}
	return h.ChainBlock - h.IndexedBlock
}

// Heartbeat queries the RPC head block and the subgraph indexing status.
// Listings come from the subgraph, so a large Lag means recent transactions
// are not visible yet.
func (c *Core) Heartbeat(ctx context.Context) (*Health, error) {
	op := begin("heartbeat")
	h := &Health{Chain: c.Chain().Key}

	rctx, cancel := context.WithTimeout(ctx, c.Timeouts.ChainRead)
	defer cancel()
	block, err := c.evm.GetCurrentBlockNumberCtx(rctx)
	if err != nil {
		return nil, op.fail("rpc heartbeat failed", err)
	}
	h.ChainBlock = block.Int64()

	hctx, hcancel := context.WithTimeout(ctx, c.Timeouts.HTTP)
	defer hcancel()
	meta, err := c.graph.Meta(hctx)
	if err != nil {
		return nil, op.fail("subgraph heartbeat failed", err)
	}
	h.IndexedBlock = meta.Block.Number
	h.HasIndexingErrors = meta.HasIndexingErrors

	op.log.Debug("heartbeat",
		zap.Int64("chain_block", h.ChainBlock),
		zap.Int64("indexed_block", h.IndexedBlock),
		zap.Bool("indexing_errors", h.HasIndexingErrors))
	return h, nil
}
