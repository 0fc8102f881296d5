package sdk

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"github.com/calamus-finance/calamus-sdk-go/pkg/model"
	"github.com/calamus-finance/calamus-sdk-go/pkg/stream"
	"github.com/calamus-finance/calamus-sdk-go/pkg/subgraph"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// IncomingStreams lists the streams whose recipient is account, or the
// wallet account when account is zero. On failure it returns an empty slice
// together with the error.
func (c *Core) IncomingStreams(ctx context.Context, account common.Address) ([]model.DisplayStream, error) {
	op := begin("incoming_streams")
	addr, err := c.account(ctx, account)
	if err != nil {
		return []model.DisplayStream{}, err
	}
	hctx, cancel := context.WithTimeout(ctx, c.Timeouts.HTTP)
	defer cancel()
	streams, err := c.graph.IncomingStreams(hctx, addr)
	if err != nil {
		return []model.DisplayStream{}, op.fail("failed to query incoming streams", err)
	}
	return c.display(ctx, op, streams, addr)
}

// OutgoingStreams lists the streams whose sender is account, or the wallet
// account when account is zero. On failure it returns an empty slice
// together with the error.
func (c *Core) OutgoingStreams(ctx context.Context, account common.Address) ([]model.DisplayStream, error) {
	op := begin("outgoing_streams")
	addr, err := c.account(ctx, account)
	if err != nil {
		return []model.DisplayStream{}, err
	}
	hctx, cancel := context.WithTimeout(ctx, c.Timeouts.HTTP)
	defer cancel()
	streams, err := c.graph.OutgoingStreams(hctx, addr)
	if err != nil {
		return []model.DisplayStream{}, op.fail("failed to query outgoing streams", err)
	}
	return c.display(ctx, op, streams, addr)
}

// StreamByID returns the stream, or nil with a nil error when the id is
// unknown. The stream type is computed against the wallet account when there
// is one.
func (c *Core) StreamByID(ctx context.Context, streamID *big.Int) (*model.DisplayStream, error) {
	op := begin("stream_by_id", zap.Stringer("stream_id", streamID))
	hctx, cancel := context.WithTimeout(ctx, c.Timeouts.HTTP)
	defer cancel()
	s, err := c.graph.Stream(hctx, streamID)
	if errors.Is(err, subgraph.ErrNotFound) {
		op.log.Debug("stream not indexed")
		return nil, nil
	}
	if err != nil {
		return nil, op.fail("failed to query stream", err)
	}

	var viewer common.Address
	if addr, err := c.wallet.Account(ctx); err == nil {
		viewer = addr
	}
	out, err := c.display(ctx, op, []*model.Stream{s}, viewer)
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

// display resolves token decimals, fetches metadata records and projects
// streams for viewer.
func (c *Core) display(ctx context.Context, op *operation, streams []*model.Stream, viewer common.Address) ([]model.DisplayStream, error) {
	if len(streams) == 0 {
		return []model.DisplayStream{}, nil
	}

	rctx, cancel := context.WithTimeout(ctx, c.Timeouts.ChainRead)
	defer cancel()
	decimals, err := stream.ResolveDecimals(rctx, c.evm, streams)
	if err != nil {
		return []model.DisplayStream{}, op.fail("failed to resolve token decimals", err)
	}

	chain := c.Chain()
	hctx, hcancel := context.WithTimeout(ctx, c.Timeouts.HTTP)
	defer hcancel()
	recipients, err := c.meta.Recipients(hctx, stream.StreamIDs(streams), chain.Key)
	if err != nil {
		return []model.DisplayStream{}, op.fail("failed to fetch stream metadata", err)
	}

	var account string
	if viewer != (common.Address{}) {
		account = strings.ToLower(viewer.Hex())
	}
	out := stream.ProjectBatch(stream.Batch{
		Streams:    streams,
		Decimals:   decimals,
		Recipients: recipients,
		Chain:      chain.Key,
		Account:    account,
		Now:        c.now().Unix(),
	})
	op.log.Debug("streams projected", zap.Int("count", len(out)), zap.Int("metadata", len(recipients)))
	return out, nil
}
