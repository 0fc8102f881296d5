package stream

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/calamus-finance/calamus-sdk-go/pkg/model"
	"github.com/calamus-finance/calamus-sdk-go/pkg/units"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DecimalsResolver looks up the decimal precision of an ERC-20 token.
type DecimalsResolver interface {
	TokenDecimals(ctx context.Context, token common.Address) (uint8, error)
}

// DistinctTokens returns the distinct non-native token addresses of streams
// in first-seen order.
func DistinctTokens(streams []*model.Stream) []common.Address {
	seen := make(map[common.Address]struct{}, len(streams))
	var tokens []common.Address
	for _, s := range streams {
		if s.IsNative() {
			continue
		}
		if _, ok := seen[s.TokenAddress]; ok {
			continue
		}
		seen[s.TokenAddress] = struct{}{}
		tokens = append(tokens, s.TokenAddress)
	}
	return tokens
}

// ResolveDecimals resolves the precision of every distinct token used by
// streams with one concurrent lookup per token. The native currency maps to
// units.NativeDecimals without a lookup. The first failed lookup cancels the
// rest and is returned.
func ResolveDecimals(ctx context.Context, r DecimalsResolver, streams []*model.Stream) (map[common.Address]int32, error) {
	decimals := map[common.Address]int32{model.NativeTokenAddress: units.NativeDecimals}
	tokens := DistinctTokens(streams)
	if len(tokens) == 0 {
		return decimals, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, token := range tokens {
		token := token
		g.Go(func() error {
			d, err := r.TokenDecimals(gctx, token)
			if err != nil {
				return fmt.Errorf("decimals of %s: %w", token.Hex(), err)
			}
			mu.Lock()
			decimals[token] = int32(d)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	zap.L().Debug("Resolved token decimals", zap.Int("tokens", len(tokens)))
	return decimals, nil
}

// Batch is the input of ProjectBatch.
type Batch struct {
	Streams []*model.Stream
	// Decimals maps token address to precision, usually from ResolveDecimals.
	// Tokens missing from the map use units.NativeDecimals.
	Decimals   map[common.Address]int32
	Recipients []model.Recipient
	Chain      string
	Account    string
	Now        int64
}

// ProjectBatch projects every stream of b, merges the first metadata record
// whose stream id matches, and returns the result sorted by stream id in
// descending order.
func ProjectBatch(b Batch) []model.DisplayStream {
	byID := make(map[int64]model.Recipient, len(b.Recipients))
	for _, r := range b.Recipients {
		if _, ok := byID[r.StreamID]; !ok {
			byID[r.StreamID] = r
		}
	}

	out := make([]model.DisplayStream, 0, len(b.Streams))
	for _, s := range b.Streams {
		decimals, ok := b.Decimals[s.TokenAddress]
		if !ok {
			decimals = units.NativeDecimals
		}
		d := Project(s, decimals, b.Chain, b.Account, b.Now)
		if r, ok := byID[d.StreamID]; ok {
			Merge(&d, s, r)
		}
		out = append(out, d)
	}
	SortByIDDesc(out)
	return out
}

// SortByIDDesc sorts streams by stream id, highest first.
func SortByIDDesc(streams []model.DisplayStream) {
	slices.SortStableFunc(streams, func(a, b model.DisplayStream) int {
		return cmp.Compare(b.StreamID, a.StreamID)
	})
}

// StreamIDs returns the ids of streams as int64, in order.
func StreamIDs(streams []*model.Stream) []int64 {
	ids := make([]int64, len(streams))
	for i, s := range streams {
		ids[i] = s.ID.Int64()
	}
	return ids
}
