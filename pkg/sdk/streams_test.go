package sdk

import (
	"context"
	"math/big"
	"testing"

	"github.com/calamus-finance/calamus-sdk-go/pkg/model"
	"github.com/calamus-finance/calamus-sdk-go/pkg/subgraph"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func indexedStream(id int64, token common.Address) *model.Stream {
	return &model.Stream{
		ID:                   big.NewInt(id),
		Sender:               otherAddr,
		Recipient:            walletAddr,
		StartTime:            100,
		StopTime:             200,
		ReleaseAmount:        wei("10000000000000000000"),
		RemainingBalance:     wei("7500000000000000000"),
		RatePerTime:          wei("2500000000000000000"),
		ReleaseFrequency:     1,
		ReleaseFrequencyType: model.Day,
		VestingRelease:       250,
		TokenAddress:         token,
		Status:               model.ActiveStatusCode,
	}
}

func TestIncomingStreams(t *testing.T) {
	f := newFixture(t)
	f.index.incoming = []*model.Stream{indexedStream(1, common.Address{}), indexedStream(3, busd)}
	f.meta.recipients = []model.Recipient{{StreamID: 3, ContractTitle: "Payroll", TokenAbbr: "busd", TokenDecimal: 18, Chain: "bnb"}}

	got, err := f.core.IncomingStreams(context.Background(), common.Address{})
	require.NoError(t, err)
	require.Equal(t, walletAddr, f.index.queried)
	require.Equal(t, []int64{1, 3}, f.meta.ids)
	require.Equal(t, "bnb", f.meta.chain)

	require.Len(t, got, 2)
	require.Equal(t, int64(3), got[0].StreamID)
	require.Equal(t, "Payroll", got[0].ContractTitle)
	require.Equal(t, "2.50 BUSD / 1 Day(s)", got[0].ReleaseRate)
	require.Equal(t, int64(1), got[1].StreamID)
	require.Equal(t, "2.5000 / 1 Day(s)", got[1].ReleaseRate)
	require.Equal(t, "bnb", got[1].Chain)
	require.Equal(t, model.Processing, got[1].Status)
	require.Equal(t, model.Incoming, got[1].Type)
	require.True(t, got[1].WithdrawAmount.Equal(decimal.RequireFromString("2.5")), "withdraw amount %s", got[1].WithdrawAmount)
}

func TestOutgoingStreams_ExplicitAccount(t *testing.T) {
	f := newFixture(t)
	f.wallet.none = true
	f.index.outgoing = []*model.Stream{indexedStream(2, common.Address{})}

	got, err := f.core.OutgoingStreams(context.Background(), otherAddr)
	require.NoError(t, err)
	require.Equal(t, otherAddr, f.index.queried)
	require.Len(t, got, 1)
	require.Equal(t, model.Outgoing, got[0].Type)
}

func TestListing_NoAccount(t *testing.T) {
	f := newFixture(t)
	f.wallet.none = true

	got, err := f.core.IncomingStreams(context.Background(), common.Address{})
	require.ErrorIs(t, err, ErrNoAccount)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestListing_FailuresReturnEmpty(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
	}{
		{name: "subgraph", setup: func(f *fixture) { f.index.err = errBoom }},
		{name: "decimals", setup: func(f *fixture) { f.chain.decimalsErr = errBoom }},
		{name: "metadata", setup: func(f *fixture) { f.meta.err = errBoom }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.index.incoming = []*model.Stream{indexedStream(1, busd)}
			tt.setup(f)

			got, err := f.core.IncomingStreams(context.Background(), common.Address{})
			var opErr *OperationError
			require.ErrorAs(t, err, &opErr)
			require.Equal(t, "incoming_streams", opErr.Op)
			require.ErrorIs(t, err, errBoom)
			require.NotNil(t, got)
			require.Empty(t, got)
		})
	}
}

func TestListing_EmptySkipsLookups(t *testing.T) {
	f := newFixture(t)
	f.chain.decimalsErr = errBoom
	f.meta.err = errBoom

	got, err := f.core.OutgoingStreams(context.Background(), common.Address{})
	require.NoError(t, err)
	require.Empty(t, got)
	require.Nil(t, f.meta.ids)
}

func TestStreamByID(t *testing.T) {
	f := newFixture(t)
	s := indexedStream(9, common.Address{})
	s.Sender = walletAddr
	f.index.byID[9] = s

	got, err := f.core.StreamByID(context.Background(), big.NewInt(9))
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, int64(9), got.StreamID)
	require.Equal(t, model.Outgoing, got.Type)

	got, err = f.core.StreamByID(context.Background(), big.NewInt(10))
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestStreamByID_Failures(t *testing.T) {
	f := newFixture(t)
	f.index.err = errBoom

	got, err := f.core.StreamByID(context.Background(), big.NewInt(9))
	require.ErrorIs(t, err, errBoom)
	require.Nil(t, got)

	f = newFixture(t)
	f.index.byID[9] = indexedStream(9, busd)
	f.meta.err = errBoom

	got, err = f.core.StreamByID(context.Background(), big.NewInt(9))
	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	require.Equal(t, "stream_by_id", opErr.Op)
	require.Nil(t, got)
}

func TestHeartbeat(t *testing.T) {
	f := newFixture(t)
	f.chain.block = big.NewInt(1050)
	f.index.meta = &subgraph.Meta{}
	f.index.meta.Block.Number = 1000

	h, err := f.core.Heartbeat(context.Background())
	require.NoError(t, err)
	require.Equal(t, "bnb", h.Chain)
	require.Equal(t, int64(50), h.Lag())

	f.index.meta = nil
	_, err = f.core.Heartbeat(context.Background())
	require.ErrorIs(t, err, errBoom)
}

func TestClose(t *testing.T) {
	f := newFixture(t)
	f.core.Close()
	require.True(t, f.chain.closed)
}
