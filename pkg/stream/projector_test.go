package stream

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/calamus-finance/calamus-sdk-go/pkg/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

var (
	sender    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	recipient = common.HexToAddress("0x2222222222222222222222222222222222222222")
	busd      = common.HexToAddress("0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56")
)

func eth(v string) *big.Int {
	n, _ := new(big.Int).SetString(v, 10)
	return n
}

func rawStream(id int64, token common.Address) *model.Stream {
	return &model.Stream{
		ID:                   big.NewInt(id),
		Sender:               sender,
		Recipient:            recipient,
		StartTime:            100,
		StopTime:             200,
		ReleaseAmount:        eth("10000000000000000000"),
		RemainingBalance:     eth("7500000000000000000"),
		RatePerTime:          eth("2500000000000000000"),
		ReleaseFrequency:     1,
		ReleaseFrequencyType: model.Day,
		VestingRelease:       250,
		TransferPrivilege:    model.OnlySender,
		CancelPrivilege:      model.Both,
		TokenAddress:         token,
		Status:               1,
	}
}

func TestProject(t *testing.T) {
	d := Project(rawStream(5, model.NativeTokenAddress), 18, "bnb", "", 150)

	if d.StreamID != 5 {
		t.Fatalf("StreamID = %d", d.StreamID)
	}
	if d.Status != model.Processing || d.OriginStatus != 1 {
		t.Fatalf("status = %s origin = %d", d.Status, d.OriginStatus)
	}
	if !d.ReleaseAmount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("ReleaseAmount = %s", d.ReleaseAmount)
	}
	if !d.WithdrawAmount.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("WithdrawAmount = %s", d.WithdrawAmount)
	}
	if d.InitialRelease != "2.50" {
		t.Fatalf("InitialRelease = %q", d.InitialRelease)
	}
	if d.ReleaseRate != "2.5000 / 1 Day(s)" {
		t.Fatalf("ReleaseRate = %q", d.ReleaseRate)
	}
	if d.Chain != "bnb" || d.Type != model.Incoming {
		t.Fatalf("chain = %q type = %q", d.Chain, d.Type)
	}
	if d.ContractTitle != "" || d.TokenAbbr != "" || d.TokenDecimal != 0 || d.TrxHash != "" {
		t.Fatalf("metadata should be empty before merge: %+v", d)
	}
}

func TestProject_OutgoingWhenAccountIsSender(t *testing.T) {
	d := Project(rawStream(1, model.NativeTokenAddress), 18, "bnb", sender.Hex(), 150)
	if d.Type != model.Outgoing {
		t.Fatalf("Type = %q, want Outgoing", d.Type)
	}
}

func TestMerge(t *testing.T) {
	s := rawStream(9, busd)
	d := Project(s, 18, "bnb", "", 50)
	Merge(&d, s, model.Recipient{
		StreamID:      9,
		ContractTitle: "Payroll",
		EmailAddress:  "ops@example.com",
		TokenAbbr:     "busd",
		TokenLogo:     "https://logo",
		TokenDecimal:  18,
		TokenID:       "binance-usd",
		IsVesting:     true,
		Chain:         "bnb-testnet",
		TrxHash:       "0xabc",
	})

	if d.ReleaseRate != "2.50 BUSD / 1 Day(s)" {
		t.Fatalf("ReleaseRate = %q", d.ReleaseRate)
	}
	if d.ContractTitle != "Payroll" || !d.IsVesting || d.Chain != "bnb-testnet" || d.TrxHash != "0xabc" {
		t.Fatalf("metadata not merged: %+v", d)
	}
	if d.Status != model.NotStarted {
		t.Fatalf("Status = %s", d.Status)
	}
}

func TestMerge_MetadataDecimalWins(t *testing.T) {
	s := rawStream(3, busd)
	s.ReleaseAmount = big.NewInt(5000000)
	s.RemainingBalance = big.NewInt(1000000)
	s.RatePerTime = big.NewInt(250000)

	d := Project(s, 18, "bnb", "", 150)
	Merge(&d, s, model.Recipient{StreamID: 3, TokenAbbr: "usdt", TokenDecimal: 6})

	if !d.ReleaseAmount.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("ReleaseAmount = %s, want 5", d.ReleaseAmount)
	}
	if !d.WithdrawAmount.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("WithdrawAmount = %s, want 4", d.WithdrawAmount)
	}
	if d.Decimals() != 6 {
		t.Fatalf("Decimals = %d", d.Decimals())
	}
	if d.ReleaseRate != "0.25 USDT / 1 Day(s)" {
		t.Fatalf("ReleaseRate = %q", d.ReleaseRate)
	}
}

type countingResolver struct {
	mu       sync.Mutex
	calls    map[common.Address]int
	decimals map[common.Address]uint8
	err      error
}

func (r *countingResolver) TokenDecimals(_ context.Context, token common.Address) (uint8, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = make(map[common.Address]int)
	}
	r.calls[token]++
	if r.err != nil {
		return 0, r.err
	}
	return r.decimals[token], nil
}

func TestResolveDecimals_OneLookupPerToken(t *testing.T) {
	usdt := common.HexToAddress("0x55d398326f99059fF775485246999027B3197955")
	r := &countingResolver{decimals: map[common.Address]uint8{busd: 6, usdt: 8}}
	streams := []*model.Stream{
		rawStream(1, busd),
		rawStream(2, busd),
		rawStream(3, model.NativeTokenAddress),
		rawStream(4, usdt),
	}

	decimals, err := ResolveDecimals(context.Background(), r, streams)
	if err != nil {
		t.Fatalf("ResolveDecimals error: %v", err)
	}
	if r.calls[busd] != 1 || r.calls[usdt] != 1 {
		t.Fatalf("unexpected lookups: %v", r.calls)
	}
	if _, ok := r.calls[model.NativeTokenAddress]; ok {
		t.Fatal("native currency must not be looked up")
	}
	if decimals[busd] != 6 || decimals[usdt] != 8 || decimals[model.NativeTokenAddress] != 18 {
		t.Fatalf("unexpected decimals: %v", decimals)
	}

	rows := ProjectBatch(Batch{Streams: streams[:2], Decimals: decimals, Now: 150})
	for _, row := range rows {
		if !row.ReleaseAmount.Equal(decimal.RequireFromString("10000000000000")) {
			t.Fatalf("stream %d converted with wrong decimals: %s", row.StreamID, row.ReleaseAmount)
		}
	}
}

func TestResolveDecimals_Error(t *testing.T) {
	want := errors.New("rpc down")
	r := &countingResolver{err: want}
	if _, err := ResolveDecimals(context.Background(), r, []*model.Stream{rawStream(1, busd)}); !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestResolveDecimals_NativeOnly(t *testing.T) {
	r := &countingResolver{}
	decimals, err := ResolveDecimals(context.Background(), r, []*model.Stream{rawStream(1, model.NativeTokenAddress)})
	if err != nil {
		t.Fatalf("ResolveDecimals error: %v", err)
	}
	if len(r.calls) != 0 || decimals[model.NativeTokenAddress] != 18 {
		t.Fatalf("calls = %v decimals = %v", r.calls, decimals)
	}
}

func TestProjectBatch_SortsAndMerges(t *testing.T) {
	streams := []*model.Stream{
		rawStream(3, model.NativeTokenAddress),
		rawStream(1, model.NativeTokenAddress),
		rawStream(2, model.NativeTokenAddress),
	}
	rows := ProjectBatch(Batch{
		Streams: streams,
		Recipients: []model.Recipient{
			{StreamID: 2, TokenAbbr: "bnb", Chain: "bnb"},
			{StreamID: 2, TokenAbbr: "ignored"},
		},
		Chain: "bnb",
		Now:   150,
	})

	if len(rows) != 3 {
		t.Fatalf("got %d rows", len(rows))
	}
	for i, want := range []int64{3, 2, 1} {
		if rows[i].StreamID != want {
			t.Fatalf("rows[%d] = %d, want %d", i, rows[i].StreamID, want)
		}
	}
	if rows[1].ReleaseRate != "2.50 BNB / 1 Day(s)" {
		t.Fatalf("merged label = %q", rows[1].ReleaseRate)
	}
	if rows[0].ReleaseRate != "2.5000 / 1 Day(s)" {
		t.Fatalf("unmerged label = %q", rows[0].ReleaseRate)
	}
}

func TestStreamIDs(t *testing.T) {
	ids := StreamIDs([]*model.Stream{rawStream(4, busd), rawStream(8, busd)})
	if len(ids) != 2 || ids[0] != 4 || ids[1] != 8 {
		t.Fatalf("StreamIDs = %v", ids)
	}
}
