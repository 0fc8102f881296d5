package blockchain

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	testSender    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testRecipient = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testToken     = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func addressTopic(a common.Address) common.Hash {
	return common.BytesToHash(a.Bytes())
}

func makeLog(t *testing.T, contract common.Address, name string, topics []common.Hash, data ...any) *types.Log {
	t.Helper()
	ev := CalamusABI.Events[name]
	packed, err := ev.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		t.Fatalf("pack %s: %v", name, err)
	}
	return &types.Log{
		Address: contract,
		Topics:  append([]common.Hash{ev.ID}, topics...),
		Data:    packed,
		TxHash:  common.HexToHash("0xabc"),
	}
}

func TestDecodeEvents_CreateStream(t *testing.T) {
	contract := testChain().ContractAddress
	transfer := &types.Log{
		Address: testToken,
		Topics:  []common.Hash{ERC20ABI.Events["Transfer"].ID, addressTopic(testSender), addressTopic(contract)},
	}
	create := makeLog(t, contract, EventCreateStream,
		[]common.Hash{common.BigToHash(big.NewInt(42)), addressTopic(testSender), addressTopic(testRecipient)},
		big.NewInt(1000), big.NewInt(10), big.NewInt(20), big.NewInt(250), big.NewInt(86400), uint8(1), uint8(3), testToken)

	events, err := DecodeEvents(&types.Receipt{Logs: []*types.Log{transfer, create}}, contract)
	if err != nil {
		t.Fatalf("DecodeEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 Calamus event, got %d", len(events))
	}

	ev := events[0]
	if ev.Name != EventCreateStream {
		t.Fatalf("unexpected name %q", ev.Name)
	}
	if ev.StreamID().Int64() != 42 {
		t.Fatalf("unexpected stream id %v", ev.StreamID())
	}
	if ev.Args["recipient"].(common.Address) != testRecipient {
		t.Fatalf("unexpected recipient %v", ev.Args["recipient"])
	}
	if ev.Args["tokenAddress"].(common.Address) != testToken {
		t.Fatalf("unexpected token %v", ev.Args["tokenAddress"])
	}
	if ev.Args["releaseAmount"].(*big.Int).Int64() != 1000 {
		t.Fatalf("unexpected amount %v", ev.Args["releaseAmount"])
	}
	if ev.Args["cancelPrivilege"].(uint8) != 3 {
		t.Fatalf("unexpected cancel privilege %v", ev.Args["cancelPrivilege"])
	}
	if ev.TransactionHash != common.HexToHash("0xabc") {
		t.Fatalf("unexpected tx hash %s", ev.TransactionHash.Hex())
	}
}

func TestDecodeEvents_TopicsOnly(t *testing.T) {
	contract := testChain().ContractAddress
	lg := &types.Log{
		Address: contract,
		Topics: []common.Hash{
			CalamusABI.Events[EventTransferStream].ID,
			common.BigToHash(big.NewInt(7)),
			addressTopic(testSender),
			addressTopic(testRecipient),
		},
	}

	events, err := DecodeEvents(&types.Receipt{Logs: []*types.Log{lg}}, contract)
	if err != nil {
		t.Fatalf("DecodeEvents: %v", err)
	}
	if len(events) != 1 || events[0].StreamID().Int64() != 7 {
		t.Fatalf("unexpected events %+v", events)
	}
	if events[0].Args["newRecipient"].(common.Address) != testRecipient {
		t.Fatalf("unexpected new recipient %v", events[0].Args["newRecipient"])
	}
}

func TestDecodeEvents_NilReceipt(t *testing.T) {
	events, err := DecodeEvents(nil, common.Address{})
	if err != nil || events != nil {
		t.Fatalf("expected no events, got %v %v", events, err)
	}
}

func TestMatchStreamEvent(t *testing.T) {
	ev := func(name string, id int64) Event {
		return Event{Name: name, Args: map[string]any{"streamId": big.NewInt(id)}}
	}

	tests := []struct {
		name     string
		events   []Event
		streamID int64
		wantName string
		wantOK   bool
	}{
		{
			name:   "empty",
			wantOK: false,
		},
		{
			name:     "fallback to first",
			events:   []Event{ev("A", 1), ev("B", 2)},
			streamID: 9,
			wantName: "A",
			wantOK:   true,
		},
		{
			name:     "last match wins",
			events:   []Event{ev("A", 5), ev("B", 3), ev("C", 5)},
			streamID: 5,
			wantName: "C",
			wantOK:   true,
		},
		{
			name:     "event without stream id is skipped",
			events:   []Event{{Name: "X"}, ev("B", 4)},
			streamID: 4,
			wantName: "B",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchStreamEvent(tt.events, big.NewInt(tt.streamID))
			if ok != tt.wantOK {
				t.Fatalf("ok = %t, want %t", ok, tt.wantOK)
			}
			if ok && got.Name != tt.wantName {
				t.Fatalf("matched %q, want %q", got.Name, tt.wantName)
			}
		})
	}
}

func TestLastEvent(t *testing.T) {
	events := []Event{
		{Name: EventCreateStream, LogIndex: 1},
		{Name: EventTopupStream, LogIndex: 2},
		{Name: EventCreateStream, LogIndex: 3},
	}
	got, ok := LastEvent(events, EventCreateStream)
	if !ok || got.LogIndex != 3 {
		t.Fatalf("unexpected event %+v", got)
	}
	if _, ok := LastEvent(events, EventCancelStream); ok {
		t.Fatal("expected no CancelStream event")
	}
}

func TestConfirmEvents(t *testing.T) {
	contract := testChain().ContractAddress
	withdraw := makeLog(t, contract, EventWithdrawFromStream,
		[]common.Hash{common.BigToHash(big.NewInt(7)), addressTopic(testRecipient)},
		big.NewInt(500))
	b := &fakeBackend{receipts: []receiptResult{{receipt: &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		Logs:   []*types.Log{withdraw},
	}}}}
	evm := newTestClient(t, b)

	events, err := evm.ConfirmEvents(context.Background(), common.HexToHash("0xabc"), 0)
	if err != nil {
		t.Fatalf("ConfirmEvents: %v", err)
	}
	if len(events) != 1 || events[0].Name != EventWithdrawFromStream {
		t.Fatalf("unexpected events %+v", events)
	}
	if events[0].Args["amount"].(*big.Int).Int64() != 500 {
		t.Fatalf("unexpected amount %v", events[0].Args["amount"])
	}
}
