package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// Calamus event names.
const (
	EventCreateStream       = "CreateStream"
	EventWithdrawFromStream = "WithdrawFromStream"
	EventCancelStream       = "CancelStream"
	EventTransferStream     = "TransferStream"
	EventTopupStream        = "TopupStream"
)

// Event is a decoded Calamus log.
type Event struct {
	Name            string
	Args            map[string]any
	Address         common.Address
	TransactionHash common.Hash
	LogIndex        uint
}

// StreamID returns the streamId argument of the event, or nil when the event
// has none.
func (e Event) StreamID() *big.Int {
	v, ok := e.Args["streamId"].(*big.Int)
	if !ok {
		return nil
	}
	return v
}

// DecodeEvents decodes the logs of receipt emitted by the Calamus contract at
// contract. Logs from other contracts (token transfers, approvals) and logs
// with unknown signatures are skipped.
func DecodeEvents(receipt *types.Receipt, contract common.Address) ([]Event, error) {
	if receipt == nil {
		return nil, nil
	}
	var events []Event
	for _, lg := range receipt.Logs {
		if lg == nil || lg.Address != contract || len(lg.Topics) == 0 {
			continue
		}
		ev, err := CalamusABI.EventByID(lg.Topics[0])
		if err != nil {
			zap.L().Debug("skipping unknown log", zap.String("topic", lg.Topics[0].Hex()))
			continue
		}
		decoded, err := decodeLog(ev, lg)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", ev.Name, err)
		}
		events = append(events, decoded)
	}
	return events, nil
}

func decodeLog(ev *abi.Event, lg *types.Log) (Event, error) {
	args := make(map[string]any, len(ev.Inputs))
	if len(lg.Data) > 0 {
		if err := ev.Inputs.UnpackIntoMap(args, lg.Data); err != nil {
			return Event{}, err
		}
	}

	var indexed abi.Arguments
	for _, in := range ev.Inputs {
		if in.Indexed {
			indexed = append(indexed, in)
		}
	}
	if err := abi.ParseTopicsIntoMap(args, indexed, lg.Topics[1:]); err != nil {
		return Event{}, err
	}

	return Event{
		Name:            ev.Name,
		Args:            args,
		Address:         lg.Address,
		TransactionHash: lg.TxHash,
		LogIndex:        lg.Index,
	}, nil
}

// MatchStreamEvent picks the event describing streamID: the last event whose
// streamId equals streamID, falling back to the first event. It returns false
// when events is empty.
func MatchStreamEvent(events []Event, streamID *big.Int) (Event, bool) {
	if len(events) == 0 {
		return Event{}, false
	}
	result := events[0]
	for _, ev := range events {
		if id := ev.StreamID(); id != nil && streamID != nil && id.Cmp(streamID) == 0 {
			result = ev
		}
	}
	return result, true
}

// LastEvent returns the last event named name.
func LastEvent(events []Event, name string) (Event, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Name == name {
			return events[i], true
		}
	}
	return Event{}, false
}

// ConfirmEvents waits for txHash to be mined and returns the Calamus events
// of its receipt.
func (evm *EVMClient) ConfirmEvents(ctx context.Context, txHash common.Hash, maxBackoff time.Duration) ([]Event, error) {
	receipt, err := evm.WaitForTransaction(ctx, txHash, maxBackoff)
	if err != nil {
		return nil, err
	}
	return DecodeEvents(receipt, evm.Calamus.Address)
}
