package subgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/calamus-finance/calamus-sdk-go/pkg/model"
	"github.com/ethereum/go-ethereum/common"
)

// Number is a subgraph integer. BigInt fields arrive as JSON strings and Int
// fields as JSON numbers; both decode into Number.
type Number struct {
	big.Int
}

// UnmarshalJSON accepts "123", 123 and null.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		n.SetInt64(0)
		return nil
	}
	b = bytes.Trim(b, `"`)
	if len(b) == 0 {
		n.SetInt64(0)
		return nil
	}
	if _, ok := n.SetString(string(b), 10); !ok {
		return fmt.Errorf("invalid integer %q", b)
	}
	return nil
}

// Record is a stream entity as returned by the subgraph.
type Record struct {
	ID                   string `json:"id"`
	Sender               string `json:"sender"`
	Recipient            string `json:"recipient"`
	ReleaseAmount        Number `json:"releaseAmount"`
	RemainingBalance     Number `json:"remainingBalance"`
	StartTime            Number `json:"startTime"`
	StopTime             Number `json:"stopTime"`
	VestingRelease       Number `json:"vestingRelease"`
	RatePerTime          Number `json:"ratePerTime"`
	ReleaseFrequency     Number `json:"releaseFrequency"`
	ReleaseFrequencyType Number `json:"releaseFrequencyType"`
	TransferPrivilege    Number `json:"transferPrivilege"`
	CancelPrivilege      Number `json:"cancelPrivilege"`
	TokenAddress         string `json:"tokenAddress"`
	Status               Number `json:"status"`
}

// Stream converts the record into a model.Stream.
func (r *Record) Stream() (*model.Stream, error) {
	id, ok := new(big.Int).SetString(r.ID, 0)
	if !ok {
		return nil, fmt.Errorf("invalid stream id %q", r.ID)
	}
	for _, a := range []struct{ name, v string }{
		{"sender", r.Sender},
		{"recipient", r.Recipient},
		{"tokenAddress", r.TokenAddress},
	} {
		if a.v != "" && !common.IsHexAddress(a.v) {
			return nil, fmt.Errorf("stream %s: invalid %s %q", r.ID, a.name, a.v)
		}
	}

	return &model.Stream{
		ID:                   id,
		Sender:               common.HexToAddress(r.Sender),
		Recipient:            common.HexToAddress(r.Recipient),
		StartTime:            r.StartTime.Int64(),
		StopTime:             r.StopTime.Int64(),
		ReleaseAmount:        new(big.Int).Set(&r.ReleaseAmount.Int),
		RemainingBalance:     new(big.Int).Set(&r.RemainingBalance.Int),
		RatePerTime:          new(big.Int).Set(&r.RatePerTime.Int),
		ReleaseFrequency:     r.ReleaseFrequency.Int64(),
		ReleaseFrequencyType: model.Frequency(r.ReleaseFrequencyType.Int64()),
		VestingRelease:       r.VestingRelease.Int64(),
		TransferPrivilege:    model.Privilege(r.TransferPrivilege.Int64()),
		CancelPrivilege:      model.Privilege(r.CancelPrivilege.Int64()),
		TokenAddress:         common.HexToAddress(r.TokenAddress),
		Status:               int(r.Status.Int64()),
	}, nil
}

// ParseRecords converts records, failing on the first malformed one.
func ParseRecords(records []Record) ([]*model.Stream, error) {
	streams := make([]*model.Stream, 0, len(records))
	for i := range records {
		s, err := records[i].Stream()
		if err != nil {
			return nil, err
		}
		streams = append(streams, s)
	}
	return streams, nil
}

// compile-time check
var _ json.Unmarshaler = (*Number)(nil)
