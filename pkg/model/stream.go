// Package model defines the data structures the SDK moves around: raw
// streams as indexed by the subgraph, the display-ready projection handed to
// front ends, off-chain metadata records returned by the Calamus API, and
// transaction results.
package model

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Frequency is the unit of a stream's release frequency. Values match the
// releaseFrequencyType field stored on chain and in the subgraph.
type Frequency int

const (
	Second Frequency = iota
	Minute
	Hour
	Day
	Week
	Month
	Year
)

var frequencyLabels = map[Frequency]string{
	Second: "Second(s)",
	Minute: "Minute(s)",
	Hour:   "Hour(s)",
	Day:    "Day(s)",
	Week:   "Week(s)",
	Month:  "Month(s)",
	Year:   "Year(s)",
}

// Valid reports whether f is one of the seven known units.
func (f Frequency) Valid() bool {
	_, ok := frequencyLabels[f]
	return ok
}

// Label returns the plural-tolerant label used in release rate strings,
// e.g. "Day(s)".
func (f Frequency) Label() string {
	if l, ok := frequencyLabels[f]; ok {
		return l
	}
	return fmt.Sprintf("Unknown(%d)", int(f))
}

// Privilege says who may transfer or cancel a stream.
type Privilege int

const (
	OnlyRecipient Privilege = iota
	OnlySender
	Both
	Neither
)

// Valid reports whether p is one of the four known privileges.
func (p Privilege) Valid() bool {
	return p >= OnlyRecipient && p <= Neither
}

func (p Privilege) String() string {
	switch p {
	case OnlyRecipient:
		return "Only Recipient"
	case OnlySender:
		return "Only Sender"
	case Both:
		return "Both"
	case Neither:
		return "Neither"
	default:
		return fmt.Sprintf("Privilege(%d)", int(p))
	}
}

// Status is the display status of a stream.
type Status int

const (
	NotStarted Status = iota + 1
	Cancelled
	Completed
	Processing
)

// ActiveStatusCode is the raw on-chain status meaning "active"; the display
// status of such a stream is derived from its time window.
const ActiveStatusCode = 1

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Cancelled:
		return "Cancelled"
	case Completed:
		return "Completed"
	case Processing:
		return "Processing"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// NativeTokenAddress is the sentinel token address the subgraph reports for
// streams of the chain's native currency.
var NativeTokenAddress = common.Address{}

// Stream is a raw stream record owned by the Calamus contract. Amounts are in
// token base units.
type Stream struct {
	ID                   *big.Int
	Sender               common.Address
	Recipient            common.Address
	StartTime            int64
	StopTime             int64
	ReleaseAmount        *big.Int
	RemainingBalance     *big.Int
	RatePerTime          *big.Int
	ReleaseFrequency     int64
	ReleaseFrequencyType Frequency
	// VestingRelease is a percentage with two implied decimals (250 = 2.50%).
	VestingRelease    int64
	TransferPrivilege Privilege
	CancelPrivilege   Privilege
	TokenAddress      common.Address
	Status            int
}

// IsNative reports whether the stream moves the chain's native currency.
func (s *Stream) IsNative() bool {
	return s.TokenAddress == NativeTokenAddress
}

// TxResult identifies the stream touched by a transaction and the hash of
// that transaction.
type TxResult struct {
	StreamID string `json:"stream_id"`
	TrxHash  string `json:"trx_hash"`
}
