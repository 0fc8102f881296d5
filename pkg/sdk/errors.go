package sdk

import (
	"errors"
	"fmt"

	"github.com/calamus-finance/calamus-sdk-go/pkg/blockchain"
)

var (
	// ErrNoAccount is returned by operations that need a connected account.
	ErrNoAccount = blockchain.ErrNoAccount
	// ErrInsufficientBalance is returned by Withdraw when the stream balance
	// of the account does not cover the requested amount.
	ErrInsufficientBalance = errors.New("insufficient stream balance")
	// ErrNonPositiveAmount is returned when an amount is zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be positive")
	// ErrStreamNotFound is returned when the subgraph has no such stream.
	ErrStreamNotFound = errors.New("stream not found")
	// ErrZeroAddress is returned when a recipient is the zero address.
	ErrZeroAddress = errors.New("address must not be zero")
)

// OperationError reports a failed SDK operation together with the
// collaborator error that caused it.
type OperationError struct {
	Op      string
	Message string
	Err     error
}

func (e *OperationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
