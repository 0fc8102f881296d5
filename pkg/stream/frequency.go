package stream

import (
	"errors"
	"fmt"

	"github.com/calamus-finance/calamus-sdk-go/pkg/model"
)

var (
	// ErrInvalidFrequency is returned when a release frequency count is not positive.
	ErrInvalidFrequency = errors.New("release frequency must be positive")
	// ErrUnknownFrequency is returned for a frequency unit outside Second..Year.
	ErrUnknownFrequency = errors.New("unknown release frequency unit")
)

// Month and Year are fixed 30 and 365 day approximations, matching the
// contract's own accounting.
var frequencySeconds = map[model.Frequency]int64{
	model.Second: 1,
	model.Minute: 60,
	model.Hour:   60 * 60,
	model.Day:    60 * 60 * 24,
	model.Week:   60 * 60 * 24 * 7,
	model.Month:  60 * 60 * 24 * 30,
	model.Year:   60 * 60 * 24 * 365,
}

// ToSeconds converts a release frequency of count units into seconds.
func ToSeconds(count int64, unit model.Frequency) (int64, error) {
	if count <= 0 {
		return 0, ErrInvalidFrequency
	}
	mul, ok := frequencySeconds[unit]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownFrequency, int(unit))
	}
	return count * mul, nil
}
