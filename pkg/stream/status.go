package stream

import (
	"github.com/calamus-finance/calamus-sdk-go/pkg/model"
)

// DeriveStatus returns the display status of a stream. Any raw status other
// than active is passed through unchanged; an active stream is NotStarted
// before its start time, Completed after its stop time and Processing in
// between (both bounds inclusive).
func DeriveStatus(rawStatus int, startTime, stopTime, now int64) model.Status {
	if rawStatus != model.ActiveStatusCode {
		return model.Status(rawStatus)
	}
	switch {
	case now < startTime:
		return model.NotStarted
	case now > stopTime:
		return model.Completed
	default:
		return model.Processing
	}
}
