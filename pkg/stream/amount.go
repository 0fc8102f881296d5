package stream

import (
	"errors"
	"math/big"

	"github.com/calamus-finance/calamus-sdk-go/pkg/model"
	"github.com/calamus-finance/calamus-sdk-go/pkg/units"
	"github.com/shopspring/decimal"
)

// FeeDenominator is the basis-point denominator of the protocol fee
// (10000 = 100%).
const FeeDenominator = 10000

// ErrInvalidWindow is returned when a stream's stop time is not after its
// start time.
var ErrInvalidWindow = errors.New("stop time must be after start time")

// LockedAmountParams are the inputs of ComputeLockedAmount.
type LockedAmountParams struct {
	Count     int64
	Unit      model.Frequency
	StartTime int64
	StopTime  int64
	// Nominal is the amount the recipient should receive, in token units.
	Nominal       decimal.Decimal
	TokenDecimals int32
	// FeeRate is the protocol fee in basis points, as returned by feeOf.
	FeeRate *big.Int
}

// ComputeLockedAmount returns the amount in base units that has to be locked
// when creating a stream so that, net of the protocol fee, the stream
// releases Nominal over the window in steps of Count x Unit.
//
// The computation truncates twice on purpose: first the per-period amount is
// floored, then it is multiplied by the floored number of whole periods. The
// contract derives the per-period release the same way, so a partial final
// period is never funded.
//
// Sentinel results:
//   - Count <= 0 or Nominal <= 0 in base units: 0 and a nil error, a no-op stream.
//   - StopTime <= StartTime: 0 and ErrInvalidWindow.
//   - negative TokenDecimals: 0 and units.ErrInvalidDecimals.
//   - unknown Unit: 0 and ErrUnknownFrequency.
func ComputeLockedAmount(p LockedAmountParams) (*big.Int, error) {
	zero := new(big.Int)
	if p.Count <= 0 {
		return zero, nil
	}
	releaseTime, err := ToSeconds(p.Count, p.Unit)
	if err != nil {
		return zero, err
	}

	delta := p.StopTime - p.StartTime
	if delta <= 0 {
		return zero, ErrInvalidWindow
	}

	nominal, err := units.ToRaw(p.Nominal, p.TokenDecimals)
	if err != nil {
		return zero, err
	}
	if nominal.Sign() <= 0 {
		return zero, nil
	}

	fee := p.FeeRate
	if fee == nil {
		fee = zero
	}
	denominator := big.NewInt(FeeDenominator)
	numerator := new(big.Int).Add(denominator, fee)

	bigReleaseTime := big.NewInt(releaseTime)
	bigDelta := big.NewInt(delta)

	grossed := new(big.Int).Mul(nominal, numerator)
	grossed.Quo(grossed, denominator)

	perPeriod := new(big.Int).Mul(grossed, bigReleaseTime)
	perPeriod.Quo(perPeriod, bigDelta)

	periods := new(big.Int).Quo(bigDelta, bigReleaseTime)
	return perPeriod.Mul(perPeriod, periods), nil
}
