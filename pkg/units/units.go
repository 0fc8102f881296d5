// Package units converts token amounts between on-chain base units and
// human-readable decimals using the token's declared decimal precision.
// All intermediate arithmetic is arbitrary precision; floating point is
// never involved.
package units

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NativeDecimals is the decimal precision of every supported chain's native
// currency (BNB, ETH, MATIC...).
const NativeDecimals int32 = 18

// ErrInvalidDecimals is returned when a negative decimal precision is supplied.
var ErrInvalidDecimals = errors.New("decimals must be non-negative")

// ToDecimal converts a raw base-unit amount into a decimal by dividing it by
// 10^decimals. The conversion is exact. A nil amount is treated as zero.
func ToDecimal(raw *big.Int, decimals int32) (decimal.Decimal, error) {
	if decimals < 0 {
		return decimal.Zero, ErrInvalidDecimals
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromBigInt(raw, -decimals), nil
}

// ToRaw converts a decimal amount into base units by multiplying it by
// 10^decimals. Any fractional base unit is floored so that the result never
// exceeds what the caller asked for.
func ToRaw(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if decimals < 0 {
		return nil, ErrInvalidDecimals
	}
	return amount.Shift(decimals).Floor().BigInt(), nil
}

// ParseDecimal parses a human-entered amount ("1.5", "100") into a decimal.
// An empty string is read as zero.
func ParseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		zap.L().Error("Failed to convert string to decimal", zap.String("value", s), zap.Error(err))
		return decimal.Zero, err
	}
	return d, nil
}

// MustToDecimal is ToDecimal for call sites that already validated decimals.
// It logs and returns zero on a negative precision instead of failing.
func MustToDecimal(raw *big.Int, decimals int32) decimal.Decimal {
	d, err := ToDecimal(raw, decimals)
	if err != nil {
		zap.L().Error("Failed to convert base units", zap.Int32("decimals", decimals), zap.Error(err))
		return decimal.Zero
	}
	return d
}
