package common

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// WartDecimals is the number of decimals of the smallest unit (E8)
const WartDecimals = 8

var (
	// ErrInvalidAmount is returned for amounts that are not positive after rounding to E8
	ErrInvalidAmount = errors.New("invalid amount: must be a positive number")
	// ErrInvalidFee is returned for fees that are not positive or could not be rounded
	ErrInvalidFee = errors.New("invalid fee: must be a positive number")
)

var maxE8 = decimal.RequireFromString(strconv.FormatUint(math.MaxUint64, 10))

const (
	// maxIntDigits bounds the integer part: MaxUint64 E8 is below 10^12 WART
	maxIntDigits = 12
	// maxScale bounds the number of decimal places accepted before rounding
	maxScale     = 64
)

// E8ToWart converts smallest units to a display string without float precision loss
func E8ToWart(e8 uint64) string {
	return formatWithDecimals(e8, WartDecimals)
}

// WartToE8 parses a display amount and rounds it to the nearest smallest unit.
// Results that are zero, negative or do not fit in uint64 are rejected.
func WartToE8(wart string) (uint64, error) {
	e8, err := parseE8(wart)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, err)
	}
	return e8, nil
}

// ValidateFee checks a display fee before it is sent to the node for rounding
func ValidateFee(wart string) error {
	if _, err := parseE8(wart); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidFee, err)
	}
	return nil
}

func parseE8(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty string")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.New("not a decimal number")
	}

	// rescaling with a huge exponent allocates 10^|exp|, so reject by magnitude first
	magnitude := int64(d.NumDigits()) + int64(d.Exponent())
	if magnitude > maxIntDigits {
		return 0, errors.New("too large")
	}
	if d.Exponent() < -maxScale {
		return 0, errors.New("too many decimal places")
	}

	// round half away from zero, same as rounding the float product for positive inputs
	e8 := d.Shift(WartDecimals).Round(0)
	if e8.Sign() <= 0 {
		return 0, errors.New("rounds to zero or below")
	}
	if e8.GreaterThan(maxE8) {
		return 0, errors.New("too large")
	}
	return e8.BigInt().Uint64(), nil
}

// formatWithDecimals converts integer to decimal string by inserting decimal point
// Example: formatWithDecimals(24981836, 8) = "0.24981836"
func formatWithDecimals(value uint64, decimals int) string {
	s := fmt.Sprintf("%d", value)

	// Pad with leading zeros if needed
	for len(s) <= decimals {
		s = "0" + s
	}

	pos := len(s) - decimals
	return s[:pos] + "." + s[pos:]
}
