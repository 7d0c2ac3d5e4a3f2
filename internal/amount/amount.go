// internal/amount/amount.go
package amount

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	// ErrInvalidAmount is returned for amounts that are not valid decimal strings.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrAmountTooSmall is returned when the amount truncates to zero base units.
	ErrAmountTooSmall = errors.New("amount too small - would round to 0")
)

const (
	// MaxDisplayFraction caps the number of fractional digits shown to users.
	MaxDisplayFraction = 8
	// MinDisplayFraction is the floor below which trailing zeros are not trimmed.
	MinDisplayFraction = 2
)

// ToBaseUnits converts a user-typed decimal string into an integer amount of
// base units, carrying exactly `decimals` fractional digits. The conversion is
// exact: extra precision is truncated, never rounded.
func ToBaseUnits(s string, decimals int) (string, error) {
	if decimals < 0 {
		return "", fmt.Errorf("%w: negative decimals %d", ErrInvalidAmount, decimals)
	}

	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return "", fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}
	if strings.HasPrefix(s, "-") {
		return "", fmt.Errorf("%w: negative amounts are not allowed", ErrInvalidAmount)
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}

	intPart, fracPart, found := strings.Cut(s, ".")
	if found && strings.Contains(fracPart, ".") {
		return "", fmt.Errorf("%w: multiple decimal points", ErrInvalidAmount)
	}
	if !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return "", fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, s)
	}

	// Right-pad the fraction to exactly `decimals` digits, then truncate.
	if len(fracPart) < decimals {
		fracPart += strings.Repeat("0", decimals-len(fracPart))
	} else {
		fracPart = fracPart[:decimals]
	}

	n, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if n.Sign() == 0 {
		return "", ErrAmountTooSmall
	}
	return n.String(), nil
}

// FromBaseUnits converts an integer base-unit amount back into a display
// string. Trailing zeros in the fraction are trimmed down to a two-digit
// floor, and anything beyond MaxDisplayFraction digits is dropped.
func FromBaseUnits(baseUnits string, decimals int) (string, error) {
	if decimals < 0 {
		return "", fmt.Errorf("%w: negative decimals %d", ErrInvalidAmount, decimals)
	}
	if !isDigits(baseUnits) {
		return "", fmt.Errorf("%w: base units %q must match ^\\d+$", ErrInvalidAmount, baseUnits)
	}

	n, ok := new(big.Int).SetString(baseUnits, 10)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, baseUnits)
	}
	if decimals == 0 {
		return n.String(), nil
	}

	div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	quo, rem := new(big.Int).QuoRem(n, div, new(big.Int))

	frac := rem.String()
	if len(frac) < decimals {
		frac = strings.Repeat("0", decimals-len(frac)) + frac
	}
	if len(frac) > MaxDisplayFraction {
		frac = frac[:MaxDisplayFraction]
	}
	for len(frac) > MinDisplayFraction && frac[len(frac)-1] == '0' {
		frac = frac[:len(frac)-1]
	}

	return quo.String() + "." + frac, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
