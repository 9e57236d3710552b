package entity

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	// ErrInvalidFormat is returned when an amount does not match NUMBER SUFFIX?
	ErrInvalidFormat = errors.New("invalid amount format")

	// ErrNonPositiveAmount is returned when a well-formed amount evaluates to zero or less
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")

	// ErrAmountOutOfRange is returned when an amount does not fit in an int64
	ErrAmountOutOfRange = errors.New("amount is too large")
)

var amountPattern = regexp.MustCompile(`^([0-9]*\.?[0-9]+)([kmb]?)$`)

var suffixMultipliers = map[string]int64{
	"":  1,
	"k": 1_000,
	"m": 1_000_000,
	"b": 1_000_000_000,
}

// ParseAmount converts free-text amounts such as "12m", "10k", "1.5b" or
// "1,200,000" into a positive integer. Fractions are truncated after the
// suffix multiplier is applied.
func ParseAmount(text string) (int64, error) {
	s := strings.ToLower(text)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Join(strings.Fields(s), "")

	m := amountPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}

	num, ok := new(big.Rat).SetString(m[1])
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}
	num.Mul(num, new(big.Rat).SetInt64(suffixMultipliers[m[2]]))

	// Quo on non-negative operands truncates toward zero
	value := new(big.Int).Quo(num.Num(), num.Denom())
	if !value.IsInt64() {
		return 0, fmt.Errorf("%w: %q", ErrAmountOutOfRange, text)
	}
	if value.Sign() <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrNonPositiveAmount, text)
	}
	return value.Int64(), nil
}

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders an amount with comma thousands separators.
func FormatAmount(amount int64) string {
	return amountPrinter.Sprintf("%d", amount)
}
