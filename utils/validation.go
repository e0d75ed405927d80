package utils

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ValidateIntegerAmount checks that an amount is a non-negative base-10
// integer string in the token's smallest unit.
func ValidateIntegerAmount(amount string) (*big.Int, error) {
	if amount == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}

	n, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer amount %q", amount)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("amount cannot be negative")
	}

	return n, nil
}

// ValidateFiatAmount checks that a fiat amount parses as a non-negative
// decimal.
func ValidateFiatAmount(amount string) (decimal.Decimal, error) {
	if amount == "" {
		return decimal.Decimal{}, fmt.Errorf("amount cannot be empty")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount format: %w", err)
	}
	if dec.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("amount cannot be negative")
	}

	return dec, nil
}

// EqualAmount compares two integer amount strings numerically, so that
// "0100" and "100" are equal.
func EqualAmount(a, b string) bool {
	if a == b {
		return true
	}
	an, aok := new(big.Int).SetString(a, 10)
	bn, bok := new(big.Int).SetString(b, 10)
	if !aok || !bok {
		return false
	}
	return an.Cmp(bn) == 0
}

// FormatAmount formats a smallest-unit amount to a decimal string with the
// given precision. Display only.
func FormatAmount(amount *big.Int, decimals int) string {
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}

// ParseAmountWithDecimals parses a decimal amount string into smallest units.
func ParseAmountWithDecimals(amount string, decimals int) (*big.Int, error) {
	dec, err := ValidateFiatAmount(amount)
	if err != nil {
		return nil, err
	}

	shifted := dec.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", amount, decimals)
	}

	return shifted.BigInt(), nil
}
