package utils

import (
	"math/big"
	"strings"
)

// FormatBigInt renders a raw token amount as a decimal string.
// Example: amount=1234500000000000000, decimals=18 => "1.2345".
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}

	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value := new(big.Float).Quo(new(big.Float).SetInt(amount), divisor)

	formatted := value.Text('f', int(decimals))
	if strings.Contains(formatted, ".") {
		formatted = strings.TrimRight(formatted, "0")
		formatted = strings.TrimRight(formatted, ".")
	}
	if formatted == "" || formatted == "-" {
		return "0"
	}
	return formatted
}

// ToFloat converts a raw token amount to a float64 honouring decimals.
// Precision loss is acceptable for USD valuation purposes.
func ToFloat(amount *big.Int, decimals uint8) float64 {
	if amount == nil {
		return 0
	}
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value, _ := new(big.Float).Quo(new(big.Float).SetInt(amount), divisor).Float64()
	return value
}
