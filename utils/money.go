package utils

import "math"

// ToMinorUnits converts a decimal amount to integer céntimos. Rounding, not
// truncation: 30.00 stored as 29.999999 must still charge 3000.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
