package nutrition

import (
	"math"
	"math/big"
	"strconv"
)

// Round1 rounds to one decimal place using the exact binary value of x, with
// exact ties going away from zero. 0.15 (stored as 0.1499…) rounds to 0.1,
// 22.75 rounds to 22.8.
func Round1(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x == 0 {
		return x
	}
	neg := x < 0
	scaled := new(big.Float).SetPrec(128).SetFloat64(math.Abs(x))
	scaled.Mul(scaled, big.NewFloat(10))

	whole, _ := scaled.Int(nil)
	frac := new(big.Float).SetPrec(128).Sub(scaled, new(big.Float).SetPrec(128).SetInt(whole))
	if frac.Cmp(big.NewFloat(0.5)) >= 0 {
		whole.Add(whole, big.NewInt(1))
	}
	n, _ := new(big.Float).SetInt(whole).Float64()
	out := n / 10
	if neg {
		return -out
	}
	return out
}

// RoundInt rounds half up: 2.5 -> 3, -2.5 -> -2.
func RoundInt(x float64) float64 {
	f := math.Floor(x)
	if x-f >= 0.5 {
		return f + 1
	}
	return f
}

// FormatNumber prints the shortest decimal form: 105, 22.8, -23.2.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
