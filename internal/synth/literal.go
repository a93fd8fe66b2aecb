package synth

import (
	"strconv"
	"strings"
)

// CoefficientLiteral renders c with the fewest digits that round-trip through
// float32. Decimal exponents in [-4, 16) print in fixed notation, others as
// 1e-05 / 1.5e+16.
func CoefficientLiteral(c float32) string {
	v := float64(c)
	sci := strconv.FormatFloat(v, 'e', -1, 32)
	exp, err := strconv.Atoi(sci[strings.LastIndexByte(sci, 'e')+1:])
	if err != nil || exp < -4 || exp >= 16 {
		return sci
	}
	return strconv.FormatFloat(v, 'f', -1, 32)
}

// MultiplierLiteral renders a configured multiplier as the rotation prefix,
// single precision with six decimals, e.g. 0.5 -> "0.500000*".
func MultiplierLiteral(m float64) string {
	return strconv.FormatFloat(float64(float32(m)), 'f', 6, 64) + "*"
}
