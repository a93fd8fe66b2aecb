package circuit

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrBadAngle is returned for rotation arguments outside the product form.
	ErrBadAngle = errors.New("unsupported angle expression")
	// ErrUnbound is returned when evaluating an angle whose parameter has no value.
	ErrUnbound = errors.New("unbound parameter")
)

// piExprRegex matches pi, 2pi, 2*pi, pi/2, 3pi/4, -pi/2 and similar.
var piExprRegex = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*pi(?:\s*/\s*(\d+\.?\d*))?$`)

var identRegex = regexp.MustCompile(`^(-?)([A-Za-z_]\w*)$`)

// Bindings maps symbolic parameter names to values.
type Bindings map[string]float64

// Angle is a rotation argument of the form f1*f2*...*fn where every factor
// is a number, a pi expression or a parameter name, e.g. "2*0.5*param3" or
// "-pi/2".
type Angle struct {
	Coeff  float64
	Params []string
	Text   string
}

// Symbolic reports whether the angle depends on a parameter.
func (a Angle) Symbolic() bool { return len(a.Params) > 0 }

// Eval multiplies the numeric coefficient by every bound parameter.
func (a Angle) Eval(b Bindings) (float64, error) {
	v := a.Coeff
	for _, p := range a.Params {
		x, ok := b[p]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnbound, p)
		}
		v *= x
	}
	return v, nil
}

// Label is the angle text for display: pi fractions where they apply,
// otherwise the source text for symbolic angles.
func (a Angle) Label() string {
	if a.Symbolic() {
		return a.Text
	}
	return FormatAngle(a.Coeff)
}

// ParseAngle parses a product of factors.
func ParseAngle(s string) (Angle, error) {
	s = strings.TrimSpace(s)
	a := Angle{Coeff: 1, Text: s}
	if s == "" {
		return a, fmt.Errorf("%w: empty", ErrBadAngle)
	}
	for _, f := range splitFactors(s) {
		if v, ok := parseFactor(f); ok {
			a.Coeff *= v
			continue
		}
		m := identRegex.FindStringSubmatch(f)
		if m == nil || m[2] == "pi" {
			return a, fmt.Errorf("%w: %q", ErrBadAngle, s)
		}
		if m[1] == "-" {
			a.Coeff = -a.Coeff
		}
		a.Params = append(a.Params, m[2])
	}
	return a, nil
}

// splitFactors splits on '*'. "3*pi/4" becomes 3 and pi/4, which multiply
// back to the same value.
func splitFactors(s string) []string {
	parts := strings.Split(s, "*")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// parseFactor parses a plain number or a pi expression.
func parseFactor(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
	m := piExprRegex.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 0, false
	}
	coeff := 1.0
	if m[2] != "" {
		var err error
		if coeff, err = strconv.ParseFloat(m[2], 64); err != nil {
			return 0, false
		}
	}
	v := coeff * math.Pi
	if m[3] != "" {
		denom, err := strconv.ParseFloat(m[3], 64)
		if err != nil || denom == 0 {
			return 0, false
		}
		v /= denom
	}
	if m[1] == "-" {
		v = -v
	}
	return v, true
}

// FormatAngle renders v using pi notation for common fractions.
func FormatAngle(v float64) string {
	forms := []struct {
		value   float64
		display string
	}{
		{2 * math.Pi, "2*pi"},
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{math.Pi / 3, "pi/3"},
		{math.Pi / 4, "pi/4"},
		{math.Pi / 6, "pi/6"},
		{math.Pi / 8, "pi/8"},
		{3 * math.Pi / 4, "3*pi/4"},
		{3 * math.Pi / 2, "3*pi/2"},
		{2 * math.Pi / 3, "2*pi/3"},
	}
	for _, f := range forms {
		if math.Abs(v-f.value) < 1e-10 {
			return f.display
		}
		if math.Abs(v+f.value) < 1e-10 {
			return "-" + f.display
		}
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}
