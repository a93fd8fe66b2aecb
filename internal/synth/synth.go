// Package synth emits the OpenQASM fragment realising exp(-iθ·P/2) for one
// Pauli operator: basis changes into Z, a CNOT ladder onto the pivot qubit, a
// single rz on the pivot, then the mirror image.
package synth

import (
	"fmt"
	"strings"

	"pauliqasm/internal/pauli"
)

// DefaultMultiplier is the literal prefix used when no multiplier is configured.
// exp(-i·c·P) is a rotation by θ = 2c.
const DefaultMultiplier = "2*"

// Synthesizer turns classified operators into OpenQASM text. It holds no
// mutable state and is safe for concurrent use.
type Synthesizer struct {
	mult         string
	parameterize bool
}

// New returns a Synthesizer. A nil multiplier selects DefaultMultiplier.
func New(multiplier *float64, parameterize bool) *Synthesizer {
	mult := DefaultMultiplier
	if multiplier != nil {
		mult = MultiplierLiteral(*multiplier)
	}
	return &Synthesizer{mult: mult, parameterize: parameterize}
}

// ParamName is the symbolic angle name shared by every operator with tag.
func ParamName(tag uint64) string {
	return fmt.Sprintf("param%d", tag)
}

// layer is one before/after pair wrapped around everything built so far.
type layer struct {
	before string
	after  string
}

// sandwich builds a fragment that reads the same gate sequence outward from
// its centre in both directions.
type sandwich struct {
	center string
	layers []layer
}

func (s *sandwich) wrap(before, after string) {
	s.layers = append(s.layers, layer{before: before, after: after})
}

func (s *sandwich) writeTo(sb *strings.Builder) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		sb.WriteString(s.layers[i].before)
	}
	sb.WriteString(s.center)
	for _, l := range s.layers {
		sb.WriteString(l.after)
	}
}

// basis returns the rotation pair mapping an axis eigenbasis onto Z and back.
// Index 0 is X, 1 is Y, 2 is Z; Z needs no rotation.
func basis(axis, q int) (before, after string) {
	switch axis {
	case 0:
		return fmt.Sprintf("ry(pi/2) q[%d];\n", q-1), fmt.Sprintf("ry(-pi/2) q[%d];\n", q-1)
	case 1:
		return fmt.Sprintf("rx(-pi/2) q[%d];\n", q-1), fmt.Sprintf("rx(pi/2) q[%d];\n", q-1)
	default:
		return "", ""
	}
}

func cnot(control, target int) string {
	return fmt.Sprintf("cx q[%d], q[%d];\n", control-1, target-1)
}

// angle renders the rz argument for op.
func (s *Synthesizer) angle(op pauli.Operator) string {
	if s.parameterize {
		return s.mult + CoefficientLiteral(op.Coefficient) + "*" + ParamName(op.Tag)
	}
	return s.mult + CoefficientLiteral(op.Coefficient)
}

// Fragment synthesizes the gates for op. An all-identity operator yields "".
func (s *Synthesizer) Fragment(op pauli.Operator, c pauli.Classified) (string, error) {
	pivot := c.Pivot()
	if pivot == 0 {
		return "", nil
	}

	sw := sandwich{center: fmt.Sprintf("rz(%s) q[%d];\n", s.angle(op), pivot-1)}
	var pivotBefore, pivotAfter string

	axes := c.Axes()
	if len(axes) != 3 {
		return "", pauli.TooManyAxesError(op.Seq)
	}
	for axis, positions := range axes {
		for _, q := range positions {
			before, after := basis(axis, q)
			if q == pivot {
				pivotBefore, pivotAfter = before, after
				continue
			}
			cx := cnot(q, pivot)
			sw.wrap(before+cx, cx+after)
		}
	}
	// The pivot's own basis change is the outermost layer so it happens
	// before any CNOT targets it.
	sw.wrap(pivotBefore, pivotAfter)

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n// New operator from line %d\n", op.Seq)
	sw.writeTo(&sb)
	return sb.String(), nil
}

// Transform classifies and synthesizes op. It is the per-record unit of work
// and depends on nothing but its argument.
func (s *Synthesizer) Transform(op pauli.Operator) (string, error) {
	c, err := pauli.Classify(op)
	if err != nil {
		return "", err
	}
	return s.Fragment(op, c)
}
