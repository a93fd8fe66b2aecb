// Package circuit reads the OpenQASM subset the translator emits back into
// a step-layered gate list for display and simulation.
package circuit

// Gate is one placed operation.
type Gate struct {
	Type    string // upper case: "RY", "CX", "MEASURE", "BARRIER", ...
	Target  int    // -1 for barriers
	Control int    // -1 if not a two-qubit gate
	Params  []Angle
	Step    int
	Segment int // index into Circuit.Segments, -1 outside any operator
	Line    int // 1-based line in the program text
}

// IsBarrier reports whether the gate spans every qubit.
func (g Gate) IsBarrier() bool { return g.Type == "BARRIER" }

// References reports whether the gate touches qubit.
func (g Gate) References(qubit int) bool {
	return g.IsBarrier() || g.Target == qubit || g.Control == qubit
}

// Qubits lists the qubits the gate acts on; barriers return nil.
func (g Gate) Qubits() []int {
	if g.IsBarrier() {
		return nil
	}
	if g.Control >= 0 {
		return []int{g.Control, g.Target}
	}
	return []int{g.Target}
}

// Segment is the run of gates synthesized for one input operator.
type Segment struct {
	Line      uint64 // input line named by the operator comment
	FirstGate int
	LastGate  int // inclusive; LastGate < FirstGate for an empty segment
	FirstStep int
	LastStep  int
}

// Len is the number of gates in the segment.
func (s Segment) Len() int { return s.LastGate - s.FirstGate + 1 }

// Circuit is a parsed program.
type Circuit struct {
	Version   int
	NumQubits int
	Params    []string // declared inputs in declaration order
	Gates     []Gate
	Segments  []Segment
	MaxSteps  int
}

// GateAt returns the gate at (step, qubit), or nil.
func (c *Circuit) GateAt(step, qubit int) *Gate {
	gates := c.GatesAt(step)
	for i := range gates {
		if gates[i].References(qubit) {
			return &gates[i]
		}
	}
	return nil
}

// GatesAt returns the gates placed at step. Gates are stored in step order,
// so the result is a sub-slice of Gates.
func (c *Circuit) GatesAt(step int) []Gate {
	lo, hi := -1, -1
	for i, g := range c.Gates {
		if g.Step == step {
			if lo < 0 {
				lo = i
			}
			hi = i + 1
		} else if g.Step > step {
			break
		}
	}
	if lo < 0 {
		return nil
	}
	return c.Gates[lo:hi]
}

// SegmentAtStep returns the index of the segment covering step, or -1.
func (c *Circuit) SegmentAtStep(step int) int {
	for i, s := range c.Segments {
		if s.Len() > 0 && step >= s.FirstStep && step <= s.LastStep {
			return i
		}
	}
	return -1
}

// CountByType tallies gates per type.
func (c *Circuit) CountByType() map[string]int {
	counts := make(map[string]int)
	for _, g := range c.Gates {
		counts[g.Type]++
	}
	return counts
}
