package circuit

import (
	"fmt"
	"math"
	"math/cmplx"
)

// MaxSimQubits bounds the state vector the simulator will allocate.
const MaxSimQubits = 20

type StateVector struct {
	Amplitudes []complex128
	NumQubits  int
}

// NewStateVector returns |0...0>. Qubit q is bit q of the basis index.
func NewStateVector(numQubits int) *StateVector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

func (s *StateVector) Clone() *StateVector {
	amps := make([]complex128, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// matrix is a single-qubit operator in the {|0>, |1>} basis.
type matrix [2][2]complex128

// apply1 applies m to qubit q.
func (s *StateVector) apply1(q int, m matrix) {
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
		s.Amplitudes[i] = m[0][0]*a0 + m[0][1]*a1
		s.Amplitudes[j] = m[1][0]*a0 + m[1][1]*a1
	}
}

func rx(theta float64) matrix {
	c, sn := complex(math.Cos(theta/2), 0), complex(0, -math.Sin(theta/2))
	return matrix{{c, sn}, {sn, c}}
}

func ry(theta float64) matrix {
	c, sn := complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
	return matrix{{c, -sn}, {sn, c}}
}

func rz(theta float64) matrix {
	ph := cmplx.Exp(complex(0, theta/2))
	return matrix{{cmplx.Conj(ph), 0}, {0, ph}}
}

func phase(theta float64) matrix {
	return matrix{{1, 0}, {0, cmplx.Exp(complex(0, theta))}}
}

var fixedGates = map[string]matrix{
	"H":   {{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)}, {complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)}},
	"X":   {{0, 1}, {1, 0}},
	"Y":   {{0, -1i}, {1i, 0}},
	"Z":   {{1, 0}, {0, -1}},
	"S":   {{1, 0}, {0, 1i}},
	"SDG": {{1, 0}, {0, -1i}},
	"T":   {{1, 0}, {0, cmplx.Exp(complex(0, math.Pi/4))}},
	"TDG": {{1, 0}, {0, cmplx.Exp(complex(0, -math.Pi/4))}},
}

func (s *StateVector) applyCX(control, target int) {
	cBit, tBit := 1<<control, 1<<target
	for i := range s.Amplitudes {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyCZ(control, target int) {
	cBit, tBit := 1<<control, 1<<target
	for i := range s.Amplitudes {
		if i&cBit != 0 && i&tBit != 0 {
			s.Amplitudes[i] = -s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applySWAP(q1, q2 int) {
	bit1, bit2 := 1<<q1, 1<<q2
	for i := range s.Amplitudes {
		if i&bit1 != 0 && i&bit2 == 0 {
			j := (i &^ bit1) | bit2
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// ApplyGate applies g, evaluating any symbolic angle against b. Measurements
// and barriers leave the state unchanged.
func (s *StateVector) ApplyGate(g Gate, b Bindings) error {
	if m, ok := fixedGates[g.Type]; ok {
		s.apply1(g.Target, m)
		return nil
	}
	switch g.Type {
	case "RX", "RY", "RZ", "P", "U1":
		if len(g.Params) != 1 {
			return fmt.Errorf("%s on line %d: want one angle", g.Type, g.Line)
		}
		theta, err := g.Params[0].Eval(b)
		if err != nil {
			return fmt.Errorf("%s on line %d: %w", g.Type, g.Line, err)
		}
		switch g.Type {
		case "RX":
			s.apply1(g.Target, rx(theta))
		case "RY":
			s.apply1(g.Target, ry(theta))
		case "RZ":
			s.apply1(g.Target, rz(theta))
		default:
			s.apply1(g.Target, phase(theta))
		}
	case "CX":
		s.applyCX(g.Control, g.Target)
	case "CZ":
		s.applyCZ(g.Control, g.Target)
	case "SWAP":
		s.applySWAP(g.Control, g.Target)
	case "MEASURE", "BARRIER":
	default:
		return fmt.Errorf("%s on line %d: %w", g.Type, g.Line, ErrUnsupportedStatement)
	}
	return nil
}

// Run applies every gate with Step <= upToStep (all gates when upToStep < 0)
// to s in program order.
func (c *Circuit) Run(s *StateVector, b Bindings, upToStep int) error {
	if s.NumQubits != c.NumQubits {
		return fmt.Errorf("state has %d qubits, circuit %d", s.NumQubits, c.NumQubits)
	}
	for _, g := range c.Gates {
		if upToStep >= 0 && g.Step > upToStep {
			break
		}
		if err := s.ApplyGate(g, b); err != nil {
			return err
		}
	}
	return nil
}

// Simulate runs the circuit from |0...0>.
func Simulate(c *Circuit, b Bindings, upToStep int) (*StateVector, error) {
	if c.NumQubits == 0 {
		return NewStateVector(1), nil
	}
	if c.NumQubits > MaxSimQubits {
		return nil, fmt.Errorf("%d qubits exceeds the simulator limit of %d", c.NumQubits, MaxSimQubits)
	}
	s := NewStateVector(c.NumQubits)
	if err := c.Run(s, b, upToStep); err != nil {
		return nil, err
	}
	return s, nil
}

type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// QubitProbabilities returns the marginal probability of each qubit.
func (s *StateVector) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)
	for i, a := range s.Amplitudes {
		p := real(a * cmplx.Conj(a))
		for q := 0; q < s.NumQubits; q++ {
			if i&(1<<q) != 0 {
				probs[q].Prob1 += p
			} else {
				probs[q].Prob0 += p
			}
		}
	}
	return probs
}
