package circuit

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrMissingHeader        = errors.New("missing OPENQASM header")
	ErrUnsupportedStatement = errors.New("unsupported statement")
	ErrQubitRange           = errors.New("qubit out of range")
)

// ParseError names the program line a read failed on.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("qasm line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	versionRegex   = regexp.MustCompile(`^OPENQASM\s+(\d+)(?:\.\d+)?;$`)
	qregRegex      = regexp.MustCompile(`^qreg\s+(\w+)\[(\d+)\];$`)
	qubitDeclRegex = regexp.MustCompile(`^qubit\[(\d+)\]\s+(\w+);$`)
	cregRegex      = regexp.MustCompile(`^(?:creg\s+\w+\[\d+\]|bit\[\d+\]\s+\w+);$`)
	inputRegex     = regexp.MustCompile(`^input\s+(?:float|angle)(?:\[\d+\])?\s+(\w+);$`)
	segmentRegex   = regexp.MustCompile(`^//\s*New operator from line\s+(\d+)$`)

	singleGateRegex      = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\];$`)
	singleGateParamRegex = regexp.MustCompile(`^(\w+)\s*\(([^()]*)\)\s+q\[(\d+)\];$`)
	twoQubitRegex        = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\];$`)
	measureRegex         = regexp.MustCompile(`^measure\s+q\[(\d+)\]\s*->\s*\w+\[\d+\];$`)
	measureV3Regex       = regexp.MustCompile(`^\w+\[\d+\]\s*=\s*measure\s+q\[(\d+)\];$`)
	barrierRegex         = regexp.MustCompile(`^barrier\b`)
)

var (
	singleGates = map[string]bool{"H": true, "X": true, "Y": true, "Z": true, "S": true, "SDG": true, "T": true, "TDG": true}
	paramGates  = map[string]bool{"RX": true, "RY": true, "RZ": true, "P": true, "U1": true}
	twoGates    = map[string]bool{"CX": true, "CZ": true, "SWAP": true}
)

// Read parses a program from r.
func Read(r io.Reader) (*Circuit, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return parseLines(lines)
}

// Parse parses program text.
func Parse(qasm string) (*Circuit, error) {
	return Read(strings.NewReader(qasm))
}

// layout assigns steps the way the editor lays gates out: single-qubit
// gates share a step until a qubit repeats, multi-qubit gates and operator
// boundaries open a new step, barriers get a step of their own.
type layout struct {
	step int
	used map[int]bool
}

func (l *layout) advance() {
	if len(l.used) > 0 {
		l.step++
		l.used = make(map[int]bool)
	}
}

func (l *layout) place(g *Gate) {
	if g.IsBarrier() {
		l.advance()
		g.Step = l.step
		l.step++
		l.used = make(map[int]bool)
		return
	}
	qs := g.Qubits()
	if len(qs) > 1 {
		l.advance()
	} else {
		for _, q := range qs {
			if l.used[q] {
				l.advance()
				break
			}
		}
	}
	g.Step = l.step
	for _, q := range qs {
		l.used[q] = true
	}
}

func parseLines(lines []string) (*Circuit, error) {
	c := &Circuit{}
	l := layout{used: make(map[int]bool)}
	seg := -1

	closeSegment := func() {
		if seg < 0 {
			return
		}
		s := &c.Segments[seg]
		s.LastGate = len(c.Gates) - 1
		if s.Len() > 0 {
			s.LastStep = c.Gates[s.LastGate].Step
		}
	}

	for i, raw := range lines {
		n := i + 1
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		fail := func(err error) (*Circuit, error) {
			return nil, &ParseError{Line: n, Text: line, Err: err}
		}

		if c.Version == 0 {
			if strings.HasPrefix(line, "//") {
				continue
			}
			m := versionRegex.FindStringSubmatch(line)
			if m == nil {
				return fail(ErrMissingHeader)
			}
			c.Version, _ = strconv.Atoi(m[1])
			continue
		}

		if strings.HasPrefix(line, "//") {
			if m := segmentRegex.FindStringSubmatch(line); m != nil {
				closeSegment()
				l.advance()
				src, _ := strconv.ParseUint(m[1], 10, 64)
				c.Segments = append(c.Segments, Segment{Line: src, FirstGate: len(c.Gates), FirstStep: l.step, LastStep: l.step})
				seg = len(c.Segments) - 1
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "include"), cregRegex.MatchString(line):
			continue
		case qregRegex.MatchString(line):
			m := qregRegex.FindStringSubmatch(line)
			c.NumQubits, _ = strconv.Atoi(m[2])
			continue
		case qubitDeclRegex.MatchString(line):
			m := qubitDeclRegex.FindStringSubmatch(line)
			c.NumQubits, _ = strconv.Atoi(m[1])
			continue
		case inputRegex.MatchString(line):
			c.Params = append(c.Params, inputRegex.FindStringSubmatch(line)[1])
			continue
		}

		g, err := parseGate(line)
		if err != nil {
			return fail(err)
		}
		for _, q := range g.Qubits() {
			if q >= c.NumQubits {
				return fail(fmt.Errorf("%w: q[%d] of %d", ErrQubitRange, q, c.NumQubits))
			}
		}
		g.Line = n
		g.Segment = seg
		l.place(&g)
		c.Gates = append(c.Gates, g)
	}
	if c.Version == 0 {
		return nil, &ParseError{Line: len(lines), Err: ErrMissingHeader}
	}
	closeSegment()
	if len(c.Gates) > 0 {
		c.MaxSteps = c.Gates[len(c.Gates)-1].Step + 1
	}
	return c, nil
}

func parseGate(line string) (Gate, error) {
	g := Gate{Target: -1, Control: -1}

	if barrierRegex.MatchString(line) {
		g.Type = "BARRIER"
		return g, nil
	}
	if m := measureRegex.FindStringSubmatch(line); m != nil {
		g.Type = "MEASURE"
		g.Target, _ = strconv.Atoi(m[1])
		return g, nil
	}
	if m := measureV3Regex.FindStringSubmatch(line); m != nil {
		g.Type = "MEASURE"
		g.Target, _ = strconv.Atoi(m[1])
		return g, nil
	}
	if m := twoQubitRegex.FindStringSubmatch(line); m != nil {
		g.Type = strings.ToUpper(m[1])
		if !twoGates[g.Type] {
			return g, ErrUnsupportedStatement
		}
		g.Control, _ = strconv.Atoi(m[2])
		g.Target, _ = strconv.Atoi(m[3])
		if g.Control == g.Target {
			return g, fmt.Errorf("%w: control equals target", ErrUnsupportedStatement)
		}
		return g, nil
	}
	if m := singleGateParamRegex.FindStringSubmatch(line); m != nil {
		g.Type = strings.ToUpper(m[1])
		if !paramGates[g.Type] {
			return g, ErrUnsupportedStatement
		}
		a, err := ParseAngle(m[2])
		if err != nil {
			return g, err
		}
		g.Params = []Angle{a}
		g.Target, _ = strconv.Atoi(m[3])
		return g, nil
	}
	if m := singleGateRegex.FindStringSubmatch(line); m != nil {
		g.Type = strings.ToUpper(m[1])
		if !singleGates[g.Type] {
			return g, ErrUnsupportedStatement
		}
		g.Target, _ = strconv.Atoi(m[2])
		return g, nil
	}
	return g, ErrUnsupportedStatement
}
