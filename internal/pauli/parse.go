package pauli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Reasons reported to the user, one per rejection rule.
const (
	reasonWrongFormat    = "Wrong format!"
	reasonNoOperator     = "No operator provided!"
	reasonLengthMismatch = "Non-matching length of string representation!"
	reasonZeroCoef       = "Zero coefficient!"
	reasonNegativeTag    = "Negative parameter!"
	reasonTagOutOfBound  = "Parameter out of bound!"
	reasonUnsupported    = "Unsupported character instruction!"
	reasonTooManyAxes    = "Too many Pauli basis categories!"
)

// maxLineBytes bounds a single input line; Pauli strings for large registers
// easily exceed bufio's 64 KiB default.
const maxLineBytes = 16 << 20

// coefPattern is the plain decimal syntax accepted for coefficients. It
// excludes strconv extras such as hex floats, digit separators, Inf and NaN.
var coefPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// rawLine holds the three fields of a line before validation.
type rawLine struct {
	pauli       string
	coef        float32
	tag         uint64
	tagNegative bool
	tagOverflow bool
}

// splitFields extracts the string token, coefficient and tag. Any count or
// type mismatch is reported as a malformed line.
func splitFields(seq uint64, line string) (rawLine, error) {
	var rl rawLine
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return rl, newLineError(seq, MalformedLine, reasonWrongFormat)
	}
	rl.pauli = fields[0]

	if !coefPattern.MatchString(fields[1]) {
		return rl, newLineError(seq, MalformedLine, reasonWrongFormat)
	}
	coef, err := strconv.ParseFloat(fields[1], 32)
	if err != nil || math.IsInf(coef, 0) {
		return rl, newLineError(seq, MalformedLine, reasonWrongFormat)
	}
	// A non-zero literal that rounds to zero is out of range, not zero.
	if coef == 0 && hasNonZeroMantissa(fields[1]) {
		return rl, newLineError(seq, MalformedLine, reasonWrongFormat)
	}
	rl.coef = float32(coef)

	tag := fields[2]
	if strings.HasPrefix(tag, "-") {
		n, err := strconv.ParseInt(tag, 10, 64)
		switch {
		case err == nil && n == 0:
			return rl, nil
		case err == nil, errors.Is(err, strconv.ErrRange):
			rl.tagNegative = true
			return rl, nil
		default:
			return rl, newLineError(seq, MalformedLine, reasonWrongFormat)
		}
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(tag, "+"), 10, 64)
	switch {
	case err == nil:
		rl.tag = v
		rl.tagOverflow = v == math.MaxUint64
	case errors.Is(err, strconv.ErrRange):
		rl.tagOverflow = true
	default:
		return rl, newLineError(seq, MalformedLine, reasonWrongFormat)
	}
	return rl, nil
}

func hasNonZeroMantissa(tok string) bool {
	if i := strings.IndexAny(tok, "eE"); i >= 0 {
		tok = tok[:i]
	}
	return strings.ContainsAny(tok, "123456789")
}

// ParseLine parses and validates one line against an established qubit count.
func ParseLine(seq uint64, line string, qubits int) (Operator, error) {
	rl, err := splitFields(seq, line)
	if err != nil {
		return Operator{}, err
	}
	return validate(seq, rl, qubits)
}

func validate(seq uint64, rl rawLine, qubits int) (Operator, error) {
	switch {
	case rl.pauli == "":
		return Operator{}, newLineError(seq, MalformedLine, reasonNoOperator)
	case len(rl.pauli) != qubits:
		return Operator{}, newLineError(seq, QubitCountMismatch, reasonLengthMismatch)
	case rl.coef == 0:
		return Operator{}, newLineError(seq, ZeroCoefficient, reasonZeroCoef)
	case rl.tagNegative:
		return Operator{}, newLineError(seq, InvalidParameterTag, reasonNegativeTag)
	case rl.tagOverflow:
		return Operator{}, newLineError(seq, InvalidParameterTag, reasonTagOutOfBound)
	}

	tag := rl.tag
	if tag == 0 {
		tag = seq
	}
	return Operator{Seq: seq, Pauli: rl.pauli, Coefficient: rl.coef, Tag: tag}, nil
}

// Parser accumulates operators line by line. The first line fixes the qubit
// count for every later line.
type Parser struct {
	qubits int
	seq    uint64
	ops    []Operator
	params ParamSet
}

// Parse consumes the next input line.
func (p *Parser) Parse(line string) error {
	p.seq++
	if p.seq == 1 {
		if fields := strings.Fields(line); len(fields) > 0 {
			p.qubits = len(fields[0])
		}
	}
	op, err := ParseLine(p.seq, line, p.qubits)
	if err != nil {
		return err
	}
	p.ops = append(p.ops, op)
	p.params.Add(op.Tag)
	return nil
}

// QubitCount returns the qubit count fixed by the first line (0 before it).
func (p *Parser) QubitCount() int { return p.qubits }

// Operators returns the parsed operators in input order.
func (p *Parser) Operators() []Operator { return p.ops }

// Params returns the distinct parameter tags seen so far.
func (p *Parser) Params() *ParamSet { return &p.params }

// Input is the complete, validated content of one source.
type Input struct {
	Qubits    int
	Operators []Operator
	Params    *ParamSet
}

// ReadOperators parses every line of r. The first invalid line aborts the
// read and nothing parsed so far is returned.
func ReadOperators(r io.Reader) (*Input, error) {
	var p Parser
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		if err := p.Parse(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read operators: %w", err)
	}
	if len(p.Operators()) == 0 {
		return nil, ErrNoOperators
	}
	return &Input{Qubits: p.QubitCount(), Operators: p.Operators(), Params: p.Params()}, nil
}
