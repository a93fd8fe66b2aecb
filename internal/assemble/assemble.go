// Package assemble joins a header, optional parameter declarations and the
// ordered fragments into one OpenQASM program.
package assemble

import (
	"fmt"
	"io"
	"strings"

	"pauliqasm/internal/reduce"
	"pauliqasm/internal/synth"
)

// Version is the OpenQASM dialect of the emitted header.
type Version int

const (
	V2 Version = 2
	V3 Version = 3
)

func (v Version) Valid() bool { return v == V2 || v == V3 }

// Header returns the preamble declaring qubits quantum and classical bits.
func Header(v Version, qubits int) string {
	if v == V3 {
		return fmt.Sprintf("OPENQASM 3.0;\ninclude \"stdgates.inc\";\nqubit[%d] q;\nbit[%d] c;\n", qubits, qubits)
	}
	return fmt.Sprintf("OPENQASM 2.0;\ninclude \"qelib1.inc\";\nqreg q[%d];\ncreg c[%d];\n", qubits, qubits)
}

// Program is an assembled, immutable OpenQASM text.
type Program struct {
	Version   Version
	Qubits    int
	Params    []uint64
	Fragments []reduce.Result
	text      string
}

// Assemble builds the program. params is nil when the output is not
// parameterized; declarations then are omitted.
func Assemble(v Version, qubits int, params []uint64, fragments []reduce.Result) *Program {
	var sb strings.Builder
	sb.WriteString(Header(v, qubits))
	for _, tag := range params {
		fmt.Fprintf(&sb, "input float %s;\n", synth.ParamName(tag))
	}
	for _, f := range fragments {
		sb.WriteString(f.Fragment)
	}
	return &Program{
		Version:   v,
		Qubits:    qubits,
		Params:    params,
		Fragments: fragments,
		text:      sb.String(),
	}
}

func (p *Program) String() string { return p.text }

func (p *Program) Len() int { return len(p.text) }

// WriteTo implements io.WriterTo.
func (p *Program) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, p.text)
	return int64(n), err
}
