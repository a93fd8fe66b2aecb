package translate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pauliqasm/internal/config"
	"pauliqasm/internal/pauli"
	"pauliqasm/internal/reduce"
)

func opts(edit func(*config.Options)) config.Options {
	o := config.Default()
	o.Workers = 4
	if edit != nil {
		edit(&o)
	}
	return o
}

func TestRunSingleOperator(t *testing.T) {
	res, err := Run(context.Background(), strings.NewReader("XZ 1.0 1\n"), opts(nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	want := "OPENQASM 2.0;\ninclude \"qelib1.inc\";\nqreg q[2];\ncreg c[2];\n" +
		"\n// New operator from line 1\n" +
		"ry(pi/2) q[0];\ncx q[0], q[1];\nrz(2*1) q[1];\ncx q[0], q[1];\nry(-pi/2) q[0];\n"
	if got := res.Program.String(); got != want {
		t.Errorf("program mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
	if res.Stats.Operators != 1 || res.Stats.Fragments != 1 || res.Stats.Qubits != 2 || res.Stats.Params != 0 {
		t.Errorf("unexpected stats: %+v", res.Stats)
	}
}

func TestRunParameterizedV3(t *testing.T) {
	in := "XX 0.5 0\nYY 0.25 7\nZZ -1 7\nII 3 2\n"
	res, err := Run(context.Background(), strings.NewReader(in), opts(func(o *config.Options) {
		o.Version = 3
		o.Parameterize = true
	}), nil)
	if err != nil {
		t.Fatal(err)
	}
	prog := res.Program.String()
	wantHead := "OPENQASM 3.0;\ninclude \"stdgates.inc\";\nqubit[2] q;\nbit[2] c;\n" +
		"input float param1;\ninput float param7;\ninput float param2;\n"
	if !strings.HasPrefix(prog, wantHead) {
		t.Errorf("header mismatch:\n%s", prog)
	}
	for _, s := range []string{"rz(2*0.5*param1) q[1];", "rz(2*0.25*param7) q[1];", "rz(2*-1*param7) q[1];"} {
		if !strings.Contains(prog, s) {
			t.Errorf("missing %q", s)
		}
	}
	if strings.Contains(prog, "line 4") {
		t.Error("identity operator produced a fragment")
	}
	if res.Stats.Fragments != 3 || res.Stats.Params != 3 {
		t.Errorf("unexpected stats: %+v", res.Stats)
	}
}

func TestRunFragmentsInLineOrder(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 300; i++ {
		fmt.Fprintf(&sb, "%s %d 0\n", []string{"XYZI", "ZZII", "IXIY", "YIIZ"}[i%4], i+1)
	}
	prev := -1
	res, err := Run(context.Background(), strings.NewReader(sb.String()), opts(nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	for line := 1; line <= 300; line++ {
		idx := strings.Index(res.Program.String(), fmt.Sprintf("// New operator from line %d\n", line))
		if idx <= prev {
			t.Fatalf("line %d out of order", line)
		}
		prev = idx
	}
}

func TestRunStrategiesAgree(t *testing.T) {
	var sb strings.Builder
	paulis := []string{"XYZIX", "IIZZY", "YXIIZ", "IIIII", "ZZZZZ", "XIXIX"}
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&sb, "%s %g %d\n", paulis[i%len(paulis)], float64(i%11)-5.5, i%9)
	}
	input := sb.String()

	var want string
	for _, name := range reduce.Names() {
		for _, workers := range []int{0, 1, 3} {
			res, err := Run(context.Background(), strings.NewReader(input), opts(func(o *config.Options) {
				o.Version = 3
				o.Parameterize = true
				o.Strategy = name
				o.Workers = workers
			}), nil)
			if err != nil {
				t.Fatalf("%s/%d: %v", name, workers, err)
			}
			got := res.Program.String()
			if want == "" {
				want = got
				continue
			}
			if got != want {
				t.Errorf("%s/%d: output differs from first strategy", name, workers)
			}
		}
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		line   uint64
		target error
	}{
		{"malformed after valid", "XZ 1.0 1\nXZ abc 1\n", 2, pauli.ErrMalformedLine},
		{"unsupported character", "XZ 1 1\nXQ 1 1\nZZ 1 1\n", 2, pauli.ErrUnsupportedCharacter},
		{"lowest unsupported wins", "XZ 1 1\nZZ 1 1\nAZ 1 1\nZB 1 1\n", 3, pauli.ErrUnsupportedCharacter},
		{"parse errors precede classification", "XA 1 1\nXZ 0 1\n", 2, pauli.ErrZeroCoefficient},
		{"negative tag", "XZ 1 -3\n", 1, pauli.ErrInvalidParameterTag},
	}
	for _, tt := range tests {
		for _, name := range reduce.Names() {
			t.Run(tt.name+"/"+name, func(t *testing.T) {
				res, err := Run(context.Background(), strings.NewReader(tt.in), opts(func(o *config.Options) { o.Strategy = name }), nil)
				if res != nil {
					t.Error("expected no result on error")
				}
				if !errors.Is(err, tt.target) {
					t.Fatalf("expected %v, got %v", tt.target, err)
				}
				var le *pauli.LineError
				if !errors.As(err, &le) || le.Line != tt.line {
					t.Errorf("expected line %d, got %v", tt.line, err)
				}
			})
		}
	}
}

func TestRunEmptyInput(t *testing.T) {
	if _, err := Run(context.Background(), strings.NewReader(""), opts(nil), nil); !errors.Is(err, pauli.ErrNoOperators) {
		t.Errorf("expected ErrNoOperators, got %v", err)
	}
}

func TestRunRejectsOptions(t *testing.T) {
	_, err := Run(context.Background(), strings.NewReader("XZ 1 1\n"), opts(func(o *config.Options) { o.Parameterize = true }), nil)
	if !errors.Is(err, config.ErrInvalidOptions) {
		t.Errorf("expected ErrInvalidOptions, got %v", err)
	}
}

func TestRunMultiplier(t *testing.T) {
	m := 0.5
	res, err := Run(context.Background(), strings.NewReader("ZI 4 1\n"), opts(func(o *config.Options) { o.Multiplier = &m }), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Program.String(), "rz(0.500000*4) q[0];") {
		t.Errorf("multiplier not applied:\n%s", res.Program)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, strings.NewReader("XZ 1 1\n"), opts(nil), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFileWritesOnlyOnSuccess(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "ops.txt")
	out := filepath.Join(dir, "out.qasm")

	if err := os.WriteFile(in, []byte("XZ 1 1\nYY 2 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := File(context.Background(), opts(func(o *config.Options) { o.Input = in; o.Output = out }), nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != res.Program.String() {
		t.Error("written file differs from program")
	}

	if err := os.WriteFile(in, []byte("XZ 1 1\nYY 0 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := File(context.Background(), opts(func(o *config.Options) { o.Input = in; o.Output = out }), nil); !errors.Is(err, pauli.ErrZeroCoefficient) {
		t.Fatalf("expected ErrZeroCoefficient, got %v", err)
	}
	after, _ := os.ReadFile(out)
	if string(after) != string(got) {
		t.Error("failed run touched the destination")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("expected only input and output in dir, got %d entries", len(entries))
	}
}

func TestFileMissingInput(t *testing.T) {
	_, err := File(context.Background(), opts(func(o *config.Options) { o.Input = filepath.Join(t.TempDir(), "missing") }), nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}
