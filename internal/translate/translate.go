// Package translate is the translator's entry point: read and validate the
// operator lines, synthesize every fragment through the selected strategy,
// assemble the program and optionally persist it.
package translate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"pauliqasm/internal/assemble"
	"pauliqasm/internal/config"
	"pauliqasm/internal/pauli"
	"pauliqasm/internal/reduce"
	"pauliqasm/internal/synth"
)

// Stats describes one run.
type Stats struct {
	Operators int
	Fragments int
	Qubits    int
	Params    int
	Strategy  string
	Workers   int
	Bytes     int

	Parse    time.Duration
	Reduce   time.Duration
	Assemble time.Duration
}

// Total is the wall time of the three stages.
func (s Stats) Total() time.Duration { return s.Parse + s.Reduce + s.Assemble }

// Result carries the program and the statistics of the run that built it.
type Result struct {
	Program *assemble.Program
	Stats   Stats
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Run translates the operator lines read from r. On any error no program is
// returned. A nil logger discards.
func Run(ctx context.Context, r io.Reader, opts config.Options, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = discard()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	strategy, err := reduce.ByName(opts.Strategy, opts.Workers)
	if err != nil {
		return nil, err
	}

	st := Stats{Strategy: strategy.Name(), Workers: opts.Workers}
	switch {
	case st.Strategy == reduce.NameSequential:
		st.Workers = 1
	case st.Workers <= 0:
		st.Workers = runtime.NumCPU()
	}

	start := time.Now()
	in, err := pauli.ReadOperators(r)
	st.Parse = time.Since(start)
	if err != nil {
		log.Error("parse failed", "err", err, "elapsed", st.Parse)
		return nil, err
	}
	st.Operators = len(in.Operators)
	st.Qubits = in.Qubits
	log.Info("parsed", "operators", st.Operators, "qubits", st.Qubits, "params", in.Params.Len(), "elapsed", st.Parse)

	syn := synth.New(opts.Multiplier, opts.Parameterize)
	fn := reduce.Func(syn.Transform)
	if log.Enabled(ctx, config.LevelTrace) {
		fn = traced(ctx, log, fn)
	}

	start = time.Now()
	frags, err := strategy.Reduce(ctx, in.Operators, fn)
	st.Reduce = time.Since(start)
	if err != nil {
		log.Error("reduce failed", "strategy", st.Strategy, "err", err, "elapsed", st.Reduce)
		return nil, err
	}
	for _, f := range frags {
		if f.Fragment != "" {
			st.Fragments++
		}
	}
	log.Info("reduced", "strategy", st.Strategy, "workers", st.Workers, "fragments", st.Fragments, "elapsed", st.Reduce)

	var params []uint64
	if opts.Parameterize {
		params = in.Params.Tags()
		st.Params = len(params)
	}

	start = time.Now()
	prog := assemble.Assemble(assemble.Version(opts.Version), in.Qubits, params, frags)
	st.Assemble = time.Since(start)
	st.Bytes = prog.Len()
	log.Info("assembled", "version", opts.Version, "bytes", st.Bytes, "elapsed", st.Assemble)

	return &Result{Program: prog, Stats: st}, nil
}

func traced(ctx context.Context, log *slog.Logger, fn reduce.Func) reduce.Func {
	return func(op pauli.Operator) (string, error) {
		frag, err := fn(op)
		log.Log(ctx, config.LevelTrace, "operator", "line", op.Seq, "pauli", op.Pauli, "bytes", len(frag), "err", err)
		return frag, err
	}
}

// File translates opts.Input. When opts.Output is set the program is
// written there, and only after the whole run succeeded.
func File(ctx context.Context, opts config.Options, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = discard()
	}
	f, err := openInput(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	res, err := Run(ctx, f, opts, log)
	if err != nil {
		return nil, err
	}
	if opts.Output != "" {
		if err := Persist(ctx, opts.Output, res.Program); err != nil {
			return nil, fmt.Errorf("write output: %w", err)
		}
		log.Info("written", "path", opts.Output, "bytes", res.Stats.Bytes)
	}
	return res, nil
}
