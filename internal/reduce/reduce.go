// Package reduce runs the per-operator transform over a whole input and
// gathers the fragments back in line order.
//
// Three strategies share one contract:
//   - the transform is pure and may run on any goroutine in any order;
//   - the result slice is ordered by ascending Seq;
//   - a failure aborts the reduction and the error reported is the one from
//     the lowest failing Seq, whichever worker saw it first. Records above a
//     known failure are skipped; records below it still run.
package reduce

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"pauliqasm/internal/pauli"
)

// Func is the per-record unit of work.
type Func func(op pauli.Operator) (string, error)

// Result is one synthesized fragment keyed by its input line.
type Result struct {
	Seq      uint64
	Fragment string
}

// Strategy reduces ops with fn into an ordered result list.
type Strategy interface {
	Name() string
	Reduce(ctx context.Context, ops []pauli.Operator, fn Func) ([]Result, error)
}

const (
	NameSequential = "sequential"
	NamePool       = "pool"
	NameFanOut     = "fanout"
)

// ErrUnknownStrategy is returned by ByName for an unrecognised name.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Names lists the accepted strategy names.
func Names() []string {
	return []string{NameSequential, NamePool, NameFanOut}
}

// ByName builds a strategy. workers <= 0 selects runtime.NumCPU().
func ByName(name string, workers int) (Strategy, error) {
	switch name {
	case NameSequential:
		return Sequential{}, nil
	case NamePool:
		return Pool{Workers: workers}, nil
	case NameFanOut:
		return FanOut{Limit: workers}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

func workerCount(n, jobs int) int {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > jobs {
		n = jobs
	}
	if n < 1 {
		n = 1
	}
	return n
}

// guard tracks the lowest failing Seq seen by any worker.
type guard struct {
	lowest atomic.Uint64
	mu     sync.Mutex
	err    error
}

func newGuard() *guard {
	g := &guard{}
	g.lowest.Store(math.MaxUint64)
	return g
}

// skip reports whether seq can no longer affect the outcome.
func (g *guard) skip(seq uint64) bool {
	return seq > g.lowest.Load()
}

func (g *guard) fail(seq uint64, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if seq < g.lowest.Load() {
		g.lowest.Store(seq)
		g.err = err
	}
}

func (g *guard) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// run applies fn to op unless a lower record already failed.
func (g *guard) run(op pauli.Operator, fn Func) (string, bool) {
	if g.skip(op.Seq) {
		return "", false
	}
	frag, err := fn(op)
	if err != nil {
		g.fail(op.Seq, err)
		return "", false
	}
	return frag, true
}

// Sequential is the reference strategy: one record after another on the
// calling goroutine.
type Sequential struct{}

func (Sequential) Name() string { return NameSequential }

func (Sequential) Reduce(ctx context.Context, ops []pauli.Operator, fn Func) ([]Result, error) {
	out := make([]Result, 0, len(ops))
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frag, err := fn(op)
		if err != nil {
			return nil, err
		}
		out = append(out, Result{Seq: op.Seq, Fragment: frag})
	}
	return out, nil
}
