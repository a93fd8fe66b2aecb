package reduce

import (
	"context"
	"sync"

	"pauliqasm/internal/pauli"
)

// Pool runs a fixed set of workers fed through a bounded channel. Workers
// hand fragments back over a second channel to a single collector, which
// releases them in input order.
type Pool struct {
	Workers int
}

func (Pool) Name() string { return NamePool }

func (p Pool) Reduce(ctx context.Context, ops []pauli.Operator, fn Func) ([]Result, error) {
	if len(ops) == 0 {
		return []Result{}, ctx.Err()
	}
	n := workerCount(p.Workers, len(ops))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type job struct {
		idx int
		op  pauli.Operator
	}
	type res struct {
		idx  int
		frag string
		ok   bool
	}
	// Twice the worker count gives natural backpressure.
	inCh := make(chan job, n*2)
	outCh := make(chan res, n*2)
	g := newGuard()

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			for j := range inCh {
				if ctx.Err() != nil {
					continue
				}
				frag, ok := g.run(j.op, fn)
				outCh <- res{idx: j.idx, frag: frag, ok: ok}
			}
		}()
	}

	go func() {
		defer close(inCh)
		for i, op := range ops {
			select {
			case <-ctx.Done():
				return
			case inCh <- job{idx: i, op: op}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Release gate: park out-of-order results until the next index arrives.
	out := make([]Result, 0, len(ops))
	pending := make(map[int]string)
	expect := 0
	for r := range outCh {
		if !r.ok {
			continue
		}
		pending[r.idx] = r.frag
		for {
			frag, ok := pending[expect]
			if !ok {
				break
			}
			delete(pending, expect)
			out = append(out, Result{Seq: ops[expect].Seq, Fragment: frag})
			expect++
		}
	}

	if err := g.Err(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
