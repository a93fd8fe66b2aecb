package reduce

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"pauliqasm/internal/pauli"
)

// Collection is the shared result set of a fan-out. Inserts are serialised
// by a mutex; Sorted orders by Seq once every writer has joined.
type Collection struct {
	mu      sync.Mutex
	results []Result
}

func NewCollection(capacity int) *Collection {
	return &Collection{results: make([]Result, 0, capacity)}
}

func (c *Collection) Insert(seq uint64, fragment string) {
	c.mu.Lock()
	c.results = append(c.results, Result{Seq: seq, Fragment: fragment})
	c.mu.Unlock()
}

func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

// Sorted returns a copy ordered by ascending Seq.
func (c *Collection) Sorted() []Result {
	c.mu.Lock()
	out := slices.Clone(c.results)
	c.mu.Unlock()
	slices.SortFunc(out, func(a, b Result) int { return cmp.Compare(a.Seq, b.Seq) })
	return out
}

// FanOut starts one goroutine per record, at most Limit at a time, all
// inserting into a single Collection.
type FanOut struct {
	Limit int
}

func (FanOut) Name() string { return NameFanOut }

func (f FanOut) Reduce(ctx context.Context, ops []pauli.Operator, fn Func) ([]Result, error) {
	coll := NewCollection(len(ops))
	g := newGuard()

	var eg errgroup.Group
	eg.SetLimit(workerCount(f.Limit, len(ops)))
	for _, op := range ops {
		if ctx.Err() != nil || g.skip(op.Seq) {
			break
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if frag, ok := g.run(op, fn); ok {
				coll.Insert(op.Seq, frag)
			}
			return nil
		})
	}
	// Record failures live in the guard so that a failure never cancels
	// lower records still in flight; eg only carries cancellation.
	waitErr := eg.Wait()

	if err := g.Err(); err != nil {
		return nil, err
	}
	if waitErr != nil {
		return nil, waitErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return coll.Sorted(), nil
}
