package reduce_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pauliqasm/internal/pauli"
	"pauliqasm/internal/reduce"
	"pauliqasm/internal/synth"
)

func operators(n int) []pauli.Operator {
	letters := []byte{'I', 'X', 'Y', 'Z'}
	ops := make([]pauli.Operator, n)
	for i := range ops {
		p := make([]byte, 5)
		for q := range p {
			p[q] = letters[(i+q*3)%4]
		}
		seq := uint64(i + 1)
		ops[i] = pauli.Operator{Seq: seq, Pauli: string(p), Coefficient: float32(i%7) + 0.5, Tag: seq%3 + 1}
	}
	return ops
}

// jittered delays later records less than earlier ones so that completion
// order differs from input order.
func jittered(fn reduce.Func, n int) reduce.Func {
	return func(op pauli.Operator) (string, error) {
		time.Sleep(time.Duration(n-int(op.Seq)%n) * 20 * time.Microsecond)
		return fn(op)
	}
}

func concat(rs []reduce.Result) string {
	s := ""
	for _, r := range rs {
		s += r.Fragment
	}
	return s
}

var strategies = []reduce.Strategy{
	reduce.Sequential{},
	reduce.Pool{Workers: 4},
	reduce.Pool{Workers: 1},
	reduce.Pool{},
	reduce.FanOut{Limit: 8},
	reduce.FanOut{},
}

var _ = Describe("Strategy", func() {
	var (
		ops []pauli.Operator
		fn  reduce.Func
		ctx context.Context
	)

	BeforeEach(func() {
		ops = operators(200)
		fn = synth.New(nil, true).Transform
		ctx = context.Background()
	})

	for _, s := range strategies {
		Context(fmt.Sprintf("%s %+v", s.Name(), s), func() {
			It("should return results in ascending Seq", func() {
				rs, err := s.Reduce(ctx, ops, jittered(fn, 16))

				Expect(err).NotTo(HaveOccurred())
				Expect(rs).To(HaveLen(len(ops)))
				for i, r := range rs {
					Expect(r.Seq).To(Equal(uint64(i + 1)))
				}
			})

			It("should match the sequential output byte for byte", func() {
				want, err := reduce.Sequential{}.Reduce(ctx, ops, fn)
				Expect(err).NotTo(HaveOccurred())

				got, err := s.Reduce(ctx, ops, jittered(fn, 16))
				Expect(err).NotTo(HaveOccurred())

				Expect(concat(got)).To(Equal(concat(want)))
			})

			It("should report the lowest failing line", func() {
				failing := func(op pauli.Operator) (string, error) {
					switch op.Seq {
					case 40:
						// The lower failure finishes last.
						time.Sleep(2 * time.Millisecond)
						return "", fmt.Errorf("line %d: %w", op.Seq, pauli.ErrZeroCoefficient)
					case 41, 150:
						return "", fmt.Errorf("line %d: %w", op.Seq, pauli.ErrMalformedLine)
					}
					return fn(op)
				}

				for i := 0; i < 5; i++ {
					rs, err := s.Reduce(ctx, ops, failing)

					Expect(rs).To(BeNil())
					Expect(err).To(MatchError(pauli.ErrZeroCoefficient))
					Expect(err.Error()).To(HavePrefix("line 40:"))
				}
			})

			It("should run every record below the failure", func() {
				var mu sync.Mutex
				seen := map[uint64]bool{}
				failing := func(op pauli.Operator) (string, error) {
					mu.Lock()
					seen[op.Seq] = true
					mu.Unlock()
					if op.Seq == 120 {
						return "", pauli.ErrMalformedLine
					}
					return fn(op)
				}

				_, err := s.Reduce(ctx, ops, failing)

				Expect(err).To(MatchError(pauli.ErrMalformedLine))
				for seq := uint64(1); seq <= 120; seq++ {
					Expect(seen).To(HaveKey(seq))
				}
			})

			It("should handle an empty input", func() {
				rs, err := s.Reduce(ctx, nil, fn)

				Expect(err).NotTo(HaveOccurred())
				Expect(rs).To(BeEmpty())
			})

			It("should stop on cancellation", func() {
				cctx, cancel := context.WithCancel(ctx)
				var calls atomic.Int64
				slow := func(op pauli.Operator) (string, error) {
					if calls.Add(1) == 10 {
						cancel()
					}
					return fn(op)
				}

				rs, err := s.Reduce(cctx, ops, slow)

				Expect(errors.Is(err, context.Canceled)).To(BeTrue())
				Expect(rs).To(BeNil())
				Expect(calls.Load()).To(BeNumerically("<", int64(len(ops))))
			})
		})
	}

	Context("Sequential", func() {
		It("should not call the transform past the first failure", func() {
			var calls int
			failing := func(op pauli.Operator) (string, error) {
				calls++
				if op.Seq == 3 {
					return "", pauli.ErrZeroCoefficient
				}
				return fn(op)
			}

			_, err := reduce.Sequential{}.Reduce(ctx, ops, failing)

			Expect(err).To(MatchError(pauli.ErrZeroCoefficient))
			Expect(calls).To(Equal(3))
		})
	})
})

var _ = Describe("ByName", func() {
	It("should build every listed strategy", func() {
		for _, name := range reduce.Names() {
			s, err := reduce.ByName(name, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Name()).To(Equal(name))
		}
	})

	It("should reject an unknown name", func() {
		_, err := reduce.ByName("openmp", 2)
		Expect(err).To(MatchError(reduce.ErrUnknownStrategy))
	})
})

var _ = Describe("Collection", func() {
	It("should serialise concurrent inserts and sort by Seq", func() {
		c := reduce.NewCollection(0)
		var wg sync.WaitGroup
		for i := 100; i > 0; i-- {
			wg.Add(1)
			go func(seq uint64) {
				defer wg.Done()
				c.Insert(seq, fmt.Sprint(seq))
			}(uint64(i))
		}
		wg.Wait()

		Expect(c.Len()).To(Equal(100))
		sorted := c.Sorted()
		for i, r := range sorted {
			Expect(r.Seq).To(Equal(uint64(i + 1)))
			Expect(r.Fragment).To(Equal(fmt.Sprint(i + 1)))
		}
	})
})
