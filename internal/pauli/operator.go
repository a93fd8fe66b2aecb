// Package pauli turns the line based Pauli-sum format into validated operator
// records and classifies Pauli strings into per-axis qubit positions.
//
// One line describes one operator:
//
//	<pauli string over IXYZ> <coefficient> <parameter tag>
//
// e.g. "XIZY 0.25 3". The string length fixes the qubit count for the whole input.
package pauli

// Operator is one validated input line.
type Operator struct {
	Seq         uint64  // 1-based input line, the only ordering key
	Pauli       string  // one symbol per qubit
	Coefficient float32 // never zero
	Tag         uint64  // parameter tag; a 0 in the input is replaced by Seq
}

// ParamSet holds the distinct parameter tags in order of first occurrence.
type ParamSet struct {
	tags []uint64
	seen map[uint64]struct{}
}

// Add records tag if it has not been seen before.
func (p *ParamSet) Add(tag uint64) {
	if p.seen == nil {
		p.seen = make(map[uint64]struct{})
	}
	if _, ok := p.seen[tag]; ok {
		return
	}
	p.seen[tag] = struct{}{}
	p.tags = append(p.tags, tag)
}

// Tags returns a copy of the tags in first-occurrence order.
func (p *ParamSet) Tags() []uint64 {
	out := make([]uint64, len(p.tags))
	copy(out, p.tags)
	return out
}

// Len returns the number of distinct tags.
func (p *ParamSet) Len() int {
	return len(p.tags)
}
