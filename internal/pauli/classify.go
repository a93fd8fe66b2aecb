package pauli

// Classified lists the 1-based qubit positions acting on each Pauli axis.
// Identity positions appear in none of them.
type Classified struct {
	X []int
	Y []int
	Z []int
}

// Axes returns the position sets in X, Y, Z order.
func (c Classified) Axes() [][]int {
	return [][]int{c.X, c.Y, c.Z}
}

// Pivot returns the highest active position, or 0 for an all-identity string.
func (c Classified) Pivot() int {
	pivot := 0
	for _, axis := range c.Axes() {
		for _, q := range axis {
			pivot = max(pivot, q)
		}
	}
	return pivot
}

// Classify splits op's Pauli string into per-axis positions, traversing left
// to right so every set is ascending.
func Classify(op Operator) (Classified, error) {
	var c Classified
	for i := 0; i < len(op.Pauli); i++ {
		pos := i + 1
		switch op.Pauli[i] {
		case 'I':
		case 'X':
			c.X = append(c.X, pos)
		case 'Y':
			c.Y = append(c.Y, pos)
		case 'Z':
			c.Z = append(c.Z, pos)
		default:
			return Classified{}, newLineError(op.Seq, UnsupportedCharacter, reasonUnsupported)
		}
	}
	return c, nil
}

// TooManyAxesError is raised when a classification yields other than the
// three Pauli axes.
func TooManyAxesError(seq uint64) error {
	return newLineError(seq, TooManyBasisCategories, reasonTooManyAxes)
}
