package pauli

import (
	"errors"
	"slices"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		pauli   string
		x, y, z []int
		pivot   int
	}{
		{"XZ", []int{1}, nil, []int{2}, 2},
		{"II", nil, nil, nil, 0},
		{"YIXZX", []int{3, 5}, []int{1}, []int{4}, 5},
		{"ZIII", nil, nil, []int{1}, 1},
		{"IYIY", nil, []int{2, 4}, nil, 4},
	}
	for _, tt := range tests {
		c, err := Classify(Operator{Seq: 1, Pauli: tt.pauli, Coefficient: 1, Tag: 1})
		if err != nil {
			t.Fatalf("Classify(%q): %v", tt.pauli, err)
		}
		if !slices.Equal(c.X, tt.x) || !slices.Equal(c.Y, tt.y) || !slices.Equal(c.Z, tt.z) {
			t.Errorf("Classify(%q) = X%v Y%v Z%v, want X%v Y%v Z%v", tt.pauli, c.X, c.Y, c.Z, tt.x, tt.y, tt.z)
		}
		if c.Pivot() != tt.pivot {
			t.Errorf("Classify(%q).Pivot() = %d, want %d", tt.pauli, c.Pivot(), tt.pivot)
		}
	}
}

func TestClassifyUnsupportedCharacter(t *testing.T) {
	_, err := Classify(Operator{Seq: 7, Pauli: "XqZ", Coefficient: 1, Tag: 1})
	var le *LineError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LineError, got %v", err)
	}
	if le.Line != 7 || le.Kind != UnsupportedCharacter {
		t.Errorf("got line=%d kind=%s", le.Line, le.Kind)
	}
	if !errors.Is(err, ErrUnsupportedCharacter) {
		t.Error("expected errors.Is ErrUnsupportedCharacter")
	}
}
