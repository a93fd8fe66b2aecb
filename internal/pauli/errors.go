package pauli

import (
	"errors"
	"fmt"
)

// Kind classifies why an input line was rejected.
type Kind int

const (
	MalformedLine Kind = iota + 1
	QubitCountMismatch
	ZeroCoefficient
	InvalidParameterTag
	UnsupportedCharacter
	TooManyBasisCategories
)

// Sentinels matched with errors.Is against a *LineError.
var (
	ErrMalformedLine          = errors.New("malformed line")
	ErrQubitCountMismatch     = errors.New("qubit count mismatch")
	ErrZeroCoefficient        = errors.New("zero coefficient")
	ErrInvalidParameterTag    = errors.New("invalid parameter tag")
	ErrUnsupportedCharacter   = errors.New("unsupported character")
	ErrTooManyBasisCategories = errors.New("too many basis categories")

	// ErrNoOperators is returned when the input holds no lines at all.
	ErrNoOperators = errors.New("no operators in input")
)

func (k Kind) String() string {
	switch k {
	case MalformedLine:
		return "MalformedLine"
	case QubitCountMismatch:
		return "QubitCountMismatch"
	case ZeroCoefficient:
		return "ZeroCoefficient"
	case InvalidParameterTag:
		return "InvalidParameterTag"
	case UnsupportedCharacter:
		return "UnsupportedCharacter"
	case TooManyBasisCategories:
		return "TooManyBasisCategories"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case MalformedLine:
		return ErrMalformedLine
	case QubitCountMismatch:
		return ErrQubitCountMismatch
	case ZeroCoefficient:
		return ErrZeroCoefficient
	case InvalidParameterTag:
		return ErrInvalidParameterTag
	case UnsupportedCharacter:
		return ErrUnsupportedCharacter
	case TooManyBasisCategories:
		return ErrTooManyBasisCategories
	default:
		return nil
	}
}

// LineError reports a rejected input line. Line is 1-based.
type LineError struct {
	Line   uint64
	Kind   Kind
	Reason string
}

func newLineError(line uint64, kind Kind, reason string) *LineError {
	return &LineError{Line: line, Kind: kind, Reason: reason}
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Unwrap exposes the kind sentinel so callers can use errors.Is.
func (e *LineError) Unwrap() error {
	return e.Kind.sentinel()
}
