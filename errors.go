package img2ascii

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyAlphabet is returned when an index or profile would be built
	// from zero characters.
	ErrEmptyAlphabet = errors.New("empty alphabet")

	// ErrNoSamplingPoints is returned when a sampling configuration has no
	// points and so defines a zero-dimensional vector.
	ErrNoSamplingPoints = errors.New("sampling config has no points")

	// ErrInvalidGrapheme is returned when a character entry is not exactly
	// one user-perceived character.
	ErrInvalidGrapheme = errors.New("character must be a single grapheme")

	// ErrDimensionMismatch is matched by every *DimensionMismatchError.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// DimensionMismatchError indicates a vector whose length differs from the
// dimensionality of the index or profile it was used with.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Is reports whether target is ErrDimensionMismatch.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// FontRegistrationError indicates that a configured font file could not be
// found (or parsed) at any of its candidate paths. It aborts the build of
// the profile that required the font.
type FontRegistrationError struct {
	Family     string
	Candidates []string
	cause      error
}

func (e *FontRegistrationError) Error() string {
	msg := fmt.Sprintf("font %q not found at any candidate path [%s]",
		e.Family, strings.Join(e.Candidates, ", "))
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *FontRegistrationError) Unwrap() error { return e.cause }
