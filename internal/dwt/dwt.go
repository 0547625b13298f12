package dwt

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// MinExtent is the smallest axis length a lifting pass accepts.
const MinExtent = 4

// MaxLevels keeps 1<<levels well inside int range.
const MaxLevels = 30

var (
	ErrInvalidShape  = errors.New("invalid signal shape")
	ErrInvalidLevels = errors.New("invalid decomposition level count")
	ErrTooSmall      = errors.New("signal is too small for the decomposition level count")
)

// Validate reports whether a width x height signal can be decomposed
// levels times. Every level halves both extents, so both must be divisible
// by 2^levels and the last level must still see at least MinExtent samples
// along each axis. levels == 0 accepts any non-empty shape.
func Validate(width, height, levels int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidShape, width, height)
	}
	if levels < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLevels, levels)
	}
	if levels == 0 {
		return nil
	}
	if levels > MaxLevels {
		return fmt.Errorf("%w: %d levels", ErrTooSmall, levels)
	}
	if unit := 1 << levels; width%unit != 0 || height%unit != 0 {
		return fmt.Errorf("%w: %dx%d is not divisible by %d", ErrInvalidShape, width, height, unit)
	}
	if w, h := width>>(levels-1), height>>(levels-1); w < MinExtent || h < MinExtent {
		return fmt.Errorf("%w: level %d works on %dx%d, need at least %dx%d",
			ErrTooSmall, levels, w, h, MinExtent, MinExtent)
	}
	return nil
}

// Forward applies a levels-deep 2D CDF 9/7 decomposition to m in place.
// Level i works on the top-left (width>>i) x (height>>i) region, leaving the
// detail bands of earlier levels untouched.
func Forward(m *mat.Dense, levels int) error {
	rows, cols := m.Dims()
	if err := Validate(cols, rows, levels); err != nil {
		return err
	}
	if levels == 0 {
		return nil
	}
	raw := m.RawMatrix()
	scratch := make([]float64, rows*cols)
	var l lifter
	w, h := cols, rows
	for range levels {
		region := blas64.General{Rows: h, Cols: w, Stride: raw.Stride, Data: raw.Data}
		transposed := blas64.General{Rows: w, Cols: h, Stride: h, Data: scratch[:w*h]}
		// columns first, then the transposed rows back into place
		l.analyze(region, transposed)
		l.analyze(transposed, region)
		w, h = w/2, h/2
	}
	return nil
}

// Inverse undoes Forward. levels must match the value used for the forward
// transform; the coefficients carry no record of it.
func Inverse(m *mat.Dense, levels int) error {
	rows, cols := m.Dims()
	if err := Validate(cols, rows, levels); err != nil {
		return err
	}
	if levels == 0 {
		return nil
	}
	raw := m.RawMatrix()
	scratch := make([]float64, rows*cols)
	var l lifter
	w, h := cols>>(levels-1), rows>>(levels-1)
	for range levels {
		region := blas64.General{Rows: h, Cols: w, Stride: raw.Stride, Data: raw.Data}
		transposed := blas64.General{Rows: w, Cols: h, Stride: h, Data: scratch[:w*h]}
		l.synthesize(region, transposed)
		l.synthesize(transposed, region)
		w, h = w*2, h*2
	}
	return nil
}
