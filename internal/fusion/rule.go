package fusion

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/yyyoichi/wavefusion/internal/dwt"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

var ErrShapeMismatch = errors.New("shape mismatch")

// Params configures one fusion.
type Params struct {
	// Levels is the decomposition depth of the coefficients being fused.
	Levels int
	// LowBand, when non-zero, is a fixed top-left block that is averaged
	// instead of the LL band implied by Levels. Everything else, including
	// any part of the real LL band outside the block, goes through
	// magnitude selection.
	LowBand image.Point
}

func (p Params) fixedLowBand() bool {
	return p.LowBand != image.Point{}
}

// Coefficients fuses two coefficient matrices of equal shape into a new one.
// Detail coefficients take whichever input has the larger magnitude, with
// ties going to b. The LL band is the mean of both inputs.
func Coefficients(a, b *mat.Dense, p Params) (*mat.Dense, error) {
	rows, cols, err := sameDims(a, b)
	if err != nil {
		return nil, err
	}
	if err := dwt.Validate(cols, rows, p.Levels); err != nil {
		return nil, err
	}

	dst := mat.NewDense(rows, cols, nil)
	ra, rb, rd := a.RawMatrix(), b.RawMatrix(), dst.RawMatrix()
	if p.fixedLowBand() {
		whole := image.Rect(0, 0, cols, rows)
		selectMax(rd, ra, rb, whole)
		average(rd, ra, rb, image.Rectangle{Max: p.LowBand}.Intersect(whole))
		return dst, nil
	}
	for _, band := range dwt.Bands(cols, rows, p.Levels) {
		if band.Orientation == dwt.LL {
			average(rd, ra, rb, band.Rect)
			continue
		}
		selectMax(rd, ra, rb, band.Rect)
	}
	return dst, nil
}

func sameDims(a, b mat.Matrix) (rows, cols int, err error) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return 0, 0, fmt.Errorf("%w: %dx%d and %dx%d", ErrShapeMismatch, ac, ar, bc, br)
	}
	return ar, ac, nil
}

func selectMax(dst, a, b blas64.General, rect image.Rectangle) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		ar := a.Data[y*a.Stride : y*a.Stride+a.Cols]
		br := b.Data[y*b.Stride : y*b.Stride+b.Cols]
		dr := dst.Data[y*dst.Stride : y*dst.Stride+dst.Cols]
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if math.Abs(ar[x]) > math.Abs(br[x]) {
				dr[x] = ar[x]
			} else {
				dr[x] = br[x]
			}
		}
	}
}

func average(dst, a, b blas64.General, rect image.Rectangle) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		ar := a.Data[y*a.Stride : y*a.Stride+a.Cols]
		br := b.Data[y*b.Stride : y*b.Stride+b.Cols]
		dr := dst.Data[y*dst.Stride : y*dst.Stride+dst.Cols]
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dr[x] = 0.5 * (ar[x] + br[x])
		}
	}
}

// alpha keeps the more opaque of two alpha planes.
func alpha(a, b []uint16) []uint16 {
	out := make([]uint16, len(a))
	for i := range out {
		out[i] = max(a[i], b[i])
	}
	return out
}
