package wavefusion

import (
	"fmt"

	"github.com/yyyoichi/wavefusion/internal/dwt"
)

type Option func(*Fusion) error

// WithLevels sets the number of decomposition levels. Level i works on the
// top-left (width>>i) x (height>>i) region, so both image dimensions must be
// divisible by 2^n and the coarsest level must keep at least MinExtent
// samples per axis. 0 disables the transform and simply averages the inputs.
func WithLevels(n int) Option {
	return func(f *Fusion) error {
		if n < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidLevels, n)
		}
		if n > dwt.MaxLevels {
			return fmt.Errorf("%w: %d levels, at most %d", ErrTooSmall, n, dwt.MaxLevels)
		}
		f.levels = n
		f.levelsSet = true
		return nil
	}
}

// WithLowBand replaces the LL band implied by the level count with a fixed
// width x height block at the top-left of each coefficient matrix. The block
// is averaged and everything else goes through magnitude selection. A block
// larger than the matrix is clipped to it.
func WithLowBand(width, height int) Option {
	return func(f *Fusion) error {
		if width <= 0 || height <= 0 {
			return fmt.Errorf("%w: low band %dx%d", ErrInvalidShape, width, height)
		}
		f.lowBand.X, f.lowBand.Y = width, height
		return nil
	}
}

// WithColorSpace selects the channels images are split into. RGB is the default.
func WithColorSpace(space ColorSpace) Option {
	return func(f *Fusion) error {
		switch space {
		case RGB, YUV:
			f.space = space
			return nil
		}
		return fmt.Errorf("unsupported color space %s", space)
	}
}
