package wavefusion

import (
	"context"
	"fmt"
	"image"

	"github.com/yyyoichi/wavefusion/internal/colorspace"
	"github.com/yyyoichi/wavefusion/internal/dwt"
	"github.com/yyyoichi/wavefusion/internal/fusion"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidShape is returned when a dimension is not positive or not
	// divisible by 2^levels.
	ErrInvalidShape = dwt.ErrInvalidShape
	// ErrInvalidLevels is returned for a negative level count.
	ErrInvalidLevels = dwt.ErrInvalidLevels
	// ErrTooSmall is returned when the coarsest level would see fewer than
	// MinExtent samples along an axis, or for more than MaxLevels levels.
	ErrTooSmall = dwt.ErrTooSmall
	// ErrShapeMismatch is returned when two inputs differ in size, channel
	// count or color space.
	ErrShapeMismatch = fusion.ErrShapeMismatch
)

// MinExtent is the smallest axis length any decomposition level accepts.
const MinExtent = dwt.MinExtent

// MaxLevels is the deepest decomposition WithLevels accepts.
const MaxLevels = dwt.MaxLevels

// ColorSpace selects the channels an image is split into before fusion.
type ColorSpace = colorspace.Space

const (
	RGB = colorspace.RGB
	YUV = colorspace.YUV
)

// ParseColorSpace maps "rgb" or "yuv" (any case) to a ColorSpace.
func ParseColorSpace(name string) (ColorSpace, error) {
	return colorspace.Parse(name)
}

// Fuse fuses two images of the same size with the specified options.
// This is a convenience function that creates a Fusion instance and calls its Fuse method.
func Fuse(ctx context.Context, a, b image.Image, opts ...Option) (image.Image, error) {
	f, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return f.Fuse(ctx, a, b)
}

// FuseCoefficients fuses two coefficient matrices produced by ForwardTransform
// with the same level count. Only WithLevels and WithLowBand affect the result.
func FuseCoefficients(a, b *mat.Dense, opts ...Option) (*mat.Dense, error) {
	f, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return f.FuseCoefficients(a, b)
}

// ForwardTransform returns the levels-deep CDF 9/7 decomposition of s as a
// new matrix. s is not modified.
func ForwardTransform(s *mat.Dense, levels int) (*mat.Dense, error) {
	if s == nil || s.IsEmpty() {
		return nil, fmt.Errorf("%w: empty signal", ErrInvalidShape)
	}
	c := mat.DenseCopyOf(s)
	if err := dwt.Forward(c, levels); err != nil {
		return nil, err
	}
	return c, nil
}

// InverseTransform reconstructs a signal from coefficients produced by
// ForwardTransform. levels must be the value the coefficients were produced
// with; a different value yields a meaningless signal, not an error.
func InverseTransform(c *mat.Dense, levels int) (*mat.Dense, error) {
	if c == nil || c.IsEmpty() {
		return nil, fmt.Errorf("%w: empty coefficients", ErrInvalidShape)
	}
	s := mat.DenseCopyOf(c)
	if err := dwt.Inverse(s, levels); err != nil {
		return nil, err
	}
	return s, nil
}

type Fusion struct {
	levels    int
	levelsSet bool
	lowBand   image.Point
	space     ColorSpace
}

// New initializes a fusion structure.
// The level count, low band and color space can be optionally specified.
// For default values, refer to the init function.
func New(opts ...Option) (*Fusion, error) {
	f := new(Fusion)
	if err := f.init(opts...); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Fusion) init(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return err
		}
	}
	if !f.levelsSet {
		f.levels = 3
	}
	return nil
}

// Levels returns the decomposition depth used by f.
func (f *Fusion) Levels() int { return f.levels }

// ColorSpace returns the channels images are split into.
func (f *Fusion) ColorSpace() ColorSpace { return f.space }

func (f *Fusion) params() fusion.Params {
	return fusion.Params{Levels: f.levels, LowBand: f.lowBand}
}

// LowBand returns the top-left block of a width x height coefficient matrix
// that is averaged rather than selected by magnitude.
func (f *Fusion) LowBand(width, height int) image.Rectangle {
	whole := image.Rect(0, 0, width, height)
	if f.lowBand != (image.Point{}) {
		return image.Rectangle{Max: f.lowBand}.Intersect(whole)
	}
	return dwt.LowBand(width, height, f.levels)
}

// Fuse fuses two images of the same size into a new image.
//
// Process:
//  1. Splits both images into three channel planes in the configured color space.
//  2. Applies a CDF 9/7 wavelet decomposition to each channel.
//  3. Averages the LL band and keeps the larger-magnitude coefficient elsewhere.
//  4. Applies the inverse transform and reassembles the image.
//
// The result takes the bounds of a and the per-pixel maximum of both alpha
// channels. Both dimensions must be divisible by 2^Levels().
func (f *Fusion) Fuse(ctx context.Context, a, b image.Image) (image.Image, error) {
	sa := fusion.NewImageSource(a, f.space)
	sb := fusion.NewImageSource(b, f.space)
	return fusion.Fuse(ctx, sa, sb, f.params(), nil)
}

// FuseChannels fuses two collections of equally shaped channel planes, one
// goroutine per channel. Inputs are not modified.
func (f *Fusion) FuseChannels(ctx context.Context, a, b []*mat.Dense) ([]*mat.Dense, error) {
	return fusion.Channels(ctx, a, b, f.params())
}

// FuseCoefficients fuses two coefficient matrices decomposed Levels() times.
func (f *Fusion) FuseCoefficients(a, b *mat.Dense) (*mat.Dense, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: nil coefficients", ErrInvalidShape)
	}
	return fusion.Coefficients(a, b, f.params())
}

// Batch enables efficient repeated fusion against a single base image
// by caching its forward wavelet coefficients.
type Batch struct {
	fusion   *Fusion
	original fusion.ImageSource
	wavelets []*mat.Dense
}

// NewBatch creates a new Batch instance and pre-computes the wavelet
// transform of src with the given options.
func NewBatch(src image.Image, opts ...Option) (*Batch, error) {
	f, err := New(opts...)
	if err != nil {
		return nil, err
	}
	b := &Batch{
		fusion:   f,
		original: fusion.NewImageSource(src, f.space),
	}
	if err := fusion.Enable(b.original, f.levels); err != nil {
		return nil, err
	}
	b.wavelets, err = fusion.Wavelets(context.Background(), b.original.Planes(), f.levels)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Fuse fuses the cached image with other. Safe for concurrent use.
func (b *Batch) Fuse(ctx context.Context, other image.Image) (image.Image, error) {
	img := fusion.NewImageSource(other, b.fusion.space)
	// Uses pre-computed wavelets of the base image.
	return fusion.Fuse(ctx, b.original, img, b.fusion.params(), b.wavelets)
}
