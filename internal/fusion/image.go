package fusion

import (
	"image"
	"image/color"

	"github.com/yyyoichi/wavefusion/internal/colorspace"
	"gonum.org/v1/gonum/mat"
)

// ImageSource holds an image split into three channel planes, each a
// height x width matrix, plus its alpha plane.
type ImageSource struct {
	bounds        image.Rectangle
	width, height int
	area          int
	space         colorspace.Space

	alpha []uint16
	// R,G,B or Y,U,V
	planes []*mat.Dense
}

func NewImageSource(src image.Image, space colorspace.Space) ImageSource {
	var s ImageSource
	s.bounds = src.Bounds()
	s.width, s.height = s.bounds.Dx(), s.bounds.Dy()
	s.area = s.width * s.height
	s.space = space
	s.planes = s.newPlanes()
	s.alpha = make([]uint16, s.area)
	if s.area == 0 {
		return s
	}

	pixels := make([]color.Color, s.area)
	idx := 0
	for y := s.bounds.Min.Y; y < s.bounds.Max.Y; y++ {
		for x := s.bounds.Min.X; x < s.bounds.Max.X; x++ {
			pixels[idx] = src.At(x, y)
			idx++
		}
	}
	colorspace.Split(space, pixels, s.raw(0), s.raw(1), s.raw(2), s.alpha)
	return s
}

func (s ImageSource) newPlanes() []*mat.Dense {
	planes := make([]*mat.Dense, 3)
	for i := range planes {
		if s.area == 0 {
			continue
		}
		planes[i] = mat.NewDense(s.height, s.width, nil)
	}
	return planes
}

// raw returns the row-major samples of plane i. Planes are always allocated
// by this package, so the stride equals the width.
func (s ImageSource) raw(i int) []float64 {
	return s.planes[i].RawMatrix().Data
}

func (s ImageSource) Bounds() image.Rectangle { return s.bounds }

func (s ImageSource) Space() colorspace.Space { return s.space }

// Planes exposes the channel planes. They are shared, not copied.
func (s ImageSource) Planes() []*mat.Dense { return s.planes }

func (s ImageSource) Build() image.Image {
	var dist = image.NewRGBA64(s.bounds)
	if s.area == 0 {
		return dist
	}
	pixels := make([]color.RGBA64, s.area)
	colorspace.Merge(s.space, s.raw(0), s.raw(1), s.raw(2), s.alpha, pixels)
	idx := 0
	for y := s.bounds.Min.Y; y < s.bounds.Max.Y; y++ {
		for x := s.bounds.Min.X; x < s.bounds.Max.X; x++ {
			dist.SetRGBA64(x, y, pixels[idx])
			idx++
		}
	}
	return dist
}
