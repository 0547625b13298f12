package colorspace

import (
	"fmt"
	"image/color"
	"strings"
)

// Space selects the channel planes an image is split into.
type Space int

const (
	RGB Space = iota
	YUV
)

func (s Space) String() string {
	switch s {
	case RGB:
		return "rgb"
	case YUV:
		return "yuv"
	}
	return fmt.Sprintf("Space(%d)", int(s))
}

// Parse maps a case-insensitive name ("rgb", "yuv") to a Space.
func Parse(name string) (Space, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rgb":
		return RGB, nil
	case "yuv":
		return YUV, nil
	}
	return 0, fmt.Errorf("unknown color space %q", name)
}

// https://github.com/opencv/opencv/blob/0e88b49a53842f0f7cdc4c61b98c283be7e5057c/modules/imgproc/src/opencl/color_yuv.cl#L148-L234

const delta = .5
const (
	yr = 0.299
	yg = 0.587
	yb = 0.114
	uf = 0.492
	vf = 0.877
)

const (
	vr = 1.140
	ug = -0.395
	vg = -0.581
	ub = 2.032
)

// Luma returns the Y component of an 8-bit scale RGB sample.
func Luma(r, g, b float64) float64 {
	return yr*r + yg*g + yb*b
}

// Split converts pixels into three 8-bit scale planes and a 16-bit alpha
// plane. All slices must have len(pixels) elements.
func Split(space Space, pixels []color.Color, c0, c1, c2 []float64, alpha []uint16) {
	for i, pixel := range pixels {
		r32, g32, b32, a32 := pixel.RGBA()
		r := float64(r32 >> 8)
		g := float64(g32 >> 8)
		b := float64(b32 >> 8)
		alpha[i] = uint16(a32)

		if space == YUV {
			yVal := Luma(r, g, b)
			c0[i] = yVal
			c1[i] = uf*(b-yVal) + delta
			c2[i] = vf*(r-yVal) + delta
			continue
		}
		c0[i], c1[i], c2[i] = r, g, b
	}
}

// Merge is the inverse of Split. Samples are clipped to [0, 255] and, since
// the output is alpha-premultiplied, to the pixel's alpha.
func Merge(space Space, c0, c1, c2 []float64, alpha []uint16, pixels []color.RGBA64) {
	for i := range pixels {
		r, g, b := c0[i], c1[i], c2[i]
		if space == YUV {
			yVal := c0[i]
			uDelta := c1[i] - delta
			vDelta := c2[i] - delta
			r = yVal + vr*vDelta
			g = yVal + ug*uDelta + vg*vDelta
			b = yVal + ub*uDelta
		}
		a := alpha[i]
		pixels[i] = color.RGBA64{
			R: min(clip16(r), a),
			G: min(clip16(g), a),
			B: min(clip16(b), a),
			A: a,
		}
	}
}

func clip16(v float64) uint16 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 65535
	}
	return uint16(v * 257.0)
}
