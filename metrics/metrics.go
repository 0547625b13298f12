// Package metrics provides no-reference and full-reference quality measures
// for fused images. All measures work on 8-bit scale planes, as produced by
// Luminance.
package metrics

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/yyyoichi/wavefusion/internal/colorspace"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var ErrDimensionMismatch = errors.New("dimension mismatch")

// Peak is the maximum sample value of an 8-bit scale plane.
const Peak = 255.0

const (
	k1 = 0.01
	k2 = 0.03
)

// Report collects the no-reference measures of one image.
type Report struct {
	Entropy          float64 `json:"entropy"`
	StdDev           float64 `json:"std_dev"`
	SpatialFrequency float64 `json:"spatial_frequency"`
	AverageGradient  float64 `json:"average_gradient"`
}

func (r Report) String() string {
	return fmt.Sprintf("entropy=%.4f std=%.4f sf=%.4f ag=%.4f",
		r.Entropy, r.StdDev, r.SpatialFrequency, r.AverageGradient)
}

// Comparison collects the full-reference measures of an image against a
// reference.
type Comparison struct {
	PSNR float64 `json:"psnr"`
	SSIM float64 `json:"ssim"`
}

// Luminance returns the luma plane of img as a height x width matrix.
func Luminance(img image.Image) *mat.Dense {
	b := img.Bounds()
	if b.Empty() {
		return &mat.Dense{}
	}
	m := mat.NewDense(b.Dy(), b.Dx(), nil)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			m.Set(y-b.Min.Y, x-b.Min.X, colorspace.Luma(float64(r>>8), float64(g>>8), float64(bl>>8)))
		}
	}
	return m
}

// Evaluate computes the no-reference measures of img's luminance.
func Evaluate(img image.Image) Report {
	p := Luminance(img)
	return Report{
		Entropy:          Entropy(p),
		StdDev:           StdDev(p),
		SpatialFrequency: SpatialFrequency(p),
		AverageGradient:  AverageGradient(p),
	}
}

// Compare computes PSNR and SSIM of img's luminance against ref's.
func Compare(ref, img image.Image) (Comparison, error) {
	a, b := Luminance(ref), Luminance(img)
	psnr, err := PSNR(a, b)
	if err != nil {
		return Comparison{}, err
	}
	ssim, err := SSIM(a, b)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{PSNR: psnr, SSIM: ssim}, nil
}

// Entropy returns the Shannon entropy in bits of the 256-bin histogram of p.
// Samples are rounded and clipped to [0, 255].
func Entropy(p mat.Matrix) float64 {
	data := samples(p)
	if len(data) == 0 {
		return 0
	}
	hist := make([]float64, 256)
	for _, v := range data {
		bin := int(math.Round(math.Min(math.Max(v, 0), Peak)))
		hist[bin]++
	}
	floats.Scale(1/float64(len(data)), hist)
	return stat.Entropy(hist) / math.Ln2
}

// StdDev returns the population standard deviation of p.
func StdDev(p mat.Matrix) float64 {
	data := samples(p)
	if len(data) == 0 {
		return 0
	}
	_, std := stat.PopMeanStdDev(data, nil)
	return std
}

// SpatialFrequency returns sqrt(RF^2 + CF^2), where RF and CF are the RMS
// of first differences along rows and columns.
func SpatialFrequency(p mat.Matrix) float64 {
	rows, cols := dims(p)
	if rows == 0 {
		return 0
	}
	var rf, cf float64
	for i := range rows {
		for j := range cols {
			v := p.At(i, j)
			if j > 0 {
				d := v - p.At(i, j-1)
				rf += d * d
			}
			if i > 0 {
				d := v - p.At(i-1, j)
				cf += d * d
			}
		}
	}
	n := float64(rows * cols)
	return math.Sqrt(rf/n + cf/n)
}

// AverageGradient returns the mean of sqrt((dx^2 + dy^2) / 2) over forward
// differences. Planes with fewer than two rows or columns have no gradient.
func AverageGradient(p mat.Matrix) float64 {
	rows, cols := dims(p)
	if rows < 2 || cols < 2 {
		return 0
	}
	var sum float64
	for i := range rows - 1 {
		for j := range cols - 1 {
			v := p.At(i, j)
			dx := p.At(i, j+1) - v
			dy := p.At(i+1, j) - v
			sum += math.Sqrt((dx*dx + dy*dy) / 2)
		}
	}
	return sum / float64((rows-1)*(cols-1))
}

// PSNR returns the peak signal-to-noise ratio of p against ref in dB.
// Identical planes yield +Inf.
func PSNR(ref, p mat.Matrix) (float64, error) {
	a, b, err := pair(ref, p)
	if err != nil {
		return 0, err
	}
	d := floats.Distance(a, b, 2)
	mse := d * d / float64(len(a))
	if mse == 0 {
		return math.Inf(1), nil
	}
	return 10 * math.Log10(Peak*Peak/mse), nil
}

// SSIM returns the structural similarity of p and ref computed over the
// whole plane as a single window.
func SSIM(ref, p mat.Matrix) (float64, error) {
	x, y, err := pair(ref, p)
	if err != nil {
		return 0, err
	}
	c1 := (k1 * Peak) * (k1 * Peak)
	c2 := (k2 * Peak) * (k2 * Peak)

	muX := stat.Mean(x, nil)
	muY := stat.Mean(y, nil)
	var sigmaX, sigmaY, sigmaXY float64
	if len(x) > 1 {
		sigmaX = stat.Variance(x, nil)
		sigmaY = stat.Variance(y, nil)
		sigmaXY = stat.Covariance(x, y, nil)
	}

	num := (2*muX*muY + c1) * (2*sigmaXY + c2)
	den := (muX*muX + muY*muY + c1) * (sigmaX + sigmaY + c2)
	return num / den, nil
}

func dims(p mat.Matrix) (rows, cols int) {
	if d, ok := p.(*mat.Dense); ok && d.IsEmpty() {
		return 0, 0
	}
	return p.Dims()
}

// samples returns the elements of p in row-major order.
func samples(p mat.Matrix) []float64 {
	rows, cols := dims(p)
	data := make([]float64, 0, rows*cols)
	for i := range rows {
		for j := range cols {
			data = append(data, p.At(i, j))
		}
	}
	return data
}

func pair(a, b mat.Matrix) ([]float64, []float64, error) {
	ar, ac := dims(a)
	br, bc := dims(b)
	if ar != br || ac != bc {
		return nil, nil, fmt.Errorf("%w: %dx%d and %dx%d", ErrDimensionMismatch, ac, ar, bc, br)
	}
	if ar == 0 || ac == 0 {
		return nil, nil, fmt.Errorf("%w: empty plane", ErrDimensionMismatch)
	}
	return samples(a), samples(b), nil
}
