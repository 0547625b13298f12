package fusion

import (
	"image"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/wavefusion/internal/dwt"
	"gonum.org/v1/gonum/mat"
)

func filled(rows, cols int, v float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = v
	}
	return mat.NewDense(rows, cols, data)
}

func random(rows, cols int, seed uint64) *mat.Dense {
	rd := rand.New(rand.NewPCG(seed, 99))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rd.NormFloat64() * 40
	}
	return mat.NewDense(rows, cols, data)
}

func TestCoefficients(t *testing.T) {
	t.Run("4x4 ones and twos", func(t *testing.T) {
		got, err := Coefficients(filled(4, 4, 1), filled(4, 4, 2), Params{Levels: 1})
		require.NoError(t, err)
		want := mat.NewDense(4, 4, []float64{
			1.5, 1.5, 2, 2,
			1.5, 1.5, 2, 2,
			2, 2, 2, 2,
			2, 2, 2, 2,
		})
		assert.True(t, mat.Equal(want, got), "got\n%v", mat.Formatted(got))
	})

	t.Run("magnitude selection outside the low band", func(t *testing.T) {
		const rows, cols, levels = 16, 32, 2
		a := random(rows, cols, 1)
		b := random(rows, cols, 2)
		// equal magnitudes with opposite signs must resolve to b
		for j := range cols {
			a.Set(rows-1, j, -b.At(rows-1, j))
		}
		got, err := Coefficients(a, b, Params{Levels: levels})
		require.NoError(t, err)

		low := dwt.LowBand(cols, rows, levels)
		for i := range rows {
			for j := range cols {
				av, bv, gv := a.At(i, j), b.At(i, j), got.At(i, j)
				if image.Pt(j, i).In(low) {
					assert.Equal(t, 0.5*(av+bv), gv, "LL[%d][%d]", i, j)
					continue
				}
				if math.Abs(av) > math.Abs(bv) {
					assert.Equal(t, av, gv, "[%d][%d]", i, j)
				} else {
					assert.Equal(t, bv, gv, "[%d][%d]", i, j)
				}
			}
		}
	})

	t.Run("detail energy never decreases", func(t *testing.T) {
		const size, levels = 32, 3
		a := random(size, size, 3)
		b := random(size, size, 4)
		got, err := Coefficients(a, b, Params{Levels: levels})
		require.NoError(t, err)

		energy := func(m *mat.Dense) float64 {
			var sum float64
			for _, band := range dwt.Bands(size, size, levels)[1:] {
				for y := band.Rect.Min.Y; y < band.Rect.Max.Y; y++ {
					for x := band.Rect.Min.X; x < band.Rect.Max.X; x++ {
						sum += m.At(y, x) * m.At(y, x)
					}
				}
			}
			return sum
		}
		assert.GreaterOrEqual(t, energy(got), energy(a))
		assert.GreaterOrEqual(t, energy(got), energy(b))
	})

	t.Run("fixed low band", func(t *testing.T) {
		a := filled(8, 8, 1)
		b := filled(8, 8, -3)
		got, err := Coefficients(a, b, Params{Levels: 1, LowBand: image.Pt(3, 2)})
		require.NoError(t, err)
		for i := range 8 {
			for j := range 8 {
				if i < 2 && j < 3 {
					assert.Equal(t, -1.0, got.At(i, j), "[%d][%d]", i, j)
				} else {
					// includes the part of the real LL band outside the block
					assert.Equal(t, -3.0, got.At(i, j), "[%d][%d]", i, j)
				}
			}
		}
	})

	t.Run("fixed low band larger than the signal is clipped", func(t *testing.T) {
		got, err := Coefficients(filled(4, 4, 1), filled(4, 4, 2), Params{Levels: 1, LowBand: image.Pt(125, 125)})
		require.NoError(t, err)
		assert.True(t, mat.Equal(filled(4, 4, 1.5), got))
	})

	t.Run("strided views", func(t *testing.T) {
		big := random(8, 12, 5)
		a := big.Slice(0, 4, 2, 6).(*mat.Dense)
		b := random(4, 4, 6)
		got, err := Coefficients(a, b, Params{Levels: 1})
		require.NoError(t, err)
		want, err := Coefficients(mat.DenseCopyOf(a), b, Params{Levels: 1})
		require.NoError(t, err)
		assert.True(t, mat.Equal(want, got))
	})

	t.Run("inputs are not modified", func(t *testing.T) {
		a, b := random(8, 8, 7), random(8, 8, 8)
		ca, cb := mat.DenseCopyOf(a), mat.DenseCopyOf(b)
		_, err := Coefficients(a, b, Params{Levels: 2})
		require.NoError(t, err)
		assert.True(t, mat.Equal(ca, a))
		assert.True(t, mat.Equal(cb, b))
	})

	t.Run("errors", func(t *testing.T) {
		_, err := Coefficients(filled(4, 4, 1), filled(4, 8, 1), Params{Levels: 1})
		assert.ErrorIs(t, err, ErrShapeMismatch)

		_, err = Coefficients(filled(6, 6, 1), filled(6, 6, 1), Params{Levels: 2})
		assert.ErrorIs(t, err, dwt.ErrInvalidShape)

		_, err = Coefficients(filled(8, 8, 1), filled(8, 8, 1), Params{Levels: 3})
		assert.ErrorIs(t, err, dwt.ErrTooSmall)
	})
}

func TestAlpha(t *testing.T) {
	assert.Equal(t, []uint16{5, 0xffff, 7}, alpha([]uint16{5, 0xffff, 1}, []uint16{2, 3, 7}))
}
