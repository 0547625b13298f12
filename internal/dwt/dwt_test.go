package dwt

import (
	"fmt"
	"image"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

func randomDense(rows, cols int, seed uint64) *mat.Dense {
	rd := rand.New(rand.NewPCG(seed, seed+1))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rd.Float64() * 255
	}
	return mat.NewDense(rows, cols, data)
}

func constDense(rows, cols int, v float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = v
	}
	return mat.NewDense(rows, cols, data)
}

// assertMatrixEqual compares element-wise with a relative tolerance, falling
// back to an absolute one for values near zero.
func assertMatrixEqual(t *testing.T, want, got mat.Matrix, relativeEpsilon float64) {
	t.Helper()
	const smallValueThreshold = 1e-3
	const absoluteDelta = 1e-9

	wr, wc := want.Dims()
	gr, gc := got.Dims()
	require.Equal(t, [2]int{wr, wc}, [2]int{gr, gc}, "dims mismatch")
	for i := range wr {
		for j := range wc {
			e, a := want.At(i, j), got.At(i, j)
			if math.Abs(e) < smallValueThreshold {
				assert.InDelta(t, e, a, absoluteDelta, "[%d][%d] expected=%g, got=%g", i, j, e, a)
				continue
			}
			assert.InEpsilon(t, e, a, relativeEpsilon, "[%d][%d] expected=%g, got=%g", i, j, e, a)
		}
	}
}

func TestLifter(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		for _, size := range [][2]int{{4, 1}, {4, 3}, {6, 2}, {8, 8}, {16, 5}, {32, 32}} {
			rows, cols := size[0], size[1]
			t.Run(fmt.Sprintf("%dx%d", rows, cols), func(t *testing.T) {
				src := randomDense(rows, cols, uint64(rows*cols))
				want := mat.DenseCopyOf(src)

				var l lifter
				transposed := blas64.General{Rows: cols, Cols: rows, Stride: rows, Data: make([]float64, rows*cols)}
				l.analyze(src.RawMatrix(), transposed)

				got := mat.NewDense(rows, cols, nil)
				l.synthesize(transposed, got.RawMatrix())
				assertMatrixEqual(t, want, got, 1e-9)
			})
		}
	})

	t.Run("constant column splits into flat low and zero high", func(t *testing.T) {
		const n = 8
		src := constDense(n, 2, 5)
		var l lifter
		dst := blas64.General{Rows: 2, Cols: n, Stride: n, Data: make([]float64, 2*n)}
		l.analyze(src.RawMatrix(), dst)
		for c := range 2 {
			row := dst.Data[c*n : (c+1)*n]
			for k := range n / 2 {
				assert.InDelta(t, 5.0, row[k], 1e-6, "low[%d]", k)
				assert.InDelta(t, 0.0, row[k+n/2], 1e-6, "high[%d]", k)
			}
		}
	})

	t.Run("inverse scale undoes forward scale", func(t *testing.T) {
		assert.InDelta(t, 1.0, scaleLow*invScaleLow, 1e-12)
		assert.InDelta(t, 1.0, scaleHigh*invScaleHigh, 1e-12)
	})
}

func TestForwardInverse(t *testing.T) {
	test := []struct {
		width, height, levels int
	}{
		{4, 4, 1},
		{8, 8, 1},
		{8, 8, 2},
		{12, 8, 1},
		{16, 8, 2},
		{8, 16, 1},
		{32, 16, 3},
		{64, 64, 4},
		{40, 24, 3},
	}
	for _, tt := range test {
		t.Run(fmt.Sprintf("%dx%d_L%d", tt.width, tt.height, tt.levels), func(t *testing.T) {
			m := randomDense(tt.height, tt.width, uint64(tt.width+tt.height+tt.levels))
			want := mat.DenseCopyOf(m)

			require.NoError(t, Forward(m, tt.levels))
			assert.False(t, mat.EqualApprox(want, m, 1e-6), "forward transform should change the signal")
			require.NoError(t, Inverse(m, tt.levels))
			assertMatrixEqual(t, want, m, 1e-9)
		})
	}
}

func TestForward(t *testing.T) {
	t.Run("level 0 is the identity", func(t *testing.T) {
		m := randomDense(3, 5, 7)
		want := mat.DenseCopyOf(m)
		require.NoError(t, Forward(m, 0))
		assert.True(t, mat.Equal(want, m))
		require.NoError(t, Inverse(m, 0))
		assert.True(t, mat.Equal(want, m))
	})

	t.Run("constant 4x4", func(t *testing.T) {
		m := constDense(4, 4, 8)
		require.NoError(t, Forward(m, 1))
		low := LowBand(4, 4, 1)
		for i := range 4 {
			for j := range 4 {
				if image.Pt(j, i).In(low) {
					assert.InDelta(t, 8.0, m.At(i, j), 1e-6, "LL[%d][%d]", i, j)
				} else {
					assert.InDelta(t, 0.0, m.At(i, j), 1e-6, "detail[%d][%d]", i, j)
				}
			}
		}
	})

	t.Run("deeper levels leave finer detail bands untouched", func(t *testing.T) {
		one := randomDense(16, 32, 11)
		two := mat.DenseCopyOf(one)
		require.NoError(t, Forward(one, 1))
		require.NoError(t, Forward(two, 2))
		for _, b := range Bands(32, 16, 1)[1:] {
			for y := b.Rect.Min.Y; y < b.Rect.Max.Y; y++ {
				for x := b.Rect.Min.X; x < b.Rect.Max.X; x++ {
					assert.Equal(t, one.At(y, x), two.At(y, x), "%s[%d][%d]", b.Orientation, y, x)
				}
			}
		}
	})

	t.Run("rejects invalid shapes", func(t *testing.T) {
		m := randomDense(6, 8, 3)
		want := mat.DenseCopyOf(m)
		err := Forward(m, 2)
		assert.ErrorIs(t, err, ErrInvalidShape)
		assert.True(t, mat.Equal(want, m), "failed transform must not touch the signal")
		assert.ErrorIs(t, Inverse(m, 2), ErrInvalidShape)
	})
}

// liftColumns is a direct rendition of one lifting pass over the columns of
// the top-left width x height region of s, de-interleaving the result
// transposed into place. It only handles square matrices.
func liftColumns(s [][]float64, width, height int) {
	for col := range width {
		for row := 1; row < height-1; row += 2 {
			s[row][col] += alpha * (s[row-1][col] + s[row+1][col])
		}
		s[height-1][col] += 2 * alpha * s[height-2][col]
		for row := 2; row < height; row += 2 {
			s[row][col] += beta * (s[row-1][col] + s[row+1][col])
		}
		s[0][col] += 2 * beta * s[1][col]
		for row := 1; row < height-1; row += 2 {
			s[row][col] += gamma * (s[row-1][col] + s[row+1][col])
		}
		s[height-1][col] += 2 * gamma * s[height-2][col]
		for row := 2; row < height; row += 2 {
			s[row][col] += delta * (s[row-1][col] + s[row+1][col])
		}
		s[0][col] += 2 * delta * s[1][col]
	}

	temp := make([][]float64, height)
	for i := range temp {
		temp[i] = make([]float64, width)
	}
	for row := range height {
		for col := range width {
			if row%2 == 0 {
				temp[col][row/2] = scaleLow * s[row][col]
			} else {
				temp[col][row/2+height/2] = scaleHigh * s[row][col]
			}
		}
	}
	for row := range width {
		for col := range height {
			s[row][col] = temp[row][col]
		}
	}
}

func referenceForward(m *mat.Dense, levels int) *mat.Dense {
	n, _ := m.Dims()
	s := make([][]float64, n)
	for i := range s {
		s[i] = mat.Row(nil, i, m)
	}
	w, h := n, n
	for range levels {
		liftColumns(s, w, h) // cols
		liftColumns(s, w, h) // rows
		w, h = w/2, h/2
	}
	out := mat.NewDense(n, n, nil)
	for i := range s {
		out.SetRow(i, s[i])
	}
	return out
}

func TestForward_Reference(t *testing.T) {
	test := []struct {
		size, levels int
	}{
		{8, 1},
		{16, 2},
		{16, 3},
		{32, 3},
		{64, 4},
	}
	for _, tt := range test {
		t.Run(fmt.Sprintf("%dx%d_L%d", tt.size, tt.size, tt.levels), func(t *testing.T) {
			m := randomDense(tt.size, tt.size, uint64(tt.size*tt.levels))
			want := referenceForward(m, tt.levels)
			require.NoError(t, Forward(m, tt.levels))
			assertMatrixEqual(t, want, m, 1e-12)
		})
	}

	t.Run("rows only vary vertically", func(t *testing.T) {
		// every row is constant, so the horizontal detail band is empty
		// while the vertical one carries the row pattern.
		const n = 16
		m := mat.NewDense(n, n, nil)
		for r := range n {
			for c := range n {
				m.Set(r, c, float64((r*7)%5)*10)
			}
		}
		want := referenceForward(m, 1)
		require.NoError(t, Forward(m, 1))
		assertMatrixEqual(t, want, m, 1e-12)

		var vertical float64
		for _, b := range Bands(n, n, 1)[1:] {
			for y := b.Rect.Min.Y; y < b.Rect.Max.Y; y++ {
				for x := b.Rect.Min.X; x < b.Rect.Max.X; x++ {
					switch b.Orientation {
					case HL, HH:
						assert.InDelta(t, 0.0, m.At(y, x), 1e-6, "%s[%d][%d]", b.Orientation, y, x)
					case LH:
						vertical += math.Abs(m.At(y, x))
					}
				}
			}
		}
		assert.Greater(t, vertical, 1.0)
	})
}

func TestValidate(t *testing.T) {
	test := []struct {
		name                  string
		width, height, levels int
		wantErr               error
	}{
		{"level 0 odd", 3, 5, 0, nil},
		{"4x4 L1", 4, 4, 1, nil},
		{"8x8 L2", 8, 8, 2, nil},
		{"500x500 L2", 500, 500, 2, nil},
		{"zero width", 0, 8, 1, ErrInvalidShape},
		{"negative height", 8, -2, 1, ErrInvalidShape},
		{"negative levels", 8, 8, -1, ErrInvalidLevels},
		{"odd width", 7, 8, 1, ErrInvalidShape},
		{"odd height", 8, 9, 1, ErrInvalidShape},
		{"500 not divisible by 8", 500, 500, 3, ErrInvalidShape},
		{"2x2 too small", 2, 2, 1, ErrTooSmall},
		{"8x8 L3 too small", 8, 8, 3, ErrTooSmall},
		{"16x4 L2 too small", 16, 4, 2, ErrTooSmall},
		{"huge levels", 1 << 20, 1 << 20, 64, ErrTooSmall},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.width, tt.height, tt.levels)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBands(t *testing.T) {
	t.Run("8x8 L2", func(t *testing.T) {
		want := []Band{
			{Level: 2, Orientation: LL, Rect: image.Rect(0, 0, 2, 2)},
			{Level: 2, Orientation: HL, Rect: image.Rect(2, 0, 4, 2)},
			{Level: 2, Orientation: LH, Rect: image.Rect(0, 2, 2, 4)},
			{Level: 2, Orientation: HH, Rect: image.Rect(2, 2, 4, 4)},
			{Level: 1, Orientation: HL, Rect: image.Rect(4, 0, 8, 4)},
			{Level: 1, Orientation: LH, Rect: image.Rect(0, 4, 4, 8)},
			{Level: 1, Orientation: HH, Rect: image.Rect(4, 4, 8, 8)},
		}
		assert.Equal(t, want, Bands(8, 8, 2))
	})

	t.Run("bands tile the signal", func(t *testing.T) {
		for _, size := range [][3]int{{8, 8, 0}, {32, 16, 3}, {40, 24, 3}, {64, 128, 4}} {
			width, height, levels := size[0], size[1], size[2]
			cover := make([]int, width*height)
			for _, b := range Bands(width, height, levels) {
				for y := b.Rect.Min.Y; y < b.Rect.Max.Y; y++ {
					for x := b.Rect.Min.X; x < b.Rect.Max.X; x++ {
						cover[y*width+x]++
					}
				}
			}
			for i, n := range cover {
				require.Equal(t, 1, n, "%dx%d_L%d: position %d covered %d times", width, height, levels, i, n)
			}
		}
	})

	t.Run("orientation names", func(t *testing.T) {
		assert.Equal(t, "LL", LL.String())
		assert.Equal(t, "HL", HL.String())
		assert.Equal(t, "LH", LH.String())
		assert.Equal(t, "HH", HH.String())
		assert.Equal(t, "unknown", Orientation(9).String())
	})
}
