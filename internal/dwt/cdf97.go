package dwt

import "gonum.org/v1/gonum/blas/blas64"

// CDF 9/7 lifting coefficients.
const (
	alpha = -1.586134342
	beta  = -0.05298011854
	gamma = 0.8829110762
	delta = 0.4435068522
)

// Scale factors applied while de-interleaving (analysis) and interleaving (synthesis).
const (
	scaleLow     = 0.81289306611596146 // 1/1.230174104914
	scaleHigh    = 0.61508705245700002 // 1.230174104914/2
	invScaleLow  = 1.230174104914
	invScaleHigh = 1.6257861322319229
)

// lifter holds the column buffer reused across all columns of one pass.
type lifter struct {
	col []float64
}

func (l *lifter) buffer(n int) []float64 {
	if cap(l.col) < n {
		l.col = make([]float64, n)
	}
	return l.col[:n]
}

// analyze runs the forward lifting steps down every column of src and writes
// the scaled low/high halves transposed into dst, so column c of src becomes
// row c of dst: dst.Rows == src.Cols and dst.Cols == src.Rows.
func (l *lifter) analyze(src, dst blas64.General) {
	n := src.Rows
	half := n / 2
	s := l.buffer(n)
	for c := range src.Cols {
		for r := range n {
			s[r] = src.Data[r*src.Stride+c]
		}
		predict(s, alpha)
		update(s, beta)
		predict(s, gamma)
		update(s, delta)

		row := dst.Data[c*dst.Stride : c*dst.Stride+n]
		for r := 0; r < n; r += 2 {
			row[r/2] = scaleLow * s[r]
			row[r/2+half] = scaleHigh * s[r+1]
		}
	}
}

// synthesize is the inverse of analyze. Row c of src holds the low half
// followed by the high half of one signal; it is interleaved into column c
// of dst and the lifting steps are undone: dst.Rows == src.Cols and
// dst.Cols == src.Rows.
func (l *lifter) synthesize(src, dst blas64.General) {
	n := src.Cols
	half := n / 2
	s := l.buffer(n)
	for c := range src.Rows {
		row := src.Data[c*src.Stride : c*src.Stride+n]
		for k := range half {
			s[2*k] = invScaleLow * row[k]
			s[2*k+1] = invScaleHigh * row[k+half]
		}
		update(s, -delta)
		predict(s, -gamma)
		update(s, -beta)
		predict(s, -alpha)

		for r := range n {
			dst.Data[r*dst.Stride+c] = s[r]
		}
	}
}

// predict updates the odd samples from their even neighbours. The last
// sample mirrors past the end of the signal.
func predict(s []float64, a float64) {
	n := len(s)
	for r := 1; r < n-1; r += 2 {
		s[r] += a * (s[r-1] + s[r+1])
	}
	s[n-1] += 2 * a * s[n-2]
}

// update updates the even samples from their odd neighbours. The first
// sample mirrors past the start of the signal.
func update(s []float64, a float64) {
	n := len(s)
	for r := 2; r < n; r += 2 {
		s[r] += a * (s[r-1] + s[r+1])
	}
	s[0] += 2 * a * s[1]
}
