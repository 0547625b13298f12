package fusion

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/yyyoichi/wavefusion/internal/dwt"
	"gonum.org/v1/gonum/mat"
)

// Wavelets returns forward-transformed copies of planes, one goroutine per
// plane. The inputs are left untouched.
func Wavelets(ctx context.Context, planes []*mat.Dense, levels int) ([]*mat.Dense, error) {
	coeffs := make([]*mat.Dense, len(planes))
	err := forEach(ctx, len(planes), func(i int) error {
		c := mat.DenseCopyOf(planes[i])
		if err := dwt.Forward(c, levels); err != nil {
			return fmt.Errorf("channel %d: %w", i, err)
		}
		coeffs[i] = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return coeffs, nil
}

// Compose fuses each pair of coefficient planes and inverts the result.
func Compose(ctx context.Context, a, b []*mat.Dense, p Params) ([]*mat.Dense, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d and %d channels", ErrShapeMismatch, len(a), len(b))
	}
	fused := make([]*mat.Dense, len(a))
	err := forEach(ctx, len(a), func(i int) error {
		c, err := Coefficients(a[i], b[i], p)
		if err != nil {
			return fmt.Errorf("channel %d: %w", i, err)
		}
		if err := dwt.Inverse(c, p.Levels); err != nil {
			return fmt.Errorf("channel %d: %w", i, err)
		}
		fused[i] = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fused, nil
}

// Channels fuses two collections of equally shaped channel planes:
// forward transform, coefficient fusion, inverse transform.
func Channels(ctx context.Context, a, b []*mat.Dense, p Params) ([]*mat.Dense, error) {
	if err := checkChannels(a, b, p.Levels); err != nil {
		return nil, err
	}
	ca, err := Wavelets(ctx, a, p.Levels)
	if err != nil {
		return nil, err
	}
	cb, err := Wavelets(ctx, b, p.Levels)
	if err != nil {
		return nil, err
	}
	return Compose(ctx, ca, cb, p)
}

func checkChannels(a, b []*mat.Dense, levels int) error {
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d and %d channels", ErrShapeMismatch, len(a), len(b))
	}
	for i := range a {
		if a[i] == nil || b[i] == nil {
			return fmt.Errorf("%w: channel %d is empty", dwt.ErrInvalidShape, i)
		}
		rows, cols, err := sameDims(a[i], b[i])
		if err != nil {
			return fmt.Errorf("channel %d: %w", i, err)
		}
		if err := dwt.Validate(cols, rows, levels); err != nil {
			return fmt.Errorf("channel %d: %w", i, err)
		}
	}
	return nil
}

// Enable reports whether src can be decomposed levels times.
func Enable(src ImageSource, levels int) error {
	return dwt.Validate(src.width, src.height, levels)
}

// Fuse fuses two images of the same size and color space. wavelets, when
// not nil, are the precomputed forward coefficients of a.
func Fuse(ctx context.Context, a, b ImageSource, p Params, wavelets []*mat.Dense) (image.Image, error) {
	if sa, sb := a.Bounds().Size(), b.Bounds().Size(); sa != sb {
		return nil, fmt.Errorf("%w: %dx%d and %dx%d", ErrShapeMismatch, sa.X, sa.Y, sb.X, sb.Y)
	}
	if a.Space() != b.Space() {
		return nil, fmt.Errorf("%w: color spaces %s and %s", ErrShapeMismatch, a.Space(), b.Space())
	}
	if err := Enable(a, p.Levels); err != nil {
		return nil, err
	}

	var err error
	if len(wavelets) != len(a.planes) {
		if wavelets, err = Wavelets(ctx, a.planes, p.Levels); err != nil {
			return nil, err
		}
	}
	cb, err := Wavelets(ctx, b.planes, p.Levels)
	if err != nil {
		return nil, err
	}
	planes, err := Compose(ctx, wavelets, cb, p)
	if err != nil {
		return nil, err
	}

	dist := a
	dist.planes = planes
	dist.alpha = alpha(a.alpha, b.alpha)
	return dist.Build(), nil
}

// forEach runs fn for 0..n-1 concurrently and joins the errors. fn is not
// started once ctx is done.
func forEach(ctx context.Context, n int, fn func(i int) error) error {
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		go func(i int) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			errs[i] = fn(i)
		}(i)
	}
	wg.Wait()
	return errors.Join(errs...)
}
