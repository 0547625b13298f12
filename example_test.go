package wavefusion_test

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/yyyoichi/wavefusion"
	"gonum.org/v1/gonum/mat"
)

func Example_fuse() {
	// Two 64x64 images: a carries detail on the left half, b on the right.
	a := image.NewRGBA(image.Rect(0, 0, 64, 64))
	b := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := range 64 {
		for x := range 64 {
			v := uint8(128)
			if (x+y)%2 == 0 {
				v = 200
			}
			if x < 32 {
				a.Set(x, y, color.RGBA{v, v, v, 255})
				b.Set(x, y, color.RGBA{164, 164, 164, 255})
			} else {
				a.Set(x, y, color.RGBA{164, 164, 164, 255})
				b.Set(x, y, color.RGBA{v, v, v, 255})
			}
		}
	}

	f, err := wavefusion.New(
		wavefusion.WithLevels(2),
		wavefusion.WithColorSpace(wavefusion.RGB),
	)
	if err != nil {
		fmt.Printf("Error creating fusion: %v\n", err)
		return
	}

	fused, err := f.Fuse(context.Background(), a, b)
	if err != nil {
		fmt.Printf("Error fusing images: %v\n", err)
		return
	}
	fmt.Println(fused.Bounds())

	// Output:
	// (0,0)-(64,64)
}

func ExampleFuseCoefficients() {
	ones := mat.NewDense(4, 4, []float64{
		1, 1, 1, 1,
		1, 1, 1, 1,
		1, 1, 1, 1,
		1, 1, 1, 1,
	})
	twos := mat.NewDense(4, 4, nil)
	twos.Scale(2, ones)

	fused, err := wavefusion.FuseCoefficients(ones, twos, wavefusion.WithLevels(1))
	if err != nil {
		fmt.Println(err)
		return
	}
	for i := range 4 {
		fmt.Println(fused.RawRowView(i))
	}

	// Output:
	// [1.5 1.5 2 2]
	// [1.5 1.5 2 2]
	// [2 2 2 2]
	// [2 2 2 2]
}

func ExampleForwardTransform() {
	src := mat.NewDense(8, 8, nil)
	for i := range 8 {
		for j := range 8 {
			src.Set(i, j, float64(i*8+j))
		}
	}

	coeffs, err := wavefusion.ForwardTransform(src, 1)
	if err != nil {
		fmt.Println(err)
		return
	}
	restored, err := wavefusion.InverseTransform(coeffs, 1)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(mat.EqualApprox(src, restored, 1e-9))

	_, err = wavefusion.ForwardTransform(src, 3)
	fmt.Println(err)

	// Output:
	// true
	// signal is too small for the decomposition level count: level 3 works on 2x2, need at least 4x4
}
