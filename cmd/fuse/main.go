package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yyyoichi/wavefusion"
	"github.com/yyyoichi/wavefusion/metrics"
)

type config struct {
	a, b     string
	output   string
	levels   int
	space    string
	lowBand  string
	fit      bool
	quality  int
	cacheDir string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.a, "a", "", "first input image (path or http(s) URL)")
	flag.StringVar(&cfg.b, "b", "", "second input image (path or http(s) URL)")
	flag.StringVar(&cfg.output, "o", "fused.png", "output image (.png, .jpg, .bmp, .tiff)")
	flag.IntVar(&cfg.levels, "levels", 3, "number of wavelet decomposition levels")
	flag.StringVar(&cfg.space, "space", "rgb", "color space to fuse in (rgb, yuv)")
	flag.StringVar(&cfg.lowBand, "lowband", "", "fixed low band block WxH averaged instead of the LL band")
	flag.BoolVar(&cfg.fit, "fit", false, "scale the second image to the size of the first")
	flag.IntVar(&cfg.quality, "quality", 95, "JPEG output quality")
	flag.StringVar(&cfg.cacheDir, "cache", filepath.Join(os.TempDir(), "wavefusion_http_cache"), "HTTP cache directory for URL inputs")
	flag.Parse()

	if cfg.a == "" || cfg.b == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		log.Fatalf("Failed to fuse images: %v", err)
	}
}

func run(ctx context.Context, cfg config) error {
	opts, err := cfg.options()
	if err != nil {
		return err
	}
	f, err := wavefusion.New(opts...)
	if err != nil {
		return err
	}

	l := newLoader(cfg.cacheDir)
	a, err := l.load(cfg.a)
	if err != nil {
		return err
	}
	b, err := l.load(cfg.b)
	if err != nil {
		return err
	}
	if cfg.fit && a.Bounds().Size() != b.Bounds().Size() {
		log.Printf("Scaling %s from %v to %v\n", cfg.b, b.Bounds().Size(), a.Bounds().Size())
		b = fit(b, a.Bounds().Size())
	}
	if a.Bounds().Size() != b.Bounds().Size() {
		return fmt.Errorf("%w: %v and %v, use -fit to scale the second image",
			wavefusion.ErrShapeMismatch, a.Bounds().Size(), b.Bounds().Size())
	}

	unit := 1 << f.Levels()
	ca, cb := crop(a, unit), crop(b, unit)
	if ca.Bounds().Size() != a.Bounds().Size() {
		log.Printf("Cropping inputs from %v to %v\n", a.Bounds().Size(), ca.Bounds().Size())
	}

	start := time.Now()
	fused, err := f.Fuse(ctx, ca, cb)
	if err != nil {
		return err
	}
	log.Printf("Fused %v in %v (levels=%d space=%s)\n", fused.Bounds().Size(), time.Since(start), f.Levels(), f.ColorSpace())

	report(ca, cb, fused)
	if err := save(cfg.output, fused, cfg.quality); err != nil {
		return err
	}
	log.Printf("Wrote %s\n", cfg.output)
	return nil
}

func (cfg config) options() ([]wavefusion.Option, error) {
	space, err := wavefusion.ParseColorSpace(cfg.space)
	if err != nil {
		return nil, err
	}
	opts := []wavefusion.Option{
		wavefusion.WithLevels(cfg.levels),
		wavefusion.WithColorSpace(space),
	}
	if cfg.lowBand != "" {
		size, err := parseSize(cfg.lowBand)
		if err != nil {
			return nil, err
		}
		opts = append(opts, wavefusion.WithLowBand(size.X, size.Y))
	}
	return opts, nil
}

// parseSize parses "WxH".
func parseSize(s string) (image.Point, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return image.Point{}, fmt.Errorf("invalid size %q, want WxH", s)
	}
	width, werr := strconv.Atoi(w)
	height, herr := strconv.Atoi(h)
	if err := errors.Join(werr, herr); err != nil {
		return image.Point{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return image.Pt(width, height), nil
}

func report(a, b, fused image.Image) {
	log.Printf("  a:     %s\n", metrics.Evaluate(a))
	log.Printf("  b:     %s\n", metrics.Evaluate(b))
	log.Printf("  fused: %s\n", metrics.Evaluate(fused))
	for name, ref := range map[string]image.Image{"a": a, "b": b} {
		c, err := metrics.Compare(ref, fused)
		if err != nil {
			log.Printf("  compare %s: %v\n", name, err)
			continue
		}
		log.Printf("  vs %s:  psnr=%.2fdB ssim=%.4f\n", name, c.PSNR, c.SSIM)
	}
}
