package main

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"

	"github.com/yyyoichi/httpcache-go"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type loader struct {
	client httpcache.Client
}

func newLoader(cacheDir string) *loader {
	return &loader{
		client: httpcache.Client{
			Client:  http.DefaultClient,
			Cache:   httpcache.NewStorageCache(cacheDir),
			Handler: httpcache.NewDefaultHandler(),
		},
	}
}

// load decodes a local file or an http(s) URL. Remote responses are cached
// on disk, so repeated runs against the same URL do not refetch it.
func (l *loader) load(name string) (image.Image, error) {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		resp, err := l.client.Get(name)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("bad status: %d", resp.StatusCode)
		}
		img, _, err := image.Decode(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", name, err)
		}
		return img, nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return img, nil
}

// crop returns the top-left part of img whose dimensions are the largest
// multiples of unit, rebased to the origin.
func crop(img image.Image, unit int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx()-b.Dx()%unit, b.Dy()-b.Dy()%unit
	dist := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Copy(dist, image.Point{}, img, image.Rect(b.Min.X, b.Min.Y, b.Min.X+w, b.Min.Y+h), draw.Src, nil)
	return dist
}

// fit scales img to size with a Catmull-Rom filter.
func fit(img image.Image, size image.Point) *image.RGBA {
	dist := image.NewRGBA(image.Rectangle{Max: size})
	draw.CatmullRom.Scale(dist, dist.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dist
}

// save encodes img by the extension of name.
func save(name string, img image.Image, quality int) (err error) {
	var encode func(f *os.File) error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		encode = func(f *os.File) error { return jpeg.Encode(f, img, &jpeg.Options{Quality: quality}) }
	case ".png":
		encode = func(f *os.File) error { return png.Encode(f, img) }
	case ".bmp":
		encode = func(f *os.File) error { return bmp.Encode(f, img) }
	case ".tif", ".tiff":
		encode = func(f *os.File) error { return tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate}) }
	default:
		return fmt.Errorf("unsupported output format %q", filepath.Ext(name))
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return encode(f)
}
