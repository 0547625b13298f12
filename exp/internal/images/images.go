package images

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "image/png"

	"github.com/disintegration/gift"
	"github.com/yyyoichi/httpcache-go"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ParseURLs reads one URL per line, skipping blank lines and anything that
// is not an http(s) URL.
func ParseURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && strings.HasPrefix(line, "http") {
			urls = append(urls, line)
		}
	}
	return urls, scanner.Err()
}

// rateLimitedClient wraps an HTTP original client with rate limiting between requests
// Thread-safe for concurrent requests
type rateLimitedClient struct {
	client   *http.Client
	interval time.Duration
	lastCall time.Time
	mu       sync.Mutex
}

func newRateLimitedClient(interval time.Duration) *rateLimitedClient {
	return &rateLimitedClient{
		client:   http.DefaultClient,
		interval: interval,
	}
}

func (r *rateLimitedClient) Do(req *http.Request) (*http.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Wait if needed to maintain the interval between requests
	elapsed := time.Since(r.lastCall)
	if elapsed < r.interval {
		time.Sleep(r.interval - elapsed)
	}

	resp, err := r.client.Do(req)
	r.lastCall = time.Now()

	return resp, err
}

// trimClient serves ?w=&h= requests by fetching the bare URL through client
// and center-cropping and scaling the result to w x h.
type trimClient struct {
	client httpcache.Client
}

func (r *trimClient) Do(req *http.Request) (*http.Response, error) {
	// remove query parameters from the URL
	u := req.URL
	q := u.Query()
	u.RawQuery = ""
	req.URL = u
	targetWidth, err := strconv.Atoi(q.Get("w"))
	if err != nil {
		return nil, err
	}
	targetHeight, err := strconv.Atoi(q.Get("h"))
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	src, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	dist := Resize(src, targetWidth, targetHeight)
	var buf bytes.Buffer
	err = jpeg.Encode(&buf, dist, &jpeg.Options{Quality: 100})
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	resp.Body = io.NopCloser(&buf)
	return resp, nil
}

// Fetcher downloads source images through an on-disk HTTP cache.
type Fetcher struct {
	cacheDir string
	client   httpcache.Client
}

func NewFetcher(cacheDir string) *Fetcher {
	original := httpcache.Client{
		Client:  newRateLimitedClient(250 * time.Millisecond),
		Cache:   httpcache.NewStorageCache(cacheDir),
		Handler: httpcache.NewDefaultHandler(),
	}
	return &Fetcher{
		cacheDir: cacheDir,
		client: httpcache.Client{
			Client:  &trimClient{client: original},
			Cache:   httpcache.NewStorageCache(cacheDir),
			Handler: httpcache.NewDefaultHandler(),
		},
	}
}

// FetchImageWithSize fetches the image at the given URL and resizes/crops it to width x height.
func (f *Fetcher) FetchImageWithSize(uri string, width, height int) (image.Image, error) {
	uri = getUri(uri, width, height)
	resp, err := f.client.Get(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %d", resp.StatusCode)
	}

	img, err := jpeg.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode jpeg: %w", err)
	}

	return img, nil
}

// CachedImagePath returns where the resized image of uri is cached.
func (f *Fetcher) CachedImagePath(uri string, width, height int) (string, error) {
	u, err := url.ParseRequestURI(getUri(uri, width, height))
	if err != nil {
		return "", err
	}
	o := httpcache.NewHttpResponseObject(u)
	return filepath.Join(f.cacheDir, o.Key()), nil
}

func getUri(uri string, width, height int) string {
	// Add resolution parameters
	sizeParams := fmt.Sprintf("w=%d&h=%d", width, height)
	if strings.Contains(uri, "?") {
		uri += "&" + sizeParams
	} else {
		uri += "?" + sizeParams
	}
	return uri
}

// Resize center-crops src to the aspect ratio of width x height and scales
// it to that size.
func Resize(src image.Image, width, height int) *image.RGBA {
	bounds := src.Bounds()
	srcRect := bounds
	srcRatio := float64(bounds.Dx()) / float64(bounds.Dy())
	targetRatio := float64(width) / float64(height)

	if srcRatio > targetRatio {
		// source too wide - center crop
		newWidth := int(float64(bounds.Dy()) * targetRatio)
		x := bounds.Min.X + (bounds.Dx()-newWidth)/2
		srcRect = image.Rect(x, bounds.Min.Y, x+newWidth, bounds.Max.Y)
	} else if srcRatio < targetRatio {
		// source too tall - center crop
		newHeight := int(float64(bounds.Dx()) / targetRatio)
		y := bounds.Min.Y + (bounds.Dy()-newHeight)/2
		srcRect = image.Rect(bounds.Min.X, y, bounds.Max.X, y+newHeight)
	}

	// resize with higher quality filter
	dist := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dist, dist.Bounds(), src, srcRect, draw.Src, nil)
	return dist
}

// Defocus applies a Gaussian blur of the given sigma to src. The result is
// rebased to the origin.
func Defocus(src image.Image, sigma float32) *image.RGBA {
	g := gift.New(gift.GaussianBlur(sigma))
	dist := image.NewRGBA(g.Bounds(src.Bounds()))
	g.Draw(dist, src)
	return dist
}

// MultiFocusPair simulates two shots of src focused on different planes:
// near keeps the left half sharp and defocuses the right half, far does the
// opposite. Both are rebased to the origin.
func MultiFocusPair(src image.Image, sigma float32) (near, far *image.RGBA) {
	b := src.Bounds()
	blurred := Defocus(src, sigma)
	sharp := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(sharp, image.Point{}, src, b, draw.Src, nil)

	mid := b.Dx() / 2
	left := image.Rect(0, 0, mid, b.Dy())
	right := image.Rect(mid, 0, b.Dx(), b.Dy())

	near = image.NewRGBA(sharp.Bounds())
	draw.Copy(near, left.Min, sharp, left, draw.Src, nil)
	draw.Copy(near, right.Min, blurred, right, draw.Src, nil)

	far = image.NewRGBA(sharp.Bounds())
	draw.Copy(far, left.Min, blurred, left, draw.Src, nil)
	draw.Copy(far, right.Min, sharp, right, draw.Src, nil)
	return near, far
}
