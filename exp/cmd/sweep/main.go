package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"exp/internal/db"
	"exp/internal/images"
	"exp/internal/shuffle"

	"github.com/yyyoichi/wavefusion"
	"github.com/yyyoichi/wavefusion/metrics"
	"golang.org/x/image/draw"
)

// maxPSNR replaces +Inf for fused images identical to the source.
const maxPSNR = 100.0

var imageSizes = [][2]int{
	{1920, 1080}, // FHD
	{1280, 720},  // HD
	{640, 360},   // 360p
}

func paramGrid() []db.FusionParam {
	var grid []db.FusionParam
	for _, space := range []string{"rgb", "yuv"} {
		for levels := 1; levels <= 5; levels++ {
			grid = append(grid, db.FusionParam{Levels: levels, ColorSpace: space})
		}
		// fixed block kept for comparison with the LL band
		grid = append(grid, db.FusionParam{Levels: 3, ColorSpace: space, LowBandW: 125, LowBandH: 125})
	}
	return grid
}

type task struct {
	sizeID  int64
	paramID int64
	param   db.FusionParam
	name    string
}

type result struct {
	task   task
	record *db.Result
}

func main() {
	urlsPath := flag.String("urls", "image_urls.txt", "file with one source image URL per line")
	dbPath := flag.String("db", "/tmp/wavefusion-sweep/results.db", "Path to database file")
	outDir := flag.String("out", "/tmp/wavefusion-sweep/fused", "directory for fused images")
	cacheDir := flag.String("cache", "/tmp/wavefusion_http_cache/", "HTTP cache directory")
	numImages := flag.Int("n", 10, "number of images to test (0 = all)")
	seed := flag.Int64("seed", 1234, "sampling seed")
	blur := flag.Float64("blur", 3, "gaussian sigma of the simulated out-of-focus half")
	flag.Parse()

	f, err := os.Open(*urlsPath)
	if err != nil {
		log.Fatalf("Failed to open URL list: %v", err)
	}
	urls, err := images.ParseURLs(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to read URL list: %v", err)
	}
	if len(urls) == 0 {
		log.Fatal("No image URLs found")
	}
	urls = shuffle.Sample(urls, *numImages, *seed)

	for _, dir := range []string{filepath.Dir(*dbPath), *outDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory: %v", err)
		}
	}
	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	grid := paramGrid()
	paramIDs := make([]int64, len(grid))
	for i, p := range grid {
		if paramIDs[i], err = database.InsertFusionParam(p); err != nil {
			log.Fatalf("Failed to insert fusion param: %v", err)
		}
	}

	ctx := context.Background()
	fetcher := images.NewFetcher(*cacheDir)
	log.Printf("Starting sweep with %d images x %d sizes x %d parameter sets\n", len(urls), len(imageSizes), len(grid))

	for i, url := range urls {
		log.Printf("\n[%d/%d] Testing image: %s\n", i+1, len(urls), url)
		imageID, err := database.InsertImage(url)
		if err != nil {
			log.Printf("Failed to insert image %s: %v", url, err)
			continue
		}

		for _, size := range imageSizes {
			width, height := size[0], size[1]
			log.Printf("  Size: %dx%d\n", width, height)

			sharp, err := fetcher.FetchImageWithSize(url, width, height)
			if err != nil {
				log.Printf("    Error fetching image: %v\n", err)
				continue
			}
			sizeID, err := database.InsertImageSize(imageID, width, height)
			if err != nil {
				log.Printf("    Failed to insert image size: %v\n", err)
				continue
			}
			near, far := images.MultiFocusPair(sharp, float32(*blur))

			tasks := make([]task, len(grid))
			for j, p := range grid {
				tasks[j] = task{
					sizeID:  sizeID,
					paramID: paramIDs[j],
					param:   p,
					name:    fmt.Sprintf("img%03d_%dx%d", i, width, height),
				}
			}
			for r := range runAll(ctx, tasks, sharp, near, far, *outDir) {
				if _, err := database.InsertResult(r.record); err != nil {
					log.Printf("Failed to insert result: %v", err)
				}
			}
		}
	}

	count, err := database.CountResults()
	if err != nil {
		log.Fatalf("Failed to count results: %v", err)
	}
	log.Printf("\n=== Done: %d results in %s ===\n", count, *dbPath)
}

// runAll fuses near and far once per task on GOMAXPROCS workers. Failed
// tasks are logged and dropped.
func runAll(ctx context.Context, tasks []task, sharp, near, far image.Image, outDir string) <-chan result {
	numWorkers := runtime.GOMAXPROCS(0)
	taskCh := make(chan task, numWorkers)
	resultCh := make(chan result, len(tasks))

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for range numWorkers {
		go func() {
			defer wg.Done()
			for t := range taskCh {
				record, err := runOne(ctx, t, sharp, near, far, outDir)
				if err != nil {
					log.Printf("    [FAIL] %s levels=%d space=%s lowband=%dx%d - %v\n",
						t.name, t.param.Levels, t.param.ColorSpace, t.param.LowBandW, t.param.LowBandH, err)
					continue
				}
				resultCh <- result{task: t, record: record}
			}
		}()
	}
	go func() {
		defer close(resultCh)
		wg.Wait()
	}()

	go func() {
		defer close(taskCh)
		for _, t := range tasks {
			taskCh <- t
		}
	}()
	return resultCh
}

func runOne(ctx context.Context, t task, sharp, near, far image.Image, outDir string) (*db.Result, error) {
	space, err := wavefusion.ParseColorSpace(t.param.ColorSpace)
	if err != nil {
		return nil, err
	}
	opts := []wavefusion.Option{
		wavefusion.WithLevels(t.param.Levels),
		wavefusion.WithColorSpace(space),
	}
	if t.param.LowBandW > 0 && t.param.LowBandH > 0 {
		opts = append(opts, wavefusion.WithLowBand(t.param.LowBandW, t.param.LowBandH))
	}

	f, err := wavefusion.New(opts...)
	if err != nil {
		return nil, err
	}
	unit := 1 << f.Levels()
	ref, a, b := cropTo(sharp, unit), cropTo(near, unit), cropTo(far, unit)

	start := time.Now()
	fused, err := f.Fuse(ctx, a, b)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	cmp, err := metrics.Compare(ref, fused)
	if err != nil {
		return nil, err
	}
	report := metrics.Evaluate(fused)

	path := filepath.Join(outDir, fmt.Sprintf("%s_l%d_%s_lb%dx%d.jpeg",
		t.name, t.param.Levels, t.param.ColorSpace, t.param.LowBandW, t.param.LowBandH))
	if err := saveJPEG(path, fused); err != nil {
		return nil, err
	}

	log.Printf("    [OK] %s levels=%d space=%s lowband=%dx%d - PSNR=%.2f SSIM=%.4f SF=%.2f T=%v\n",
		t.name, t.param.Levels, t.param.ColorSpace, t.param.LowBandW, t.param.LowBandH,
		cmp.PSNR, cmp.SSIM, report.SpatialFrequency, elapsed)

	return &db.Result{
		ImageSizeID:      t.sizeID,
		FusionParamID:    t.paramID,
		FusedImagePath:   path,
		PSNR:             math.Min(cmp.PSNR, maxPSNR),
		SSIM:             cmp.SSIM,
		Entropy:          report.Entropy,
		StdDev:           report.StdDev,
		SpatialFrequency: report.SpatialFrequency,
		AverageGradient:  report.AverageGradient,
		ElapsedMS:        float64(elapsed.Microseconds()) / 1000,
	}, nil
}

// cropTo trims img to dimensions divisible by unit.
func cropTo(img image.Image, unit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx()-b.Dx()%unit, b.Dy()-b.Dy()%unit
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	dist := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Copy(dist, image.Point{}, img, image.Rect(b.Min.X, b.Min.Y, b.Min.X+w, b.Min.Y+h), draw.Src, nil)
	return dist
}

func saveJPEG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 95}); err != nil {
		return fmt.Errorf("failed jpeg encode: %w", err)
	}
	return nil
}
