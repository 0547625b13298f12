package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"

	"exp/internal/db"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func main() {
	dbPath := flag.String("db", "/tmp/wavefusion-sweep/results.db", "Path to database file")
	outputDir := flag.String("out", "/tmp/wavefusion-sweep/charts", "directory for the HTML charts")
	flag.Parse()

	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	levelStats, err := database.GetLevelStats()
	if err != nil {
		log.Fatalf("Failed to get level stats: %v", err)
	}
	sizeStats, err := database.GetImageSizeStats()
	if err != nil {
		log.Fatalf("Failed to get image size stats: %v", err)
	}
	if len(levelStats) == 0 {
		log.Fatal("No results found in database")
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	outputs := []struct {
		file   string
		render func(path string) error
	}{
		{"psnr_by_levels.html", func(path string) error {
			return levelChart(levelStats, "Mean PSNR by decomposition depth", "PSNR (dB)",
				func(s *db.LevelStats) float64 { return s.AvgPSNR }, path)
		}},
		{"ssim_by_levels.html", func(path string) error {
			return levelChart(levelStats, "Mean SSIM by decomposition depth", "SSIM",
				func(s *db.LevelStats) float64 { return s.AvgSSIM }, path)
		}},
		{"sf_by_levels.html", func(path string) error {
			return levelChart(levelStats, "Mean spatial frequency by decomposition depth", "SF",
				func(s *db.LevelStats) float64 { return s.AvgSF }, path)
		}},
		{"elapsed_by_size.html", func(path string) error {
			return sizeChart(sizeStats, path)
		}},
	}
	for _, c := range outputs {
		path := filepath.Join(*outputDir, c.file)
		if err := c.render(path); err != nil {
			log.Printf("Failed to generate %s: %v\n", c.file, err)
			continue
		}
		log.Printf("Generated: %s\n", path)
	}
}

// levelChart draws one line per color space of value over the level count.
func levelChart(stats []*db.LevelStats, title, yName string, value func(*db.LevelStats) float64, outputPath string) error {
	var levels []int
	bySpace := make(map[string]map[int]float64)
	for _, s := range stats {
		if !slices.Contains(levels, s.Levels) {
			levels = append(levels, s.Levels)
		}
		if bySpace[s.ColorSpace] == nil {
			bySpace[s.ColorSpace] = make(map[int]float64)
		}
		bySpace[s.ColorSpace][s.Levels] = value(s)
	}
	slices.Sort(levels)

	xLabels := make([]string, len(levels))
	for i, l := range levels {
		xLabels[i] = fmt.Sprintf("L%d", l)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "LL band averaged, details by max magnitude",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Levels", Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName, Type: "value"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "10%"}),
	)
	line.SetXAxis(xLabels)

	spaces := make([]string, 0, len(bySpace))
	for space := range bySpace {
		spaces = append(spaces, space)
	}
	slices.Sort(spaces)
	for _, space := range spaces {
		data := make([]opts.LineData, len(levels))
		for i, l := range levels {
			v, ok := bySpace[space][l]
			if !ok {
				data[i] = opts.LineData{Value: "-"}
				continue
			}
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(space, data)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return line.Render(f)
}

func sizeChart(stats []*db.ImageSizeStats, outputPath string) error {
	xLabels := make([]string, len(stats))
	elapsed := make([]opts.BarData, len(stats))
	for i, s := range stats {
		xLabels[i] = fmt.Sprintf("%dx%d", s.Width, s.Height)
		elapsed[i] = opts.BarData{Value: s.AvgElapsed, Name: fmt.Sprintf("n=%d", s.TotalTests)}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Mean fusion time by image size"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Size", Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ms", Type: "value"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(xLabels).AddSeries("elapsed", elapsed)

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return bar.Render(f)
}
