package db

import (
	"database/sql"
	"fmt"
)

// DetailedResult contains all joined information for a result
type DetailedResult struct {
	ID int64

	// Image info
	ImageURI string
	Width    int
	Height   int

	// Parameters
	Levels     int
	ColorSpace string
	LowBandW   int
	LowBandH   int

	// Metrics
	PSNR             float64
	SSIM             float64
	Entropy          float64
	StdDev           float64
	SpatialFrequency float64
	AverageGradient  float64
	ElapsedMS        float64

	FusedImagePath string
}

const detailedColumns = `
	id, image_uri, width, height,
	levels, color_space, low_band_w, low_band_h,
	psnr, ssim, entropy, std_dev, spatial_frequency, average_gradient, elapsed_ms,
	fused_image_path`

// QueryDetailed executes a query on the results_detailed view. The query
// must select the view's columns in their declared order.
func (d *DB) QueryDetailed(query string, args ...any) ([]*DetailedResult, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var results []*DetailedResult
	for rows.Next() {
		var r DetailedResult
		err := rows.Scan(
			&r.ID,
			&r.ImageURI,
			&r.Width,
			&r.Height,
			&r.Levels,
			&r.ColorSpace,
			&r.LowBandW,
			&r.LowBandH,
			&r.PSNR,
			&r.SSIM,
			&r.Entropy,
			&r.StdDev,
			&r.SpatialFrequency,
			&r.AverageGradient,
			&r.ElapsedMS,
			&r.FusedImagePath,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}

// GetResultsAboveSSIM returns results with SSIM above threshold
func (d *DB) GetResultsAboveSSIM(minSSIM float64) ([]*DetailedResult, error) {
	return d.QueryDetailed(`
		SELECT `+detailedColumns+` FROM results_detailed
		WHERE ssim >= ?
		ORDER BY ssim DESC
	`, minSSIM)
}

// GetResultsByImageSize returns results for specific image dimensions
func (d *DB) GetResultsByImageSize(width, height int) ([]*DetailedResult, error) {
	return d.QueryDetailed(`
		SELECT `+detailedColumns+` FROM results_detailed
		WHERE width = ? AND height = ?
		ORDER BY ssim DESC, psnr DESC
	`, width, height)
}

// GetResultsByLevels returns results for a specific decomposition depth
func (d *DB) GetResultsByLevels(levels int) ([]*DetailedResult, error) {
	return d.QueryDetailed(`
		SELECT `+detailedColumns+` FROM results_detailed
		WHERE levels = ?
		ORDER BY ssim DESC, psnr DESC
	`, levels)
}

// ParameterStats holds statistics for a parameter combination
type ParameterStats struct {
	Levels      int
	ColorSpace  string
	LowBandW    int
	LowBandH    int
	TotalTests  int
	AvgPSNR     float64
	AvgSSIM     float64
	AvgSF       float64
	AvgElapseMS float64
}

// GetBestParameters returns parameter combinations ordered by mean SSIM
func (d *DB) GetBestParameters(minSSIM float64) ([]*ParameterStats, error) {
	rows, err := d.db.Query(`
		SELECT
			levels, color_space, low_band_w, low_band_h,
			COUNT(*) as total_tests,
			AVG(psnr) as avg_psnr,
			AVG(ssim) as avg_ssim,
			AVG(spatial_frequency) as avg_sf,
			AVG(elapsed_ms) as avg_elapsed
		FROM results_detailed
		GROUP BY levels, color_space, low_band_w, low_band_h
		HAVING avg_ssim >= ?
		ORDER BY avg_ssim DESC, avg_psnr DESC
	`, minSSIM)
	if err != nil {
		return nil, fmt.Errorf("failed to query best parameters: %w", err)
	}
	defer rows.Close()

	var stats []*ParameterStats
	for rows.Next() {
		var s ParameterStats
		err := rows.Scan(
			&s.Levels, &s.ColorSpace, &s.LowBandW, &s.LowBandH,
			&s.TotalTests, &s.AvgPSNR, &s.AvgSSIM, &s.AvgSF, &s.AvgElapseMS,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}

// LevelStats holds statistics for one level count in one color space,
// over results that use the LL band of the level count
type LevelStats struct {
	Levels     int
	ColorSpace string
	TotalTests int
	AvgPSNR    float64
	AvgSSIM    float64
	AvgSF      float64
	AvgAG      float64
}

// GetLevelStats returns statistics grouped by level count and color space
func (d *DB) GetLevelStats() ([]*LevelStats, error) {
	rows, err := d.db.Query(`
		SELECT
			levels, color_space,
			COUNT(*) as total_tests,
			AVG(psnr) as avg_psnr,
			AVG(ssim) as avg_ssim,
			AVG(spatial_frequency) as avg_sf,
			AVG(average_gradient) as avg_ag
		FROM results_detailed
		WHERE low_band_w = 0 AND low_band_h = 0
		GROUP BY levels, color_space
		ORDER BY color_space, levels
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query level stats: %w", err)
	}
	defer rows.Close()

	var stats []*LevelStats
	for rows.Next() {
		var s LevelStats
		err := rows.Scan(
			&s.Levels, &s.ColorSpace,
			&s.TotalTests, &s.AvgPSNR, &s.AvgSSIM, &s.AvgSF, &s.AvgAG,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}

// ImageSizeStats holds statistics for an image size
type ImageSizeStats struct {
	Width      int
	Height     int
	TotalTests int
	AvgPSNR    float64
	AvgSSIM    float64
	AvgElapsed float64
}

// GetImageSizeStats returns statistics grouped by image size
func (d *DB) GetImageSizeStats() ([]*ImageSizeStats, error) {
	rows, err := d.db.Query(`
		SELECT
			width, height,
			COUNT(*) as total_tests,
			AVG(psnr) as avg_psnr,
			AVG(ssim) as avg_ssim,
			AVG(elapsed_ms) as avg_elapsed
		FROM results_detailed
		GROUP BY width, height
		ORDER BY width, height
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query image size stats: %w", err)
	}
	defer rows.Close()

	var stats []*ImageSizeStats
	for rows.Next() {
		var s ImageSizeStats
		err := rows.Scan(
			&s.Width, &s.Height,
			&s.TotalTests, &s.AvgPSNR, &s.AvgSSIM, &s.AvgElapsed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}

// ExecuteRawQuery executes a raw SQL query and returns rows
func (d *DB) ExecuteRawQuery(query string, args ...any) (*sql.Rows, error) {
	return d.db.Query(query, args...)
}
