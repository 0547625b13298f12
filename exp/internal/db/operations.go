package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// InsertImage inserts or gets an existing image by URI
func (d *DB) InsertImage(uri string) (int64, error) {
	// Try to get existing
	var id int64
	err := d.db.QueryRow("SELECT id FROM images WHERE uri = ?", uri).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to query image: %w", err)
	}

	// Insert new
	result, err := d.db.Exec("INSERT INTO images (uri) VALUES (?)", uri)
	if err != nil {
		return 0, fmt.Errorf("failed to insert image: %w", err)
	}
	return result.LastInsertId()
}

// InsertImageSize inserts or gets an existing image size
func (d *DB) InsertImageSize(imageID int64, width, height int) (int64, error) {
	// Try to get existing
	var id int64
	err := d.db.QueryRow(
		"SELECT id FROM image_sizes WHERE image_id = ? AND width = ? AND height = ?",
		imageID, width, height,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to query image size: %w", err)
	}

	// Insert new
	result, err := d.db.Exec(
		"INSERT INTO image_sizes (image_id, width, height) VALUES (?, ?, ?)",
		imageID, width, height,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert image size: %w", err)
	}
	return result.LastInsertId()
}

// InsertFusionParam inserts or gets existing fusion parameters
func (d *DB) InsertFusionParam(p FusionParam) (int64, error) {
	// Try to get existing
	var id int64
	err := d.db.QueryRow(
		"SELECT id FROM fusion_params WHERE levels = ? AND color_space = ? AND low_band_w = ? AND low_band_h = ?",
		p.Levels, p.ColorSpace, p.LowBandW, p.LowBandH,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to query fusion param: %w", err)
	}

	// Insert new
	result, err := d.db.Exec(
		"INSERT INTO fusion_params (levels, color_space, low_band_w, low_band_h) VALUES (?, ?, ?, ?)",
		p.Levels, p.ColorSpace, p.LowBandW, p.LowBandH,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert fusion param: %w", err)
	}
	return result.LastInsertId()
}

// InsertResult inserts a result (or updates if already exists)
func (d *DB) InsertResult(result *Result) (int64, error) {
	// Check if result already exists
	var existingID int64
	err := d.db.QueryRow(
		"SELECT id FROM results WHERE image_size_id = ? AND fusion_param_id = ?",
		result.ImageSizeID, result.FusionParamID,
	).Scan(&existingID)

	if err == nil {
		// Update existing
		_, err = d.db.Exec(`
			UPDATE results SET
				fused_image_path = ?,
				psnr = ?,
				ssim = ?,
				entropy = ?,
				std_dev = ?,
				spatial_frequency = ?,
				average_gradient = ?,
				elapsed_ms = ?
			WHERE id = ?`,
			result.FusedImagePath,
			result.PSNR,
			result.SSIM,
			result.Entropy,
			result.StdDev,
			result.SpatialFrequency,
			result.AverageGradient,
			result.ElapsedMS,
			existingID,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to update result: %w", err)
		}
		return existingID, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to query existing result: %w", err)
	}

	// Insert new
	res, err := d.db.Exec(`
		INSERT INTO results (
			image_size_id, fusion_param_id,
			fused_image_path,
			psnr, ssim,
			entropy, std_dev, spatial_frequency, average_gradient,
			elapsed_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ImageSizeID,
		result.FusionParamID,
		result.FusedImagePath,
		result.PSNR,
		result.SSIM,
		result.Entropy,
		result.StdDev,
		result.SpatialFrequency,
		result.AverageGradient,
		result.ElapsedMS,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert result: %w", err)
	}
	return res.LastInsertId()
}

// GetImage retrieves an image by ID
func (d *DB) GetImage(id int64) (*Image, error) {
	var img Image
	err := d.db.QueryRow("SELECT id, uri FROM images WHERE id = ?", id).Scan(&img.ID, &img.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return &img, nil
}

// GetImageSize retrieves an image size by ID
func (d *DB) GetImageSize(id int64) (*ImageSize, error) {
	var size ImageSize
	err := d.db.QueryRow(
		"SELECT id, image_id, width, height FROM image_sizes WHERE id = ?", id,
	).Scan(&size.ID, &size.ImageID, &size.Width, &size.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to get image size: %w", err)
	}
	return &size, nil
}

// GetFusionParam retrieves fusion parameters by ID
func (d *DB) GetFusionParam(id int64) (*FusionParam, error) {
	var param FusionParam
	err := d.db.QueryRow(
		"SELECT id, levels, color_space, low_band_w, low_band_h FROM fusion_params WHERE id = ?", id,
	).Scan(&param.ID, &param.Levels, &param.ColorSpace, &param.LowBandW, &param.LowBandH)
	if err != nil {
		return nil, fmt.Errorf("failed to get fusion param: %w", err)
	}
	return &param, nil
}

// ListResults retrieves all results
func (d *DB) ListResults() ([]*Result, error) {
	rows, err := d.db.Query(`
		SELECT id, image_size_id, fusion_param_id,
		       fused_image_path,
		       psnr, ssim,
		       entropy, std_dev, spatial_frequency, average_gradient,
		       elapsed_ms
		FROM results
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		var r Result
		err := rows.Scan(
			&r.ID, &r.ImageSizeID, &r.FusionParamID,
			&r.FusedImagePath,
			&r.PSNR, &r.SSIM,
			&r.Entropy, &r.StdDev, &r.SpatialFrequency, &r.AverageGradient,
			&r.ElapsedMS,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}

// CountResults counts total results
func (d *DB) CountResults() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM results").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return count, nil
}
