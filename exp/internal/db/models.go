package db

type (
	// Image represents source image URL
	Image struct {
		ID  int64
		URI string // Unique constraint
	}

	// ImageSize represents resized dimensions
	ImageSize struct {
		ID      int64
		ImageID int64
		Width   int
		Height  int
		// Unique constraint on (ImageID, Width, Height)
	}

	// FusionParam represents fusion parameters
	FusionParam struct {
		ID         int64
		Levels     int
		ColorSpace string
		// Zero means the LL band implied by Levels
		LowBandW int
		LowBandH int
		// Unique constraint on (Levels, ColorSpace, LowBandW, LowBandH)
	}

	// Result represents one fusion of a multi-focus pair
	Result struct {
		ID            int64
		ImageSizeID   int64
		FusionParamID int64

		FusedImagePath string

		// Full-reference metrics against the sharp source
		PSNR float64
		SSIM float64

		// No-reference metrics of the fused image
		Entropy          float64
		StdDev           float64
		SpatialFrequency float64
		AverageGradient  float64

		ElapsedMS float64

		// Unique constraint on (ImageSizeID, FusionParamID)
	}
)
