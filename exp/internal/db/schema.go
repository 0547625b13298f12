package db

const schema = `
-- Images table
CREATE TABLE IF NOT EXISTS images (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uri TEXT NOT NULL UNIQUE
);

-- Image sizes table
CREATE TABLE IF NOT EXISTS image_sizes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    image_id INTEGER NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    FOREIGN KEY (image_id) REFERENCES images(id) ON DELETE CASCADE,
    UNIQUE(image_id, width, height)
);

-- Fusion parameters table (low_band_w = low_band_h = 0 means the LL band of the level count)
CREATE TABLE IF NOT EXISTS fusion_params (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    levels INTEGER NOT NULL,
    color_space TEXT NOT NULL,
    low_band_w INTEGER NOT NULL DEFAULT 0,
    low_band_h INTEGER NOT NULL DEFAULT 0,
    UNIQUE(levels, color_space, low_band_w, low_band_h)
);

-- Results table
CREATE TABLE IF NOT EXISTS results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    image_size_id INTEGER NOT NULL,
    fusion_param_id INTEGER NOT NULL,

    fused_image_path TEXT NOT NULL,

    psnr REAL NOT NULL,
    ssim REAL NOT NULL,
    entropy REAL NOT NULL,
    std_dev REAL NOT NULL,
    spatial_frequency REAL NOT NULL,
    average_gradient REAL NOT NULL,
    elapsed_ms REAL NOT NULL,

    FOREIGN KEY (image_size_id) REFERENCES image_sizes(id) ON DELETE CASCADE,
    FOREIGN KEY (fusion_param_id) REFERENCES fusion_params(id) ON DELETE CASCADE,
    UNIQUE(image_size_id, fusion_param_id)
);

-- Indexes for performance
CREATE INDEX IF NOT EXISTS idx_results_psnr ON results(psnr);
CREATE INDEX IF NOT EXISTS idx_results_ssim ON results(ssim);
CREATE INDEX IF NOT EXISTS idx_image_sizes_image ON image_sizes(image_id);
CREATE INDEX IF NOT EXISTS idx_image_sizes_dims ON image_sizes(width, height);
CREATE INDEX IF NOT EXISTS idx_fusion_params_levels ON fusion_params(levels);

-- View for easy querying with all details
CREATE VIEW IF NOT EXISTS results_detailed AS
SELECT
    r.id,

    i.uri as image_uri,
    isz.width,
    isz.height,

    fp.levels,
    fp.color_space,
    fp.low_band_w,
    fp.low_band_h,

    r.psnr,
    r.ssim,
    r.entropy,
    r.std_dev,
    r.spatial_frequency,
    r.average_gradient,
    r.elapsed_ms,
    r.fused_image_path
FROM results r
JOIN image_sizes isz ON r.image_size_id = isz.id
JOIN images i ON isz.image_id = i.id
JOIN fusion_params fp ON r.fusion_param_id = fp.id;
`
