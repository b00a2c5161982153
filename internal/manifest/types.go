package manifest

// Manifest is the top-level output of a bhash build.
type Manifest struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Profile     string           `json:"profile"`
	BasePath    string           `json:"base_path"`
	BuildInfo   *BuildInfo       `json:"build_info,omitempty"`
	Assets      map[string]Asset `json:"assets"`
	Stats       Stats            `json:"stats"`
}

// BuildInfo captures build-time parameters. A later incremental build
// reuses an asset only when these match.
type BuildInfo struct {
	Workers     int     `json:"workers"`
	ComponentsX int     `json:"components_x"`
	ComponentsY int     `json:"components_y"`
	MaxDim      int     `json:"max_dim"`
	Punch       float64 `json:"punch"`
}

// Asset describes a single source image and its placeholder.
type Asset struct {
	Original    OriginalInfo `json:"original"`
	BlurHash    string       `json:"blurhash"`
	ComponentsX int          `json:"components_x"`
	ComponentsY int          `json:"components_y"`
	AspectRatio float64      `json:"aspect_ratio"`        // width / height
	AvgColor    *[3]uint8    `json:"avg_color,omitempty"` // [R,G,B] 0-255, from the DC term
	Preview     *Preview     `json:"preview,omitempty"`
}

// OriginalInfo holds metadata about the source image.
type OriginalInfo struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Format      string `json:"format"`
	Size        int64  `json:"size"`
	HasAlpha    bool   `json:"has_alpha"`
	ContentHash string `json:"content_hash"` // first 16 hex chars of xxhash64
}

// Preview is a rendered placeholder image written next to the manifest.
type Preview struct {
	Format string `json:"format"` // "png", "jpeg", "gif", "bmp", "tiff"
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"` // bytes on disk
	Path   string `json:"path"` // relative to base_path
}

// Stats aggregates build metrics.
type Stats struct {
	TotalInputBytes   int64 `json:"total_input_bytes"`
	TotalPreviewBytes int64 `json:"total_preview_bytes"`
	TotalHashBytes    int   `json:"total_hash_bytes"`
	TotalAssets       int   `json:"total_assets"`
	TotalPreviews     int   `json:"total_previews"`
	Reused            int   `json:"reused,omitempty"` // assets carried over by an incremental build
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1
