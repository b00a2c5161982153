package pipeline

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/AnyUserName/bhash/blurhash"
	"github.com/AnyUserName/bhash/internal/hasher"
	"github.com/AnyUserName/bhash/internal/manifest"
	"github.com/AnyUserName/bhash/internal/preview"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// processResult holds the result of processing a single source image.
type processResult struct {
	key    string
	asset  manifest.Asset
	err    error
	reused bool
}

// processImage handles a single source image: hash, decode, downscale,
// encode, preview.
func processImage(src Source, cfg Config, previous map[string]manifest.Asset) processResult {
	result := processResult{key: src.Key}

	data, err := os.ReadFile(src.AbsPath)
	if err != nil {
		result.err = fmt.Errorf("read %s: %w", src.RelPath, err)
		return result
	}
	contentHash := hasher.ContentHash(data, hasher.DefaultLen)

	if prev, ok := previous[src.Key]; ok && canReuse(prev, contentHash, cfg) {
		result.asset = prev
		result.reused = true
		return result
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		result.err = fmt.Errorf("decode %s: %w", src.RelPath, err)
		return result
	}

	bounds := img.Bounds()
	origW, origH := bounds.Dx(), bounds.Dy()
	if origW == 0 || origH == 0 {
		result.err = fmt.Errorf("decode %s: empty image", src.RelPath)
		return result
	}

	pr := cfg.Profile
	// Downscale first; the hash keeps only low frequencies.
	small := imaging.Fit(img, pr.MaxDim, pr.MaxDim, imaging.Box)
	hash, err := blurhash.Codec{Workers: 1}.Encode(blurhash.FromImage(small), pr.ComponentsX, pr.ComponentsY)
	if err != nil {
		result.err = fmt.Errorf("encode %s: %w", src.RelPath, err)
		return result
	}
	avg, err := blurhash.AverageColor(hash)
	if err != nil {
		result.err = fmt.Errorf("encode %s: %w", src.RelPath, err)
		return result
	}

	result.asset = manifest.Asset{
		Original: manifest.OriginalInfo{
			Width:       origW,
			Height:      origH,
			Format:      src.Format,
			Size:        src.Size,
			HasAlpha:    hasAlpha(img),
			ContentHash: contentHash,
		},
		BlurHash:    hash,
		ComponentsX: pr.ComponentsX,
		ComponentsY: pr.ComponentsY,
		AspectRatio: float64(origW) / float64(origH),
		AvgColor:    &[3]uint8{avg.R, avg.G, avg.B},
	}

	if cfg.Previews {
		pw, ph := pr.PreviewSize(origW, origH)
		w, err := preview.Write(hash, cfg.OutputDir, PreviewDir, preview.Options{
			Width: pw, Height: ph, Punch: pr.Punch, Format: pr.PreviewFormat,
		})
		if err != nil {
			result.err = fmt.Errorf("preview %s: %w", src.RelPath, err)
			return result
		}
		result.asset.Preview = &manifest.Preview{
			Format: w.Format, Width: w.Width, Height: w.Height, Size: w.Size, Path: w.Path,
		}
	}

	return result
}

// canReuse reports whether a previous asset still describes the source:
// same bytes, same components and, when previews are wanted, a preview in
// the requested format that is still on disk.
func canReuse(prev manifest.Asset, contentHash string, cfg Config) bool {
	if prev.Original.ContentHash != contentHash ||
		prev.ComponentsX != cfg.Profile.ComponentsX || prev.ComponentsY != cfg.Profile.ComponentsY {
		return false
	}
	if !cfg.Previews {
		return prev.Preview == nil
	}
	if prev.Preview == nil {
		return false
	}
	f, err := preview.ParseFormat(cfg.Profile.PreviewFormat)
	if err != nil || prev.Preview.Format != strings.ToLower(f.String()) {
		return false
	}
	pw, ph := cfg.Profile.PreviewSize(prev.Original.Width, prev.Original.Height)
	if prev.Preview.Width != pw || prev.Preview.Height != ph {
		return false
	}
	_, err = os.Stat(filepath.Join(cfg.OutputDir, filepath.FromSlash(prev.Preview.Path)))
	return err == nil
}

// hasAlpha reports whether any pixel is not fully opaque.
func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}
