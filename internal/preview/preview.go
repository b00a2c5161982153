// Package preview renders BlurHash placeholders to image files.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/AnyUserName/bhash/blurhash"
	"github.com/AnyUserName/bhash/internal/hasher"
)

// DefaultQuality is the JPEG quality for previews.
const DefaultQuality = 70

// Options controls one rendered preview.
type Options struct {
	Width, Height int
	Punch         float64
	Format        string // png, jpeg, jpg, gif, bmp, tiff
	Quality       int    // jpeg only; 0 = DefaultQuality
}

// Written describes a preview file on disk.
type Written struct {
	Path   string // relative to the output dir
	Format string
	Width  int
	Height int
	Size   int64
}

// ParseFormat maps a format name or extension to an imaging.Format.
func ParseFormat(name string) (imaging.Format, error) {
	f, err := imaging.FormatFromExtension(strings.TrimPrefix(strings.ToLower(name), "."))
	if err != nil {
		return 0, fmt.Errorf("preview format %q: %w", name, err)
	}
	return f, nil
}

// Ext returns the canonical file extension for f.
func Ext(f imaging.Format) string {
	if f == imaging.JPEG {
		return "jpg"
	}
	return strings.ToLower(f.String())
}

// Render decodes hash into an opaque NRGBA image.
func Render(hash string, width, height int, punch float64) (*image.NRGBA, error) {
	img, err := blurhash.Codec{Workers: 1}.Decode(hash, width, height, punch)
	if err != nil {
		return nil, err
	}
	return img.NRGBA(), nil
}

// Encode serializes img in format f.
func Encode(img image.Image, f imaging.Format, quality int) ([]byte, error) {
	if quality <= 0 {
		quality = DefaultQuality
	}
	var buf bytes.Buffer
	err := imaging.Encode(&buf, img, f,
		imaging.JPEGQuality(quality),
		imaging.PNGCompressionLevel(png.BestCompression))
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders hash and stores it under dir/sub with a content-addressed
// name. An existing file with the same name is left untouched.
func Write(hash, dir, sub string, opts Options) (Written, error) {
	f, err := ParseFormat(opts.Format)
	if err != nil {
		return Written{}, err
	}
	ext := Ext(f)
	rel := filepath.ToSlash(filepath.Join(sub, hasher.PreviewName(hash, opts.Width, opts.Height, opts.Punch, ext)))
	abs := filepath.Join(dir, filepath.FromSlash(rel))
	w := Written{Path: rel, Format: strings.ToLower(f.String()), Width: opts.Width, Height: opts.Height}

	if st, err := os.Stat(abs); err == nil {
		w.Size = st.Size()
		return w, nil
	}

	img, err := Render(hash, opts.Width, opts.Height, opts.Punch)
	if err != nil {
		return Written{}, err
	}
	data, err := Encode(img, f, opts.Quality)
	if err != nil {
		return Written{}, fmt.Errorf("encoding preview: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return Written{}, err
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return Written{}, err
	}
	w.Size = int64(len(data))
	return w, nil
}

// Save renders hash to an explicit path; the format follows the extension.
func Save(hash, path string, width, height int, punch float64) error {
	img, err := Render(hash, width, height, punch)
	if err != nil {
		return err
	}
	return imaging.Save(img, path, imaging.JPEGQuality(95))
}
