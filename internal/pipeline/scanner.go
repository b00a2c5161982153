package pipeline

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Source represents a discovered image file.
type Source struct {
	// AbsPath is the path to the file on disk.
	AbsPath string
	// RelPath is the path relative to the input directory.
	RelPath string
	// Key is the asset key (relpath without extension).
	Key string
	// Format is the normalized source format (png, jpeg, webp, gif, bmp, tiff).
	Format string
	// Size is the file size in bytes.
	Size int64
}

// imageExtensions maps recognized extensions to format names.
var imageExtensions = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".webp": "webp",
	".gif":  "gif",
	".bmp":  "bmp",
	".tiff": "tiff",
	".tif":  "tiff",
}

// ScanImages walks the input directory and returns all image sources
// sorted by key. Hidden directories and any directory listed in skip
// (typically the build output) are not entered.
func ScanImages(inputDir string, skip ...string) ([]Source, error) {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		if abs, err := filepath.Abs(s); err == nil {
			skipped[abs] = true
		}
	}

	var sources []Source
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != inputDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if abs, err := filepath.Abs(path); err == nil && skipped[abs] && path != inputDir {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		format, ok := imageExtensions[ext]
		if !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}

		sources = append(sources, Source{
			AbsPath: path,
			RelPath: filepath.ToSlash(relPath),
			Key:     filepath.ToSlash(strings.TrimSuffix(relPath, filepath.Ext(relPath))),
			Format:  format,
			Size:    info.Size(),
		})
		return nil
	})

	sort.Slice(sources, func(i, j int) bool { return sources[i].Key < sources[j].Key })
	return sources, err
}
