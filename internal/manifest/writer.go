package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// New creates an empty manifest with defaults.
func New(profileName string) *Manifest {
	return &Manifest{
		Version:     SupportedManifestVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Profile:     profileName,
		BasePath:    "./",
		Assets:      make(map[string]Asset),
	}
}

// ComputeStats recalculates aggregate statistics from assets. Reused is
// left as set by the builder.
func (m *Manifest) ComputeStats() {
	s := Stats{Reused: m.Stats.Reused}
	s.TotalAssets = len(m.Assets)
	for _, a := range m.Assets {
		s.TotalInputBytes += a.Original.Size
		s.TotalHashBytes += len(a.BlurHash)
		if a.Preview != nil {
			s.TotalPreviews++
			s.TotalPreviewBytes += a.Preview.Size
		}
	}
	m.Stats = s
}

// FileName returns the conventional manifest filename for a format.
func FileName(f Format, compress bool) string {
	name := "bhash.manifest." + string(f)
	if compress {
		name += zstdExt
	}
	return name
}

// FormatFromPath infers format and compression from a filename such as
// "x.cbor.zst". Unknown extensions default to JSON.
func FormatFromPath(path string) (Format, bool) {
	base := strings.ToLower(filepath.Base(path))
	compress := strings.HasSuffix(base, zstdExt)
	base = strings.TrimSuffix(base, zstdExt)
	if filepath.Ext(base) == "."+string(CBOR) {
		return CBOR, compress
	}
	return JSON, compress
}

// Write serializes the manifest to path, choosing format and compression
// from the extension.
func Write(m *Manifest, path string) error {
	f, compress := FormatFromPath(path)
	m.ComputeStats()
	data, err := Marshal(m, f, compress)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteJSON serializes the manifest to a JSON file with stable ordering.
func WriteJSON(m *Manifest, path string) error {
	m.ComputeStats()
	data, err := Marshal(m, JSON, false)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Read loads a manifest written by Write in any format.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Find locates a manifest inside dir, trying every known filename.
func Find(dir string) (string, error) {
	for _, f := range []Format{JSON, CBOR} {
		for _, c := range []bool{false, true} {
			p := filepath.Join(dir, FileName(f, c))
			if _, err := os.Stat(p); err == nil {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("no manifest found in %s", dir)
}
