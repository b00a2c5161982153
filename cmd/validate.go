package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/bhash/blurhash"
	"github.com/AnyUserName/bhash/internal/manifest"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest_or_dir>",
	Short: "Validate a bhash manifest, its hashes and referenced previews",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// errValidation is returned when the manifest has problems; details are
// printed, not wrapped.
var errValidation = errors.New("validation failed")

func runValidate(cmd *cobra.Command, args []string) error {
	manifestPath, err := resolveManifest(args[0])
	if err != nil {
		return err
	}
	m, err := manifest.Read(manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	out := cmd.OutOrStdout()
	problems := validateManifest(m, filepath.Dir(manifestPath))
	if len(problems) == 0 {
		fmt.Fprintln(out, "  ✓ Manifest is valid")
		fmt.Fprintf(out, "  ✓ %d assets, %d previews, all hashes decode\n", m.Stats.TotalAssets, m.Stats.TotalPreviews)
		return nil
	}

	fmt.Fprintf(out, "  ✗ Manifest has %d error(s):\n", len(problems))
	for _, e := range problems {
		fmt.Fprintf(out, "    • %s\n", e)
	}
	return fmt.Errorf("%w with %d errors", errValidation, len(problems))
}

func validateManifest(m *manifest.Manifest, baseDir string) []string {
	var errs []string

	// Check version.
	if m.Version != manifest.SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}

	for _, key := range sortedAssetKeys(m) {
		asset := m.Assets[key]

		if asset.Original.Width <= 0 || asset.Original.Height <= 0 {
			errs = append(errs, fmt.Sprintf("asset %q: invalid original dimensions %dx%d",
				key, asset.Original.Width, asset.Original.Height))
		}
		if asset.AspectRatio <= 0 {
			errs = append(errs, fmt.Sprintf("asset %q: invalid aspect ratio %.4f", key, asset.AspectRatio))
		}

		errs = append(errs, validateHash(key, asset)...)

		if p := asset.Preview; p != nil {
			if p.Width <= 0 || p.Height <= 0 {
				errs = append(errs, fmt.Sprintf("asset %q preview: invalid dimensions %dx%d", key, p.Width, p.Height))
			}
			if p.Path == "" {
				errs = append(errs, fmt.Sprintf("asset %q preview: missing path", key))
				continue
			}
			info, err := os.Stat(filepath.Join(baseDir, filepath.FromSlash(p.Path)))
			if err != nil {
				errs = append(errs, fmt.Sprintf("asset %q preview: file not found: %s", key, p.Path))
			} else if p.Size > 0 && info.Size() != p.Size {
				errs = append(errs, fmt.Sprintf("asset %q preview: size mismatch: manifest=%d, disk=%d",
					key, p.Size, info.Size()))
			}
		}
	}

	// Verify stats consistency.
	previews := 0
	for _, a := range m.Assets {
		if a.Preview != nil {
			previews++
		}
	}
	if m.Stats.TotalAssets != len(m.Assets) {
		errs = append(errs, fmt.Sprintf("stats.total_assets mismatch: %d != %d", m.Stats.TotalAssets, len(m.Assets)))
	}
	if m.Stats.TotalPreviews != previews {
		errs = append(errs, fmt.Sprintf("stats.total_previews mismatch: %d != %d", m.Stats.TotalPreviews, previews))
	}

	return errs
}

// validateHash checks the hash decodes and agrees with the asset fields.
func validateHash(key string, a manifest.Asset) []string {
	if a.BlurHash == "" {
		return []string{fmt.Sprintf("asset %q: missing blurhash", key)}
	}
	cx, cy, err := blurhash.Components(a.BlurHash)
	if err != nil {
		return []string{fmt.Sprintf("asset %q: %v", key, err)}
	}
	var errs []string
	if cx != a.ComponentsX || cy != a.ComponentsY {
		errs = append(errs, fmt.Sprintf("asset %q: hash has %dx%d components, manifest says %dx%d",
			key, cx, cy, a.ComponentsX, a.ComponentsY))
	}
	// A 1×1 decode touches every symbol.
	if _, err := blurhash.Decode(a.BlurHash, 1, 1, 1); err != nil {
		return append(errs, fmt.Sprintf("asset %q: %v", key, err))
	}
	if a.AvgColor != nil {
		avg, _ := blurhash.AverageColor(a.BlurHash)
		if *a.AvgColor != [3]uint8{avg.R, avg.G, avg.B} {
			errs = append(errs, fmt.Sprintf("asset %q: avg_color %v does not match hash DC %v",
				key, *a.AvgColor, [3]uint8{avg.R, avg.G, avg.B}))
		}
	}
	return errs
}
