package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/AnyUserName/bhash/internal/manifest"
	"github.com/AnyUserName/bhash/internal/pipeline"
)

// formatFlag is a --format value restricted to the manifest formats.
type formatFlag struct{ f manifest.Format }

var _ pflag.Value = (*formatFlag)(nil)

func (v *formatFlag) String() string { return string(v.f) }
func (v *formatFlag) Type() string   { return "json|cbor" }

func (v *formatFlag) Set(s string) error {
	f, err := manifest.ParseFormat(s)
	if err != nil {
		return err
	}
	v.f = f
	return nil
}

var (
	buildOutDir      string
	buildProfile     string
	buildWorkers     int
	buildFormat      = formatFlag{manifest.JSON}
	buildZstd        bool
	buildPreviews    bool
	buildIncremental bool
	buildComponentsX int
	buildComponentsY int
)

var buildCmd = &cobra.Command{
	Use:   "build <input_dir>",
	Short: "Compute placeholders for a directory of images and write a manifest",
	Long: `Scans input directory for images (png, jpg, jpeg, webp, gif, bmp, tiff),
computes a BlurHash for each, optionally renders preview images, and writes a
manifest file.

Preview filenames are content-addressed: previews/<hash>.<ext>
With --incremental, assets whose file content and parameters are unchanged
since the last build are carried over without decoding.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringVarP(&buildOutDir, "out", "o", "./bhash_out", "output directory")
	f.StringVarP(&buildProfile, "profile", "p", "web", "placeholder profile")
	f.IntVarP(&buildWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	f.Var(&buildFormat, "format", "manifest format")
	f.BoolVar(&buildZstd, "zstd", false, "zstd-compress the manifest")
	f.BoolVar(&buildPreviews, "previews", false, "render a preview image per asset")
	f.BoolVar(&buildIncremental, "incremental", false, "reuse unchanged assets from the existing manifest")
	f.IntVarP(&buildComponentsX, "components-x", "x", 0, "horizontal components (0 = profile default)")
	f.IntVarP(&buildComponentsY, "components-y", "y", 0, "vertical components (0 = profile default)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	inputDir := args[0]
	start := time.Now()

	// Resolve absolute paths.
	absInput, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(buildOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	// Load profile.
	profiles, err := loadProfiles()
	if err != nil {
		return err
	}
	prof := profiles.Get(buildProfile)
	if buildComponentsX > 0 {
		prof.ComponentsX = buildComponentsX
	}
	if buildComponentsY > 0 {
		prof.ComponentsY = buildComponentsY
	}

	logVerbose("input:   %s", absInput)
	logVerbose("output:  %s", absOutput)
	logVerbose("profile: %s (components=%dx%d, max_dim=%d, preview=%dpx %s)",
		prof.Name, prof.ComponentsX, prof.ComponentsY, prof.MaxDim, prof.PreviewWidth, prof.PreviewFormat)

	// Create output dir.
	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var previous *manifest.Manifest
	if buildIncremental {
		if path, err := manifest.Find(absOutput); err == nil {
			if previous, err = manifest.Read(path); err != nil {
				logVerbose("ignoring previous manifest: %v", err)
				previous = nil
			}
		}
	}

	// Run pipeline.
	p := pipeline.New(pipeline.Config{
		InputDir:  absInput,
		OutputDir: absOutput,
		Profile:   prof,
		Workers:   buildWorkers,
		Verbose:   verbose,
		Previews:  buildPreviews,
		Previous:  previous,
	})

	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	// Write manifest.
	name := manifest.FileName(buildFormat.f, buildZstd)
	manifestPath := filepath.Join(absOutput, name)
	if err := manifest.Write(m, manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	removeStaleManifests(absOutput, name)

	printBuildReport(cmd.OutOrStdout(), m, manifestPath, time.Since(start))
	return nil
}

// removeStaleManifests deletes manifests of other formats so stats and
// --incremental never pick up an outdated one.
func removeStaleManifests(dir, keep string) {
	for _, f := range []manifest.Format{manifest.JSON, manifest.CBOR} {
		for _, z := range []bool{false, true} {
			if name := manifest.FileName(f, z); name != keep {
				if err := os.Remove(filepath.Join(dir, name)); err == nil {
					logVerbose("removed stale %s", name)
				}
			}
		}
	}
}

func printBuildReport(w io.Writer, m *manifest.Manifest, manifestPath string, elapsed time.Duration) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║              bhash build complete                ║")
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════╝")
	fmt.Fprintln(w)

	stats := m.Stats
	fmt.Fprintf(w, "  Assets:      %d\n", stats.TotalAssets)
	if stats.Reused > 0 {
		fmt.Fprintf(w, "  Reused:      %d (unchanged since last build)\n", stats.Reused)
	}
	fmt.Fprintf(w, "  Input size:  %s\n", formatBytes(stats.TotalInputBytes))
	fmt.Fprintf(w, "  Hash bytes:  %s\n", formatBytes(int64(stats.TotalHashBytes)))
	if stats.TotalPreviews > 0 {
		fmt.Fprintf(w, "  Previews:    %d (%s)\n", stats.TotalPreviews, formatBytes(stats.TotalPreviewBytes))
	}
	fmt.Fprintf(w, "  Time:        %s\n", elapsed.Round(time.Millisecond))
	if m.BuildInfo != nil {
		fmt.Fprintf(w, "  Workers:     %d\n", m.BuildInfo.Workers)
	}
	fmt.Fprintln(w)

	// Top 10 largest originals.
	if len(m.Assets) > 0 {
		keys := make([]string, 0, len(m.Assets))
		for k := range m.Assets {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			a, b := m.Assets[keys[i]], m.Assets[keys[j]]
			if a.Original.Size != b.Original.Size {
				return a.Original.Size > b.Original.Size
			}
			return keys[i] < keys[j]
		})
		n := min(len(keys), 10)
		fmt.Fprintf(w, "  Top %d largest originals:\n", n)
		for _, k := range keys[:n] {
			a := m.Assets[k]
			fmt.Fprintf(w, "    %-32s %8s  %s\n", truncKey(k, 32), formatBytes(a.Original.Size), a.BlurHash)
		}
		fmt.Fprintln(w)
	}

	size := int64(0)
	if st, err := os.Stat(manifestPath); err == nil {
		size = st.Size()
	}
	fmt.Fprintf(w, "  Manifest:    %s (%s)\n", filepath.Base(manifestPath), formatBytes(size))
	fmt.Fprintln(w)
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
