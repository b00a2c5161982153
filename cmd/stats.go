package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/bhash/internal/manifest"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for a build output directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// resolveManifest accepts a manifest file or a directory containing one.
func resolveManifest(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return manifest.Find(path)
	}
	return path, nil
}

func runStats(cmd *cobra.Command, args []string) error {
	path, err := resolveManifest(args[0])
	if err != nil {
		return err
	}
	m, err := manifest.Read(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	printStats(cmd.OutOrStdout(), m)
	return nil
}

func printStats(w io.Writer, m *manifest.Manifest) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Manifest version: %d\n", m.Version)
	fmt.Fprintf(w, "  Generated:        %s\n", m.GeneratedAt)
	fmt.Fprintf(w, "  Profile:          %s\n", m.Profile)
	if b := m.BuildInfo; b != nil {
		fmt.Fprintf(w, "  Workers:          %d\n", b.Workers)
		fmt.Fprintf(w, "  Parameters:       %dx%d components, max_dim %d, punch %g\n",
			b.ComponentsX, b.ComponentsY, b.MaxDim, b.Punch)
	}
	fmt.Fprintln(w)

	s := m.Stats
	fmt.Fprintf(w, "  Total assets:     %d\n", s.TotalAssets)
	fmt.Fprintf(w, "  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Fprintf(w, "  Hash bytes:       %s", formatBytes(int64(s.TotalHashBytes)))
	if s.TotalAssets > 0 {
		fmt.Fprintf(w, " (%.1f per asset)", float64(s.TotalHashBytes)/float64(s.TotalAssets))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Previews:         %d (%s)\n", s.TotalPreviews, formatBytes(s.TotalPreviewBytes))
	if s.Reused > 0 {
		fmt.Fprintf(w, "  Reused:           %d\n", s.Reused)
	}
	fmt.Fprintln(w)

	// Per-component-grid breakdown.
	grids := map[string]int{}
	for _, a := range m.Assets {
		grids[fmt.Sprintf("%dx%d", a.ComponentsX, a.ComponentsY)]++
	}
	fmt.Fprintln(w, "  Component grids:")
	for _, g := range sortedKeys(grids) {
		fmt.Fprintf(w, "    %-5s  %4d assets\n", g, grids[g])
	}
	fmt.Fprintln(w)

	// Per-source-format breakdown.
	formats := map[string]int{}
	for _, a := range m.Assets {
		formats[a.Original.Format]++
	}
	fmt.Fprintln(w, "  Source formats:")
	for _, f := range sortedKeys(formats) {
		fmt.Fprintf(w, "    %-6s  %4d files\n", f, formats[f])
	}

	// Warnings.
	var warnings []string
	for _, key := range sortedAssetKeys(m) {
		a := m.Assets[key]
		if a.BlurHash == "" {
			warnings = append(warnings, fmt.Sprintf("asset %q missing blurhash", key))
		}
		if a.Original.HasAlpha {
			warnings = append(warnings, fmt.Sprintf("asset %q has alpha; placeholder is opaque", key))
		}
	}
	if len(warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Warnings (%d):\n", len(warnings))
		for _, msg := range warnings {
			fmt.Fprintf(w, "    ⚠ %s\n", msg)
		}
	}
	fmt.Fprintln(w)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedAssetKeys(m *manifest.Manifest) []string {
	keys := make([]string, 0, len(m.Assets))
	for k := range m.Assets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
