package cmd

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/bhash/blurhash"
)

var (
	encodeX      int
	encodeY      int
	encodeMaxDim int
	encodeExact  bool
)

var encodeCmd = &cobra.Command{
	Use:   "encode <image>...",
	Short: "Print the BlurHash of one or more image files",
	Long: `Decodes each image (png, jpeg, gif, bmp, tiff, webp), downscales it so the
longest side is at most --max-dim, and prints its BlurHash.

With several files each line is "<hash>\t<path>".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().IntVarP(&encodeX, "components-x", "x", 4, "horizontal components (1-9)")
	encodeCmd.Flags().IntVarP(&encodeY, "components-y", "y", 3, "vertical components (1-9)")
	encodeCmd.Flags().IntVar(&encodeMaxDim, "max-dim", 64, "downscale so the longest side is at most this before encoding")
	encodeCmd.Flags().BoolVar(&encodeExact, "exact", false, "encode at full resolution (ignores --max-dim)")
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, path := range args {
		hash, err := encodeFile(path, encodeX, encodeY, encodeMaxDim, encodeExact)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			fmt.Fprintln(out, hash)
		} else {
			fmt.Fprintf(out, "%s\t%s\n", hash, path)
		}
	}
	return nil
}

func encodeFile(path string, cx, cy, maxDim int, exact bool) (string, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	b := img.Bounds()
	if !exact && maxDim > 0 {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Box)
	}
	logVerbose("%s: %dx%d, encoding %dx%d with %dx%d components",
		path, b.Dx(), b.Dy(), img.Bounds().Dx(), img.Bounds().Dy(), cx, cy)

	hash, err := blurhash.EncodeImage(img, cx, cy)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	return hash, nil
}
