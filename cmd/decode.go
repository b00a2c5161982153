package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/bhash/internal/preview"
)

var (
	decodeWidth  int
	decodeHeight int
	decodePunch  float64
	decodeOut    string
)

var decodeCmd = &cobra.Command{
	Use:   "decode <hash>",
	Short: "Render a BlurHash to an image file",
	Long: `Renders the hash at --width x --height and writes it to --out. The image
format follows the output extension (png, jpg, gif, bmp, tif).`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().IntVarP(&decodeWidth, "width", "W", 32, "output width in pixels")
	decodeCmd.Flags().IntVarP(&decodeHeight, "height", "H", 32, "output height in pixels")
	decodeCmd.Flags().Float64Var(&decodePunch, "punch", 1, "contrast multiplier (0 = flat average colour)")
	decodeCmd.Flags().StringVarP(&decodeOut, "out", "o", "", "output image path")
	_ = decodeCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	hash := args[0]
	if _, err := preview.ParseFormat(extOf(decodeOut)); err != nil {
		return err
	}
	if err := preview.Save(hash, decodeOut, decodeWidth, decodeHeight, decodePunch); err != nil {
		return fmt.Errorf("decode %s: %w", hash, err)
	}
	logVerbose("wrote %s (%dx%d, punch %g)", decodeOut, decodeWidth, decodeHeight, decodePunch)
	return nil
}

func extOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
