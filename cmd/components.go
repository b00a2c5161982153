package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/bhash/blurhash"
)

var componentsCmd = &cobra.Command{
	Use:   "components <hash>",
	Short: "Print the component counts and average colour of a BlurHash",
	Args:  cobra.ExactArgs(1),
	RunE:  runComponents,
}

func init() {
	rootCmd.AddCommand(componentsCmd)
}

func runComponents(cmd *cobra.Command, args []string) error {
	hash := args[0]
	cx, cy, err := blurhash.Components(hash)
	if err != nil {
		return fmt.Errorf("components %s: %w", hash, err)
	}
	if want := blurhash.EncodedLen(cx, cy); len(hash) != want {
		return fmt.Errorf("components %s: %w: want %d characters, got %d",
			hash, blurhash.ErrLengthMismatch, want, len(hash))
	}
	avg, err := blurhash.AverageColor(hash)
	if err != nil {
		return fmt.Errorf("components %s: %w", hash, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d %d #%02x%02x%02x\n", cx, cy, avg.R, avg.G, avg.B)
	return nil
}
