package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/bhash/internal/profile"
)

var (
	version    = "0.1.0"
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "bhash",
	Short: "BlurHash encoder, decoder and placeholder pipeline",
	Long: `bhash turns images into short BlurHash strings and renders them back
as blurred placeholders.

Single images: encode, decode, components.
Whole directories: build writes hashes, optional preview images and a
JSON or CBOR manifest; stats and validate inspect the result.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file with extra or overridden profiles")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"bhash %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[bhash] "+format+"\n", args...)
	}
}

// loadProfiles returns the built-in profiles merged with --config, if set.
func loadProfiles() (*profile.Set, error) {
	if configPath == "" {
		return profile.Builtin(), nil
	}
	logVerbose("config:  %s", configPath)
	return profile.Load(configPath)
}
