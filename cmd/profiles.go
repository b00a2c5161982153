package cmd

import (
	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Print the available profiles as YAML",
	Long: `Prints built-in profiles merged with --config. The output is itself a
valid --config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		profiles, err := loadProfiles()
		if err != nil {
			return err
		}
		data, err := profiles.Dump()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
