package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ubc/tlef-engeai-sub007/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize engeai configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure engeai and generates an engeai.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
