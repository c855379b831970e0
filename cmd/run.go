package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pocketsh/pocketsh/core"
	"github.com/pocketsh/pocketsh/core/logger"
)

// runCmd starts the interactive interpreter on the current terminal.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive interpreter.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		logFd, err := configuration.OpenCommandLog()
		if err != nil {
			return err
		}
		defer logFd.Close()

		shell, err := core.NewShell(configuration, logger.New(logFd))
		if err != nil {
			return err
		}
		defer shell.Close()

		return shell.Run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
