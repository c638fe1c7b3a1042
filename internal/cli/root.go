package cli

import (
	"os"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	apiURL     string
	logLevel   string
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "quizctl",
		Short:         "Take and manage quizzes on a remote quiz service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&flags.apiURL, "api", "", "quiz service base URL (overrides config)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newLoginCmd(flags),
		newLogoutCmd(flags),
		newWhoamiCmd(flags),
		newRegisterCmd(flags),
		newQuizzesCmd(flags),
		newAttemptCmd(flags),
		newAttemptsCmd(flags),
		newUsersCmd(flags),
		newMigrateCmd(flags),
		newSandboxCmd(flags),
	)
	return cmd
}
