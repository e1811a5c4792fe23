package cli

import (
	"os"

	"github.com/spf13/cobra"
)

const serviceName = "quiz-duel-service"

// version is overridden at build time with -ldflags "-X quiz-duel-service/internal/cli.version=...".
var version = "dev"

var (
	port       string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:     "quiz-duel",
		Short:   "Live trivia rooms where players race to answer first",
		Version: version,
	}

	cmd.PersistentFlags().StringVar(&port, "port", "", "port to listen on (default $PORT, then server.port, then 8080)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(NewStartCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	return cmd
}
