// Package commands defines the pinchctl command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/ayusman/pinchctl/internal/config"
	"github.com/ayusman/pinchctl/pkg/logger"
)

var (
	// Access these variables only from a main package or tests:

	Root = &cobra.Command{
		Use:               "pinchctl",
		Short:             "Control volume and brightness with pinch gestures",
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
		RunE:              runLoop,
	}

	Screenshot = &cobra.Command{
		Use:   "screenshot",
		Short: "Take one screenshot and exit",
		Args:  cobra.NoArgs,
		RunE:  takeScreenshot,
	}

	History = &cobra.Command{
		Use:   "history",
		Short: "Print recorded volume and brightness adjustments",
		Args:  cobra.NoArgs,
		RunE:  printHistory,
	}

	configPath string
	logLevel   string

	historyChannel string
	historyLimit   int

	cfg *config.Config
)

func init() {
	Root.AddCommand(Screenshot)
	Root.AddCommand(History)

	Root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default $"+config.EnvConfigPath+")")
	Root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	History.Flags().StringVar(&historyChannel, "channel", "", "only show this channel: volume or brightness")
	History.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of rows")
}

// loadConfig resolves configuration and the log level before any command runs.
func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.LogLevel = logLevel
	}
	if err := logger.SetLevelString(loaded.LogLevel); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func log() logger.Logger {
	return logger.Get()
}
