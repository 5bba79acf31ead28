package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shaiso/Chaosflow/internal/adapters"
	"github.com/shaiso/Chaosflow/internal/telemetry"
)

// Env — общие зависимости команд. Создаётся после разбора PersistentFlags.
type Env struct {
	Output  *Output
	Logger  *slog.Logger
	Catalog *adapters.Catalog
}

// NewRootCmd создаёт корневую команду chaosctl.
func NewRootCmd(version string) *cobra.Command {
	var jsonOutput bool
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "chaosctl",
		Short:         "chaosctl — run chaos scenarios",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	envFn := func() *Env {
		level := telemetry.LogLevel()
		if logLevel != "" {
			level = telemetry.ParseLevel(logLevel)
		}
		logger := telemetry.SetupLoggerTo(rootCmd.ErrOrStderr(), level)
		return &Env{
			Output:  NewOutputTo(jsonOutput, rootCmd.OutOrStdout(), rootCmd.ErrOrStderr()),
			Logger:  logger,
			Catalog: adapters.DefaultCatalog(),
		}
	}

	rootCmd.AddCommand(
		NewRunCmd(envFn),
		NewValidateCmd(envFn),
		NewTopologyCmd(envFn),
		NewScheduleCmd(envFn),
		NewWatchCmd(envFn),
	)

	return rootCmd
}
