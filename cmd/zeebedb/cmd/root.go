package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TitanUser/zeebedb/pkg/config"
	"github.com/TitanUser/zeebedb/pkg/di"
)

var container *di.Container

// SetContainer injects the dependency container built by main.
func SetContainer(c *di.Container) {
	container = c
}

var rootCmd = &cobra.Command{
	Use:   "zeebedb",
	Short: "zeebedb - an embeddable, transactional column-family substrate",
	Long: `zeebedb is a persistent, transactional key-value substrate built on
cockroachdb/pebble, with typed column families, foreign-key integrity, and
a small family of FK-guarded, due-date-indexed tables.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		cfg := config.DefaultConfig()
		cfg.DataDir = dataDir

		if container == nil {
			container = di.NewContainer()
		}
		if err := container.Open(cfg); err != nil {
			return fmt.Errorf("failed to open substrate: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return nil
		}
		return container.Close()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("data-dir", "d", "./data", "Data directory for the pebble partition")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}

// logLevel reads the --log-level flag, defaulting to info.
func logLevel(cmd *cobra.Command) string {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = "info"
	}
	return level
}
