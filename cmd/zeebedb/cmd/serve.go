package cmd

import (
	"github.com/spf13/cobra"

	"github.com/TitanUser/zeebedb/pkg/api"
	"github.com/TitanUser/zeebedb/pkg/obs"
)

var servePort int
var serveBind string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only admin API server",
	Long: `Start the admin HTTP server, exposing /metrics and a JSON
inspection surface over element instances, subscriptions, timers and jobs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := obs.NewConsole(logLevel(cmd))

		cfg := api.ServerConfig{Port: servePort, Bind: serveBind}
		return api.StartServer(container.Partition, container.Tables, container.Registry, cfg, container.Metrics, container.PromRegistry, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port for the admin API server")
	serveCmd.Flags().StringVar(&serveBind, "bind", "127.0.0.1", "Bind address for the admin API server")
}
