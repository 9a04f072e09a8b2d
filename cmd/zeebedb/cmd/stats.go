package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print approximate per-column-family disk usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := container.Registry.Stats()
		if err != nil {
			return err
		}
		for _, s := range stats {
			fmt.Printf("%-25s %d bytes\n", s.Name, s.DiskSize)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
