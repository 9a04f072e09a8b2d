package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/TitanUser/zeebedb/pkg/tables"
	"github.com/TitanUser/zeebedb/pkg/txn"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Inspect and mutate job records",
}

var jobPutCmd = &cobra.Command{
	Use:   "put <element-key> <job-key> <type> <deadline>",
	Short: "Create a job for an existing element instance",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		elementKey, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("element-key must be an integer: %w", err)
		}
		jobKey, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("job-key must be an integer: %w", err)
		}
		deadline, err := strconv.ParseInt(args[3], 10, 64)
		if err != nil {
			return fmt.Errorf("deadline must be an integer: %w", err)
		}

		tx := txn.NewWithMetrics(container.Partition, container.Metrics)
		if err := container.Tables.Jobs.Put(tx, tables.JobRecord{
			ElementInstanceKey: elementKey,
			JobKey:             jobKey,
			Type:               args[2],
			Deadline:           deadline,
		}); err != nil {
			tx.Abort()
			return err
		}
		if err := tx.Commit(container.Config.SyncOnCommit); err != nil {
			return err
		}
		fmt.Printf("created job (%d, %d) type=%s deadline=%d\n", elementKey, jobKey, args[2], deadline)
		return nil
	},
}

var jobOverdueCmd = &cobra.Command{
	Use:   "overdue <before>",
	Short: "List jobs overdue before the given timestamp",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		before, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("before must be an integer: %w", err)
		}

		tx := txn.NewWithMetrics(container.Partition, container.Metrics)
		defer tx.Abort()

		nextDeadline, err := container.Tables.Jobs.FindOverdueBefore(tx, before, func(rec tables.JobRecord) bool {
			fmt.Printf("element=%d job=%d type=%s deadline=%d\n", rec.ElementInstanceKey, rec.JobKey, rec.Type, rec.Deadline)
			return true
		})
		if err != nil {
			return err
		}
		fmt.Printf("next deadline: %d\n", nextDeadline)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(jobCmd)
	jobCmd.AddCommand(jobPutCmd, jobOverdueCmd)
}
