package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/TitanUser/zeebedb/pkg/tables"
	"github.com/TitanUser/zeebedb/pkg/txn"
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Inspect and mutate timer records",
}

var timerPutCmd = &cobra.Command{
	Use:   "put <element-key> <timer-key> <due-date>",
	Short: "Schedule a timer for an existing element instance",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		elementKey, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("element-key must be an integer: %w", err)
		}
		timerKey, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("timer-key must be an integer: %w", err)
		}
		dueDate, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("due-date must be an integer: %w", err)
		}

		tx := txn.NewWithMetrics(container.Partition, container.Metrics)
		if err := container.Tables.Timers.Put(tx, tables.TimerRecord{
			ElementInstanceKey: elementKey,
			TimerKey:           timerKey,
			DueDate:            dueDate,
		}); err != nil {
			tx.Abort()
			return err
		}
		if err := tx.Commit(container.Config.SyncOnCommit); err != nil {
			return err
		}
		fmt.Printf("scheduled timer (%d, %d) due at %d\n", elementKey, timerKey, dueDate)
		return nil
	},
}

var timerDueCmd = &cobra.Command{
	Use:   "due <before>",
	Short: "List timers due before the given timestamp",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		before, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("before must be an integer: %w", err)
		}

		tx := txn.NewWithMetrics(container.Partition, container.Metrics)
		defer tx.Abort()

		nextDue, err := container.Tables.Timers.FindDueBefore(tx, before, func(rec tables.TimerRecord) bool {
			fmt.Printf("element=%d timer=%d due=%d\n", rec.ElementInstanceKey, rec.TimerKey, rec.DueDate)
			return true
		})
		if err != nil {
			return err
		}
		fmt.Printf("next due date: %d\n", nextDue)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(timerCmd)
	timerCmd.AddCommand(timerPutCmd, timerDueCmd)
}
