package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/TitanUser/zeebedb/pkg/tables"
	"github.com/TitanUser/zeebedb/pkg/txn"
)

var elementCmd = &cobra.Command{
	Use:   "element",
	Short: "Inspect and mutate element instance records",
}

var elementPutCmd = &cobra.Command{
	Use:   "put <key> <element-id> [process-instance-key]",
	Short: "Create or replace an element instance",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("key must be an integer: %w", err)
		}
		var processInstanceKey int64
		if len(args) == 3 {
			processInstanceKey, err = strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("process-instance-key must be an integer: %w", err)
			}
		}

		tx := txn.NewWithMetrics(container.Partition, container.Metrics)
		if err := container.Tables.ElementInstances.Put(tx, tables.ElementInstanceRecord{
			Key:                key,
			ElementID:          args[1],
			ProcessInstanceKey: processInstanceKey,
		}); err != nil {
			tx.Abort()
			return err
		}
		if err := tx.Commit(container.Config.SyncOnCommit); err != nil {
			return err
		}
		fmt.Printf("put element instance %d (%s)\n", key, args[1])
		return nil
	},
}

var elementGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print an element instance record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("key must be an integer: %w", err)
		}

		tx := txn.NewWithMetrics(container.Partition, container.Metrics)
		defer tx.Abort()

		record, found, err := container.Tables.ElementInstances.Get(tx, key)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("element instance %d not found", key)
		}
		fmt.Printf("key=%d element_id=%s process_instance_key=%d\n", record.Key, record.ElementID, record.ProcessInstanceKey)
		return nil
	},
}

var elementDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete an element instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("key must be an integer: %w", err)
		}

		tx := txn.NewWithMetrics(container.Partition, container.Metrics)
		if err := container.Tables.ElementInstances.Delete(tx, key); err != nil {
			tx.Abort()
			return err
		}
		if err := tx.Commit(container.Config.SyncOnCommit); err != nil {
			return err
		}
		fmt.Printf("deleted element instance %d\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(elementCmd)
	elementCmd.AddCommand(elementPutCmd, elementGetCmd, elementDeleteCmd)
}
