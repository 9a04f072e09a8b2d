package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/TitanUser/zeebedb/pkg/columnfamily"
	"github.com/TitanUser/zeebedb/pkg/tables"
	"github.com/TitanUser/zeebedb/pkg/txn"
)

var subscriptionCmd = &cobra.Command{
	Use:   "subscription",
	Short: "Inspect and mutate message subscriptions",
}

var subscriptionOpenCmd = &cobra.Command{
	Use:   "open <element-key> <message-name>",
	Short: "Open a subscription in the Opening state",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		elementKey, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("element-key must be an integer: %w", err)
		}
		key := tables.SubscriptionKey{ElementInstanceKey: elementKey, MessageName: args[1]}

		tx := txn.NewWithMetrics(container.Partition, container.Metrics)
		if err := container.Tables.Subscriptions.Put(tx, key); err != nil {
			tx.Abort()
			return err
		}
		if err := tx.Commit(container.Config.SyncOnCommit); err != nil {
			return err
		}
		container.Tables.Subscriptions.CommitOverlay(tx)
		fmt.Printf("opened subscription (%d, %s)\n", elementKey, args[1])
		return nil
	},
}

var subscriptionListCmd = &cobra.Command{
	Use:   "list <element-key>",
	Short: "List every subscription for an element instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		elementKey, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("element-key must be an integer: %w", err)
		}

		tx := txn.NewWithMetrics(container.Partition, container.Metrics)
		defer tx.Abort()

		return container.Tables.Subscriptions.CF().WhileEqualPrefix(tx, tables.ElementInstanceKeyPrefix(elementKey),
			func(e columnfamily.Entry[tables.SubscriptionKey, tables.SubscriptionRecord]) (bool, error) {
				fmt.Printf("message=%s state=%s sent_time=%d\n", e.Key.MessageName, e.Value.State, e.Value.CommandSentTime)
				return true, nil
			})
	},
}

func init() {
	rootCmd.AddCommand(subscriptionCmd)
	subscriptionCmd.AddCommand(subscriptionOpenCmd, subscriptionListCmd)
}
