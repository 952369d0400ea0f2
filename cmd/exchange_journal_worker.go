/*
Copyright © 2026 Michael Putera Wardana <michaelputeraw@gmail.com>
*/
package cmd

import (
	"github.com/krobus00/derivex-service/internal/bootstrap"
	"github.com/spf13/cobra"
)

// exchangeJournalWorkerCmd represents the exchange journal worker command
var exchangeJournalWorkerCmd = &cobra.Command{
	Use:   "exchange-journal-worker",
	Short: "Record exchange lifecycle events",
	Long: `Consumes exchange.created and exchange.removed events from JetStream
and appends them to the exchange_events table, retrying failed writes.`,
	Run: bootstrap.StartExchangeJournalWorker,
}

func init() {
	rootCmd.AddCommand(exchangeJournalWorkerCmd)
}
