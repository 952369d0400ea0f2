/*
Copyright © 2026 Michael Putera Wardana <michaelputeraw@gmail.com>
*/
package cmd

import (
	"github.com/krobus00/derivex-service/internal/bootstrap"
	"github.com/spf13/cobra"
)

// exchangeGatewayCmd represents the exchange gateway command
var exchangeGatewayCmd = &cobra.Command{
	Use:   "exchange-gateway",
	Short: "Start the Exchange Registry Gateway service",
	Long: `The Exchange Registry Gateway owns the token to exchange index for one
Stellar server. It creates, resolves and removes exchanges over HTTP and gRPC,
streams lifecycle events to websocket clients and publishes them to JetStream.`,
	Run: bootstrap.StartExchangeGateway,
}

func init() {
	rootCmd.AddCommand(exchangeGatewayCmd)
}
