/*
Copyright © 2026 Michael Putera Wardana <michaelputeraw@gmail.com>
*/
package cmd

import (
	"github.com/krobus00/derivex-service/internal/bootstrap"
	"github.com/spf13/cobra"
)

// registryCmd represents the registry command
var registryCmd = &cobra.Command{
	Use:   "registry [token...]",
	Short: "Register tokens in a throwaway registry and print the results",
	Long: `Builds an in-memory exchange registry for --server, creates an exchange
for every token argument in order and prints either the created exchange or
the error for each one. No config file or external service is needed.`,
	// config is not required for an in-memory run
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: bootstrap.StartRegistry,
}

func init() {
	rootCmd.AddCommand(registryCmd)
	registryCmd.Flags().String("server", "horizon-testnet.stellar.org", "stellar server the exchanges are bound to")
	registryCmd.Flags().String("factory-label", "", "factory label (default: Factory)")
}
