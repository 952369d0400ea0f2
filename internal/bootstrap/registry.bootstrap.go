package bootstrap

import (
	"context"
	"fmt"
	"io"

	"github.com/krobus00/derivex-service/internal/service/exchange"
	"github.com/spf13/cobra"
)

// StartRegistry builds an in-memory registry for the given server, registers
// every positional token in order and reports each outcome on stdout.
func StartRegistry(cmd *cobra.Command, args []string) {
	server, _ := cmd.Flags().GetString("server")
	label, _ := cmd.Flags().GetString("factory-label")

	runRegistry(cmd.Context(), cmd.OutOrStdout(), server, label, args)
}

func runRegistry(ctx context.Context, out io.Writer, server, label string, tokens []string) {
	if ctx == nil {
		ctx = context.Background()
	}

	registry := exchange.NewExchangeRegistry(server, exchange.WithFactoryLabel(label))
	svc := exchange.NewExchangeService(registry)

	for _, token := range tokens {
		created, err := svc.CreateExchange(ctx, token)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "Exchange created: %s\n", created)
	}
}
