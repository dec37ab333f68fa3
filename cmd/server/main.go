package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ammpool",
		Short:        "Reserve-accounting AMM pool service",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path (defaults to $CONFIG_PATH or cfg/config.yaml)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE:  runServe,
	}
	root.AddCommand(serveCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap against the given reserves",
		RunE:  runQuote,
	}
	quoteCmd.Flags().String("amount-in", "", "input amount")
	quoteCmd.Flags().String("reserve-in", "", "reserve of the input asset")
	quoteCmd.Flags().String("reserve-out", "", "reserve of the output asset")
	root.AddCommand(quoteCmd)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
