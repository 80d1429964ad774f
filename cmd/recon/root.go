package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "recon",
	Short: "Transaction ledger reconciliation tool",
	Long: `recon compares a payment platform ledger against a compliance system
ledger and reports missing, duplicated and mismatched transactions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
