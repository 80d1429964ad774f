package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paydesk/swiftrecon/internal/ingest"
	"github.com/paydesk/swiftrecon/internal/service"
	"github.com/paydesk/swiftrecon/internal/storage"
	"github.com/paydesk/swiftrecon/pkg/logger"
)

var (
	runSourceFile string
	runTargetFile string
	runID         string
	runOutDir     string
	runLogLevel   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a reconciliation between two ledger files",
	Long: `Run loads the payment platform and compliance ledgers from JSON files,
reconciles them and writes the discrepancy report and run log to the
output directory.

Examples:
  # Reconcile two ledgers
  recon run --source data/payment_platform_transactions.json --target data/compliance_transactions.json

  # Use a fixed run ID and a custom output directory
  recon run --source source.json --target target.json --run-id RUN-TEST-0001 --out reports`,
	RunE: runReconciliation,
}

func init() {
	runCmd.Flags().StringVar(&runSourceFile, "source", "", "Path to the payment platform ledger (JSON array)")
	runCmd.Flags().StringVar(&runTargetFile, "target", "", "Path to the compliance system ledger (JSON array)")
	runCmd.Flags().StringVar(&runID, "run-id", "", "Run identifier (generated when empty)")
	runCmd.Flags().StringVar(&runOutDir, "out", "data", "Output directory for discrepancy reports and run logs")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	_ = runCmd.MarkFlagRequired("source")
	_ = runCmd.MarkFlagRequired("target")

	rootCmd.AddCommand(runCmd)
}

func runReconciliation(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	log := logger.New(runLogLevel)
	defer log.Sync()

	source, err := ingest.LoadCollectionFile(runSourceFile)
	if err != nil {
		return fmt.Errorf("failed to load source ledger: %w", err)
	}

	target, err := ingest.LoadCollectionFile(runTargetFile)
	if err != nil {
		return fmt.Errorf("failed to load target ledger: %w", err)
	}

	repo := storage.NewMemoryStore()
	archiver := storage.NewArchiver(runOutDir, log)

	svc := service.NewReconciliationService(
		repo,
		archiver,
		log,
		"Payment Platform",
		"Compliance System",
	)

	id := runID
	if id == "" {
		id = service.GenerateRunID()
	}

	result, err := svc.RunReconciliation(ctx, id, source, target)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	fmt.Printf("Run %s completed\n", result.Summary.RunID)
	fmt.Printf("  Source transactions:  %d\n", result.Summary.TotalSourceTransactions)
	fmt.Printf("  Target transactions:  %d\n", result.Summary.TotalTargetTransactions)
	fmt.Printf("  Matched:              %d\n", result.Summary.MatchedTransactions)
	fmt.Printf("  Missing in target:    %d\n", result.Summary.MissingInTarget)
	fmt.Printf("  With differences:     %d\n", result.Summary.TransactionsWithDifferences)
	fmt.Printf("  Duplicates:           %d\n", result.Summary.DuplicateTransactions)
	fmt.Printf("  Total discrepancies:  %d\n", result.Summary.DiscrepancySummary.TotalDiscrepancies)
	fmt.Printf("Reports written to %s\n", runOutDir)

	return nil
}
