package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/paydesk/swiftrecon/internal/domain"
	"github.com/paydesk/swiftrecon/pkg/logger"
)

// Archiver writes the per-run audit artifacts as JSON files under the data
// directory: a discrepancy file keyed by run ID and timestamp, and a run
// log with the full run record.
type Archiver struct {
	dir    string
	logger *logger.Logger
}

func NewArchiver(dir string, log *logger.Logger) *Archiver {
	return &Archiver{
		dir:    dir,
		logger: log,
	}
}

type discrepancyFile struct {
	RunID         string                    `json:"run_id"`
	GeneratedAt   time.Time                 `json:"generated_at"`
	Summary       domain.DiscrepancySummary `json:"summary"`
	ExceptionList []domain.Discrepancy      `json:"exception_list"`
}

func (a *Archiver) WriteDiscrepancyFile(ctx context.Context, record domain.RunRecord) (string, error) {
	dir := filepath.Join(a.dir, "discrepancies")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create discrepancy dir: %w", err)
	}

	now := time.Now()
	path := filepath.Join(dir, fmt.Sprintf("discrepancies_%s_%s.json", record.RunID, now.Format("20060102_150405")))

	payload := discrepancyFile{
		RunID:         record.RunID,
		GeneratedAt:   now,
		Summary:       record.DiscrepancySummary,
		ExceptionList: record.ExceptionList,
	}

	if err := writeJSON(path, payload); err != nil {
		return "", err
	}

	a.logger.Info(ctx, "Discrepancies saved",
		"run_id", record.RunID,
		"path", path,
	)

	return path, nil
}

func (a *Archiver) WriteRunLog(ctx context.Context, record domain.RunRecord) (string, error) {
	dir := filepath.Join(a.dir, "run_logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create run log dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("run_log_%s.json", record.RunID))

	if err := writeJSON(path, record); err != nil {
		return "", err
	}

	a.logger.Info(ctx, "Run log saved",
		"run_id", record.RunID,
		"path", path,
	)

	return path, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
