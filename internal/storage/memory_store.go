package storage

import (
	"context"
	"sync"

	"github.com/paydesk/swiftrecon/internal/domain"
)

// MemoryStore keeps run records, results and processed-event marks in
// memory. Each run's data is written once by its executing worker and read
// by the query handlers, guarded by a single RWMutex.
type MemoryStore struct {
	runs            map[string]*domain.RunRecord
	results         map[string]*domain.ReconciliationResult
	processedEvents map[string]bool
	mu              sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:            make(map[string]*domain.RunRecord),
		results:         make(map[string]*domain.ReconciliationResult),
		processedEvents: make(map[string]bool),
	}
}

// CreateRun registers a new pending run. Run IDs are unique per store.
func (s *MemoryStore) CreateRun(ctx context.Context, record *domain.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[record.RunID]; exists {
		return domain.ErrRunAlreadyExists
	}

	s.runs[record.RunID] = record

	return nil
}

// SaveRun upserts a run record, replacing any pending placeholder once the
// run completes.
func (s *MemoryStore) SaveRun(ctx context.Context, record *domain.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[record.RunID] = record

	return nil
}

func (s *MemoryStore) GetRun(ctx context.Context, runID string) (*domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.runs[runID]
	if !exists {
		return nil, domain.ErrRunNotFound
	}

	return record, nil
}

func (s *MemoryStore) SaveResult(ctx context.Context, runID string, result *domain.ReconciliationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results[runID] = result

	return nil
}

func (s *MemoryStore) GetResult(ctx context.Context, runID string) (*domain.ReconciliationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.runs[runID]; !exists {
		return nil, domain.ErrRunNotFound
	}

	result, exists := s.results[runID]
	if !exists {
		return nil, domain.ErrResultNotFound
	}

	return result, nil
}

// GetExceptions pages through a run's exception list, optionally filtered
// by severity. The underlying list is already severity-then-time ordered.
func (s *MemoryStore) GetExceptions(ctx context.Context, runID string, page, perPage int, severity *domain.Severity) ([]domain.Discrepancy, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.runs[runID]
	if !exists {
		return nil, 0, domain.ErrRunNotFound
	}

	var filtered []domain.Discrepancy
	for _, d := range record.ExceptionList {
		if severity != nil && d.Severity != *severity {
			continue
		}
		filtered = append(filtered, d)
	}

	total := len(filtered)

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	start := (page - 1) * perPage
	end := start + perPage

	if start >= total {
		return []domain.Discrepancy{}, total, nil
	}
	if end > total {
		end = total
	}

	return filtered[start:end], total, nil
}

func (s *MemoryStore) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.processedEvents[eventID], nil
}

func (s *MemoryStore) MarkEventProcessed(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.processedEvents[eventID] = true

	return nil
}
