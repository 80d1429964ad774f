package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/paydesk/swiftrecon/internal/domain"
	"github.com/paydesk/swiftrecon/internal/eventbus"
	"github.com/paydesk/swiftrecon/internal/ingest"
	"github.com/paydesk/swiftrecon/internal/service"
	"github.com/paydesk/swiftrecon/pkg/logger"
)

type ReconciliationHandler struct {
	repo   domain.Repository
	bus    eventbus.EventBus
	logger *logger.Logger
}

func NewReconciliationHandler(repo domain.Repository, bus eventbus.EventBus, log *logger.Logger) *ReconciliationHandler {
	return &ReconciliationHandler{
		repo:   repo,
		bus:    bus,
		logger: log,
	}
}

// Submit accepts the two ledger files as multipart uploads, validates them
// at the boundary and queues the run for execution.
func (h *ReconciliationHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	h.logger.Info(ctx, "Handling reconciliation submission")

	source, err := h.readCollection(c, "source")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	target, err := h.readCollection(c, "target")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	runID := c.FormValue("run_id")
	if runID == "" {
		runID = service.GenerateRunID()
	}

	pending := &domain.RunRecord{
		RunID:          runID,
		Status:         domain.RunStatusStarted,
		StartTimestamp: time.Now(),
		ExceptionList:  []domain.Discrepancy{},
	}
	if err := h.repo.CreateRun(ctx, pending); err != nil {
		if errors.Is(err, domain.ErrRunAlreadyExists) {
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "run_id already exists",
			})
		}
		h.logger.Error(ctx, "Failed to register run",
			"run_id", runID,
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to register run",
		})
	}

	event := eventbus.Event{
		ID:   runID,
		Type: eventbus.EventTypeRunExecution,
		Payload: eventbus.RunExecutionEvent{
			RunID:  runID,
			Source: source,
			Target: target,
		},
		Timestamp: time.Now(),
	}

	if err := h.bus.Publish(ctx, event); err != nil {
		h.logger.Error(ctx, "Failed to publish run execution event",
			"run_id", runID,
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to queue run",
		})
	}

	h.logger.Info(ctx, "Reconciliation run queued",
		"run_id", runID,
		"source_count", len(source),
		"target_count", len(target),
	)

	return c.JSON(http.StatusAccepted, map[string]string{
		"run_id": runID,
		"status": "processing",
	})
}

func (h *ReconciliationHandler) readCollection(c echo.Context, field string) ([]domain.Transaction, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return nil, errors.New(field + " file is required")
	}

	src, err := file.Open()
	if err != nil {
		return nil, errors.New("failed to open " + field + " file")
	}
	defer func(src multipart.File) { _ = src.Close() }(src)

	txns, err := ingest.DecodeCollection(src)
	if err != nil {
		h.logger.Warn(c.Request().Context(), "Rejected collection upload",
			"field", field,
			"error", err,
		)
		return nil, errors.New("invalid " + field + " collection: " + err.Error())
	}

	return txns, nil
}

func (h *ReconciliationHandler) GetRun(c echo.Context) error {
	ctx := c.Request().Context()
	runID := c.Param("id")

	record, err := h.repo.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "run not found",
			})
		}
		h.logger.Error(ctx, "Failed to get run",
			"run_id", runID,
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to get run",
		})
	}

	return c.JSON(http.StatusOK, record)
}

func (h *ReconciliationHandler) GetResult(c echo.Context) error {
	ctx := c.Request().Context()
	runID := c.Param("id")

	result, err := h.repo.GetResult(ctx, runID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRunNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "run not found",
			})
		case errors.Is(err, domain.ErrResultNotFound):
			// Run exists but has not produced a result yet (or failed).
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "result not available",
			})
		}
		h.logger.Error(ctx, "Failed to get result",
			"run_id", runID,
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to get result",
		})
	}

	return c.JSON(http.StatusOK, result)
}

func (h *ReconciliationHandler) GetExceptions(c echo.Context) error {
	ctx := c.Request().Context()
	runID := c.Param("id")

	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}

	perPage, err := strconv.Atoi(c.QueryParam("per_page"))
	if err != nil || perPage < 1 {
		perPage = 10
	}

	var severityFilter *domain.Severity
	if severityParam := c.QueryParam("severity"); severityParam != "" {
		severity, err := domain.ParseSeverity(severityParam)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "severity must be one of CRITICAL, HIGH, MEDIUM, LOW",
			})
		}
		severityFilter = &severity
	}

	h.logger.Debug(ctx, "Getting exceptions",
		"run_id", runID,
		"page", page,
		"per_page", perPage,
		"severity", severityFilter,
	)

	exceptions, total, err := h.repo.GetExceptions(ctx, runID, page, perPage, severityFilter)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "run not found",
			})
		}
		h.logger.Error(ctx, "Failed to get exceptions",
			"run_id", runID,
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to get exceptions",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"run_id":   runID,
		"items":    exceptions,
		"page":     page,
		"per_page": perPage,
		"total":    total,
	})
}
