package analytics

import (
	"context"

	"github.com/shopforge/backend/internal/domain/analytics"
	"github.com/shopforge/backend/internal/infrastructure/queue"
	"go.uber.org/zap"
)

// RecordHandler persists queued analytics events and bumps the daily stats
type RecordHandler struct {
	repo   analytics.Repository
	logger *zap.Logger
}

// NewRecordHandler creates the handler for JobTypeRecord
func NewRecordHandler(repo analytics.Repository, logger *zap.Logger) *RecordHandler {
	return &RecordHandler{repo: repo, logger: logger}
}

// Handle implements queue.Handler. Repository errors are returned so the
// queue retries with backoff.
func (h *RecordHandler) Handle(ctx context.Context, job *queue.Job) error {
	var event analytics.Event
	if err := job.Decode(&event); err != nil {
		return err
	}
	if err := h.repo.RecordEvent(ctx, &event); err != nil {
		h.logger.Warn("Failed to record analytics event",
			zap.String("job_id", job.ID),
			zap.Int("attempt", job.Attempts),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var _ queue.Handler = (*RecordHandler)(nil).Handle
