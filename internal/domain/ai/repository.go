package ai

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
)

// LogFilter narrows AI log listings
type LogFilter struct {
	shared.Filter
	StoreID *uuid.UUID
	Feature *Feature
	Status  *LogStatus
}

// LogRepository persists AI call logs
type LogRepository interface {
	Save(ctx context.Context, l *Log) error
	FindAll(ctx context.Context, filter LogFilter) ([]*Log, int64, error)
}
