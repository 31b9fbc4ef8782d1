package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/core/ports"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
)

type executionLogRepository struct {
	db *gorm.DB
}

// NewExecutionLogRepository creates the gorm-backed execution-log repository.
// The repository is append-only: entries are never updated after insert.
func NewExecutionLogRepository(db *gorm.DB) ports.ExecutionLogRepository {
	return &executionLogRepository{db: db}
}

func (r *executionLogRepository) Append(ctx context.Context, entry *domain.ExecutionLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List pages newest-first. The (executed_at, id) pair is the cursor; id
// breaks ties for entries logged in the same instant.
func (r *executionLogRepository) List(ctx context.Context, orgID uuid.UUID, filter ports.LogFilter) ([]domain.ExecutionLogEntry, error) {
	query := r.db.WithContext(ctx).
		Model(&domain.ExecutionLogEntry{}).
		Where("org_id = ?", orgID)

	if filter.WorkflowID != nil {
		query = query.Where("workflow_id = ?", *filter.WorkflowID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.EnrollmentID != nil {
		query = query.Where("enrollment_id = ?", *filter.EnrollmentID)
	}
	if filter.AfterTime != nil && filter.AfterID != nil {
		query = query.Where("(executed_at < ?) OR (executed_at = ? AND id < ?)",
			*filter.AfterTime, *filter.AfterTime, *filter.AfterID)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var entries []domain.ExecutionLogEntry
	err := query.
		Order("executed_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
