package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/core/ports"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
)

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository creates the gorm-backed enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) ports.EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if enrollment.OrgID != orgID {
		return nil, domain.ErrUnauthorized
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) UpdateProgress(ctx context.Context, id uuid.UUID, currentStepID *uuid.UUID, nextExecutionAt *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.Enrollment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_step_id":   currentStepID,
			"next_execution_at": nextExecutionAt,
		}).Error
}

// UpdateStatus only applies when the current status is one of allowedFrom.
// The WHERE clause makes concurrent transitions race-safe: the loser sees
// zero rows affected and reports false.
func (r *enrollmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, allowedFrom []domain.EnrollmentStatus, to domain.EnrollmentStatus, completedAt *time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if completedAt != nil {
		updates["completed_at"] = completedAt
	}
	result := r.db.WithContext(ctx).
		Model(&domain.Enrollment{}).
		Where("id = ? AND status IN ?", id, allowedFrom).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindDue claims due enrollments atomically: next_execution_at is cleared in
// the same statement that selects them, so two pollers cannot dispatch the
// same enrollment twice.
func (r *enrollmentRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]domain.Enrollment, error) {
	var ids []uuid.UUID

	query := `
		UPDATE enrollments
		SET next_execution_at = NULL, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM enrollments
			WHERE status = 'active'
			  AND next_execution_at IS NOT NULL
			  AND next_execution_at <= ?
			ORDER BY next_execution_at ASC
			LIMIT ?
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id
	`

	rows, err := r.db.WithContext(ctx).Raw(query, now, limit).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var enrollments []domain.Enrollment
	err = r.db.WithContext(ctx).Where("id IN ?", ids).Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepository) ListByClient(ctx context.Context, orgID, clientID uuid.UUID) ([]domain.Enrollment, error) {
	var enrollments []domain.Enrollment
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND client_id = ?", orgID, clientID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepository) CountByOrg(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Enrollment{}).
		Where("org_id = ?", orgID).
		Count(&count).Error
	return count, err
}
