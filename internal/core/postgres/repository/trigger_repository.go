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

type triggerEventRepository struct {
	db *gorm.DB
}

// NewTriggerEventRepository creates the gorm-backed trigger-event repository.
func NewTriggerEventRepository(db *gorm.DB) ports.TriggerEventRepository {
	return &triggerEventRepository{db: db}
}

func (r *triggerEventRepository) Create(ctx context.Context, event *domain.TriggerEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *triggerEventRepository) GetByAppointment(ctx context.Context, orgID uuid.UUID, appointmentID string) (*domain.TriggerEvent, error) {
	var event domain.TriggerEvent
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND appointment_id = ?", orgID, appointmentID).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// HasRecent backs the duplicate guard: the lookup is by appointment type,
// not workflow, so sibling workflows sharing a trigger type share one
// cool-down window per client.
func (r *triggerEventRepository) HasRecent(ctx context.Context, orgID, clientID uuid.UUID, appointmentType domain.TriggerType, cutoff time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.TriggerEvent{}).
		Where("org_id = ? AND client_id = ? AND appointment_type = ? AND triggered_at > ?",
			orgID, clientID, appointmentType, cutoff).
		Count(&count).Error
	return count > 0, err
}

func (r *triggerEventRepository) ListRecent(ctx context.Context, orgID uuid.UUID, limit int) ([]domain.TriggerEvent, error) {
	var events []domain.TriggerEvent
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("triggered_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *triggerEventRepository) CountByOrg(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.TriggerEvent{}).
		Where("org_id = ?", orgID).
		Count(&count).Error
	return count, err
}

func (r *triggerEventRepository) CountByOrgSince(ctx context.Context, orgID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.TriggerEvent{}).
		Where("org_id = ? AND triggered_at >= ?", orgID, since).
		Count(&count).Error
	return count, err
}

func (r *triggerEventRepository) CountByType(ctx context.Context, orgID uuid.UUID) (map[domain.TriggerType]int64, error) {
	type row struct {
		AppointmentType domain.TriggerType
		Total           int64
	}
	var results []row
	err := r.db.WithContext(ctx).
		Model(&domain.TriggerEvent{}).
		Select("appointment_type, COUNT(*) AS total").
		Where("org_id = ?", orgID).
		Group("appointment_type").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	byType := make(map[domain.TriggerType]int64, len(results))
	for _, res := range results {
		byType[res.AppointmentType] = res.Total
	}
	return byType, nil
}
