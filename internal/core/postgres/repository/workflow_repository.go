package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/core/ports"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
)

type workflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository creates the gorm-backed workflow repository.
func NewWorkflowRepository(db *gorm.DB) ports.WorkflowRepository {
	return &workflowRepository{db: db}
}

func orderedSteps(db *gorm.DB) *gorm.DB {
	return db.Order("workflow_steps.sort_order ASC")
}

func (r *workflowRepository) Create(ctx context.Context, workflow *domain.Workflow, steps []domain.WorkflowStep) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workflow).Error; err != nil {
			return err
		}
		if len(steps) > 0 {
			if err := tx.Create(&steps).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID fails closed on cross-tenant access: a row owned by another org is
// reported as ErrUnauthorized, never returned.
func (r *workflowRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Workflow, error) {
	var workflow domain.Workflow
	err := r.db.WithContext(ctx).
		Preload("Steps", orderedSteps).
		Where("id = ?", id).
		First(&workflow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if workflow.OrgID != orgID {
		return nil, domain.ErrUnauthorized
	}
	return &workflow, nil
}

func (r *workflowRepository) FindActiveByTrigger(ctx context.Context, orgID uuid.UUID, trigger domain.TriggerType) ([]domain.Workflow, error) {
	var workflows []domain.Workflow
	err := r.db.WithContext(ctx).
		Preload("Steps", orderedSteps).
		Where("org_id = ? AND status = ? AND trigger_type = ?", orgID, domain.WorkflowActive, trigger).
		Find(&workflows).Error
	return workflows, err
}

func (r *workflowRepository) List(ctx context.Context, orgID uuid.UUID) ([]domain.Workflow, error) {
	var workflows []domain.Workflow
	err := r.db.WithContext(ctx).
		Preload("Steps", orderedSteps).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Find(&workflows).Error
	return workflows, err
}

func (r *workflowRepository) UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status domain.WorkflowStatus) error {
	if _, err := r.GetByID(ctx, orgID, id); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&domain.Workflow{}).
		Where("id = ? AND org_id = ?", id, orgID).
		Update("status", status).Error
}
