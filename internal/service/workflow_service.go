package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/api/dto"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/core/ports"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
)

// ErrValidation marks authoring input the engine would not be able to run.
var ErrValidation = errors.New("invalid workflow definition")

type WorkflowService interface {
	CreateWorkflow(ctx context.Context, orgID uuid.UUID, req dto.CreateWorkflowRequest) (uuid.UUID, error)
	GetWorkflow(ctx context.Context, orgID, id uuid.UUID) (*domain.Workflow, error)
	ListWorkflows(ctx context.Context, orgID uuid.UUID) ([]domain.Workflow, error)
	UpdateWorkflowStatus(ctx context.Context, orgID, id uuid.UUID, status domain.WorkflowStatus) error
}

type workflowService struct {
	workflows ports.WorkflowRepository
}

func NewWorkflowService(workflows ports.WorkflowRepository) WorkflowService {
	return &workflowService{workflows: workflows}
}

// CreateWorkflow validates every step config up front so a workflow that
// would fail mid-run is rejected at authoring time instead.
func (s *workflowService) CreateWorkflow(ctx context.Context, orgID uuid.UUID, req dto.CreateWorkflowRequest) (uuid.UUID, error) {
	workflow := domain.NewWorkflow(orgID, req.Name, domain.TriggerType(req.TriggerType))
	workflow.Description = req.Description
	workflow.PreventDuplicates = req.PreventDuplicates
	workflow.DuplicatePreventionDays = req.DuplicatePreventionDays

	steps := make([]domain.WorkflowStep, 0, len(req.Steps))
	for i, stepDTO := range req.Steps {
		step := domain.NewWorkflowStep(workflow.ID, i+1, domain.StepKind(stepDTO.Kind), []byte(stepDTO.Config))
		config, err := step.DecodeConfig()
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: step %d: %v", ErrValidation, i+1, err)
		}
		// Condition branches only jump forward. A self or backward target
		// would cycle the run loop.
		if cond, ok := config.(domain.ConditionConfig); ok {
			for _, next := range []int{cond.TrueNext, cond.FalseNext} {
				if next == 0 {
					continue
				}
				if next <= step.SortOrder || next > len(req.Steps) {
					return uuid.Nil, fmt.Errorf("%w: step %d: branch target %d must name a later step",
						ErrValidation, step.SortOrder, next)
				}
			}
		}
		steps = append(steps, *step)
	}

	if err := s.workflows.Create(ctx, workflow, steps); err != nil {
		return uuid.Nil, err
	}
	return workflow.ID, nil
}

func (s *workflowService) GetWorkflow(ctx context.Context, orgID, id uuid.UUID) (*domain.Workflow, error) {
	return s.workflows.GetByID(ctx, orgID, id)
}

func (s *workflowService) ListWorkflows(ctx context.Context, orgID uuid.UUID) ([]domain.Workflow, error) {
	return s.workflows.List(ctx, orgID)
}

func (s *workflowService) UpdateWorkflowStatus(ctx context.Context, orgID, id uuid.UUID, status domain.WorkflowStatus) error {
	return s.workflows.UpdateStatus(ctx, orgID, id, status)
}
