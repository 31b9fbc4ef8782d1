package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/api/dto"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
)

type stubWorkflowRepo struct {
	created      *domain.Workflow
	createdSteps []domain.WorkflowStep
}

func (r *stubWorkflowRepo) Create(ctx context.Context, workflow *domain.Workflow, steps []domain.WorkflowStep) error {
	r.created = workflow
	r.createdSteps = steps
	return nil
}

func (r *stubWorkflowRepo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Workflow, error) {
	return nil, domain.ErrNotFound
}

func (r *stubWorkflowRepo) FindActiveByTrigger(ctx context.Context, orgID uuid.UUID, trigger domain.TriggerType) ([]domain.Workflow, error) {
	return nil, nil
}

func (r *stubWorkflowRepo) List(ctx context.Context, orgID uuid.UUID) ([]domain.Workflow, error) {
	return nil, nil
}

func (r *stubWorkflowRepo) UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status domain.WorkflowStatus) error {
	return nil
}

func TestCreateWorkflowAssignsSortOrder(t *testing.T) {
	repo := &stubWorkflowRepo{}
	svc := NewWorkflowService(repo)
	orgID := uuid.New()

	id, err := svc.CreateWorkflow(context.Background(), orgID, dto.CreateWorkflowRequest{
		Name:        "Morpheus8 Aftercare",
		TriggerType: "morpheus8",
		Steps: []dto.StepDTO{
			{Kind: "delay", Config: []byte(`{"amount":1,"unit":"days"}`)},
			{Kind: "send_message", Config: []byte(`{"channel":"sms","body":"hi"}`)},
		},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	require.NotNil(t, repo.created)
	assert.Equal(t, orgID, repo.created.OrgID)
	require.Len(t, repo.createdSteps, 2)
	assert.Equal(t, 1, repo.createdSteps[0].SortOrder)
	assert.Equal(t, 2, repo.createdSteps[1].SortOrder)
	assert.Equal(t, repo.created.ID, repo.createdSteps[0].WorkflowID)
}

func TestCreateWorkflowRejectsBackwardBranch(t *testing.T) {
	svc := NewWorkflowService(&stubWorkflowRepo{})

	cases := []struct {
		name   string
		steps  []dto.StepDTO
		wantOK bool
	}{
		{"self target", []dto.StepDTO{
			{Kind: "condition", Config: []byte(`{"field":"vip","operator":"equals","comparison_value":"true","true_next":2,"false_next":1}`)},
			{Kind: "add_tag", Config: []byte(`{"tag":"vip"}`)},
		}, false},
		{"backward target", []dto.StepDTO{
			{Kind: "add_tag", Config: []byte(`{"tag":"seen"}`)},
			{Kind: "condition", Config: []byte(`{"field":"vip","operator":"equals","comparison_value":"true","true_next":1,"false_next":0}`)},
		}, false},
		{"target past last step", []dto.StepDTO{
			{Kind: "condition", Config: []byte(`{"field":"vip","operator":"equals","comparison_value":"true","true_next":5,"false_next":0}`)},
			{Kind: "add_tag", Config: []byte(`{"tag":"vip"}`)},
		}, false},
		{"forward and terminating targets", []dto.StepDTO{
			{Kind: "condition", Config: []byte(`{"field":"vip","operator":"equals","comparison_value":"true","true_next":2,"false_next":0}`)},
			{Kind: "add_tag", Config: []byte(`{"tag":"vip"}`)},
		}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateWorkflow(context.Background(), uuid.New(), dto.CreateWorkflowRequest{
				Name:        "Branching",
				TriggerType: "filler",
				Steps:       tc.steps,
			})
			if tc.wantOK {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrValidation)
			}
		})
	}
}

func TestCreateWorkflowRejectsUndecodableStep(t *testing.T) {
	svc := NewWorkflowService(&stubWorkflowRepo{})

	_, err := svc.CreateWorkflow(context.Background(), uuid.New(), dto.CreateWorkflowRequest{
		Name:        "Broken",
		TriggerType: "toxins",
		Steps: []dto.StepDTO{
			{Kind: "wait_for_reply", Config: []byte(`{}`)},
		},
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateWorkflow(context.Background(), uuid.New(), dto.CreateWorkflowRequest{
		Name:        "Broken",
		TriggerType: "toxins",
		Steps: []dto.StepDTO{
			{Kind: "delay", Config: []byte(`{"amount":`)},
		},
	})
	assert.ErrorIs(t, err, ErrValidation)
}
