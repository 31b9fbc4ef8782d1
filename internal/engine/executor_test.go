package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
)

func newTestExecutor(messenger *fakeMessenger, directory *fakeDirectory, hook *fakeHook) *Executor {
	executor := NewExecutor(messenger, directory, hook, hclog.NewNullLogger())
	executor.sendBackoff = time.Millisecond
	return executor
}

func testEnrollment() *domain.Enrollment {
	return domain.NewEnrollment(uuid.New(), uuid.New(), uuid.New(), "test", nil)
}

func TestExecuteDelay(t *testing.T) {
	executor := newTestExecutor(&fakeMessenger{}, newFakeDirectory(), &fakeHook{})
	enrollment := testEnrollment()
	delayStep := step(domain.StepDelay, domain.DelayConfig{Amount: 3, Unit: domain.UnitDays})

	before := time.Now()
	outcome := executor.Execute(context.Background(), enrollment, &delayStep, nil)
	after := time.Now()

	assert.Equal(t, domain.ExecutionWaiting, outcome.Status)
	require.NotNil(t, outcome.NextExecutionAt)
	assert.False(t, outcome.NextExecutionAt.Before(before.Add(72*time.Hour)))
	assert.False(t, outcome.NextExecutionAt.After(after.Add(72*time.Hour)))
}

func TestExecuteSendMessageRetriesThenSucceeds(t *testing.T) {
	messenger := &fakeMessenger{failures: 2, err: assert.AnError}
	executor := newTestExecutor(messenger, newFakeDirectory(), &fakeHook{})
	msgStep := step(domain.StepSendMessage, domain.SendMessageConfig{Channel: domain.ChannelSMS, Body: "hello"})

	outcome := executor.Execute(context.Background(), testEnrollment(), &msgStep, nil)

	assert.Equal(t, domain.ExecutionExecuted, outcome.Status)
	assert.Equal(t, 3, messenger.attempts)
	require.Len(t, messenger.sent, 1)
	assert.Equal(t, domain.ChannelSMS, messenger.sent[0].channel)
}

func TestExecuteSendMessageFailsAfterRetries(t *testing.T) {
	messenger := &fakeMessenger{failures: -1, err: assert.AnError}
	executor := newTestExecutor(messenger, newFakeDirectory(), &fakeHook{})
	msgStep := step(domain.StepSendMessage, domain.SendMessageConfig{Channel: domain.ChannelEmail, Body: "hello"})

	outcome := executor.Execute(context.Background(), testEnrollment(), &msgStep, nil)

	assert.Equal(t, domain.ExecutionFailed, outcome.Status)
	assert.Equal(t, 3, messenger.attempts)
	assert.Empty(t, messenger.sent)
}

func TestExecuteAddTag(t *testing.T) {
	directory := newFakeDirectory()
	executor := newTestExecutor(&fakeMessenger{}, directory, &fakeHook{})
	tagStep := step(domain.StepAddTag, domain.AddTagConfig{Tag: "post-treatment"})

	outcome := executor.Execute(context.Background(), testEnrollment(), &tagStep, nil)

	assert.Equal(t, domain.ExecutionExecuted, outcome.Status)
	assert.Equal(t, 1, directory.tags["post-treatment"])
}

func TestExecuteCustomAction(t *testing.T) {
	hook := &fakeHook{}
	executor := newTestExecutor(&fakeMessenger{}, newFakeDirectory(), hook)
	actionStep := step(domain.StepCustomAction, domain.CustomActionConfig{Action: "book_followup", Params: map[string]string{"days": "14"}})

	outcome := executor.Execute(context.Background(), testEnrollment(), &actionStep, nil)

	assert.Equal(t, domain.ExecutionExecuted, outcome.Status)
	assert.Equal(t, []string{"book_followup"}, hook.runs)
}

func TestExecuteCustomActionFailure(t *testing.T) {
	hook := &fakeHook{err: assert.AnError}
	executor := newTestExecutor(&fakeMessenger{}, newFakeDirectory(), hook)
	actionStep := step(domain.StepCustomAction, domain.CustomActionConfig{Action: "book_followup"})

	outcome := executor.Execute(context.Background(), testEnrollment(), &actionStep, nil)

	assert.Equal(t, domain.ExecutionFailed, outcome.Status)
}

func TestExecuteMalformedConfigFails(t *testing.T) {
	executor := newTestExecutor(&fakeMessenger{}, newFakeDirectory(), &fakeHook{})
	badStep := domain.WorkflowStep{ID: uuid.New(), Kind: domain.StepDelay, Config: []byte(`{`)}

	outcome := executor.Execute(context.Background(), testEnrollment(), &badStep, nil)

	assert.Equal(t, domain.ExecutionFailed, outcome.Status)
}

func TestExecuteCondition(t *testing.T) {
	executor := newTestExecutor(&fakeMessenger{}, newFakeDirectory(), &fakeHook{})
	enrollment := testEnrollment()

	condStep := func(c domain.ConditionConfig) domain.WorkflowStep {
		c.TrueNext = 5
		c.FalseNext = 9
		return step(domain.StepCondition, c)
	}

	cases := []struct {
		name      string
		config    domain.ConditionConfig
		clientCtx domain.ClientContext
		wantTrue  bool
	}{
		{"equals match", domain.ConditionConfig{Field: "membership", Operator: domain.OpEquals, ComparisonValue: "gold"},
			domain.ClientContext{"membership": "Gold"}, true},
		{"equals miss", domain.ConditionConfig{Field: "membership", Operator: domain.OpEquals, ComparisonValue: "gold"},
			domain.ClientContext{"membership": "silver"}, false},
		{"missing field is false", domain.ConditionConfig{Field: "membership", Operator: domain.OpEquals, ComparisonValue: "gold"},
			domain.ClientContext{}, false},
		{"not equals", domain.ConditionConfig{Field: "membership", Operator: domain.OpNotEquals, ComparisonValue: "gold"},
			domain.ClientContext{"membership": "silver"}, true},
		{"contains", domain.ConditionConfig{Field: "notes", Operator: domain.OpContains, ComparisonValue: "allergy"},
			domain.ClientContext{"notes": "Latex ALLERGY noted"}, true},
		{"greater than numeric", domain.ConditionConfig{Field: "visits", Operator: domain.OpGreaterThan, ComparisonValue: "3"},
			domain.ClientContext{"visits": 5}, true},
		{"less than numeric", domain.ConditionConfig{Field: "visits", Operator: domain.OpLessThan, ComparisonValue: "3"},
			domain.ClientContext{"visits": 5}, false},
		{"greater than non-numeric is false", domain.ConditionConfig{Field: "visits", Operator: domain.OpGreaterThan, ComparisonValue: "3"},
			domain.ClientContext{"visits": "many"}, false},
		{"exists present", domain.ConditionConfig{Field: "email", Operator: domain.OpExists},
			domain.ClientContext{"email": "a@b.c"}, true},
		{"exists absent", domain.ConditionConfig{Field: "email", Operator: domain.OpExists},
			domain.ClientContext{}, false},
		{"exists nil value", domain.ConditionConfig{Field: "email", Operator: domain.OpExists},
			domain.ClientContext{"email": nil}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := condStep(tc.config)
			outcome := executor.Execute(context.Background(), enrollment, &s, tc.clientCtx)

			require.Equal(t, domain.ExecutionExecuted, outcome.Status)
			wantNext := 9
			if tc.wantTrue {
				wantNext = 5
			}
			assert.Equal(t, wantNext, outcome.NextSort)
		})
	}
}
