package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/sethvargo/go-retry"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/core/ports"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
)

// StepOutcome is the result of interpreting one workflow step.
type StepOutcome struct {
	Status  domain.ExecutionStatus
	Message string

	// NextExecutionAt is set when Status is waiting (delay steps).
	NextExecutionAt *time.Time

	// NextSort is only meaningful after a condition step: the sort order the
	// run resumes at. Zero or negative terminates the run.
	NextSort int
}

// Executor interprets a single workflow step against the collaborators.
// It performs no persistence; the engine records outcomes.
type Executor struct {
	messenger ports.Messenger
	directory ports.ClientDirectory
	hook      ports.ActionHook
	logger    hclog.Logger

	// Message dispatch is retried with constant backoff before the step is
	// recorded as failed. This is a deliberate hardening over treating the
	// first dispatch error as final.
	sendRetries uint64
	sendBackoff time.Duration
}

func NewExecutor(messenger ports.Messenger, directory ports.ClientDirectory, hook ports.ActionHook, logger hclog.Logger) *Executor {
	return &Executor{
		messenger:   messenger,
		directory:   directory,
		hook:        hook,
		logger:      logger.Named("executor"),
		sendRetries: 2,
		sendBackoff: 2 * time.Second,
	}
}

// Execute dispatches on the step kind. Failures never panic or abort the
// caller: they come back as a failed outcome.
func (x *Executor) Execute(ctx context.Context, enrollment *domain.Enrollment, step *domain.WorkflowStep, clientCtx domain.ClientContext) StepOutcome {
	config, err := step.DecodeConfig()
	if err != nil {
		return StepOutcome{Status: domain.ExecutionFailed, Message: err.Error()}
	}

	switch c := config.(type) {
	case domain.DelayConfig:
		return x.executeDelay(c)
	case domain.SendMessageConfig:
		return x.executeSendMessage(ctx, enrollment, c)
	case domain.AddTagConfig:
		return x.executeAddTag(ctx, enrollment, c)
	case domain.ConditionConfig:
		return x.executeCondition(c, clientCtx)
	case domain.CustomActionConfig:
		return x.executeCustomAction(ctx, enrollment, c)
	default:
		return StepOutcome{Status: domain.ExecutionFailed, Message: fmt.Sprintf("unhandled step kind %q", step.Kind)}
	}
}

// executeDelay performs no I/O: it computes the wakeup time and suspends the
// run. The scheduler re-dispatches the enrollment once due.
func (x *Executor) executeDelay(c domain.DelayConfig) StepOutcome {
	at := time.Now().Add(c.Duration())
	return StepOutcome{
		Status:          domain.ExecutionWaiting,
		Message:         fmt.Sprintf("waiting %d %s", c.Amount, c.Unit),
		NextExecutionAt: &at,
	}
}

// executeSendMessage hands off to the messaging collaborator. Success means
// the dispatch was accepted; delivery status is tracked elsewhere.
func (x *Executor) executeSendMessage(ctx context.Context, enrollment *domain.Enrollment, c domain.SendMessageConfig) StepOutcome {
	backoff := retry.WithMaxRetries(x.sendRetries, retry.NewConstant(x.sendBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := x.messenger.SendMessage(ctx, enrollment.OrgID, enrollment.ClientID, c.Channel, c.TemplateRef, c.Body); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		x.logger.Error("message dispatch failed",
			"enrollment_id", enrollment.ID, "channel", c.Channel, "error", err)
		return StepOutcome{Status: domain.ExecutionFailed, Message: fmt.Sprintf("dispatch %s message: %v", c.Channel, err)}
	}
	return StepOutcome{Status: domain.ExecutionExecuted, Message: fmt.Sprintf("%s message dispatched", c.Channel)}
}

func (x *Executor) executeAddTag(ctx context.Context, enrollment *domain.Enrollment, c domain.AddTagConfig) StepOutcome {
	if err := x.directory.AddTag(ctx, enrollment.OrgID, enrollment.ClientID, c.Tag); err != nil {
		return StepOutcome{Status: domain.ExecutionFailed, Message: fmt.Sprintf("add tag %q: %v", c.Tag, err)}
	}
	return StepOutcome{Status: domain.ExecutionExecuted, Message: fmt.Sprintf("tag %q added", c.Tag)}
}

// executeCondition resolves the binary fork. A field missing from the client
// context deterministically takes the false branch.
func (x *Executor) executeCondition(c domain.ConditionConfig, clientCtx domain.ClientContext) StepOutcome {
	result := evaluateCondition(c, clientCtx)
	next := c.FalseNext
	branch := "false"
	if result {
		next = c.TrueNext
		branch = "true"
	}
	return StepOutcome{
		Status:   domain.ExecutionExecuted,
		Message:  fmt.Sprintf("condition %s %s %q took %s branch", c.Field, c.Operator, c.ComparisonValue, branch),
		NextSort: next,
	}
}

func (x *Executor) executeCustomAction(ctx context.Context, enrollment *domain.Enrollment, c domain.CustomActionConfig) StepOutcome {
	if err := x.hook.Run(ctx, enrollment.OrgID, enrollment.ClientID, c.Action, c.Params); err != nil {
		return StepOutcome{Status: domain.ExecutionFailed, Message: fmt.Sprintf("custom action %q: %v", c.Action, err)}
	}
	return StepOutcome{Status: domain.ExecutionExecuted, Message: fmt.Sprintf("custom action %q executed", c.Action)}
}

func evaluateCondition(c domain.ConditionConfig, clientCtx domain.ClientContext) bool {
	raw, present := clientCtx[c.Field]
	if c.Operator == domain.OpExists {
		return present && raw != nil
	}
	if !present || raw == nil {
		return false
	}

	value := fmt.Sprintf("%v", raw)
	switch c.Operator {
	case domain.OpEquals:
		return strings.EqualFold(value, c.ComparisonValue)
	case domain.OpNotEquals:
		return !strings.EqualFold(value, c.ComparisonValue)
	case domain.OpContains:
		return strings.Contains(strings.ToLower(value), strings.ToLower(c.ComparisonValue))
	case domain.OpGreaterThan, domain.OpLessThan:
		left, errL := strconv.ParseFloat(value, 64)
		right, errR := strconv.ParseFloat(c.ComparisonValue, 64)
		if errL != nil || errR != nil {
			return false
		}
		if c.Operator == domain.OpGreaterThan {
			return left > right
		}
		return left < right
	default:
		return false
	}
}
