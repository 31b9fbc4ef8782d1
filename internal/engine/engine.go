// Package engine implements the appointment-triggered workflow automation
// pipeline: classification, duplicate suppression, enrollment, and ordered
// step execution.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/classifier"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/core/ports"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/metrics"
)

// Outcome is the typed reason code a pipeline call resolves to. Misses are
// not errors; callers branch on this instead of parsing log lines.
type Outcome string

const (
	OutcomeEnrolled         Outcome = "enrolled"
	OutcomeNoMatch          Outcome = "no_match"
	OutcomeNoWorkflows      Outcome = "no_workflows"
	OutcomeAllSuppressed    Outcome = "all_suppressed"
	OutcomeAlreadyProcessed Outcome = "already_processed"
)

// CompletionEvent is what the appointment source supplies when an
// appointment is marked completed.
type CompletionEvent struct {
	OrgID              uuid.UUID
	AppointmentID      string
	ClientID           uuid.UUID
	AppointmentTitle   string
	AppointmentEndTime time.Time
}

// PipelineResult summarises one pipeline call.
type PipelineResult struct {
	Outcome            Outcome            `json:"outcome"`
	AppointmentType    domain.TriggerType `json:"appointment_type,omitempty"`
	TriggeredWorkflows int                `json:"triggered_workflows"`
	Enrollments        int                `json:"enrollments"`
}

// Params collects the engine's dependencies.
type Params struct {
	Workflows   ports.WorkflowRepository
	Enrollments ports.EnrollmentRepository
	Triggers    ports.TriggerEventRepository
	Logs        ports.ExecutionLogRepository
	Directory   ports.ClientDirectory
	Bus         ports.EventBus
	Guard       *DuplicateGuard
	Executor    *Executor
	Collector   *metrics.Collector
	Logger      hclog.Logger
}

// Engine owns enrollments and the execution log on behalf of tenants.
type Engine struct {
	workflows   ports.WorkflowRepository
	enrollments ports.EnrollmentRepository
	triggers    ports.TriggerEventRepository
	logs        ports.ExecutionLogRepository
	directory   ports.ClientDirectory
	bus         ports.EventBus
	guard       *DuplicateGuard
	executor    *Executor
	collector   *metrics.Collector
	logger      hclog.Logger
}

func New(p Params) *Engine {
	return &Engine{
		workflows:   p.Workflows,
		enrollments: p.Enrollments,
		triggers:    p.Triggers,
		logs:        p.Logs,
		directory:   p.Directory,
		bus:         p.Bus,
		guard:       p.Guard,
		executor:    p.Executor,
		collector:   p.Collector,
		logger:      p.Logger.Named("engine"),
	}
}

// ProcessAppointmentCompletion is the pipeline entry point. It is safe to
// call repeatedly for the same appointment: a trigger event already recorded
// for it short-circuits with OutcomeAlreadyProcessed.
func (e *Engine) ProcessAppointmentCompletion(ctx context.Context, event CompletionEvent) (*PipelineResult, error) {
	trigger, ok := classifier.Classify(event.AppointmentTitle)
	e.collector.RecordClassification(string(trigger), ok)
	if !ok {
		e.logger.Info("no trigger matched appointment title",
			"org_id", event.OrgID, "appointment_id", event.AppointmentID)
		return &PipelineResult{Outcome: OutcomeNoMatch}, nil
	}

	if _, err := e.triggers.GetByAppointment(ctx, event.OrgID, event.AppointmentID); err == nil {
		e.logger.Info("appointment already processed",
			"org_id", event.OrgID, "appointment_id", event.AppointmentID)
		return &PipelineResult{Outcome: OutcomeAlreadyProcessed, AppointmentType: trigger}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	workflows, err := e.workflows.FindActiveByTrigger(ctx, event.OrgID, trigger)
	if err != nil {
		return nil, err
	}
	if len(workflows) == 0 {
		e.logger.Info("no active workflows for trigger",
			"org_id", event.OrgID, "trigger", trigger)
		return &PipelineResult{Outcome: OutcomeNoWorkflows, AppointmentType: trigger}, nil
	}

	type run struct {
		enrollment *domain.Enrollment
		workflow   *domain.Workflow
	}

	var (
		workflowIDs   []uuid.UUID
		enrollmentIDs []uuid.UUID
		runs          []run
	)

	for i := range workflows {
		workflow := &workflows[i]

		suppress, err := e.guard.ShouldSuppress(ctx, event.OrgID, event.ClientID, trigger, workflow, event.AppointmentEndTime)
		if err != nil {
			return nil, err
		}
		if suppress {
			e.collector.RecordSuppression(string(trigger))
			e.logger.Info("enrollment suppressed by cool-down window",
				"org_id", event.OrgID, "client_id", event.ClientID, "workflow_id", workflow.ID)
			continue
		}

		reason := "appointment_completed_" + string(trigger)
		enrollment := domain.NewEnrollment(event.OrgID, workflow.ID, event.ClientID, reason, nil)
		if err := e.enrollments.Create(ctx, enrollment); err != nil {
			return nil, err
		}

		entry := domain.NewExecutionLogEntry(enrollment, nil, domain.ActionAutoEnroll, domain.ExecutionExecuted,
			fmt.Sprintf("enrolled into %q", workflow.Name))
		if err := e.logs.Append(ctx, entry); err != nil {
			return nil, err
		}

		e.publishEnrollmentCreated(ctx, enrollment, trigger, reason)

		workflowIDs = append(workflowIDs, workflow.ID)
		enrollmentIDs = append(enrollmentIDs, enrollment.ID)
		runs = append(runs, run{enrollment: enrollment, workflow: workflow})
	}

	// All suppressed or none enrolled: no trigger event is written.
	if len(enrollmentIDs) == 0 {
		return &PipelineResult{Outcome: OutcomeAllSuppressed, AppointmentType: trigger}, nil
	}

	triggerEvent := domain.NewTriggerEvent(event.OrgID, event.AppointmentID, event.ClientID, trigger,
		workflowIDs, enrollmentIDs, event.AppointmentEndTime)
	if err := e.triggers.Create(ctx, triggerEvent); err != nil {
		return nil, err
	}

	for _, r := range runs {
		if err := e.runFrom(ctx, r.enrollment, r.workflow, 0); err != nil {
			e.logger.Error("run halted with storage error",
				"enrollment_id", r.enrollment.ID, "error", err)
		}
	}

	return &PipelineResult{
		Outcome:            OutcomeEnrolled,
		AppointmentType:    trigger,
		TriggeredWorkflows: len(workflowIDs),
		Enrollments:        len(enrollmentIDs),
	}, nil
}

// ResumeDue continues a run whose delayed step came due. Non-active
// enrollments found at dispatch time are skipped, and the workflow is loaded
// regardless of its status: deactivation never stops in-flight runs.
func (e *Engine) ResumeDue(ctx context.Context, orgID, enrollmentID uuid.UUID) error {
	enrollment, err := e.enrollments.GetByID(ctx, orgID, enrollmentID)
	if err != nil {
		return err
	}
	if enrollment.Status != domain.EnrollmentActive {
		e.logger.Debug("skipping non-active enrollment", "enrollment_id", enrollmentID, "status", enrollment.Status)
		return nil
	}

	workflow, err := e.workflows.GetByID(ctx, orgID, enrollment.WorkflowID)
	if err != nil {
		return err
	}

	fromSort := 0
	if enrollment.CurrentStepID != nil {
		if current := stepByID(workflow.Steps, *enrollment.CurrentStepID); current != nil {
			fromSort = current.SortOrder + 1
		}
	}
	return e.runFrom(ctx, enrollment, workflow, fromSort)
}

// runFrom executes steps in order starting at the first step whose sort
// order is >= fromSort, until the run waits, fails, or completes.
func (e *Engine) runFrom(ctx context.Context, enrollment *domain.Enrollment, workflow *domain.Workflow, fromSort int) error {
	clientCtx, err := e.directory.GetClientContext(ctx, enrollment.OrgID, enrollment.ClientID)
	if err != nil {
		e.logger.Warn("client context unavailable, conditions will take the false branch",
			"client_id", enrollment.ClientID, "error", err)
		clientCtx = domain.ClientContext{}
	}

	step := stepAtOrAfter(workflow.Steps, fromSort)
	for step != nil {
		outcome := e.executor.Execute(ctx, enrollment, step, clientCtx)

		stepID := step.ID
		entry := domain.NewExecutionLogEntry(enrollment, &stepID, string(step.Kind), outcome.Status, outcome.Message)
		if err := e.logs.Append(ctx, entry); err != nil {
			return err
		}
		e.publishStepExecuted(ctx, enrollment, step, outcome.Status)

		switch outcome.Status {
		case domain.ExecutionWaiting:
			return e.enrollments.UpdateProgress(ctx, enrollment.ID, &stepID, outcome.NextExecutionAt)
		case domain.ExecutionFailed:
			// Halt forward progress but leave the enrollment active for
			// manual intervention.
			e.logger.Warn("step failed, run stalled",
				"enrollment_id", enrollment.ID, "step_id", stepID, "message", outcome.Message)
			return e.enrollments.UpdateProgress(ctx, enrollment.ID, &stepID, nil)
		}

		if err := e.enrollments.UpdateProgress(ctx, enrollment.ID, &stepID, nil); err != nil {
			return err
		}

		if step.Kind == domain.StepCondition {
			if outcome.NextSort <= 0 {
				step = nil
				break
			}
			// Branch targets only move forward: every iteration strictly
			// increases the sort order, bounding the loop by the step count
			// even for rows that bypassed authoring validation.
			if outcome.NextSort <= step.SortOrder {
				e.logger.Warn("condition branch points backwards, completing run",
					"enrollment_id", enrollment.ID, "step_sort", step.SortOrder, "next_sort", outcome.NextSort)
				step = nil
				break
			}
			next := stepAt(workflow.Steps, outcome.NextSort)
			if next == nil {
				e.logger.Warn("condition branch names a missing step, completing run",
					"enrollment_id", enrollment.ID, "next_sort", outcome.NextSort)
			}
			step = next
			continue
		}
		step = stepAtOrAfter(workflow.Steps, step.SortOrder+1)
	}

	return e.completeRun(ctx, enrollment)
}

func (e *Engine) completeRun(ctx context.Context, enrollment *domain.Enrollment) error {
	now := time.Now()
	ok, err := e.enrollments.UpdateStatus(ctx, enrollment.ID,
		transitionEdges[triggerComplete].from, domain.EnrollmentCompleted, &now)
	if err != nil {
		return err
	}
	if !ok {
		// A concurrent transition won; nothing more to record.
		return nil
	}
	entry := domain.NewExecutionLogEntry(enrollment, nil, domain.ActionWorkflowCompleted, domain.ExecutionExecuted, "all steps executed")
	return e.logs.Append(ctx, entry)
}

// Pause suspends an active enrollment.
func (e *Engine) Pause(ctx context.Context, orgID, enrollmentID uuid.UUID) error {
	return e.transition(ctx, orgID, enrollmentID, triggerPause, domain.ActionPaused, domain.ExecutionExecuted)
}

// Resume reactivates a paused enrollment.
func (e *Engine) Resume(ctx context.Context, orgID, enrollmentID uuid.UUID) error {
	return e.transition(ctx, orgID, enrollmentID, triggerResume, domain.ActionResumed, domain.ExecutionExecuted)
}

// Cancel terminates an enrollment. Already-dispatched messages are not
// recalled; the next scheduler poll simply skips the enrollment.
func (e *Engine) Cancel(ctx context.Context, orgID, enrollmentID uuid.UUID) error {
	return e.transition(ctx, orgID, enrollmentID, triggerCancel, domain.ActionCancelled, domain.ExecutionCancelled)
}

// Advance manually moves the step pointer past the next pending step
// without executing it. The pointer marks the last dispatched step, and an
// immediate wakeup is scheduled so the next poll resumes the run after the
// skipped step. Advancing past the final step completes the enrollment.
func (e *Engine) Advance(ctx context.Context, orgID, enrollmentID uuid.UUID) error {
	enrollment, err := e.enrollments.GetByID(ctx, orgID, enrollmentID)
	if err != nil {
		return err
	}
	if enrollment.Status != domain.EnrollmentActive {
		return fmt.Errorf("%w: cannot advance from %s", domain.ErrInvalidTransition, enrollment.Status)
	}

	workflow, err := e.workflows.GetByID(ctx, orgID, enrollment.WorkflowID)
	if err != nil {
		return err
	}

	fromSort := 0
	if enrollment.CurrentStepID != nil {
		if current := stepByID(workflow.Steps, *enrollment.CurrentStepID); current != nil {
			fromSort = current.SortOrder + 1
		}
	}
	next := stepAtOrAfter(workflow.Steps, fromSort)
	if next == nil {
		return e.completeRun(ctx, enrollment)
	}

	stepID := next.ID
	now := time.Now()
	if err := e.enrollments.UpdateProgress(ctx, enrollment.ID, &stepID, &now); err != nil {
		return err
	}
	entry := domain.NewExecutionLogEntry(enrollment, &stepID, domain.ActionAdvanced, domain.ExecutionExecuted,
		fmt.Sprintf("step %d skipped", next.SortOrder))
	return e.logs.Append(ctx, entry)
}

// Complete marks an active enrollment finished without running further steps.
func (e *Engine) Complete(ctx context.Context, orgID, enrollmentID uuid.UUID) error {
	return e.transition(ctx, orgID, enrollmentID, triggerComplete, domain.ActionWorkflowCompleted, domain.ExecutionExecuted)
}

func (e *Engine) transition(ctx context.Context, orgID, enrollmentID uuid.UUID, t lifecycleTrigger, action string, logStatus domain.ExecutionStatus) error {
	enrollment, err := e.enrollments.GetByID(ctx, orgID, enrollmentID)
	if err != nil {
		return err
	}
	if !canTransition(enrollment.Status, t) {
		return fmt.Errorf("%w: cannot %s from %s", domain.ErrInvalidTransition, t, enrollment.Status)
	}

	edge := transitionEdges[t]
	var completedAt *time.Time
	if edge.to == domain.EnrollmentCompleted {
		now := time.Now()
		completedAt = &now
	}

	ok, err := e.enrollments.UpdateStatus(ctx, enrollmentID, edge.from, edge.to, completedAt)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: cannot %s from %s", domain.ErrInvalidTransition, t, enrollment.Status)
	}

	entry := domain.NewExecutionLogEntry(enrollment, nil, action, logStatus, "status changed to "+string(edge.to))
	return e.logs.Append(ctx, entry)
}

func (e *Engine) publishEnrollmentCreated(ctx context.Context, enrollment *domain.Enrollment, trigger domain.TriggerType, reason string) {
	err := e.bus.PublishEnrollmentCreated(ctx, domain.EnrollmentCreatedEvent{
		OrgID:        enrollment.OrgID,
		WorkflowID:   enrollment.WorkflowID,
		EnrollmentID: enrollment.ID,
		ClientID:     enrollment.ClientID,
		TriggerType:  trigger,
		Reason:       reason,
	})
	if err != nil {
		e.logger.Warn("publish enrollment event failed", "enrollment_id", enrollment.ID, "error", err)
	}
}

func (e *Engine) publishStepExecuted(ctx context.Context, enrollment *domain.Enrollment, step *domain.WorkflowStep, status domain.ExecutionStatus) {
	err := e.bus.PublishStepExecuted(ctx, domain.StepExecutedEvent{
		OrgID:        enrollment.OrgID,
		WorkflowID:   enrollment.WorkflowID,
		EnrollmentID: enrollment.ID,
		StepID:       step.ID,
		Kind:         step.Kind,
		Status:       status,
	})
	if err != nil {
		e.logger.Warn("publish step event failed", "enrollment_id", enrollment.ID, "error", err)
	}
}

func stepAtOrAfter(steps []domain.WorkflowStep, sort int) *domain.WorkflowStep {
	for i := range steps {
		if steps[i].SortOrder >= sort {
			return &steps[i]
		}
	}
	return nil
}

func stepAt(steps []domain.WorkflowStep, sort int) *domain.WorkflowStep {
	for i := range steps {
		if steps[i].SortOrder == sort {
			return &steps[i]
		}
	}
	return nil
}

func stepByID(steps []domain.WorkflowStep, id uuid.UUID) *domain.WorkflowStep {
	for i := range steps {
		if steps[i].ID == id {
			return &steps[i]
		}
	}
	return nil
}
