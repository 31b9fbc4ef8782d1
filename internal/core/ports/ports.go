package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
)

// WorkflowRepository reads and writes tenant workflow definitions. The
// engine only reads; authoring goes through the API layer.
type WorkflowRepository interface {
	// Create persists a workflow with all its steps in one transaction.
	Create(ctx context.Context, workflow *domain.Workflow, steps []domain.WorkflowStep) error

	// GetByID returns the workflow with steps ordered by sort_order.
	// domain.ErrUnauthorized when the row belongs to another org.
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Workflow, error)

	// FindActiveByTrigger returns active workflows for this org and trigger
	// type, steps ordered. An empty slice when nothing matches, not an error.
	FindActiveByTrigger(ctx context.Context, orgID uuid.UUID, trigger domain.TriggerType) ([]domain.Workflow, error)

	List(ctx context.Context, orgID uuid.UUID) ([]domain.Workflow, error)

	UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status domain.WorkflowStatus) error
}

// EnrollmentRepository owns enrollment rows on behalf of the engine.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *domain.Enrollment) error

	GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Enrollment, error)

	// UpdateProgress moves the step pointer and the delayed-wakeup time.
	UpdateProgress(ctx context.Context, id uuid.UUID, currentStepID *uuid.UUID, nextExecutionAt *time.Time) error

	// UpdateStatus performs a guarded transition: the update only applies
	// when the current status is one of allowedFrom. Returns false on an
	// existing enrollment when the transition lost to a concurrent one.
	UpdateStatus(ctx context.Context, id uuid.UUID, allowedFrom []domain.EnrollmentStatus, to domain.EnrollmentStatus, completedAt *time.Time) (bool, error)

	// FindDue returns active enrollments whose next_execution_at has passed,
	// clearing next_execution_at so a concurrent poller cannot claim them twice.
	FindDue(ctx context.Context, now time.Time, limit int) ([]domain.Enrollment, error)

	ListByClient(ctx context.Context, orgID, clientID uuid.UUID) ([]domain.Enrollment, error)

	CountByOrg(ctx context.Context, orgID uuid.UUID) (int64, error)
}

// TriggerEventRepository owns the immutable trigger history the duplicate
// guard and the stats endpoints read.
type TriggerEventRepository interface {
	Create(ctx context.Context, event *domain.TriggerEvent) error

	// GetByAppointment returns domain.ErrNotFound when the appointment has
	// not triggered anything yet.
	GetByAppointment(ctx context.Context, orgID uuid.UUID, appointmentID string) (*domain.TriggerEvent, error)

	// HasRecent reports whether a trigger event for the same org, client and
	// appointment type exists with triggered_at after cutoff.
	HasRecent(ctx context.Context, orgID, clientID uuid.UUID, appointmentType domain.TriggerType, cutoff time.Time) (bool, error)

	ListRecent(ctx context.Context, orgID uuid.UUID, limit int) ([]domain.TriggerEvent, error)

	CountByOrg(ctx context.Context, orgID uuid.UUID) (int64, error)
	CountByOrgSince(ctx context.Context, orgID uuid.UUID, since time.Time) (int64, error)
	CountByType(ctx context.Context, orgID uuid.UUID) (map[domain.TriggerType]int64, error)
}

// LogFilter narrows execution-log queries. After* fields form the pagination
// cursor: entries strictly older than (AfterTime, AfterID) are returned.
type LogFilter struct {
	WorkflowID   *uuid.UUID
	ClientID     *uuid.UUID
	EnrollmentID *uuid.UUID
	AfterTime    *time.Time
	AfterID      *uuid.UUID
	Limit        int
}

// ExecutionLogRepository is append-only. There is no update path: audit
// entries are immutable once written.
type ExecutionLogRepository interface {
	Append(ctx context.Context, entry *domain.ExecutionLogEntry) error
	List(ctx context.Context, orgID uuid.UUID, filter LogFilter) ([]domain.ExecutionLogEntry, error)
}

// DueQueue hands due enrollment IDs from the poller to the worker pool.
type DueQueue interface {
	Push(ctx context.Context, enrollmentID string) error

	// Pop blocks until an enrollment ID is available.
	Pop(ctx context.Context) (string, error)
}

// EventBus broadcasts engine events for decoupled consumers (metrics, any
// future audit fan-out).
type EventBus interface {
	PublishEnrollmentCreated(ctx context.Context, event domain.EnrollmentCreatedEvent) error
	PublishStepExecuted(ctx context.Context, event domain.StepExecutedEvent) error

	SubscribeEnrollmentCreated(ctx context.Context) (<-chan domain.EnrollmentCreatedEvent, error)
	SubscribeStepExecuted(ctx context.Context) (<-chan domain.StepExecutedEvent, error)
}

// Messenger is the out-of-scope messaging collaborator. SendMessage returns
// once dispatch is handed off; delivery confirmation is tracked elsewhere.
type Messenger interface {
	SendMessage(ctx context.Context, orgID, clientID uuid.UUID, channel domain.MessageChannel, templateRef, body string) error
}

// ClientDirectory is the out-of-scope client-record collaborator.
type ClientDirectory interface {
	// AddTag is idempotent: adding an existing tag is a no-op, not an error.
	AddTag(ctx context.Context, orgID, clientID uuid.UUID, tag string) error

	GetClientContext(ctx context.Context, orgID, clientID uuid.UUID) (domain.ClientContext, error)
}

// ActionHook runs tenant-defined custom actions. Treated as succeeded unless
// the hook reports otherwise.
type ActionHook interface {
	Run(ctx context.Context, orgID, clientID uuid.UUID, action string, params map[string]string) error
}
