package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/core/ports"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
)

type fakeWorkflowRepo struct {
	workflows []domain.Workflow
}

func (r *fakeWorkflowRepo) Create(ctx context.Context, workflow *domain.Workflow, steps []domain.WorkflowStep) error {
	workflow.Steps = steps
	r.workflows = append(r.workflows, *workflow)
	return nil
}

func (r *fakeWorkflowRepo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Workflow, error) {
	for i := range r.workflows {
		if r.workflows[i].ID == id {
			if r.workflows[i].OrgID != orgID {
				return nil, domain.ErrUnauthorized
			}
			workflow := r.workflows[i]
			return &workflow, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeWorkflowRepo) FindActiveByTrigger(ctx context.Context, orgID uuid.UUID, trigger domain.TriggerType) ([]domain.Workflow, error) {
	var matched []domain.Workflow
	for _, workflow := range r.workflows {
		if workflow.OrgID == orgID && workflow.Status == domain.WorkflowActive && workflow.TriggerType == trigger {
			matched = append(matched, workflow)
		}
	}
	return matched, nil
}

func (r *fakeWorkflowRepo) List(ctx context.Context, orgID uuid.UUID) ([]domain.Workflow, error) {
	var matched []domain.Workflow
	for _, workflow := range r.workflows {
		if workflow.OrgID == orgID {
			matched = append(matched, workflow)
		}
	}
	return matched, nil
}

func (r *fakeWorkflowRepo) UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status domain.WorkflowStatus) error {
	for i := range r.workflows {
		if r.workflows[i].ID == id && r.workflows[i].OrgID == orgID {
			r.workflows[i].Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeEnrollmentRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.Enrollment
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{items: make(map[uuid.UUID]*domain.Enrollment)}
}

func (r *fakeEnrollmentRepo) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *enrollment
	r.items[enrollment.ID] = &clone
	return nil
}

func (r *fakeEnrollmentRepo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	enrollment, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if enrollment.OrgID != orgID {
		return nil, domain.ErrUnauthorized
	}
	clone := *enrollment
	return &clone, nil
}

func (r *fakeEnrollmentRepo) UpdateProgress(ctx context.Context, id uuid.UUID, currentStepID *uuid.UUID, nextExecutionAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	enrollment, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	enrollment.CurrentStepID = currentStepID
	enrollment.NextExecutionAt = nextExecutionAt
	return nil
}

func (r *fakeEnrollmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, allowedFrom []domain.EnrollmentStatus, to domain.EnrollmentStatus, completedAt *time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	enrollment, ok := r.items[id]
	if !ok {
		return false, nil
	}
	allowed := false
	for _, status := range allowedFrom {
		if enrollment.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, nil
	}
	enrollment.Status = to
	if completedAt != nil {
		enrollment.CompletedAt = completedAt
	}
	return true, nil
}

func (r *fakeEnrollmentRepo) FindDue(ctx context.Context, now time.Time, limit int) ([]domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []domain.Enrollment
	for _, enrollment := range r.items {
		if len(due) >= limit {
			break
		}
		if enrollment.Status == domain.EnrollmentActive && enrollment.NextExecutionAt != nil && !enrollment.NextExecutionAt.After(now) {
			enrollment.NextExecutionAt = nil
			due = append(due, *enrollment)
		}
	}
	return due, nil
}

func (r *fakeEnrollmentRepo) ListByClient(ctx context.Context, orgID, clientID uuid.UUID) ([]domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.Enrollment
	for _, enrollment := range r.items {
		if enrollment.OrgID == orgID && enrollment.ClientID == clientID {
			matched = append(matched, *enrollment)
		}
	}
	return matched, nil
}

func (r *fakeEnrollmentRepo) CountByOrg(ctx context.Context, orgID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, enrollment := range r.items {
		if enrollment.OrgID == orgID {
			count++
		}
	}
	return count, nil
}

type fakeTriggerRepo struct {
	events []domain.TriggerEvent
}

func (r *fakeTriggerRepo) Create(ctx context.Context, event *domain.TriggerEvent) error {
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeTriggerRepo) GetByAppointment(ctx context.Context, orgID uuid.UUID, appointmentID string) (*domain.TriggerEvent, error) {
	for i := range r.events {
		if r.events[i].OrgID == orgID && r.events[i].AppointmentID == appointmentID {
			event := r.events[i]
			return &event, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeTriggerRepo) HasRecent(ctx context.Context, orgID, clientID uuid.UUID, appointmentType domain.TriggerType, cutoff time.Time) (bool, error) {
	for _, event := range r.events {
		if event.OrgID == orgID && event.ClientID == clientID && event.AppointmentType == appointmentType && event.TriggeredAt.After(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTriggerRepo) ListRecent(ctx context.Context, orgID uuid.UUID, limit int) ([]domain.TriggerEvent, error) {
	var matched []domain.TriggerEvent
	for _, event := range r.events {
		if event.OrgID == orgID && len(matched) < limit {
			matched = append(matched, event)
		}
	}
	return matched, nil
}

func (r *fakeTriggerRepo) CountByOrg(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var count int64
	for _, event := range r.events {
		if event.OrgID == orgID {
			count++
		}
	}
	return count, nil
}

func (r *fakeTriggerRepo) CountByOrgSince(ctx context.Context, orgID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	for _, event := range r.events {
		if event.OrgID == orgID && !event.TriggeredAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeTriggerRepo) CountByType(ctx context.Context, orgID uuid.UUID) (map[domain.TriggerType]int64, error) {
	byType := make(map[domain.TriggerType]int64)
	for _, event := range r.events {
		if event.OrgID == orgID {
			byType[event.AppointmentType]++
		}
	}
	return byType, nil
}

type fakeLogRepo struct {
	entries []domain.ExecutionLogEntry
}

func (r *fakeLogRepo) Append(ctx context.Context, entry *domain.ExecutionLogEntry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeLogRepo) List(ctx context.Context, orgID uuid.UUID, filter ports.LogFilter) ([]domain.ExecutionLogEntry, error) {
	var matched []domain.ExecutionLogEntry
	for _, entry := range r.entries {
		if entry.OrgID != orgID {
			continue
		}
		if filter.EnrollmentID != nil && entry.EnrollmentID != *filter.EnrollmentID {
			continue
		}
		matched = append(matched, entry)
	}
	return matched, nil
}

// byAction filters recorded entries for assertions.
func (r *fakeLogRepo) byAction(action string) []domain.ExecutionLogEntry {
	var matched []domain.ExecutionLogEntry
	for _, entry := range r.entries {
		if entry.Action == action {
			matched = append(matched, entry)
		}
	}
	return matched
}

type fakeBus struct {
	enrollmentEvents []domain.EnrollmentCreatedEvent
	stepEvents       []domain.StepExecutedEvent
}

func (b *fakeBus) PublishEnrollmentCreated(ctx context.Context, event domain.EnrollmentCreatedEvent) error {
	b.enrollmentEvents = append(b.enrollmentEvents, event)
	return nil
}

func (b *fakeBus) PublishStepExecuted(ctx context.Context, event domain.StepExecutedEvent) error {
	b.stepEvents = append(b.stepEvents, event)
	return nil
}

func (b *fakeBus) SubscribeEnrollmentCreated(ctx context.Context) (<-chan domain.EnrollmentCreatedEvent, error) {
	ch := make(chan domain.EnrollmentCreatedEvent)
	close(ch)
	return ch, nil
}

func (b *fakeBus) SubscribeStepExecuted(ctx context.Context) (<-chan domain.StepExecutedEvent, error) {
	ch := make(chan domain.StepExecutedEvent)
	close(ch)
	return ch, nil
}

type sentMessage struct {
	clientID uuid.UUID
	channel  domain.MessageChannel
}

type fakeMessenger struct {
	sent     []sentMessage
	failures int // fail this many sends before succeeding; negative means always fail
	err      error
	attempts int
}

func (m *fakeMessenger) SendMessage(ctx context.Context, orgID, clientID uuid.UUID, channel domain.MessageChannel, templateRef, body string) error {
	m.attempts++
	if m.failures < 0 {
		return m.err
	}
	if m.failures > 0 {
		m.failures--
		return m.err
	}
	m.sent = append(m.sent, sentMessage{clientID: clientID, channel: channel})
	return nil
}

type fakeDirectory struct {
	tags      map[string]int
	clientCtx domain.ClientContext
	ctxErr    error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{tags: make(map[string]int), clientCtx: domain.ClientContext{}}
}

func (d *fakeDirectory) AddTag(ctx context.Context, orgID, clientID uuid.UUID, tag string) error {
	d.tags[tag]++
	return nil
}

func (d *fakeDirectory) GetClientContext(ctx context.Context, orgID, clientID uuid.UUID) (domain.ClientContext, error) {
	if d.ctxErr != nil {
		return nil, d.ctxErr
	}
	return d.clientCtx, nil
}

type fakeHook struct {
	runs []string
	err  error
}

func (h *fakeHook) Run(ctx context.Context, orgID, clientID uuid.UUID, action string, params map[string]string) error {
	if h.err != nil {
		return h.err
	}
	h.runs = append(h.runs, action)
	return nil
}
