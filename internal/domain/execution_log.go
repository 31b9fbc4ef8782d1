package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ExecutionStatus string

const (
	ExecutionExecuted  ExecutionStatus = "executed"
	ExecutionFailed    ExecutionStatus = "failed"
	ExecutionWaiting   ExecutionStatus = "waiting"
	ExecutionCancelled ExecutionStatus = "cancelled"
)

// Well-known audit actions. Step attempts log the step kind as the action.
const (
	ActionAutoEnroll        = "auto_enroll"
	ActionWorkflowCompleted = "workflow_completed"
	ActionPaused            = "paused"
	ActionResumed           = "resumed"
	ActionCancelled         = "cancelled"
	ActionAdvanced          = "advanced"
)

// ExecutionLogEntry is the append-only audit record of one step attempt or
// lifecycle event. Entries are never updated after insert.
type ExecutionLogEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrgID        uuid.UUID `gorm:"type:uuid;index;not null" json:"org_id"`
	WorkflowID   uuid.UUID `gorm:"type:uuid;index;not null" json:"workflow_id"`
	EnrollmentID uuid.UUID `gorm:"type:uuid;index;not null" json:"enrollment_id"`
	ClientID     uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`

	// StepID is nil for lifecycle entries (enroll, pause, cancel, complete).
	StepID *uuid.UUID `gorm:"type:uuid" json:"step_id,omitempty"`

	Action     string          `gorm:"type:varchar(100);not null" json:"action"`
	Status     ExecutionStatus `gorm:"type:varchar(20);not null" json:"status"`
	ExecutedAt time.Time       `gorm:"index;not null" json:"executed_at"`
	Message    string          `gorm:"type:text" json:"message,omitempty"`
	Metadata   datatypes.JSON  `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (ExecutionLogEntry) TableName() string { return "execution_logs" }

func NewExecutionLogEntry(e *Enrollment, stepID *uuid.UUID, action string, status ExecutionStatus, message string) *ExecutionLogEntry {
	now := time.Now()
	return &ExecutionLogEntry{
		ID:           uuid.New(),
		OrgID:        e.OrgID,
		WorkflowID:   e.WorkflowID,
		EnrollmentID: e.ID,
		ClientID:     e.ClientID,
		StepID:       stepID,
		Action:       action,
		Status:       status,
		ExecutedAt:   now,
		Message:      message,
		CreatedAt:    now,
	}
}
