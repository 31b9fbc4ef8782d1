package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentPaused    EnrollmentStatus = "paused"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

// Enrollment is one client's run through one workflow. A client may hold
// multiple historical enrollments in the same workflow across different
// cool-down windows; the duplicate guard operates on trigger events, not here.
type Enrollment struct {
	ID               uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	OrgID            uuid.UUID        `gorm:"type:uuid;index;not null" json:"org_id"`
	WorkflowID       uuid.UUID        `gorm:"type:uuid;index;not null" json:"workflow_id"`
	ClientID         uuid.UUID        `gorm:"type:uuid;index;not null" json:"client_id"`
	EnrollmentReason string           `gorm:"type:varchar(200)" json:"enrollment_reason"`
	EnrolledAt       time.Time        `gorm:"not null" json:"enrolled_at"`
	Status           EnrollmentStatus `gorm:"type:varchar(20);index;default:'active'" json:"status"`

	// CurrentStepID is nil before the first step dispatch.
	CurrentStepID   *uuid.UUID `gorm:"type:uuid" json:"current_step_id,omitempty"`
	NextExecutionAt *time.Time `gorm:"index" json:"next_execution_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`

	Metadata datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewEnrollment(orgID, workflowID, clientID uuid.UUID, reason string, metadata datatypes.JSON) *Enrollment {
	return &Enrollment{
		ID:               uuid.New(),
		OrgID:            orgID,
		WorkflowID:       workflowID,
		ClientID:         clientID,
		EnrollmentReason: reason,
		EnrolledAt:       time.Now(),
		Status:           EnrollmentActive,
		Metadata:         metadata,
		CreatedAt:        time.Now(),
	}
}

func (e *Enrollment) IsTerminal() bool {
	return e.Status == EnrollmentCompleted || e.Status == EnrollmentCancelled
}
