package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TriggerEvent is the immutable record of one classification+match event.
// Written at most once per appointment completion, and only when at least one
// enrollment was created. Invariant: len(TriggeredWorkflows) == len(EnrollmentIDs).
type TriggerEvent struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrgID         uuid.UUID `gorm:"type:uuid;index:idx_triggers_org_client_type;not null" json:"org_id"`
	AppointmentID string    `gorm:"type:varchar(100);index;not null" json:"appointment_id"`
	ClientID      uuid.UUID `gorm:"type:uuid;index:idx_triggers_org_client_type;not null" json:"client_id"`

	AppointmentType TriggerType `gorm:"type:varchar(50);index:idx_triggers_org_client_type;not null" json:"appointment_type"`

	TriggeredWorkflows datatypes.JSON `gorm:"type:jsonb" json:"triggered_workflows"`
	EnrollmentIDs      datatypes.JSON `gorm:"type:jsonb" json:"enrollment_ids"`

	TriggeredAt        time.Time `gorm:"index;not null" json:"triggered_at"`
	AppointmentEndTime time.Time `json:"appointment_end_time"`
	Metadata           datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func NewTriggerEvent(orgID uuid.UUID, appointmentID string, clientID uuid.UUID, appointmentType TriggerType, workflowIDs, enrollmentIDs []uuid.UUID, endTime time.Time) *TriggerEvent {
	wf, _ := json.Marshal(workflowIDs)
	en, _ := json.Marshal(enrollmentIDs)
	return &TriggerEvent{
		ID:                 uuid.New(),
		OrgID:              orgID,
		AppointmentID:      appointmentID,
		ClientID:           clientID,
		AppointmentType:    appointmentType,
		TriggeredWorkflows: wf,
		EnrollmentIDs:      en,
		TriggeredAt:        time.Now(),
		AppointmentEndTime: endTime,
		CreatedAt:          time.Now(),
	}
}

// WorkflowIDs decodes the triggered-workflow id list.
func (t *TriggerEvent) WorkflowIDs() []uuid.UUID {
	var ids []uuid.UUID
	_ = json.Unmarshal(t.TriggeredWorkflows, &ids)
	return ids
}

// EnrollmentIDList decodes the enrollment id list.
func (t *TriggerEvent) EnrollmentIDList() []uuid.UUID {
	var ids []uuid.UUID
	_ = json.Unmarshal(t.EnrollmentIDs, &ids)
	return ids
}

// ClientContext carries the client/appointment fields condition steps
// evaluate against. Values come from the client-record collaborator.
type ClientContext map[string]any

// TriggerStats is the aggregate view backing the stats endpoint.
type TriggerStats struct {
	TotalTriggers    int64                 `json:"total_triggers"`
	TriggersByType   map[TriggerType]int64 `json:"triggers_by_type"`
	TotalEnrollments int64                 `json:"total_enrollments"`
	RecentTriggers   int64                 `json:"recent_triggers"`
}
