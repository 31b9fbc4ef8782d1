package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CompleteAppointmentRequest struct {
	OrgID              uuid.UUID `json:"org_id" binding:"required"`
	AppointmentID      string    `json:"appointment_id" binding:"required"`
	ClientID           uuid.UUID `json:"client_id" binding:"required"`
	AppointmentTitle   string    `json:"appointment_title" binding:"required"`
	AppointmentEndTime time.Time `json:"appointment_end_time" binding:"required"`
}

type StepDTO struct {
	Kind   string          `json:"kind" binding:"required"`
	Config json.RawMessage `json:"config" binding:"required"`
}

type CreateWorkflowRequest struct {
	Name                    string    `json:"name" binding:"required"`
	Description             string    `json:"description"`
	TriggerType             string    `json:"trigger_type" binding:"required"`
	PreventDuplicates       bool      `json:"prevent_duplicates"`
	DuplicatePreventionDays int       `json:"duplicate_prevention_days"`
	Steps                   []StepDTO `json:"steps" binding:"required,min=1"`
}

type UpdateWorkflowStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}
