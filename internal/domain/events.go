package domain

import "github.com/google/uuid"

// EnrollmentCreatedEvent is published to Redis Pub/Sub when the pipeline
// enrolls a client into a workflow.
type EnrollmentCreatedEvent struct {
	OrgID        uuid.UUID   `json:"org_id"`
	WorkflowID   uuid.UUID   `json:"workflow_id"`
	EnrollmentID uuid.UUID   `json:"enrollment_id"`
	ClientID     uuid.UUID   `json:"client_id"`
	TriggerType  TriggerType `json:"trigger_type"`
	Reason       string      `json:"reason"`
}

// StepExecutedEvent is published after every step attempt, whatever the
// outcome. The metrics subscriber consumes these.
type StepExecutedEvent struct {
	OrgID        uuid.UUID       `json:"org_id"`
	WorkflowID   uuid.UUID       `json:"workflow_id"`
	EnrollmentID uuid.UUID       `json:"enrollment_id"`
	StepID       uuid.UUID       `json:"step_id"`
	Kind         StepKind        `json:"kind"`
	Status       ExecutionStatus `json:"status"`
}
