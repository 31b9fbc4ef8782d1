package dto

import (
	"github.com/google/uuid"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
)

type CreateWorkflowResponse struct {
	ID uuid.UUID `json:"id"`
}

// WorkflowSummary is the display enrichment attached to trigger views.
type WorkflowSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// TriggerEventView is a trigger event enriched with workflow summaries for
// display. Enrichment is presentation-layer only.
type TriggerEventView struct {
	Event     domain.TriggerEvent `json:"event"`
	Workflows []WorkflowSummary   `json:"workflows"`
}

// AuditPage is one page of execution-log entries. NextCursor is empty on the
// last page.
type AuditPage struct {
	Entries    []domain.ExecutionLogEntry `json:"entries"`
	NextCursor string                     `json:"next_cursor,omitempty"`
}
