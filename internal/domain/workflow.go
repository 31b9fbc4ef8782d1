package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type WorkflowStatus string

const (
	WorkflowActive   WorkflowStatus = "active"
	WorkflowInactive WorkflowStatus = "inactive"
)

// TriggerType is the canonical treatment-type tag produced by the classifier
// and referenced by workflow definitions.
type TriggerType string

const (
	TriggerMorpheus8    TriggerType = "morpheus8"
	TriggerToxins       TriggerType = "toxins"
	TriggerFiller       TriggerType = "filler"
	TriggerConsultation TriggerType = "consultation"
	TriggerNewClient    TriggerType = "new_client"
	TriggerManual       TriggerType = "manual"
)

// DefaultDuplicatePreventionDays is the cool-down window applied when a
// workflow enables duplicate prevention without choosing a window.
const DefaultDuplicatePreventionDays = 30

// Workflow is an automation a tenant has authored. The engine treats it as
// read-only; authoring happens through the API layer.
type Workflow struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrgID       uuid.UUID `gorm:"type:uuid;index:idx_workflows_org_trigger;not null" json:"org_id"`
	Name        string    `gorm:"type:varchar(200);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`

	TriggerType TriggerType    `gorm:"type:varchar(50);index:idx_workflows_org_trigger;not null" json:"trigger_type"`
	Status      WorkflowStatus `gorm:"type:varchar(20);default:'active'" json:"status"`

	PreventDuplicates       bool `gorm:"default:false" json:"prevent_duplicates"`
	DuplicatePreventionDays int  `gorm:"default:0" json:"duplicate_prevention_days"`

	// Steps is the sole execution order. Always loaded sorted by SortOrder.
	Steps []WorkflowStep `gorm:"foreignKey:WorkflowID" json:"steps,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewWorkflow(orgID uuid.UUID, name string, trigger TriggerType) *Workflow {
	return &Workflow{
		ID:          uuid.New(),
		OrgID:       orgID,
		Name:        name,
		TriggerType: trigger,
		Status:      WorkflowActive,
		CreatedAt:   time.Now(),
	}
}

func (w *Workflow) IsActive() bool {
	return w.Status == WorkflowActive
}

// PreventionWindowDays returns the configured cool-down, falling back to the
// default when the tenant left it unset.
func (w *Workflow) PreventionWindowDays() int {
	if w.DuplicatePreventionDays <= 0 {
		return DefaultDuplicatePreventionDays
	}
	return w.DuplicatePreventionDays
}

type StepKind string

const (
	StepDelay        StepKind = "delay"
	StepSendMessage  StepKind = "send_message"
	StepAddTag       StepKind = "add_tag"
	StepCondition    StepKind = "condition"
	StepCustomAction StepKind = "custom_action"
)

// WorkflowStep is one step inside a workflow. SortOrder is unique within a
// workflow and is the execution sequence; only the condition step may jump.
type WorkflowStep struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	WorkflowID uuid.UUID      `gorm:"type:uuid;index;not null" json:"workflow_id"`
	SortOrder  int            `gorm:"not null" json:"sort_order"`
	Kind       StepKind       `gorm:"type:varchar(30);not null" json:"kind"`
	Config     datatypes.JSON `gorm:"type:jsonb" json:"config"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewWorkflowStep(workflowID uuid.UUID, sortOrder int, kind StepKind, config datatypes.JSON) *WorkflowStep {
	return &WorkflowStep{
		ID:         uuid.New(),
		WorkflowID: workflowID,
		SortOrder:  sortOrder,
		Kind:       kind,
		Config:     config,
		CreatedAt:  time.Now(),
	}
}
