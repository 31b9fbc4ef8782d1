package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// StepConfig is the decoded, kind-specific configuration of a workflow step.
// Storing jsonb in the row and decoding into one of these keeps every kind
// statically known to the executor's dispatch.
type StepConfig interface {
	stepConfig()
}

type DelayUnit string

const (
	UnitMinutes DelayUnit = "minutes"
	UnitHours   DelayUnit = "hours"
	UnitDays    DelayUnit = "days"
)

type DelayConfig struct {
	Amount int       `json:"amount"`
	Unit   DelayUnit `json:"unit"`
}

func (DelayConfig) stepConfig() {}

// Duration converts the configured amount/unit into a wait duration.
func (c DelayConfig) Duration() time.Duration {
	switch c.Unit {
	case UnitMinutes:
		return time.Duration(c.Amount) * time.Minute
	case UnitDays:
		return time.Duration(c.Amount) * 24 * time.Hour
	default:
		return time.Duration(c.Amount) * time.Hour
	}
}

type MessageChannel string

const (
	ChannelSMS   MessageChannel = "sms"
	ChannelEmail MessageChannel = "email"
)

type SendMessageConfig struct {
	Channel     MessageChannel `json:"channel"`
	TemplateRef string         `json:"template_ref,omitempty"`
	Body        string         `json:"body,omitempty"`
}

func (SendMessageConfig) stepConfig() {}

type AddTagConfig struct {
	Tag string `json:"tag"`
}

func (AddTagConfig) stepConfig() {}

type ConditionOperator string

const (
	OpEquals      ConditionOperator = "equals"
	OpNotEquals   ConditionOperator = "not_equals"
	OpContains    ConditionOperator = "contains"
	OpGreaterThan ConditionOperator = "greater_than"
	OpLessThan    ConditionOperator = "less_than"
	OpExists      ConditionOperator = "exists"
)

// ConditionConfig is the binary fork: TrueNext/FalseNext name the SortOrder
// the run resumes at for each branch. Zero terminates the run on that branch.
type ConditionConfig struct {
	Field           string            `json:"field"`
	Operator        ConditionOperator `json:"operator"`
	ComparisonValue string            `json:"comparison_value,omitempty"`
	TrueNext        int               `json:"true_next"`
	FalseNext       int               `json:"false_next"`
}

func (ConditionConfig) stepConfig() {}

type CustomActionConfig struct {
	Action string            `json:"action"`
	Params map[string]string `json:"params,omitempty"`
}

func (CustomActionConfig) stepConfig() {}

// DecodeConfig parses the step's jsonb config into the variant matching its
// kind. Unknown kinds are an authoring error, not a runtime branch.
func (s *WorkflowStep) DecodeConfig() (StepConfig, error) {
	switch s.Kind {
	case StepDelay:
		var c DelayConfig
		if err := json.Unmarshal(s.Config, &c); err != nil {
			return nil, fmt.Errorf("decode delay config: %w", err)
		}
		return c, nil
	case StepSendMessage:
		var c SendMessageConfig
		if err := json.Unmarshal(s.Config, &c); err != nil {
			return nil, fmt.Errorf("decode send_message config: %w", err)
		}
		return c, nil
	case StepAddTag:
		var c AddTagConfig
		if err := json.Unmarshal(s.Config, &c); err != nil {
			return nil, fmt.Errorf("decode add_tag config: %w", err)
		}
		return c, nil
	case StepCondition:
		var c ConditionConfig
		if err := json.Unmarshal(s.Config, &c); err != nil {
			return nil, fmt.Errorf("decode condition config: %w", err)
		}
		return c, nil
	case StepCustomAction:
		var c CustomActionConfig
		if err := json.Unmarshal(s.Config, &c); err != nil {
			return nil, fmt.Errorf("decode custom_action config: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown step kind %q", s.Kind)
	}
}

// MustConfig marshals a typed config into jsonb for seeding and tests.
func MustConfig(c StepConfig) []byte {
	b, err := json.Marshal(c)
	if err != nil {
		panic(err)
	}
	return b
}
