package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/core/ports"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
)

// DuplicateGuard suppresses re-enrollment inside a workflow's cool-down
// window. The window is keyed by (org, client, appointment type): two
// workflows sharing a trigger type share one window per client.
type DuplicateGuard struct {
	triggers ports.TriggerEventRepository
}

func NewDuplicateGuard(triggers ports.TriggerEventRepository) *DuplicateGuard {
	return &DuplicateGuard{triggers: triggers}
}

// ShouldSuppress reports whether enrolling this client into this workflow
// must be skipped. Only workflows with PreventDuplicates are ever suppressed.
func (g *DuplicateGuard) ShouldSuppress(ctx context.Context, orgID, clientID uuid.UUID, trigger domain.TriggerType, workflow *domain.Workflow, appointmentEndTime time.Time) (bool, error) {
	if !workflow.PreventDuplicates {
		return false, nil
	}

	cutoff := appointmentEndTime.Add(-time.Duration(workflow.PreventionWindowDays()) * 24 * time.Hour)
	return g.triggers.HasRecent(ctx, orgID, clientID, trigger, cutoff)
}
