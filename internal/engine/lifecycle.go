package engine

import (
	"github.com/qmuntal/stateless"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
)

type lifecycleTrigger string

const (
	triggerPause    lifecycleTrigger = "pause"
	triggerResume   lifecycleTrigger = "resume"
	triggerComplete lifecycleTrigger = "complete"
	triggerCancel   lifecycleTrigger = "cancel"
)

// transitionEdges mirrors the state machine below for the guarded SQL
// update: allowed source statuses and the destination per trigger.
var transitionEdges = map[lifecycleTrigger]struct {
	from []domain.EnrollmentStatus
	to   domain.EnrollmentStatus
}{
	triggerPause:    {[]domain.EnrollmentStatus{domain.EnrollmentActive}, domain.EnrollmentPaused},
	triggerResume:   {[]domain.EnrollmentStatus{domain.EnrollmentPaused}, domain.EnrollmentActive},
	triggerComplete: {[]domain.EnrollmentStatus{domain.EnrollmentActive}, domain.EnrollmentCompleted},
	triggerCancel:   {[]domain.EnrollmentStatus{domain.EnrollmentActive, domain.EnrollmentPaused}, domain.EnrollmentCancelled},
}

// newLifecycle builds the enrollment status machine. Completed and cancelled
// are terminal: no trigger is permitted out of them.
func newLifecycle(current domain.EnrollmentStatus) *stateless.StateMachine {
	sm := stateless.NewStateMachine(current)

	sm.Configure(domain.EnrollmentActive).
		Permit(triggerPause, domain.EnrollmentPaused).
		Permit(triggerComplete, domain.EnrollmentCompleted).
		Permit(triggerCancel, domain.EnrollmentCancelled)

	sm.Configure(domain.EnrollmentPaused).
		Permit(triggerResume, domain.EnrollmentActive).
		Permit(triggerCancel, domain.EnrollmentCancelled)

	return sm
}

func canTransition(current domain.EnrollmentStatus, t lifecycleTrigger) bool {
	ok, err := newLifecycle(current).CanFire(t)
	return err == nil && ok
}
