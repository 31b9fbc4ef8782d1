package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/api/dto"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/core/ports"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
)

type TriggerService interface {
	GetTriggerByAppointment(ctx context.Context, orgID uuid.UUID, appointmentID string) (*dto.TriggerEventView, error)
	GetRecentTriggers(ctx context.Context, orgID uuid.UUID, limit int) ([]dto.TriggerEventView, error)
	GetTriggerStats(ctx context.Context, orgID uuid.UUID) (*domain.TriggerStats, error)
}

type triggerService struct {
	triggers    ports.TriggerEventRepository
	enrollments ports.EnrollmentRepository
	workflows   ports.WorkflowRepository
}

func NewTriggerService(triggers ports.TriggerEventRepository, enrollments ports.EnrollmentRepository, workflows ports.WorkflowRepository) TriggerService {
	return &triggerService{
		triggers:    triggers,
		enrollments: enrollments,
		workflows:   workflows,
	}
}

func (s *triggerService) GetTriggerByAppointment(ctx context.Context, orgID uuid.UUID, appointmentID string) (*dto.TriggerEventView, error) {
	event, err := s.triggers.GetByAppointment(ctx, orgID, appointmentID)
	if err != nil {
		return nil, err
	}
	names, err := s.workflowNames(ctx, orgID)
	if err != nil {
		return nil, err
	}
	view := enrich(*event, names)
	return &view, nil
}

func (s *triggerService) GetRecentTriggers(ctx context.Context, orgID uuid.UUID, limit int) ([]dto.TriggerEventView, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	events, err := s.triggers.ListRecent(ctx, orgID, limit)
	if err != nil {
		return nil, err
	}
	names, err := s.workflowNames(ctx, orgID)
	if err != nil {
		return nil, err
	}

	views := make([]dto.TriggerEventView, 0, len(events))
	for _, event := range events {
		views = append(views, enrich(event, names))
	}
	return views, nil
}

func (s *triggerService) GetTriggerStats(ctx context.Context, orgID uuid.UUID) (*domain.TriggerStats, error) {
	total, err := s.triggers.CountByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	byType, err := s.triggers.CountByType(ctx, orgID)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.CountByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	recent, err := s.triggers.CountByOrgSince(ctx, orgID, time.Now().AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}

	return &domain.TriggerStats{
		TotalTriggers:    total,
		TriggersByType:   byType,
		TotalEnrollments: enrollments,
		RecentTriggers:   recent,
	}, nil
}

func (s *triggerService) workflowNames(ctx context.Context, orgID uuid.UUID) (map[uuid.UUID]string, error) {
	workflows, err := s.workflows.List(ctx, orgID)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(workflows))
	for _, workflow := range workflows {
		names[workflow.ID] = workflow.Name
	}
	return names, nil
}

func enrich(event domain.TriggerEvent, names map[uuid.UUID]string) dto.TriggerEventView {
	view := dto.TriggerEventView{Event: event}
	for _, id := range event.WorkflowIDs() {
		view.Workflows = append(view.Workflows, dto.WorkflowSummary{ID: id, Name: names[id]})
	}
	return view
}
