package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/api/dto"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/core/ports"
)

// AuditQuery narrows an execution-log listing. Cursor comes from a previous
// page's NextCursor.
type AuditQuery struct {
	WorkflowID   *uuid.UUID
	ClientID     *uuid.UUID
	EnrollmentID *uuid.UUID
	Cursor       string
	Limit        int
}

type AuditService interface {
	ListExecutions(ctx context.Context, orgID uuid.UUID, query AuditQuery) (*dto.AuditPage, error)
}

type auditService struct {
	logs ports.ExecutionLogRepository
}

func NewAuditService(logs ports.ExecutionLogRepository) AuditService {
	return &auditService{logs: logs}
}

func (s *auditService) ListExecutions(ctx context.Context, orgID uuid.UUID, query AuditQuery) (*dto.AuditPage, error) {
	limit := query.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	filter := ports.LogFilter{
		WorkflowID:   query.WorkflowID,
		ClientID:     query.ClientID,
		EnrollmentID: query.EnrollmentID,
		Limit:        limit,
	}
	if query.Cursor != "" {
		afterTime, afterID, err := DecodeCursor(query.Cursor)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		filter.AfterTime = &afterTime
		filter.AfterID = &afterID
	}

	entries, err := s.logs.List(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}

	page := &dto.AuditPage{Entries: entries}
	if len(entries) == limit {
		last := entries[len(entries)-1]
		page.NextCursor = EncodeCursor(last.ExecutedAt, last.ID)
	}
	return page, nil
}

// EncodeCursor packs the (executed_at, id) position of the last entry seen
// into an opaque token.
func EncodeCursor(executedAt time.Time, id uuid.UUID) string {
	raw := executedAt.UTC().Format(time.RFC3339Nano) + "|" + id.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor is the inverse of EncodeCursor.
func DecodeCursor(cursor string) (time.Time, uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("malformed cursor: %w", err)
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, uuid.Nil, fmt.Errorf("malformed cursor %q", cursor)
	}
	executedAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("malformed cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("malformed cursor id: %w", err)
	}
	return executedAt, id, nil
}
