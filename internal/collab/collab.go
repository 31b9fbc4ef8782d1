// Package collab holds the default in-process implementations of the
// external collaborator contracts. Real integrations (SMS/email providers,
// the client-record service) are wired in their place at deploy time.
package collab

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/core/ports"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
)

type logMessenger struct {
	logger hclog.Logger
}

// NewLogMessenger returns a Messenger that records the handoff and reports
// success. Delivery tracking belongs to the real provider integration.
func NewLogMessenger(logger hclog.Logger) ports.Messenger {
	return &logMessenger{logger: logger.Named("messenger")}
}

func (m *logMessenger) SendMessage(ctx context.Context, orgID, clientID uuid.UUID, channel domain.MessageChannel, templateRef, body string) error {
	m.logger.Info("dispatching message",
		"org_id", orgID, "client_id", clientID, "channel", channel, "template_ref", templateRef)
	return nil
}

// MemoryDirectory is a map-backed ClientDirectory. Tag addition is
// idempotent; condition contexts are seeded via SetClientContext.
type MemoryDirectory struct {
	mu       sync.RWMutex
	tags     map[uuid.UUID]map[string]struct{}
	contexts map[uuid.UUID]domain.ClientContext
	logger   hclog.Logger
}

func NewMemoryDirectory(logger hclog.Logger) *MemoryDirectory {
	return &MemoryDirectory{
		tags:     make(map[uuid.UUID]map[string]struct{}),
		contexts: make(map[uuid.UUID]domain.ClientContext),
		logger:   logger.Named("directory"),
	}
}

func (d *MemoryDirectory) AddTag(ctx context.Context, orgID, clientID uuid.UUID, tag string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tags[clientID] == nil {
		d.tags[clientID] = make(map[string]struct{})
	}
	if _, exists := d.tags[clientID][tag]; exists {
		return nil
	}
	d.tags[clientID][tag] = struct{}{}
	d.logger.Info("tag added", "org_id", orgID, "client_id", clientID, "tag", tag)
	return nil
}

func (d *MemoryDirectory) GetClientContext(ctx context.Context, orgID, clientID uuid.UUID) (domain.ClientContext, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if clientCtx, ok := d.contexts[clientID]; ok {
		return clientCtx, nil
	}
	return domain.ClientContext{}, nil
}

// SetClientContext seeds the fields condition steps evaluate against.
func (d *MemoryDirectory) SetClientContext(clientID uuid.UUID, clientCtx domain.ClientContext) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.contexts[clientID] = clientCtx
}

// Tags returns the current tag set for a client, for inspection.
func (d *MemoryDirectory) Tags(clientID uuid.UUID) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var tags []string
	for tag := range d.tags[clientID] {
		tags = append(tags, tag)
	}
	return tags
}

var _ ports.ClientDirectory = (*MemoryDirectory)(nil)

type logActionHook struct {
	logger hclog.Logger
}

// NewLogActionHook returns an ActionHook that records the invocation and
// always succeeds.
func NewLogActionHook(logger hclog.Logger) ports.ActionHook {
	return &logActionHook{logger: logger.Named("action_hook")}
}

func (h *logActionHook) Run(ctx context.Context, orgID, clientID uuid.UUID, action string, params map[string]string) error {
	h.logger.Info("custom action invoked", "org_id", orgID, "client_id", clientID, "action", action)
	return nil
}
