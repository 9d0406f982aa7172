package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/amats-service/internal/domain"
	"github.com/spec-kit/amats-service/internal/events"
	"github.com/spec-kit/amats-service/internal/repository"
	apperrors "github.com/spec-kit/amats-service/pkg/util/errorutil"
)

const defaultAuditLimit = 50

// AuditService records account lifecycle events into the audit trail.
type AuditService struct {
	dispatcher events.Dispatcher
	repo       repository.AuditRepository
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, repo repository.AuditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{dispatcher: dispatcher, repo: repo, logger: logger}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventAccountRegistered, a.handleRegistered)
	a.dispatcher.Subscribe(events.EventAccountSuspended, a.handleSuspended)
	a.dispatcher.Subscribe(events.EventAccountActivated, a.record("activate"))
	a.dispatcher.Subscribe(events.EventAccountReactivated, a.record("expire"))
	a.dispatcher.Subscribe(events.EventAccountDeleted, a.record("delete"))
}

// ListAudit returns the newest entries first.
func (a *AuditService) ListAudit(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	entries, err := a.repo.Recent(ctx, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (a *AuditService) handleRegistered(ctx context.Context, event events.Event) error {
	details := map[string]any{}
	if p, ok := event.Payload.(events.AccountRegisteredPayload); ok {
		details["role"] = string(p.Role)
		details["reregistered"] = p.Reregistered
	}
	return a.append(ctx, "register", event, details)
}

func (a *AuditService) handleSuspended(ctx context.Context, event events.Event) error {
	details := map[string]any{}
	if p, ok := event.Payload.(events.AccountSuspendedPayload); ok {
		details["duration_minutes"] = p.DurationMinutes
		details["duration"] = p.Description
		details["ends_at"] = p.EndsAt
	}
	return a.append(ctx, "suspend", event, details)
}

func (a *AuditService) record(action string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		return a.append(ctx, action, event, nil)
	}
}

func (a *AuditService) append(ctx context.Context, action string, event events.Event, details map[string]any) error {
	a.logger.Info("audit",
		zap.String("action", action),
		zap.String("email", event.Email),
		zap.String("actor", event.Actor),
		zap.String("outcome", string(event.Outcome)))

	return a.repo.Append(ctx, &domain.AuditEntry{
		ID:        event.ID,
		Action:    action,
		Target:    event.Email,
		Actor:     event.Actor,
		Outcome:   event.Outcome,
		Details:   details,
		CreatedAt: event.Timestamp,
	})
}
