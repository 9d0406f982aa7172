package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/amats-service/internal/domain"
	"github.com/spec-kit/amats-service/internal/events"
	"github.com/spec-kit/amats-service/internal/observability"
	"github.com/spec-kit/amats-service/internal/repository"
	"github.com/spec-kit/amats-service/internal/suspension"
	apperrors "github.com/spec-kit/amats-service/pkg/util/errorutil"
)

// SuspensionService is the only component allowed to change an account's active flag
// or suspension record.
type SuspensionService struct {
	accounts   repository.AccountRepository
	deleted    repository.DeletedRegistry
	synthetic  *repository.SyntheticRoster
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time

	// serialises read-modify-write so actions on one account apply in call order
	mu sync.Mutex
}

// SuspensionDependencies bundles the coordinator's collaborators.
type SuspensionDependencies struct {
	AccountRepo     repository.AccountRepository
	DeletedRegistry repository.DeletedRegistry
	Synthetic       *repository.SyntheticRoster
	Dispatcher      events.Dispatcher
	Metrics         *observability.Metrics
	Logger          *zap.Logger
	Clock           func() time.Time
}

// ActionResult reports what an admin action did.
type ActionResult struct {
	Outcome domain.ActionOutcome
	Account *domain.Account
}

// ReconcileResult is the state of an account after its suspension was re-checked.
type ReconcileResult struct {
	Account     *domain.Account
	Evaluation  suspension.Evaluation
	Reactivated bool
}

// NewSuspensionService constructs the coordinator.
func NewSuspensionService(deps SuspensionDependencies) *SuspensionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &SuspensionService{
		accounts:   deps.AccountRepo,
		deleted:    deps.DeletedRegistry,
		synthetic:  deps.Synthetic,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        clock,
	}
}

// SuspendFor converts quantity/unit to minutes and suspends the target.
func (s *SuspensionService) SuspendFor(ctx context.Context, target, admin string, quantity int, unit suspension.Unit) (*ActionResult, error) {
	minutes, err := suspension.Encode(quantity, unit)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"quantity": quantity, "unit": string(unit)})
	}
	return s.Suspend(ctx, target, admin, minutes)
}

// Suspend deactivates the target for durationMinutes starting now. Any previous record
// is replaced, not merged. Durations above suspension.MaxMinutes are rejected.
func (s *SuspensionService) Suspend(ctx context.Context, target, admin string, durationMinutes int) (*ActionResult, error) {
	minutes, err := suspension.CheckMinutes(durationMinutes)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"minutes": durationMinutes})
	}

	target = domain.NormalizeEmail(target)
	rec := domain.SuspensionRecord{
		SuspendedBy:     actorKey(admin),
		DurationMinutes: minutes,
		StartedAt:       s.now(),
	}

	result, err := s.mutate(ctx, target, func(a *domain.Account) { a.Suspend(rec) })
	if err != nil {
		return nil, err
	}

	s.logger.Info("account suspended",
		zap.String("email", target),
		zap.String("actor", rec.SuspendedBy),
		zap.Int("minutes", rec.DurationMinutes),
		zap.String("outcome", string(result.Outcome)))
	s.publish(ctx, events.EventAccountSuspended, target, rec.SuspendedBy, result.Outcome, events.AccountSuspendedPayload{
		DurationMinutes: rec.DurationMinutes,
		Description:     suspension.Describe(rec.DurationMinutes),
		EndsAt:          rec.EndsAt(),
	})
	return result, nil
}

// Activate clears any suspension on the target. Activating an active account is a no-op
// that still reports the account.
func (s *SuspensionService) Activate(ctx context.Context, target, actor string) (*ActionResult, error) {
	target = domain.NormalizeEmail(target)
	actor = actorKey(actor)

	result, err := s.mutate(ctx, target, func(a *domain.Account) { a.Reactivate() })
	if err != nil {
		return nil, err
	}

	eventType := events.EventAccountActivated
	if actor == domain.SystemActor {
		eventType = events.EventAccountReactivated
	}
	s.logger.Info("account activated",
		zap.String("email", target),
		zap.String("actor", actor),
		zap.String("outcome", string(result.Outcome)))
	s.publish(ctx, eventType, target, actor, result.Outcome, nil)
	return result, nil
}

// ExpireCountdown reactivates target when a countdown opened at openedAt runs out.
// A suspension applied after the countdown opened is newer than the one it was
// counting down and is left in place.
func (s *SuspensionService) ExpireCountdown(ctx context.Context, target string, openedAt time.Time) (*ActionResult, error) {
	target = domain.NormalizeEmail(target)

	s.mu.Lock()
	account, err := s.accounts.GetByEmail(ctx, target)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.mu.Unlock()
		return &ActionResult{Outcome: domain.ActionNoop}, nil
	case err != nil:
		s.mu.Unlock()
		return nil, apperrors.MapError(err)
	}
	if account.Active || (account.Suspension != nil && account.Suspension.StartedAt.After(openedAt)) {
		s.mu.Unlock()
		s.logger.Debug("countdown expiry skipped",
			zap.String("email", target),
			zap.Bool("active", account.Active))
		return &ActionResult{Outcome: domain.ActionNoop, Account: account}, nil
	}

	account.Reactivate()
	if err := s.accounts.Update(ctx, account); err != nil {
		s.mu.Unlock()
		return nil, apperrors.MapError(err)
	}
	s.mu.Unlock()

	s.logger.Info("countdown expired", zap.String("email", target))
	s.publish(ctx, events.EventAccountReactivated, target, domain.SystemActor, domain.ActionApplied, nil)
	return &ActionResult{Outcome: domain.ActionApplied, Account: account}, nil
}

// Delete permanently removes the target and remembers its email as deleted.
func (s *SuspensionService) Delete(ctx context.Context, target, actor string) (*ActionResult, error) {
	target = domain.NormalizeEmail(target)
	actor = actorKey(actor)

	s.mu.Lock()
	result, err := s.deleteLocked(ctx, target)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.logger.Info("account deleted",
		zap.String("email", target),
		zap.String("actor", actor),
		zap.String("outcome", string(result.Outcome)))
	s.publish(ctx, events.EventAccountDeleted, target, actor, result.Outcome, nil)
	return result, nil
}

// Reconcile re-evaluates the target's suspension now and reactivates it if it lapsed.
func (s *SuspensionService) Reconcile(ctx context.Context, target string) (*ReconcileResult, error) {
	target = domain.NormalizeEmail(target)

	s.mu.Lock()
	account, err := s.accounts.GetByEmail(ctx, target)
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("account", map[string]any{"email": target})
		}
		return nil, apperrors.MapError(err)
	}

	result := &ReconcileResult{Account: account}
	if account.Active || account.Suspension == nil {
		s.mu.Unlock()
		return result, nil
	}

	result.Evaluation = suspension.Evaluate(*account.Suspension, s.now())
	if !result.Evaluation.Expired {
		s.mu.Unlock()
		return result, nil
	}

	account.Reactivate()
	if err := s.accounts.Update(ctx, account); err != nil {
		s.mu.Unlock()
		return nil, apperrors.MapError(err)
	}
	s.mu.Unlock()

	result.Reactivated = true
	s.logger.Info("suspension expired", zap.String("email", target))
	s.publish(ctx, events.EventAccountReactivated, target, domain.SystemActor, domain.ActionApplied, nil)
	return result, nil
}

// ReconcileAll sweeps every suspended account and returns how many were reactivated.
func (s *SuspensionService) ReconcileAll(ctx context.Context) (int, error) {
	list, err := s.accounts.List(ctx)
	if err != nil {
		return 0, apperrors.MapError(err)
	}

	reactivated := 0
	for _, account := range list {
		if account.Active {
			continue
		}
		res, err := s.Reconcile(ctx, account.Email)
		if err != nil {
			if apperrors.IsCode(err, "NOT_FOUND") {
				continue
			}
			return reactivated, err
		}
		if res.Reactivated {
			reactivated++
		}
	}
	return reactivated, nil
}

// mutate applies fn to the authoritative account, or to the synthetic roster when the
// target only exists there. Unknown targets are a no-op.
func (s *SuspensionService) mutate(ctx context.Context, target string, fn func(*domain.Account)) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.accounts.GetByEmail(ctx, target)
	switch {
	case err == nil:
		fn(account)
		if err := s.accounts.Update(ctx, account); err != nil {
			return nil, apperrors.MapError(err)
		}
		return &ActionResult{Outcome: domain.ActionApplied, Account: account}, nil
	case errors.Is(err, repository.ErrNotFound):
		if s.synthetic.Apply(target, fn) {
			account, _ := s.synthetic.Get(target)
			return &ActionResult{Outcome: domain.ActionSynthetic, Account: account}, nil
		}
		return &ActionResult{Outcome: domain.ActionNoop}, nil
	default:
		return nil, apperrors.MapError(err)
	}
}

func (s *SuspensionService) deleteLocked(ctx context.Context, target string) (*ActionResult, error) {
	account, err := s.accounts.GetByEmail(ctx, target)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		if synthetic, ok := s.synthetic.Get(target); ok {
			s.synthetic.Remove(target)
			return &ActionResult{Outcome: domain.ActionSynthetic, Account: synthetic}, nil
		}
		return &ActionResult{Outcome: domain.ActionNoop}, nil
	default:
		return nil, apperrors.MapError(err)
	}

	if err := s.deleted.Add(ctx, target); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.accounts.Delete(ctx, target); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}
	return &ActionResult{Outcome: domain.ActionApplied, Account: account}, nil
}

func (s *SuspensionService) publish(ctx context.Context, eventType events.EventType, email, actor string, outcome domain.ActionOutcome, payload interface{}) {
	s.metrics.RecordAction(string(eventType), string(outcome))
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Email:     email,
		Actor:     actor,
		Outcome:   outcome,
		Timestamp: s.now(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("type", string(eventType)), zap.Error(err))
	}
}

func actorKey(actor string) string {
	if actor = domain.NormalizeEmail(actor); actor == "" {
		return domain.SystemActor
	}
	return actor
}
