package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/amats-service/internal/auth"
	"github.com/spec-kit/amats-service/internal/config"
	"github.com/spec-kit/amats-service/internal/domain"
	"github.com/spec-kit/amats-service/internal/events"
	"github.com/spec-kit/amats-service/internal/repository"
	"github.com/spec-kit/amats-service/internal/suspension"
	apperrors "github.com/spec-kit/amats-service/pkg/util/errorutil"
)

// CountdownOpener starts the live countdown for a blocked login.
type CountdownOpener interface {
	Open(email, suspendedBy string, minutes, seconds int) (suspension.CountdownState, error)
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	accounts     repository.AccountRepository
	deleted      repository.DeletedRegistry
	synthetic    *repository.SyntheticRoster
	suspensions  *SuspensionService
	countdowns   CountdownOpener
	dispatcher   events.Dispatcher
	tokenMgr     *auth.TokenManager
	logger       *zap.Logger
	bcryptCost   int
	countdownMax time.Duration
	allowRereg   bool
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	AccountRepo     repository.AccountRepository
	DeletedRegistry repository.DeletedRegistry
	Synthetic       *repository.SyntheticRoster
	Suspensions     *SuspensionService
	Countdowns      CountdownOpener
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// RegisterInput describes a self-service registration.
type RegisterInput struct {
	FirstName     string
	LastName      string
	Email         string
	Password      string
	Role          domain.Role
	LicenseNumber string
	Company       string
	VehicleCount  int
}

// LoginResult is the response to a login attempt.
type LoginResult struct {
	Outcome    domain.LoginOutcome
	Account    *domain.Account
	Token      string
	ExpiresAt  time.Time
	Countdown  *suspension.CountdownState
	Suspension *domain.SuspensionRecord
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		accounts:     deps.AccountRepo,
		deleted:      deps.DeletedRegistry,
		synthetic:    deps.Synthetic,
		suspensions:  deps.Suspensions,
		countdowns:   deps.Countdowns,
		dispatcher:   deps.Dispatcher,
		tokenMgr:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		logger:       logger,
		bcryptCost:   cfg.Auth.BcryptCost,
		countdownMax: time.Duration(cfg.Suspension.CountdownMaxMinutes) * time.Minute,
		allowRereg:   cfg.Suspension.AllowReregistration,
	}
}

// RegisterUser creates a driver or fleet manager account. Registering an email that was
// deleted creates a brand-new account unless re-registration is disabled.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterInput) (*domain.Account, string, time.Time, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("email and password required", nil)
	}

	role := in.Role
	if role == "" {
		role = domain.RoleDriver
	}
	profile, err := profileFor(role, in)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	wasDeleted, err := s.deleted.Contains(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if wasDeleted && !s.allowRereg {
		return nil, "", time.Time{}, apperrors.NewAccountDeleted(email)
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	account := &domain.Account{
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
		Profile:      profile,
		Active:       true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", time.Time{}, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if wasDeleted {
		if err := s.deleted.Remove(ctx, email); err != nil {
			s.logger.Warn("failed to clear deleted marker", zap.String("email", email), zap.Error(err))
		}
	}

	s.publish(ctx, events.Event{
		Type:    events.EventAccountRegistered,
		Email:   email,
		Actor:   email,
		Outcome: domain.ActionApplied,
		Payload: events.AccountRegisteredPayload{Role: role, Reregistered: wasDeleted},
	})

	token, exp, err := s.tokenMgr.GenerateToken(account)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return account, token, exp, nil
}

// LoginUser authenticates an account and resolves its suspension state.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*LoginResult, error) {
	email = domain.NormalizeEmail(email)

	deleted, err := s.deleted.Contains(ctx, email)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if deleted {
		return nil, apperrors.NewAccountDeleted(email)
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	checked, err := s.suspensions.Reconcile(ctx, email)
	if err != nil {
		return nil, err
	}
	account = checked.Account

	if account.Active {
		outcome := domain.LoginProceed
		if checked.Reactivated {
			outcome = domain.LoginReactivated
		}
		return s.grant(account, outcome)
	}

	result := &LoginResult{Account: account, Suspension: account.Suspension, Outcome: domain.LoginBlockedPermanent}
	if account.Suspension == nil {
		return result, nil
	}

	eval := checked.Evaluation
	if s.countdownMax > 0 && eval.Remaining > s.countdownMax {
		return result, nil
	}

	state, err := s.countdowns.Open(email, s.actorDisplayName(ctx, account.Suspension.SuspendedBy),
		eval.RemainingMinutes, eval.RemainingSeconds)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if state.State == suspension.StateExpired {
		// less than a second was left; the expiry callback has already reactivated it
		refreshed, err := s.accounts.GetByEmail(ctx, email)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if refreshed.Active {
			return s.grant(refreshed, domain.LoginReactivated)
		}
	}

	result.Outcome = domain.LoginBlockedCountdown
	result.Countdown = &state
	return result, nil
}

// EnsureAdmin creates the bootstrap administrator if it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (*domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil
	}
	if existing, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return existing, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	admin := &domain.Account{
		Email:        email,
		FirstName:    "System",
		LastName:     "Administrator",
		PasswordHash: hash,
		Profile:      domain.AdminProfile{},
		Active:       true,
	}
	if err := s.accounts.Create(ctx, admin); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("bootstrap admin created", zap.String("email", email))
	return admin, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) grant(account *domain.Account, outcome domain.LoginOutcome) (*LoginResult, error) {
	token, exp, err := s.tokenMgr.GenerateToken(account)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Outcome: outcome, Account: account, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) actorDisplayName(ctx context.Context, actor string) string {
	if actor == "" || actor == domain.SystemActor {
		return domain.SystemActor
	}
	if a, err := s.accounts.GetByEmail(ctx, actor); err == nil {
		return a.DisplayName()
	}
	if a, ok := s.synthetic.Get(actor); ok {
		return a.DisplayName()
	}
	return actor
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func profileFor(role domain.Role, in RegisterInput) (domain.Profile, error) {
	switch role {
	case domain.RoleDriver:
		return domain.DriverProfile{LicenseNumber: strings.TrimSpace(in.LicenseNumber)}, nil
	case domain.RoleFleetManager:
		if in.VehicleCount < 0 || in.VehicleCount > domain.MaxVehicleCount {
			return nil, apperrors.NewValidationError("vehicle_count out of range",
				map[string]any{"vehicle_count": in.VehicleCount, "max": domain.MaxVehicleCount})
		}
		return domain.FleetManagerProfile{Company: strings.TrimSpace(in.Company), VehicleCount: in.VehicleCount}, nil
	case domain.RoleAdmin:
		return nil, apperrors.NewForbidden("admin accounts cannot self-register")
	default:
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(role)})
	}
}
