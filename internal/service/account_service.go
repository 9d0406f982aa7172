package service

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/amats-service/internal/domain"
	"github.com/spec-kit/amats-service/internal/repository"
	"github.com/spec-kit/amats-service/internal/suspension"
	apperrors "github.com/spec-kit/amats-service/pkg/util/errorutil"
)

// AccountSummary is one row of the admin account list.
type AccountSummary struct {
	Account          domain.Account
	SuspensionLabel  string
	RemainingLabel   string
	RemainingMinutes int
	EndsAt           *time.Time
}

// AccountFilter narrows the admin listing.
type AccountFilter struct {
	Role          domain.Role
	SuspendedOnly bool
}

// AccountService builds the admin roster view.
type AccountService struct {
	accounts  repository.AccountRepository
	synthetic *repository.SyntheticRoster
	now       func() time.Time
}

// NewAccountService constructs the listing service.
func NewAccountService(accounts repository.AccountRepository, synthetic *repository.SyntheticRoster, clock func() time.Time) *AccountService {
	if clock == nil {
		clock = time.Now
	}
	return &AccountService{accounts: accounts, synthetic: synthetic, now: clock}
}

// ListAccounts returns authoritative accounts followed by synthetic demo accounts,
// each sorted by email.
func (s *AccountService) ListAccounts(ctx context.Context, filter AccountFilter) ([]AccountSummary, error) {
	stored, err := s.accounts.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].Email < stored[j].Email })

	now := s.now()
	all := append(stored, s.synthetic.List()...)
	result := make([]AccountSummary, 0, len(all))
	for _, account := range all {
		if filter.Role != "" && account.Role() != filter.Role {
			continue
		}
		if filter.SuspendedOnly && account.Active {
			continue
		}
		result = append(result, summarize(account, now))
	}
	return result, nil
}

func summarize(account domain.Account, now time.Time) AccountSummary {
	summary := AccountSummary{Account: account}
	if account.Active || account.Suspension == nil {
		return summary
	}

	rec := *account.Suspension
	endsAt := rec.EndsAt()
	summary.EndsAt = &endsAt
	summary.SuspensionLabel = suspension.Describe(rec.DurationMinutes)

	eval := suspension.Evaluate(rec, now)
	if eval.Expired {
		summary.RemainingLabel = "expired"
		return summary
	}
	// round partial minutes up so a running suspension never reads as zero
	minutes := eval.RemainingMinutes
	if eval.RemainingSeconds > 0 {
		minutes++
	}
	summary.RemainingMinutes = minutes
	summary.RemainingLabel = suspension.Describe(minutes)
	return summary
}
