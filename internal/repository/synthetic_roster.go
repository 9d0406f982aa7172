package repository

import (
	"sort"
	"sync"

	"github.com/spec-kit/amats-service/internal/domain"
)

// SyntheticRoster holds pre-seeded demo accounts. They live outside the authoritative
// collection, so admin actions against them only change their presentation state.
type SyntheticRoster struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

// NewSyntheticRoster builds a roster from seed accounts.
func NewSyntheticRoster(seed []domain.Account) *SyntheticRoster {
	r := &SyntheticRoster{accounts: make(map[string]*domain.Account, len(seed))}
	for i := range seed {
		a := seed[i].Clone()
		a.Email = domain.NormalizeEmail(a.Email)
		a.Synthetic = true
		r.accounts[a.Email] = a
	}
	return r
}

// Get returns the synthetic account for email.
func (r *SyntheticRoster) Get(email string) (*domain.Account, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[domain.NormalizeEmail(email)]
	if !ok {
		return nil, false
	}
	return a.Clone(), true
}

// Apply mutates the presentation state of email in place. It reports false if absent.
func (r *SyntheticRoster) Apply(email string, fn func(*domain.Account)) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[domain.NormalizeEmail(email)]
	if !ok {
		return false
	}
	fn(a)
	return true
}

// Remove drops email from the roster.
func (r *SyntheticRoster) Remove(email string) bool {
	if r == nil {
		return false
	}
	email = domain.NormalizeEmail(email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[email]; !ok {
		return false
	}
	delete(r.accounts, email)
	return true
}

// List returns the roster sorted by email.
func (r *SyntheticRoster) List() []domain.Account {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	result := make([]domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		result = append(result, *a.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return result
}
