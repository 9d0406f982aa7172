package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/amats-service/internal/domain"
)

// memoryAccountRepository keeps accounts in process memory; state is lost on restart.
type memoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	now      func() time.Time
}

// NewMemoryAccountRepository returns an in-memory implementation.
func NewMemoryAccountRepository() AccountRepository {
	return &memoryAccountRepository{
		accounts: make(map[string]*domain.Account),
		now:      time.Now,
	}
}

func (r *memoryAccountRepository) Create(_ context.Context, account *domain.Account) error {
	email := domain.NormalizeEmail(account.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[email]; exists {
		return ErrDuplicateEmail
	}
	now := r.now()
	account.Email = email
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.CreatedAt = now
	account.UpdatedAt = now
	r.accounts[email] = account.Clone()
	return nil
}

func (r *memoryAccountRepository) Update(_ context.Context, account *domain.Account) error {
	email := domain.NormalizeEmail(account.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.accounts[email]
	if !ok {
		return ErrNotFound
	}
	account.ID = existing.ID
	account.CreatedAt = existing.CreatedAt
	account.UpdatedAt = r.now()
	r.accounts[email] = account.Clone()
	return nil
}

func (r *memoryAccountRepository) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, account := range r.accounts {
		if account.ID == id {
			return account.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryAccountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[domain.NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return account.Clone(), nil
}

func (r *memoryAccountRepository) Delete(_ context.Context, email string) error {
	email = domain.NormalizeEmail(email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[email]; !ok {
		return ErrNotFound
	}
	delete(r.accounts, email)
	return nil
}

func (r *memoryAccountRepository) List(_ context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	result := make([]domain.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		result = append(result, *account.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Email < result[j].Email
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
