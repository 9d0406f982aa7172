package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/amats-service/internal/domain"
)

// AuditRepository stores the admin action trail.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

type memoryAuditRepository struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	max     int
}

// NewMemoryAuditRepository keeps at most max entries, dropping the oldest.
func NewMemoryAuditRepository(max int) AuditRepository {
	if max <= 0 {
		max = 1000
	}
	return &memoryAuditRepository{max: max}
}

func (r *memoryAuditRepository) Append(_ context.Context, entry *domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	if over := len(r.entries) - r.max; over > 0 {
		r.entries = append([]domain.AuditEntry(nil), r.entries[over:]...)
	}
	return nil
}

// Recent returns the newest entries first.
func (r *memoryAuditRepository) Recent(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > len(r.entries) {
		limit = len(r.entries)
	}
	result := make([]domain.AuditEntry, 0, limit)
	for i := len(r.entries) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, r.entries[i])
	}
	return result, nil
}
