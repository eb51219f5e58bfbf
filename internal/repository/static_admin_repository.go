package repository

import (
	"context"
	"strings"
	"sync"

	"careerboard/internal/domain/admin"
)

// StaticAdminRepository keeps admins in process memory. It is used when no relational
// database is configured.
type StaticAdminRepository struct {
	mu     sync.RWMutex
	admins map[string]admin.Admin
}

func NewStaticAdminRepository() *StaticAdminRepository {
	return &StaticAdminRepository{admins: map[string]admin.Admin{}}
}

func (r *StaticAdminRepository) GetByEmail(_ context.Context, email string) (admin.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.admins[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return admin.Admin{}, admin.ErrNotFound
	}
	return a, nil
}

func (r *StaticAdminRepository) Upsert(_ context.Context, a admin.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(a.Email))
	if prev, ok := r.admins[key]; ok {
		a.ID, a.CreatedAt = prev.ID, prev.CreatedAt
	}
	a.Email = key
	r.admins[key] = a
	return nil
}

var _ admin.Repository = (*StaticAdminRepository)(nil)
