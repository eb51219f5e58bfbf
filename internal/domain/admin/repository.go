package admin

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("admin not found")

type Repository interface {
	GetByEmail(ctx context.Context, email string) (Admin, error)
	// Upsert creates the admin or replaces the name and password hash of an existing one.
	Upsert(ctx context.Context, a Admin) error
}
