package repository

import (
	"context"
	"errors"
	"strings"

	"careerboard/internal/database"
	"careerboard/internal/domain/admin"

	"github.com/jackc/pgx/v5"
)

type PostgresAdminRepository struct {
	db database.DB
}

func NewPostgresAdminRepository(db database.DB) *PostgresAdminRepository {
	return &PostgresAdminRepository{db: db}
}

func (r *PostgresAdminRepository) GetByEmail(ctx context.Context, email string) (admin.Admin, error) {
	var a admin.Admin
	err := r.db.QueryRow(
		ctx,
		`SELECT id, email, name, password_hash, created_at FROM admins WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return admin.Admin{}, admin.ErrNotFound
		}
		return admin.Admin{}, err
	}
	return a, nil
}

func (r *PostgresAdminRepository) Upsert(ctx context.Context, a admin.Admin) error {
	_, err := r.db.Exec(
		ctx,
		`INSERT INTO admins (id, email, name, password_hash) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, password_hash = EXCLUDED.password_hash`,
		a.ID,
		strings.ToLower(strings.TrimSpace(a.Email)),
		a.Name,
		a.PasswordHash,
	)
	return err
}

var _ admin.Repository = (*PostgresAdminRepository)(nil)
