package seeder

import (
	"context"
	"fmt"

	"careerboard/internal/database"
	"careerboard/internal/repository"
	"careerboard/internal/usecase/auth"
)

// AdminSeeder ensures the bootstrap admin account exists. It is skipped when no
// credentials are configured.
type AdminSeeder struct {
	Email     string
	Password  string
	AdminName string
}

func (AdminSeeder) Name() string { return "admin" }

func (s AdminSeeder) Run(ctx context.Context, db database.DB) error {
	if s.Email == "" || s.Password == "" {
		return ErrSkipped
	}
	if err := requireColumns(ctx, db, "admins", "id", "email", "name", "password_hash", "created_at"); err != nil {
		return err
	}

	svc := auth.NewService(repository.NewPostgresAdminRepository(db))
	if err := svc.Bootstrap(ctx, auth.BootstrapInput{Email: s.Email, Password: s.Password, Name: s.AdminName}); err != nil {
		return fmt.Errorf("bootstrap admin %s: %w", s.Email, err)
	}
	return nil
}
