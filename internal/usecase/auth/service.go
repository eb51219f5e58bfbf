package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"careerboard/internal/domain/admin"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInternal           = errors.New("internal error")
)

type LoginInput struct {
	Email    string
	Password string
}

type BootstrapInput struct {
	Email    string
	Password string
	Name     string
}

type Service struct {
	admins admin.Repository
	cost   int
}

func NewService(admins admin.Repository) *Service {
	return &Service{admins: admins, cost: bcrypt.DefaultCost}
}

func (s *Service) Login(ctx context.Context, in LoginInput) (admin.Admin, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return admin.Admin{}, ErrInvalidCredentials
	}
	if in.Password == "" {
		return admin.Admin{}, ErrInvalidCredentials
	}

	a, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, admin.ErrNotFound) {
			return admin.Admin{}, ErrInvalidCredentials
		}
		return admin.Admin{}, ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(in.Password)); err != nil {
		return admin.Admin{}, ErrInvalidCredentials
	}

	return sanitizeAdmin(a), nil
}

// Bootstrap creates the configured admin account or resets its password.
func (s *Service) Bootstrap(ctx context.Context, in BootstrapInput) error {
	email := normalizeEmail(in.Email)
	if email == "" || !isValidPassword(in.Password) {
		return ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return ErrInternal
	}

	a := admin.Admin{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if existing, err := s.admins.GetByEmail(ctx, email); err == nil {
		a.ID, a.CreatedAt = existing.ID, existing.CreatedAt
	}
	if err := s.admins.Upsert(ctx, a); err != nil {
		return ErrInternal
	}
	return nil
}

func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	return strings.ToLower(email)
}

func isValidPassword(pw string) bool {
	pw = strings.TrimSpace(pw)
	if len(pw) < 8 {
		return false
	}
	return true
}

func sanitizeAdmin(a admin.Admin) admin.Admin {
	a.PasswordHash = ""
	return a
}
