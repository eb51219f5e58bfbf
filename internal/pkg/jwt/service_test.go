package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHMACService_RoundTrip(t *testing.T) {
	s := NewHMACService("secret", time.Hour)
	id := uuid.New()

	tok, err := s.GenerateAccessToken(id, "admin@example.com")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	c, err := s.ValidateToken(tok)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.AdminID != id || c.Email != "admin@example.com" || c.Role != RoleAdmin {
		t.Fatalf("unexpected claims: %+v", c)
	}
}

func TestHMACService_Expired(t *testing.T) {
	s := NewHMACService("secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	s.now = func() time.Time { return issued }
	tok, err := s.GenerateAccessToken(uuid.New(), "a@b.c")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	s.now = time.Now
	if _, err := s.ValidateToken(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestHMACService_WrongSecret(t *testing.T) {
	tok, _ := NewHMACService("one", time.Hour).GenerateAccessToken(uuid.New(), "a@b.c")
	if _, err := NewHMACService("two", time.Hour).ValidateToken(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if _, err := NewHMACService("one", time.Hour).ValidateToken("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestHMACService_NoSecret(t *testing.T) {
	if _, err := NewHMACService("", time.Hour).GenerateAccessToken(uuid.New(), "a@b.c"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
