package app

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"careerboard/internal/config"
	"careerboard/internal/resource"

	"github.com/gofiber/fiber/v3"
)

func TestListenAddr(t *testing.T) {
	cases := map[string]string{"8080": ":8080", ":9000": ":9000", " 3000 ": ":3000"}
	for in, want := range cases {
		got, err := ListenAddr(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %q %v, want %q", in, got, err, want)
		}
	}
	if _, err := ListenAddr(""); err == nil {
		t.Fatalf("expected error for empty port")
	}
}

func testConfig() config.Config {
	return config.Config{
		App: config.AppConfig{AppName: "careerboard", Environment: "test", HTTPPort: "0"},
		Store: config.StoreConfig{
			Driver:              "memory",
			JobsTable:           "Jobs",
			SarkariJobsTable:    "SarkariJobs",
			InternshipsTable:    "Internships",
			CertificationsTable: "Certifications",
			WalkingTable:        "WalkingInterviews",
			SubscriptionsTable:  "Subscriptions",
		},
		Blob:  config.BlobConfig{Region: "ap-south-1", PresignExpiry: 5 * time.Minute},
		JWT:   config.JWTConfig{Secret: "test-secret", ExpiresIn: time.Hour},
		Admin: config.AdminConfig{Email: "ops@example.com", Password: "correct horse", Name: "Ops"},
		Logo:  config.LogoConfig{BaseURL: "http://127.0.0.1:1", Placeholder: "/p.png", Timeout: 50 * time.Millisecond},
		AI:    config.AIConfig{Timeout: time.Second},
		RateLimit: config.RateLimitConfig{
			APIMax: 1000, APIWindow: time.Minute,
			AuthMax: 1000, AuthWindow: time.Minute,
			AIMax: 1000, AIWindow: time.Minute,
		},
	}
}

func TestBootstrap_LoginThenCreateJob(t *testing.T) {
	a, cleanup, err := Bootstrap(testConfig())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	defer cleanup()

	if a.Container.Listing(resource.Jobs) == nil || len(a.Container.Listings) != 6 {
		t.Fatalf("expected six listing services")
	}

	login, _ := json.Marshal(map[string]string{"email": "ops@example.com", "password": "correct horse"})
	req := httptest.NewRequest("POST", "/api/v1/admin/login", bytes.NewReader(login))
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.Fiber.Test(req)
	if err != nil || resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login failed: %v %v", err, resp)
	}
	var out struct {
		Token string `json:"token"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	if out.Token == "" {
		t.Fatalf("expected a token")
	}

	job, _ := json.Marshal(map[string]any{
		"role":           "Backend Engineer",
		"companyName":    "Acme",
		"location":       "Pune",
		"jobDescription": "Build APIs",
		"originalLink":   "https://acme.example/jobs/1",
		"category":       "IT",
	})

	req = httptest.NewRequest("POST", "/api/v1/jobs", bytes.NewReader(job))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = a.Fiber.Test(req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/jobs", bytes.NewReader(job))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+out.Token)
	resp, _ = a.Fiber.Test(req)
	if resp.StatusCode != fiber.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}

	resp, _ = a.Fiber.Test(httptest.NewRequest("GET", "/health", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("health: %d", resp.StatusCode)
	}
}
