package enrich

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"careerboard/internal/config"
)

const placeholder = "/images/company-placeholder.png"

func newResolver(baseURL string, timeout time.Duration) *LogoResolver {
	return NewLogoResolver(config.LogoConfig{
		BaseURL:     baseURL,
		Placeholder: placeholder,
		Timeout:     timeout,
	}, log.New(io.Discard, "", 0))
}

func TestDomain(t *testing.T) {
	cases := map[string]string{
		"Acme":          "acme.com",
		"Tata Motors":   "tatamotors.com",
		" Big\tCorp \n": "bigcorp.com",
		"   ":           "",
	}
	for in, want := range cases {
		if got := Domain(in); got != want {
			t.Fatalf("Domain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLogoResolver_Resolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/acme.com" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := newResolver(srv.URL, time.Second)
	if got := r.ResolveLogo(context.Background(), "Acme"); got != srv.URL+"/acme.com" {
		t.Fatalf("unexpected url: %s", got)
	}
	if got := r.ResolveLogo(context.Background(), "Unknown Co"); got != placeholder {
		t.Fatalf("expected placeholder, got %s", got)
	}
}

func TestLogoResolver_TimeoutFallsBack(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	r := newResolver(srv.URL, 50*time.Millisecond)
	if got := r.ResolveLogo(context.Background(), "Slow"); got != placeholder {
		t.Fatalf("expected placeholder, got %s", got)
	}
}

func TestLogoResolver_UnreachableFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	r := newResolver(url, time.Second)
	if got := r.ResolveLogo(context.Background(), "Acme"); got != placeholder {
		t.Fatalf("expected placeholder, got %s", got)
	}
}

func TestLogoResolver_ResolveAllDeduplicates(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := newResolver(srv.URL, time.Second)
	got := r.ResolveAll(context.Background(), []string{"Acme", "Globex", "Acme"})
	if len(got) != 2 {
		t.Fatalf("expected 2 names, got %v", got)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 lookups, got %d", hits.Load())
	}
	if got["Globex"] != srv.URL+"/globex.com" {
		t.Fatalf("unexpected url: %v", got)
	}
}
