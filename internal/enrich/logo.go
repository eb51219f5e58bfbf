// Package enrich resolves display attributes that are derived on read and never persisted.
package enrich

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode"

	"careerboard/internal/config"

	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

type LogoResolver struct {
	baseURL     string
	placeholder string
	client      *http.Client
	logger      *log.Logger
	concurrency int
}

func NewLogoResolver(cfg config.LogoConfig, logger *log.Logger) *LogoResolver {
	if logger == nil {
		logger = log.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &LogoResolver{
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		placeholder: cfg.Placeholder,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
		concurrency: defaultConcurrency,
	}
}

// Domain derives the brand domain for a name: lower-cased, whitespace removed, ".com" appended.
func Domain(name string) string {
	b := strings.Builder{}
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return ""
	}
	return b.String() + ".com"
}

// ResolveLogo returns the logo URL for name, or the placeholder when the logo service has
// nothing for it or cannot be reached.
func (r *LogoResolver) ResolveLogo(ctx context.Context, name string) string {
	domain := Domain(name)
	if domain == "" || r.baseURL == "" {
		return r.placeholder
	}
	endpoint := r.baseURL + "/" + domain

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return r.placeholder
	}
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Printf("[Enrich] logo lookup failed domain=%s err=%v", domain, err)
		return r.placeholder
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return r.placeholder
	}
	return endpoint
}

// ResolveAll resolves each distinct name once, with bounded concurrency.
func (r *LogoResolver) ResolveAll(ctx context.Context, names []string) map[string]string {
	out := make(map[string]string, len(names))
	seen := make(map[string]struct{}, len(names))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		g.Go(func() error {
			url := r.ResolveLogo(ctx, n)
			mu.Lock()
			out[n] = url
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
