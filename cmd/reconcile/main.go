package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"careerboard/internal/app"
	"careerboard/internal/config"
	"careerboard/internal/listing"
	"careerboard/internal/resource"

	"github.com/joho/godotenv"
)

func main() {
	name := flag.String("resource", resource.Jobs, "resource to check (jobs, internships, ... or all)")
	fix := flag.Bool("fix", false, "delete every copy except the most recently updated one")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall deadline")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	logger := log.Default()
	st, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	want := strings.TrimSpace(*name)
	var targets []*listing.Service
	for _, svc := range app.NewListingServices(resource.All(cfg.Store), st, listing.WithLogger(logger)) {
		if want == "all" || svc.Resource().Name == want {
			targets = append(targets, svc)
		}
	}
	if len(targets) == 0 {
		log.Fatalf("unknown resource %q", want)
	}

	total := 0
	for _, svc := range targets {
		dups, err := svc.FindDuplicates(ctx)
		if err != nil {
			log.Fatalf("[Reconcile] %s: scan failed: %v", svc.Resource().Name, err)
		}
		for _, d := range dups {
			log.Printf("[Reconcile] %s id=%s partitions=%s keep=%s", svc.Resource().Name, d.ID, strings.Join(d.Partitions, ","), d.Keep)
		}
		total += len(dups)

		if !*fix || len(dups) == 0 {
			continue
		}
		removed, err := svc.ResolveDuplicates(ctx, dups)
		if err != nil {
			log.Fatalf("[Reconcile] %s: removed %d copies before failing: %v", svc.Resource().Name, removed, err)
		}
		log.Printf("[Reconcile] %s: removed %d stale copies", svc.Resource().Name, removed)
	}

	log.Printf("[Reconcile] done duplicates=%d fix=%v", total, *fix)
}
