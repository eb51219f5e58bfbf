// Package resource declares the collections served by the API.
package resource

import (
	"net/mail"
	"strings"

	"careerboard/internal/config"
	"careerboard/internal/listing"
	"careerboard/internal/store"
	"careerboard/internal/store/memory"
)

const (
	Jobs           = "jobs"
	SarkariJobs    = "sarkari-jobs"
	Internships    = "internships"
	Certifications = "certifications"
	Walking        = "walking"
	Subscriptions  = "subscriptions"
)

// All returns every resource in route registration order.
func All(cfg config.StoreConfig) []listing.Resource {
	return []listing.Resource{
		jobs(cfg.JobsTable),
		sarkariJobs(cfg.SarkariJobsTable),
		internships(cfg.InternshipsTable),
		certifications(cfg.CertificationsTable),
		walking(cfg.WalkingTable),
		subscriptions(cfg.SubscriptionsTable),
	}
}

// Schemas describes the key layout of every table for the in-process store.
func Schemas(resources []listing.Resource) map[string]memory.Schema {
	out := make(map[string]memory.Schema, len(resources))
	for _, r := range resources {
		out[r.Table] = memory.Schema{PartitionKey: r.PartitionKey, SortKey: r.SortKey}
	}
	return out
}

func jobs(table string) listing.Resource {
	return listing.Resource{
		Name:           Jobs,
		CollectionKey:  "jobs",
		Table:          table,
		PartitionKey:   "category",
		SortKey:        "jobId",
		TimestampField: "postedOn",
		DefaultLimit:   15,
		Relocatable:    true,
		SearchFields:   []string{"role", "companyName"},
		Filters: []listing.FilterField{
			{Param: "category", Field: "category", Kind: listing.FilterExact},
			{Param: "location", Field: "location", Kind: listing.FilterContains},
			{Param: "batch", Field: "batch", Kind: listing.FilterContains, Sentinel: true},
			{Param: "tags", Field: "tags", Kind: listing.FilterContains},
			{Param: "status", Field: "status", Kind: listing.FilterExact},
		},
		ArrayFields: []string{"batch", "tags"},
		Required:    []string{"role", "companyName", "location", "jobDescription", "originalLink", "category"},
		Defaults:    map[string]any{"status": "active"},
		Enrich:      &listing.Enrichment{SourceField: "companyName", TargetField: "companyLogo"},
	}
}

func sarkariJobs(table string) listing.Resource {
	return listing.Resource{
		Name:           SarkariJobs,
		CollectionKey:  "jobs",
		Table:          table,
		PartitionKey:   "organization",
		SortKey:        "jobId",
		TimestampField: "postedOn",
		DefaultLimit:   15,
		SearchFields:   []string{"postName", "organization"},
		Filters: []listing.FilterField{
			{Param: "organization", Field: "organization", Kind: listing.FilterExact},
			{Param: "location", Field: "location", Kind: listing.FilterContains},
			{Param: "status", Field: "status", Kind: listing.FilterExact},
			{Param: "qualification", Field: "qualification", Kind: listing.FilterContains},
		},
		ArrayFields: []string{"qualification"},
		Required:    []string{"postName", "organization", "applyLink"},
		Defaults:    map[string]any{"status": "active"},
	}
}

func internships(table string) listing.Resource {
	return listing.Resource{
		Name:           Internships,
		CollectionKey:  "internships",
		Table:          table,
		PartitionKey:   "category",
		SortKey:        "internshipId",
		TimestampField: "postedAt",
		DefaultLimit:   15,
		Relocatable:    true,
		SearchFields:   []string{"title", "company"},
		Filters: []listing.FilterField{
			{Param: "category", Field: "category", Kind: listing.FilterExact},
			{Param: "location", Field: "location", Kind: listing.FilterContains},
			{Param: "skills", Field: "skills", Kind: listing.FilterContains},
			{Param: "isActive", Field: "isActive", Kind: listing.FilterBool},
		},
		ArrayFields: []string{"skills"},
		BoolFields:  []string{"isActive"},
		Required:    []string{"title", "company", "category", "applyLink"},
		Defaults:    map[string]any{"isActive": true},
		Enrich:      &listing.Enrichment{SourceField: "company", TargetField: "companyLogo"},
	}
}

func certifications(table string) listing.Resource {
	return listing.Resource{
		Name:           Certifications,
		CollectionKey:  "certifications",
		Table:          table,
		PartitionKey:   "category",
		SortKey:        "certificationId",
		TimestampField: "createdAt",
		DefaultLimit:   30,
		SearchFields:   []string{"title", "provider"},
		Filters: []listing.FilterField{
			{Param: "category", Field: "category", Kind: listing.FilterExact},
			{Param: "provider", Field: "provider", Kind: listing.FilterExact},
			{Param: "tags", Field: "tags", Kind: listing.FilterContains},
		},
		ArrayFields: []string{"tags"},
		Required:    []string{"title", "provider", "category", "link"},
		Defaults:    map[string]any{"status": "active"},
		Enrich:      &listing.Enrichment{SourceField: "provider", TargetField: "providerLogo"},
	}
}

func walking(table string) listing.Resource {
	return listing.Resource{
		Name:           Walking,
		CollectionKey:  "walkingInterviews",
		Table:          table,
		PartitionKey:   "location",
		SortKey:        "walkingId",
		TimestampField: "postedOn",
		DefaultLimit:   15,
		SearchFields:   []string{"role", "companyName"},
		Filters: []listing.FilterField{
			{Param: "location", Field: "location", Kind: listing.FilterExact},
			{Param: "role", Field: "role", Kind: listing.FilterExact},
			{Param: "batch", Field: "batch", Kind: listing.FilterContains, Sentinel: true},
		},
		ArrayFields: []string{"batch"},
		Required:    []string{"role", "companyName", "location", "walkInDate"},
		Defaults:    map[string]any{"status": "active"},
		Enrich:      &listing.Enrichment{SourceField: "companyName", TargetField: "companyLogo"},
	}
}

func subscriptions(table string) listing.Resource {
	return listing.Resource{
		Name:           Subscriptions,
		CollectionKey:  "subscriptions",
		Table:          table,
		PartitionKey:   "email",
		TimestampField: "createdAt",
		DefaultLimit:   30,
		SearchFields:   []string{"email"},
		Filters: []listing.FilterField{
			{Param: "category", Field: "categories", Kind: listing.FilterContains},
		},
		ArrayFields: []string{"categories"},
		Required:    []string{"email"},
		Defaults:    map[string]any{"isActive": true},
		BoolFields:  []string{"isActive"},
		Validate:    validateSubscription,
		NormalizeID: normalizeEmail,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateSubscription(it store.Item) error {
	addr, err := mail.ParseAddress(it.String("email"))
	if err != nil || addr.Address != it.String("email") {
		return &listing.ValidationError{Fields: []string{"email"}, Reason: "invalid email address"}
	}
	return nil
}
