package v1

import (
	"careerboard/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

// Deps carries the handlers and guards mounted under /api/v1. Nil handlers leave their
// routes unregistered; nil limiters are skipped.
type Deps struct {
	Listings []*handler.ListingHandler
	// PublicCreate names resources whose create route needs no admin token.
	PublicCreate map[string]bool

	Auth  *handler.AuthHandler
	AI    *handler.AIHandler
	S3    *handler.S3Handler
	Admin *handler.AdminHandler

	RequireAdmin fiber.Handler
	APILimit     fiber.Handler
	AuthLimit    fiber.Handler
	AILimit      fiber.Handler
}

func Register(r fiber.Router, d Deps) {
	if r == nil {
		return
	}
	if d.APILimit != nil {
		r.Use(d.APILimit)
	}

	for _, h := range d.Listings {
		RegisterListing(r.Group("/"+h.Name()), h, d.RequireAdmin, d.PublicCreate[h.Name()])
	}

	if d.Auth != nil {
		admin := r.Group("/admin")
		mount(admin, fiber.MethodPost, "/login", d.AuthLimit, d.Auth.Login)
		if d.Admin != nil {
			mount(admin, fiber.MethodGet, "/duplicates", d.RequireAdmin, d.Admin.HandleDuplicates)
		}
	}

	if d.AI != nil {
		mount(r.Group("/ai"), fiber.MethodPost, "/analyze-cv", d.AILimit, d.AI.HandleAnalyzeCV)
	}

	if d.S3 != nil {
		r.Group("/s3").Get("/pre-signed-url", d.S3.HandlePresignedURL)
	}
}

// RegisterListing mounts the CRUD and bulk-upload routes of one resource. Writes require
// guard unless publicCreate opens the create route.
func RegisterListing(r fiber.Router, h *handler.ListingHandler, guard fiber.Handler, publicCreate bool) {
	if r == nil || h == nil {
		return
	}

	r.Get("", h.HandleList)
	r.Get("/:id", h.HandleGet)

	createGuard := guard
	if publicCreate {
		createGuard = nil
	}
	mount(r, fiber.MethodPost, "", createGuard, h.HandleCreate)
	mount(r, fiber.MethodPost, "/bulk-upload", guard, h.HandleBulkUpload)
	mount(r, fiber.MethodPut, "/:id", guard, h.HandleUpdate)
	mount(r, fiber.MethodDelete, "/:id", guard, h.HandleDelete)
}

// mount registers h behind guard; a nil guard mounts h alone.
func mount(r fiber.Router, method, path string, guard, h fiber.Handler) {
	if guard == nil {
		r.Add([]string{method}, path, h)
		return
	}
	r.Add([]string{method}, path, guard, h)
}
