package handler

import (
	"context"
	"sort"

	"careerboard/internal/delivery/http/middleware"
	"careerboard/internal/listing"
	"careerboard/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type DuplicateFinder interface {
	FindDuplicates(ctx context.Context) ([]listing.Duplicate, error)
}

// AdminHandler serves maintenance reports across resources.
type AdminHandler struct {
	finders map[string]DuplicateFinder
}

func NewAdminHandler(finders map[string]DuplicateFinder) *AdminHandler {
	return &AdminHandler{finders: finders}
}

func (h *AdminHandler) HandleDuplicates(c fiber.Ctx) error {
	name := c.Query("resource")
	f, ok := h.finders[name]
	if !ok {
		known := make([]string, 0, len(h.finders))
		for k := range h.finders {
			known = append(known, k)
		}
		sort.Strings(known)
		return middleware.NewAppError(fiber.StatusBadRequest, "Unknown resource", known, nil)
	}

	dups, err := f.FindDuplicates(c.Context())
	if err != nil {
		return mapListingError(err, "Failed to scan for duplicates")
	}
	return response.JSON(c, fiber.StatusOK, fiber.Map{
		"resource":   name,
		"duplicates": dups,
	})
}
