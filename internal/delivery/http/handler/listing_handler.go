package handler

import (
	"context"
	"errors"
	"strconv"

	"careerboard/internal/delivery/http/middleware"
	"careerboard/internal/ingest"
	"careerboard/internal/listing"
	"careerboard/internal/pkg/response"
	"careerboard/internal/store"

	"github.com/gofiber/fiber/v3"
)

// ListingService is the pipeline behind one resource's routes.
type ListingService interface {
	Resource() listing.Resource
	List(ctx context.Context, q listing.ListQuery) (listing.ListResult, error)
	Get(ctx context.Context, id string) (store.Item, error)
	Create(ctx context.Context, input store.Item) (store.Item, error)
	Update(ctx context.Context, id string, patch store.Item) (store.Item, error)
	Delete(ctx context.Context, id string) error
	BulkUpload(ctx context.Context, rows []listing.BulkRow) listing.BulkResult
}

type ListingHandler struct {
	svc ListingService
}

func NewListingHandler(svc ListingService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

// reservedParams are list query parameters that are never treated as filters.
var reservedParams = map[string]bool{"page": true, "limit": true, "q": true}

func (h *ListingHandler) HandleList(c fiber.Ctx) error {
	page, err := parseQueryIntStrict(c, "page", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid page parameter", nil, nil)
	}
	limit, err := parseQueryIntStrict(c, "limit", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid limit parameter", nil, nil)
	}

	filters := make(map[string]string)
	for k, v := range c.Queries() {
		if reservedParams[k] || v == "" {
			continue
		}
		filters[k] = v
	}

	res, err := h.svc.List(c.Context(), listing.ListQuery{
		Page:    page,
		Limit:   limit,
		Search:  c.Query("q"),
		Filters: filters,
	})
	if err != nil {
		return mapListingError(err, "Failed to fetch listings")
	}

	return response.JSON(c, fiber.StatusOK, fiber.Map{
		h.svc.Resource().CollectionKey: res.Items,
		"pagination":                   res.Pagination,
	})
}

func (h *ListingHandler) HandleGet(c fiber.Ctx) error {
	it, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return mapListingError(err, "Failed to fetch listing")
	}
	return response.JSON(c, fiber.StatusOK, it)
}

func (h *ListingHandler) HandleCreate(c fiber.Ctx) error {
	var body map[string]any
	if err := c.Bind().Body(&body); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request body", nil, nil)
	}

	it, err := h.svc.Create(c.Context(), store.Item(body))
	if err != nil {
		return mapListingError(err, "Failed to create listing")
	}
	return response.JSON(c, fiber.StatusCreated, it)
}

func (h *ListingHandler) HandleUpdate(c fiber.Ctx) error {
	var body map[string]any
	if err := c.Bind().Body(&body); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request body", nil, nil)
	}

	it, err := h.svc.Update(c.Context(), c.Params("id"), store.Item(body))
	if err != nil {
		return mapListingError(err, "Failed to update listing")
	}
	return response.JSON(c, fiber.StatusOK, it)
}

func (h *ListingHandler) HandleDelete(c fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), c.Params("id")); err != nil {
		return mapListingError(err, "Failed to delete listing")
	}
	return response.Message(c, fiber.StatusOK, "Deleted successfully")
}

// HandleBulkUpload accepts a CSV or XLSX file in the multipart field "file".
func (h *ListingHandler) HandleBulkUpload(c fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "No file uploaded", nil, nil)
	}
	f, err := fh.Open()
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Unable to read uploaded file", nil, nil)
	}
	defer f.Close()

	rows, err := ingest.Parse(fh.Filename, f)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, nil)
	}

	res := h.svc.BulkUpload(c.Context(), rows)
	status := fiber.StatusCreated
	if res.Failed() {
		status = fiber.StatusOK
	}
	return response.JSON(c, status, res)
}

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func mapListingError(err error, internalMsg string) error {
	if err == nil {
		return nil
	}

	var verr *listing.ValidationError
	switch {
	case errors.As(err, &verr):
		msg := "Missing required fields"
		if verr.Reason != "" {
			msg = verr.Reason
		}
		var details interface{}
		if len(verr.Fields) > 0 {
			details = verr.Fields
		}
		return middleware.NewAppError(fiber.StatusBadRequest, msg, details, nil)
	case errors.Is(err, listing.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, nil)
	case errors.Is(err, listing.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Not found", nil, nil)
	case errors.Is(err, listing.ErrRelocationIncomplete):
		return middleware.NewAppError(fiber.StatusInternalServerError, "Update partially applied", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, internalMsg, nil, err)
	}
}

// Name is the resource name the handler serves, also its route segment.
func (h *ListingHandler) Name() string {
	return h.svc.Resource().Name
}
