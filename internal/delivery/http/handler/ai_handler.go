package handler

import (
	"context"
	"errors"

	"careerboard/internal/blob"
	"careerboard/internal/cv"
	"careerboard/internal/delivery/http/middleware"
	"careerboard/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type CVAnalyzer interface {
	Analyze(ctx context.Context, key, jobID string) (cv.Analysis, error)
}

type AIHandler struct {
	analyzer CVAnalyzer
}

type analyzeRequest struct {
	Key   string `json:"key"`
	JobID string `json:"jobId"`
}

func NewAIHandler(analyzer CVAnalyzer) *AIHandler {
	return &AIHandler{analyzer: analyzer}
}

func (h *AIHandler) HandleAnalyzeCV(c fiber.Ctx) error {
	var req analyzeRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request body", nil, nil)
	}

	out, err := h.analyzer.Analyze(c.Context(), req.Key, req.JobID)
	if err != nil {
		return mapAnalyzeError(err)
	}
	return response.JSON(c, fiber.StatusOK, out)
}

func mapAnalyzeError(err error) error {
	switch {
	case errors.Is(err, cv.ErrInvalidKey):
		return middleware.NewAppError(fiber.StatusBadRequest, "Only PDF files are supported", nil, nil)
	case errors.Is(err, cv.ErrUnreadableDocument):
		return middleware.NewAppError(fiber.StatusBadRequest, "Could not read text from the uploaded PDF", nil, nil)
	case errors.Is(err, cv.ErrJobNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Job not found", nil, nil)
	case errors.Is(err, blob.ErrObjectNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "File not found", nil, nil)
	case errors.Is(err, blob.ErrObjectTooLarge):
		return middleware.NewAppError(fiber.StatusRequestEntityTooLarge, "File too large", nil, nil)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, "Failed to analyze CV", nil, err)
	}
}
