package handler

import (
	"time"

	"careerboard/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type HealthHandler struct {
	now func() time.Time
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{now: time.Now}
}

func (h *HealthHandler) Handle(c fiber.Ctx) error {
	return response.JSON(c, fiber.StatusOK, fiber.Map{
		"status": "ok",
		"time":   h.now().UTC().Format(time.RFC3339),
	})
}
