package handler

import (
	"context"
	"errors"

	"careerboard/internal/blob"
	"careerboard/internal/delivery/http/middleware"
	"careerboard/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type UploadPresigner interface {
	PresignUpload(ctx context.Context, fileType string) (blob.Upload, error)
}

type S3Handler struct {
	blobs UploadPresigner
}

func NewS3Handler(blobs UploadPresigner) *S3Handler {
	return &S3Handler{blobs: blobs}
}

func (h *S3Handler) HandlePresignedURL(c fiber.Ctx) error {
	up, err := h.blobs.PresignUpload(c.Context(), c.Query("fileType"))
	if err != nil {
		if errors.Is(err, blob.ErrUnsupportedType) {
			return middleware.NewAppError(fiber.StatusBadRequest, "Only PDF files are allowed", nil, nil)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, "Failed to generate upload URL", nil, err)
	}
	return response.JSON(c, fiber.StatusOK, up)
}
