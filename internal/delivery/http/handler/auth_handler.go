package handler

import (
	"context"
	"errors"

	"careerboard/internal/delivery/http/middleware"
	"careerboard/internal/domain/admin"
	"careerboard/internal/pkg/jwt"
	"careerboard/internal/pkg/response"
	ucauth "careerboard/internal/usecase/auth"

	"github.com/gofiber/fiber/v3"
)

type AuthUsecase interface {
	Login(ctx context.Context, in ucauth.LoginInput) (admin.Admin, error)
}

type AuthHandler struct {
	uc  AuthUsecase
	jwt jwt.Service
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	Admin admin.Admin `json:"admin"`
}

func NewAuthHandler(uc AuthUsecase, jwtSvc jwt.Service) *AuthHandler {
	return &AuthHandler{uc: uc, jwt: jwtSvc}
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, nil)
	}

	a, err := h.uc.Login(c.Context(), ucauth.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	token, err := h.jwt.GenerateAccessToken(a.ID, a.Email)
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	return response.JSON(c, fiber.StatusOK, loginResponse{Token: token, Admin: a})
}

func mapAuthUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ucauth.ErrInvalidCredentials):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid credentials", nil, nil)
	case errors.Is(err, ucauth.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, nil)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
