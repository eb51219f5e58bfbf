package middleware

import (
	"errors"
	"log"

	"careerboard/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, data interface{}, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data, Cause: cause}
}

// ErrorMiddleware renders returned errors and recovered panics as response.ErrorBody.
// Server-side causes are always logged; they reach the client only when exposeDetail is set.
type ErrorMiddleware struct {
	logger       *log.Logger
	exposeDetail bool
}

func NewErrorMiddleware(logger *log.Logger, exposeDetail bool) *ErrorMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return &ErrorMiddleware{logger: logger, exposeDetail: exposeDetail}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Printf("[HTTP] panic recovered | method=%s path=%s panic=%v", c.Method(), c.Path(), r)
				err = response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil, "")
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}
		return m.Handle(c, err)
	}
}

// Handle writes err. It doubles as the fiber.Config ErrorHandler.
func (m *ErrorMiddleware) Handle(c fiber.Ctx, err error) error {
	status, msg, data, cause := normalizeError(err)

	detail := ""
	if status >= 500 {
		if cause != nil {
			m.logger.Printf("[HTTP] request failed | method=%s path=%s status=%d err=%v", c.Method(), c.Path(), status, cause)
			if m.exposeDetail {
				detail = cause.Error()
			}
		}
		data = nil
	}
	return response.Error(c, status, msg, data, detail)
}

func normalizeError(err error) (int, string, interface{}, error) {
	if err == nil {
		return fiber.StatusInternalServerError, response.MessageInternalServerError, nil, nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.StatusCode
		if status <= 0 || status > 599 {
			status = fiber.StatusInternalServerError
		}
		msg := appErr.Message
		if msg == "" {
			msg = response.DefaultMessageForStatus(status)
		}
		return status, msg, appErr.Data, appErr.Cause
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status := fiberErr.Code
		if status <= 0 {
			status = fiber.StatusInternalServerError
		}
		if status >= 500 {
			return status, response.DefaultMessageForStatus(status), nil, err
		}
		msg := fiberErr.Message
		if msg == "" {
			msg = response.DefaultMessageForStatus(status)
		}
		return status, msg, nil, nil
	}

	return fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err
}
