package response

import "github.com/gofiber/fiber/v3"

// ErrorBody is the shape of every non-2xx response.
type ErrorBody struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
	Detail  string      `json:"detail,omitempty"`
}

type MessageBody struct {
	Message string `json:"message"`
}

const (
	MessageOK                  = "ok"
	MessageBadRequest          = "Bad request"
	MessageUnauthorized        = "Unauthorized"
	MessageForbidden           = "Forbidden"
	MessageNotFound            = "Not found"
	MessageConflict            = "Conflict"
	MessageTooManyRequests     = "Too many requests"
	MessageInternalServerError = "Internal server error"
	MessageError               = "Error"
)

func JSON(c fiber.Ctx, status int, body interface{}) error {
	return c.Status(normalizeStatus(status)).JSON(body)
}

func Message(c fiber.Ctx, status int, message string) error {
	st := normalizeStatus(status)
	return c.Status(st).JSON(MessageBody{Message: normalizeMessage(message, st)})
}

// Error writes an ErrorBody. detail carries a downstream cause and is omitted when empty.
func Error(c fiber.Ctx, status int, message string, details interface{}, detail string) error {
	st := normalizeStatus(status)
	return c.Status(st).JSON(ErrorBody{
		Error:   normalizeMessage(message, st),
		Details: details,
		Detail:  detail,
	})
}

func normalizeStatus(status int) int {
	if status < 100 || status > 599 {
		return fiber.StatusInternalServerError
	}
	return status
}

func normalizeMessage(message string, status int) string {
	if message != "" {
		return message
	}
	return DefaultMessageForStatus(status)
}

func DefaultMessageForStatus(status int) string {
	switch status {
	case fiber.StatusOK, fiber.StatusCreated:
		return MessageOK
	case fiber.StatusBadRequest:
		return MessageBadRequest
	case fiber.StatusUnauthorized:
		return MessageUnauthorized
	case fiber.StatusForbidden:
		return MessageForbidden
	case fiber.StatusNotFound:
		return MessageNotFound
	case fiber.StatusConflict:
		return MessageConflict
	case fiber.StatusTooManyRequests:
		return MessageTooManyRequests
	default:
		if status >= 500 {
			return MessageInternalServerError
		}
		return MessageError
	}
}
