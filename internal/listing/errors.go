package listing

import (
	"errors"
	"strings"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("listing not found")
	ErrStore        = errors.New("store error")
	// ErrRelocationIncomplete means the item was written under its new partition key but the
	// copy under the old key could not be deleted. Both copies exist until reconciled.
	ErrRelocationIncomplete = errors.New("relocation incomplete")
)

// ValidationError reports missing or malformed fields. It matches ErrInvalidInput.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Reason
	if msg == "" {
		msg = "missing required fields"
	}
	if len(e.Fields) > 0 {
		msg += ": " + strings.Join(e.Fields, ", ")
	}
	return msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
