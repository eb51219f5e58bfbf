// Package cv analyzes uploaded CVs against job listings.
package cv

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrUnreadableDocument = errors.New("unreadable document")

// ExtractText returns the plain text of a PDF document.
func ExtractText(doc []byte) (text string, err error) {
	if !bytes.HasPrefix(bytes.TrimLeft(doc, " \t\r\n"), []byte("%PDF")) {
		return "", fmt.Errorf("%w: not a pdf", ErrUnreadableDocument)
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrUnreadableDocument, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadableDocument, err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadableDocument, err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadableDocument, err)
	}
	return strings.TrimSpace(string(b)), nil
}
