package bricklink

import (
	"errors"
	"fmt"

	"github.com/brickbot/bricklink-telegram-bot/internal/catalog"
)

// Messages of requests the API refuses to process.
var malformedMessages = map[string]bool{
	"INVALID_URI":                  true,
	"INVALID_REQUEST_BODY":         true,
	"PARAMETER_MISSING_OR_INVALID": true,
}

// APIError is a non-success meta block.
type APIError struct {
	Code        int
	Message     string
	Description string
}

func (e *APIError) Error() string {
	if e.Malformed() && e.Description != "" {
		return e.Description
	}
	return fmt.Sprintf("bricklink: %d %s: %s", e.Code, e.Message, e.Description)
}

// Malformed reports whether the request itself was invalid.
func (e *APIError) Malformed() bool {
	return malformedMessages[e.Message]
}

func (e *APIError) Is(target error) bool {
	return target == catalog.ErrNotFound && (e.Code == 404 || e.Message == "RESOURCE_NOT_FOUND")
}

func isNotFound(err error) bool {
	return errors.Is(err, catalog.ErrNotFound)
}
