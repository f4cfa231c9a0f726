package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvedCommand is matched by errors.Is for *UnresolvedCommandError.
	ErrUnresolvedCommand = errors.New("unresolved command")

	// ErrMalformedRequest is matched by errors.Is for *MalformedRequestError.
	ErrMalformedRequest = errors.New("malformed request")

	// ErrNotFound is wrapped by gateways when the requested resource does not
	// exist. The resolver treats it as an empty result.
	ErrNotFound = errors.New("resource not found")
)

// UnresolvedCommandError is returned when a command-marked input holds no
// recognizable item number.
type UnresolvedCommandError struct {
	Text string
}

func (e *UnresolvedCommandError) Error() string {
	return fmt.Sprintf("could not match request: %s", e.Text)
}

func (e *UnresolvedCommandError) Is(target error) bool {
	return target == ErrUnresolvedCommand
}

// MalformedRequestError carries the upstream description of a request the
// catalog service rejected as invalid.
type MalformedRequestError struct {
	Description string
}

func (e *MalformedRequestError) Error() string {
	return e.Description
}

func (e *MalformedRequestError) Is(target error) bool {
	return target == ErrMalformedRequest
}

// malformed is implemented by gateway errors that signal an invalid request.
type malformed interface {
	Malformed() bool
}

func asMalformed(err error) (*MalformedRequestError, bool) {
	var m malformed
	if errors.As(err, &m) && m.Malformed() {
		return &MalformedRequestError{Description: m.(error).Error()}, true
	}
	return nil, false
}
