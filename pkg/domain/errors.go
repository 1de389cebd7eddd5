package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidForm is returned by a submit workflow when validation fails.
// The form stays shown with its invalid markers.
var ErrInvalidForm = errors.New("form is invalid")

// ErrUserNotFound is returned when an id does not match any user in the list.
var ErrUserNotFound = errors.New("user not found")

// ErrRequestFailed is the common cause of every failed remote call.
var ErrRequestFailed = errors.New("request failed")

// ErrUnknownAction is returned when decoding an action type that is unknown
// or not available to views.
var ErrUnknownAction = errors.New("unknown action")

// ErrJournalDisabled is returned when the journal is queried but none is configured.
var ErrJournalDisabled = errors.New("journal disabled")

// Request operations reported in RequestError and RequestFailure.
const (
	OpList   = "list"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// RequestError describes a failed call to the remote user collection.
type RequestError struct {
	Op         string
	UserID     int // 0 for collection-wide operations
	StatusCode int // 0 for network errors
	Err        error
}

func (e *RequestError) Error() string {
	target := "users"
	if e.UserID != 0 {
		target = fmt.Sprintf("user %d", e.UserID)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Op, target, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, target, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Is makes every RequestError match ErrRequestFailed.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}
