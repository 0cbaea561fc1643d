// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ErrCampaignNotFound is returned when a campaign id has no stored document.
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

func (e *ErrCampaignNotFound) Is(target error) bool {
	return target == ErrNotFound
}

// Helper constructor
func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// InvalidRuleError reports a rule that cannot be compiled into a filter.
// Index is the rule's position in the submitted list.
type InvalidRuleError struct {
	Index    int
	Entity   string
	Field    string
	Operator string
	Value    string
	Reason   string
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("invalid rule #%d (%s.%s %s %q): %s", e.Index, e.Entity, e.Field, e.Operator, e.Value, e.Reason)
}

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StorageError wraps a failure of the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func IsInvalidRule(err error) bool {
	var ir *InvalidRuleError
	return errors.As(err, &ir)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// StatusCode maps an error from the core to its HTTP status.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsInvalidRule(err), IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to return to a client. Storage and
// unknown errors are not echoed.
func PublicMessage(err error) string {
	if StatusCode(err) >= http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
