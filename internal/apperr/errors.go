package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// Error kinds shared by the store, handlers and gateway. Call sites wrap them
// with goerr so the kind survives and context values reach the logs.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidOrdering = errors.New("invalid ordering")
	ErrValidation      = errors.New("validation failed")
	ErrTransientStore  = errors.New("transient store failure")
)

// OrderingReason tells which part of a reorder payload did not match the
// current sibling set.
type OrderingReason string

const (
	ReasonMissingID   OrderingReason = "missing_id"
	ReasonDuplicateID OrderingReason = "duplicate_id"
	ReasonForeignID   OrderingReason = "foreign_id"
)

// OrderingError is returned by the position allocator.
type OrderingError struct {
	Reason OrderingReason
	ID     uuid.UUID
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("invalid ordering: %s (%s)", e.Reason, e.ID)
}

func (e *OrderingError) Is(target error) bool {
	return target == ErrInvalidOrdering
}

// Kind returns the machine-readable kind of err, or "internal".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidOrdering):
		return "invalid_ordering"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrTransientStore):
		return "transient_store"
	default:
		return "internal"
	}
}

// Reason returns the ordering sub-reason carried by err, if any.
func Reason(err error) OrderingReason {
	var oe *OrderingError
	if errors.As(err, &oe) {
		return oe.Reason
	}
	return ""
}

// HTTPStatus maps err to the status code the REST surface answers with.
func HTTPStatus(err error) int {
	switch Kind(err) {
	case "not_found":
		return http.StatusNotFound
	case "forbidden":
		return http.StatusForbidden
	case "invalid_ordering", "validation":
		return http.StatusBadRequest
	case "transient_store":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
