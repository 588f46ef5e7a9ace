package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"taskboard/internal/apperr"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/stretchr/testify/assert"
)

func TestKind_SurvivesGoerrWrapping(t *testing.T) {
	err := goerr.Wrap(apperr.ErrNotFound, "list not found", goerr.V("list_id", uuid.New()))

	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Equal(t, "not_found", apperr.Kind(err))
	assert.Equal(t, http.StatusNotFound, apperr.HTTPStatus(err))
}

func TestOrderingError_IsInvalidOrdering(t *testing.T) {
	err := fmt.Errorf("reorder: %w", &apperr.OrderingError{Reason: apperr.ReasonForeignID, ID: uuid.New()})

	assert.True(t, errors.Is(err, apperr.ErrInvalidOrdering))
	assert.Equal(t, apperr.ReasonForeignID, apperr.Reason(err))
	assert.Equal(t, http.StatusBadRequest, apperr.HTTPStatus(err))
}

func TestHTTPStatus_Mapping(t *testing.T) {
	cases := map[error]int{
		apperr.ErrForbidden:      http.StatusForbidden,
		apperr.ErrValidation:     http.StatusBadRequest,
		apperr.ErrTransientStore: http.StatusServiceUnavailable,
		errors.New("boom"):       http.StatusInternalServerError,
	}
	for err, status := range cases {
		assert.Equal(t, status, apperr.HTTPStatus(err), err.Error())
	}
	assert.Equal(t, "internal", apperr.Kind(errors.New("boom")))
	assert.Empty(t, apperr.Reason(apperr.ErrNotFound))
}
