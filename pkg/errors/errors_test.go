package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	err := NewError("TEST", "something broke", http.StatusTeapot)
	assert.Equal(t, "TEST: something broke", err.Error())

	withCause := err.WithCause(fmt.Errorf("disk full"))
	assert.Equal(t, "TEST: something broke (caused by: disk full)", withCause.Error())

	withDetail := err.WithDetail("message", "row 7: country code is required")
	assert.Equal(t, "TEST: row 7: country code is required", withDetail.Error())
}

func TestWithCauseDoesNotMutateOriginal(t *testing.T) {
	cause := fmt.Errorf("pq: duplicate key")
	wrapped := ErrConflict.WithCause(cause)

	assert.Nil(t, ErrConflict.Cause)
	assert.Equal(t, cause, wrapped.Cause)
	assert.Equal(t, cause, stderrors.Unwrap(wrapped))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrInternal))

	wrapped := Wrap(fmt.Errorf("boom"), ErrInternal)
	require.NotNil(t, wrapped)
	assert.Equal(t, ErrInternal.Code, wrapped.Code)
	assert.EqualError(t, wrapped.Cause, "boom")
}

func TestPredicates(t *testing.T) {
	notFound := ErrNotFound.WithDetail("message", "rule not found")
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsValidation(notFound))
	assert.False(t, IsConflict(notFound))

	// predicates unwrap through fmt.Errorf chains
	chained := fmt.Errorf("loading rule: %w", ErrValidation.WithCause(fmt.Errorf("bad input")))
	assert.True(t, IsValidation(chained))

	assert.True(t, IsConflict(ErrConflict))
	assert.False(t, IsNotFound(fmt.Errorf("plain error")))
	assert.False(t, IsNotFound(nil))
}

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(ErrValidation))
	assert.Equal(t, http.StatusConflict, ToHTTPStatus(ErrConflict))
	assert.Equal(t, http.StatusForbidden, ToHTTPStatus(ErrForbidden))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(fmt.Errorf("unclassified")))
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(ErrNotFound)
	assert.Equal(t, "resource not found", resp["error"])
	assert.Equal(t, "NOT_FOUND", resp["error_code"])
	assert.NotContains(t, resp, "details")

	withDetails := ErrValidation.WithDetail("field", "country_code")
	resp = ToErrorResponse(withDetails)
	assert.Equal(t, "VALIDATION_ERROR", resp["error_code"])
	details, ok := resp["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "country_code", details["field"])
}

func TestToErrorResponseUnclassified(t *testing.T) {
	resp := ToErrorResponse(fmt.Errorf("socket closed"))
	assert.Equal(t, "INTERNAL_ERROR", resp["error_code"])
	assert.Equal(t, "internal server error", resp["error"])
}
