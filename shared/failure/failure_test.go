package failure_test

import (
	"courtside/shared/failure"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
	}{
		{name: "bad request", err: failure.BadRequest(errors.New("date is required")), wantCode: http.StatusBadRequest, wantMessage: "date is required"},
		{name: "bad request from string", err: failure.BadRequestFromString("date must be formatted as YYYY-MM-DD"), wantCode: http.StatusBadRequest, wantMessage: "date must be formatted as YYYY-MM-DD"},
		{name: "unauthorized", err: failure.Unauthorized("token has expired"), wantCode: http.StatusUnauthorized, wantMessage: "token has expired"},
		{name: "internal", err: failure.InternalError(errors.New("boom")), wantCode: http.StatusInternalServerError, wantMessage: "boom"},
		{name: "not found", err: failure.NotFound("booking not found"), wantCode: http.StatusNotFound, wantMessage: "booking not found"},
		{name: "conflict", err: failure.Conflict("no court available"), wantCode: http.StatusConflict, wantMessage: "no court available"},
		{name: "forbidden", err: failure.Forbidden("not your booking"), wantCode: http.StatusForbidden, wantMessage: "not your booking"},
		{name: "predefined forbidden", err: failure.ForbiddenError, wantCode: http.StatusForbidden, wantMessage: "You don't have the required permissions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)

			var fail *failure.Failure
			require.ErrorAs(t, tt.err, &fail)
			assert.Equal(t, tt.wantCode, fail.Code)
			assert.Equal(t, tt.wantMessage, tt.err.Error())
		})
	}
}

func TestNilCauses(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
	assert.NoError(t, failure.InternalError(nil))
	assert.NoError(t, failure.Storage(nil))
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		expected int
	}{
		{name: "failure", input: &failure.Failure{Code: http.StatusBadRequest, Message: "test"}, expected: http.StatusBadRequest},
		{name: "wrapped failure", input: fmt.Errorf("handler: %w", failure.Conflict("taken")), expected: http.StatusConflict},
		{name: "plain error", input: errors.New("regular error"), expected: http.StatusInternalServerError},
		{name: "nil", input: nil, expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, failure.GetCode(tt.input))
		})
	}
}

func TestStorage(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := failure.Storage(fmt.Errorf("failed to update booking: %w", cause))

	assert.Equal(t, "failed to save changes", err.Error())
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	assert.ErrorIs(t, err, cause)

	var fail *failure.Failure
	require.ErrorAs(t, err, &fail)
	assert.Equal(t, "failed to save changes", fail.Message)
}
