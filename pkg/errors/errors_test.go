package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewInvalidRequestError("bad", nil), http.StatusBadRequest},
		{"conflict", NewConflictError("dup", nil), http.StatusConflict},
		{"not found", NewNotFoundError("missing", nil), http.StatusNotFound},
		{"unauthorized", NewUnauthorizedError("no", nil), http.StatusUnauthorized},
		{"storage", NewDatabaseError("db", errors.New("boom")), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", NewNotFoundError("missing", nil)), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
		{"nil", nil, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatusCode(tc.err))
		})
	}
}

func TestGetHumanReadableMessage_HidesStorageDetail(t *testing.T) {
	err := NewDatabaseError("select failed", errors.New(`pq: relation "waitlist" does not exist`))

	assert.Equal(t, "Failed to fetch", GetHumanReadableMessage(err, "Failed to fetch"))
	assert.Equal(t, "Failed to fetch", GetHumanReadableMessage(errors.New("raw"), "Failed to fetch"))
	assert.Equal(t, "Internal server error", GetHumanReadableMessage(nil, ""))
	assert.Equal(t, "Entry not found", GetHumanReadableMessage(NewNotFoundError("Entry not found", nil), "x"))
}

func TestAppError_WithDetail(t *testing.T) {
	err := NewInvalidRequestError("Invalid actor_type", nil).WithDetail("valid_types", []string{"vendor"})

	assert.Equal(t, map[string]any{"valid_types": []string{"vendor"}}, GetDetails(err))
	assert.Nil(t, GetDetails(errors.New("plain")))
	assert.True(t, IsType(err, ErrorTypeInvalidRequest))
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.True(t, IsDuplicateKeyError(errors.New(`ERROR: duplicate key value violates unique constraint "waitlist_email_key"`)))
	assert.True(t, IsDuplicateKeyError(errors.New("UNIQUE constraint failed: waitlist.email")))
	assert.False(t, IsDuplicateKeyError(errors.New("connection refused")))
	assert.False(t, IsDuplicateKeyError(nil))
}

type sample struct {
	Email     string `json:"email" validate:"required"`
	ActorType string `json:"actor_type" validate:"oneof=vendor buyer rider"`
}

func TestFormatValidationErrors(t *testing.T) {
	err := validator.New().Struct(sample{ActorType: "farmer"})
	require.Error(t, err)

	got := FormatValidationErrors(err, &sample{})
	assert.Equal(t, []ValidationErrorResponse{
		{Field: "email", Message: "This field is required"},
		{Field: "actor_type", Message: "Must be one of: vendor, buyer, rider"},
	}, got)
}

func TestFormatValidationErrors_TypeError(t *testing.T) {
	var payload struct {
		Notes *string `json:"notes"`
	}
	err := json.Unmarshal([]byte(`{"notes": 5}`), &payload)
	require.Error(t, err)

	got := FormatValidationErrors(err, &payload)
	require.Len(t, got, 1)
	assert.Equal(t, "notes", got[0].Field)
}
