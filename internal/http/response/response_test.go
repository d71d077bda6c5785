package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/user-service/internal/lib/apperr"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantMsg  string
	}{
		{err: apperr.ErrUnauthenticated, wantCode: http.StatusUnauthorized, wantMsg: MsgInvalidToken},
		{err: apperr.ErrInactiveAccount, wantCode: http.StatusBadRequest, wantMsg: MsgInactiveUser},
		{err: apperr.ErrForbidden, wantCode: http.StatusForbidden, wantMsg: MsgForbidden},
		{err: apperr.ErrNotFound, wantCode: http.StatusNotFound, wantMsg: MsgNotFound},
		{err: apperr.ErrConflict, wantCode: http.StatusBadRequest, wantMsg: MsgEmailTaken},
		{err: apperr.ErrValidation, wantCode: http.StatusUnprocessableEntity, wantMsg: MsgValidation},
		{err: apperr.ErrUnavailable, wantCode: http.StatusServiceUnavailable, wantMsg: MsgUnavailable},
		{err: errors.New("boom"), wantCode: http.StatusInternalServerError, wantMsg: MsgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			code, msg := StatusFor(fmt.Errorf("layer: %w", tt.err))
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestWriteError_HidesDriverDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(rr, req, fmt.Errorf("storage: %w: dial tcp 10.0.0.1:5432: connection refused", apperr.ErrUnavailable))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.NotContains(t, rr.Body.String(), "10.0.0.1")

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, MsgUnavailable, resp.Error)
	assert.Empty(t, rr.Header().Get("WWW-Authenticate"))
}

func TestWriteError_UnauthorizedHasChallenge(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(rr, req, apperr.ErrUnauthenticated)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
}

type sample struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=72"`
	Name     string `validate:"omitempty,max=3"`
}

func TestValidationError_Messages(t *testing.T) {
	v := validator.New()

	err := v.Struct(sample{Email: "not-an-email", Password: "short", Name: "toolong"})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	resp := ValidationError(verrs)

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field email must be a valid email address")
	assert.Contains(t, resp.Error, "field password must be at least 8 characters long")
	assert.Contains(t, resp.Error, "field name must be at most 3 characters long")

	err = v.Struct(sample{})
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, ValidationError(verrs).Error, "field email is a required field")
}

func TestWriteValidationError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteValidationError(rr, httptest.NewRequest(http.MethodPost, "/", nil), errors.New("not a validator error"))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), MsgValidation)
}
