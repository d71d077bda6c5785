package create

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/user-service/internal/lib/apperr"
	"github.com/magabrotheeeer/user-service/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, in models.UserCreate) (*models.User, error) {
	args := m.Called(ctx, in)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestCreateHandler_ServeHTTP(t *testing.T) {
	alice := models.UserCreate{Email: "alice@example.com", Password: "password123", FullName: "Alice"}

	tests := []struct {
		name           string
		body           string
		setupMock      func(m *ServiceMock)
		wantStatusCode int
		wantBody       string
	}{
		{
			name: "success",
			body: `{"email":"alice@example.com","password":"password123","full_name":"Alice"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, alice).Return(&models.User{
					ID: "u-1", Email: "alice@example.com", FullName: "Alice",
					HashedPassword: "$2a$10$xyz", IsActive: true,
				}, nil).Once()
			},
			wantStatusCode: http.StatusCreated,
			wantBody:       `{"status":"OK","data":{"id":"u-1","email":"alice@example.com","full_name":"Alice","is_active":true,"is_superuser":false}}`,
		},
		{
			name:           "malformed json",
			body:           `{"email":`,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantBody:       `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:           "invalid email",
			body:           `{"email":"not-an-email","password":"password123"}`,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantBody:       `{"status":"Error","error":"field email must be a valid email address"}`,
		},
		{
			name:           "short password",
			body:           `{"email":"alice@example.com","password":"short"}`,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantBody:       `{"status":"Error","error":"field password must be at least 8 characters long"}`,
		},
		{
			name: "email already taken",
			body: `{"email":"alice@example.com","password":"password123","full_name":"Alice"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, alice).
					Return(nil, fmt.Errorf("users.Register: %w", apperr.ErrConflict)).Once()
			},
			wantStatusCode: http.StatusBadRequest,
			wantBody:       `{"status":"Error","error":"the user with this email already exists in the system"}`,
		},
		{
			name: "storage unavailable",
			body: `{"email":"alice@example.com","password":"password123","full_name":"Alice"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, alice).Return(nil, apperr.ErrUnavailable).Once()
			},
			wantStatusCode: http.StatusServiceUnavailable,
			wantBody:       `{"status":"Error","error":"service temporarily unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(ServiceMock)
			tt.setupMock(m)
			handler := New(newNoopLogger(), m)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatusCode, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
			m.AssertExpectations(t)
		})
	}
}

func TestCreateHandler_NeverEchoesPassword(t *testing.T) {
	m := new(ServiceMock)
	m.On("Register", mock.Anything, mock.Anything).Return(&models.User{
		ID: "u-1", Email: "alice@example.com", HashedPassword: "$2a$10$xyz", IsActive: true,
	}, nil)
	handler := New(newNoopLogger(), m)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users",
		strings.NewReader(`{"email":"alice@example.com","password":"password123"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var raw struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	assert.NotContains(t, raw.Data, "password")
	assert.NotContains(t, raw.Data, "hashed_password")
	assert.NotContains(t, rr.Body.String(), "password123")
}
