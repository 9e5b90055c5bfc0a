package login

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rbnsaiful/topup-rewards/internal/models"
	"github.com/rbnsaiful/topup-rewards/internal/services/auth"
)

// MockService реализует интерфейс login.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Login(ctx context.Context, req models.DummyLogin) (*models.User, string, error) {
	args := m.Called(ctx, req)
	user, _ := args.Get(0).(*models.User)
	return user, args.String(1), args.Error(2)
}

func TestLoginHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	validBody := models.DummyLogin{
		Email:    "alice@example.com",
		Password: "secret123",
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешный вход",
			requestBody: validBody,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, validBody).
					Return(&models.User{UID: "uid-1", Email: "alice@example.com"}, "jwt-token", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"token":"jwt-token"`,
		},
		{
			name:        "неверные учетные данные",
			requestBody: validBody,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, validBody).
					Return(nil, "", auth.ErrInvalidCredentials)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"kind":"user","code":"invalid-credential"`,
		},
		{
			name:        "слишком много попыток",
			requestBody: validBody,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, validBody).
					Return(nil, "", auth.ErrTooManyRequests)
			},
			expectedStatus: http.StatusTooManyRequests,
			expectedBody:   `"code":"too-many-requests"`,
		},
		{
			name:        "хранилище отклонило запрос",
			requestBody: validBody,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, validBody).
					Return(nil, "", auth.ErrPermissionDenied)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `"kind":"config","code":"permission-denied"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			body, err := json.Marshal(tt.requestBody)
			assert.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-id"))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
