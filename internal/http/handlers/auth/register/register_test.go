package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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

// MockService реализует интерфейс register.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, req models.DummyRegister) (*models.User, string, error) {
	args := m.Called(ctx, req)
	user, _ := args.Get(0).(*models.User)
	return user, args.String(1), args.Error(2)
}

func TestRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	validBody := models.DummyRegister{
		Name:            "Alice Smith",
		Email:           "alice@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешная регистрация",
			requestBody: validBody,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, validBody).
					Return(&models.User{UID: "uid-1", Email: "alice@example.com"}, "jwt-token", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"token":"jwt-token"`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name: "некорректный email",
			requestBody: models.DummyRegister{
				Name:            "Alice Smith",
				Email:           "not-an-email",
				Password:        "secret123",
				ConfirmPassword: "secret123",
			},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Email must be a valid email`,
		},
		{
			name:        "email уже занят",
			requestBody: validBody,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, validBody).
					Return(nil, "", auth.ErrEmailInUse)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"kind":"user","code":"email-already-in-use"`,
		},
		{
			name:        "хранилище только для чтения",
			requestBody: validBody,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, validBody).
					Return(nil, "", auth.ErrOperationNotAllowed)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `"kind":"config","code":"operation-not-allowed"`,
		},
		{
			name:        "пароли не совпадают",
			requestBody: validBody,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, validBody).
					Return(nil, "", auth.ErrPasswordMismatch)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `Passwords do not match.`,
		},
		{
			name:        "ошибка хранилища",
			requestBody: validBody,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, validBody).
					Return(nil, "", errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not register user"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				assert.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
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
