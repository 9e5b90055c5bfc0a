package claim

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

	"github.com/rbnsaiful/topup-rewards/internal/http/middlewarectx"
	"github.com/rbnsaiful/topup-rewards/internal/models"
	"github.com/rbnsaiful/topup-rewards/internal/services/reward"
)

// MockService реализует интерфейс claim.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Claim(ctx context.Context, userUID, token string) (int64, error) {
	args := m.Called(ctx, userUID, token)
	return args.Get(0).(int64), args.Error(1)
}

func TestClaimHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	const token = "8d3e1a9e-5f70-4f3a-b6cb-93a0eb401d7a"
	validBody := models.DummyRewardClaim{ViewToken: token}

	tests := []struct {
		name           string
		requestBody    interface{}
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешное начисление",
			requestBody: validBody,
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("Claim", mock.Anything, "uid-1", token).
					Return(int64(135), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"balance":135`,
		},
		{
			name:           "токен не uuid",
			requestBody:    models.DummyRewardClaim{ViewToken: "bad-token"},
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field ViewToken can contain only uuid`,
		},
		{
			name:           "отсутствует авторизация",
			requestBody:    validBody,
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:        "неизвестный просмотр",
			requestBody: validBody,
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("Claim", mock.Anything, "uid-1", token).
					Return(int64(0), reward.ErrViewNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"unknown view token"}`,
		},
		{
			name:        "просмотр не завершён",
			requestBody: validBody,
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("Claim", mock.Anything, "uid-1", token).
					Return(int64(0), reward.ErrViewNotCompleted)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `view is not completed`,
		},
		{
			name:        "повторное предъявление токена",
			requestBody: validBody,
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("Claim", mock.Anything, "uid-1", token).
					Return(int64(0), reward.ErrAlreadyClaimed)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `reward already claimed`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			body, err := json.Marshal(tt.requestBody)
			assert.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/rewards/claim", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
