package create

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
	"github.com/rbnsaiful/topup-rewards/internal/services/purchase"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Buy(ctx context.Context, userUID string, req models.DummyPurchase) (*models.Order, error) {
	args := m.Called(ctx, userUID, req)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	validBody := models.DummyPurchase{
		OfferID:    "offer-1",
		Identifier: "12345678",
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешная покупка",
			requestBody: validBody,
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("Buy", mock.Anything, "uid-1", validBody).
					Return(&models.Order{ID: 1, Reference: "12345678", Status: models.OrderPending}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"reference":"12345678"`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:           "ошибка валидации",
			requestBody:    models.DummyPurchase{},
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field OfferID is a required field, field Identifier is a required field`,
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
			name:        "недостаточно средств",
			requestBody: validBody,
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("Buy", mock.Anything, "uid-1", validBody).
					Return(nil, purchase.ErrInsufficientFunds)
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedBody:   `{"status":"Error","error":"insufficient balance"}`,
		},
		{
			name:        "оффер не найден",
			requestBody: validBody,
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("Buy", mock.Anything, "uid-1", validBody).
					Return(nil, purchase.ErrOfferNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"offer not found"}`,
		},
		{
			name:        "параллельная покупка",
			requestBody: validBody,
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("Buy", mock.Anything, "uid-1", validBody).
					Return(nil, purchase.ErrPurchaseInFlight)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"purchase already in progress"}`,
		},
		{
			name:        "ошибка сервиса",
			requestBody: validBody,
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("Buy", mock.Anything, "uid-1", validBody).
					Return(nil, purchase.ErrPurchaseFailed)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not complete purchase"}`,
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

			req := httptest.NewRequest(http.MethodPost, "/purchases", bytes.NewReader(body))
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
