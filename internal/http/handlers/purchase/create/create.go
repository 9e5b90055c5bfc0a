// Package create реализует HTTP-обработчик покупки оффера.
//
// Handler принимает JSON-запрос с идентификатором оффера и введённым
// покупателем идентификатором, вызывает бизнес-логику покупки с условным
// списанием баланса и возвращает созданный заказ. Отказов из-за
// недостатка средств и параллельных покупок различаются по HTTP статусу.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/rbnsaiful/topup-rewards/internal/http/middlewarectx"
	"github.com/rbnsaiful/topup-rewards/internal/http/response"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/models"
	"github.com/rbnsaiful/topup-rewards/internal/services/purchase"
)

// Handler обрабатывает HTTP-запросы на покупку.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис бизнес-логики покупок
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики покупки.
type Service interface {
	Buy(ctx context.Context, userUID string, req models.DummyPurchase) (*models.Order, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Купить оффер
// @Description Списывает цену оффера с баланса и создаёт заказ со статусом Pending. При недостатке средств баланс не изменяется.
// @Tags Purchases
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.DummyPurchase true "Покупаемый оффер и идентификатор получателя"
// @Success 200 {object} map[string]any "Созданный заказ"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.ErrorResponse "Недостаточно средств"
// @Failure 404 {object} response.ErrorResponse "Оффер не найден"
// @Failure 409 {object} response.ErrorResponse "Покупка уже выполняется"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при покупке"
// @Router /purchases [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.purchase.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPurchase
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	order, err := h.service.Buy(r.Context(), userUID, req)
	if err != nil {
		switch {
		case errors.Is(err, purchase.ErrInsufficientFunds):
			log.Error("insufficient balance", slog.String("offer_id", req.OfferID))
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.Error("insufficient balance"))
		case errors.Is(err, purchase.ErrOfferNotFound):
			log.Error("offer not found", slog.String("offer_id", req.OfferID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("offer not found"))
		case errors.Is(err, purchase.ErrPurchaseInFlight):
			log.Error("purchase already in progress")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("purchase already in progress"))
		default:
			log.Error("failed to buy offer", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not complete purchase"))
		}
		return
	}

	log.Info("order created",
		slog.String("uid", userUID),
		slog.String("reference", order.Reference))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"order": order,
	}))
}
