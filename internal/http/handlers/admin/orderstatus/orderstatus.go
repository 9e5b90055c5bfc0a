// Package orderstatus реализует HTTP-обработчик админки для смены
// статуса заказа. Разрешены только переходы из Pending в Completed
// или Rejected; решение окончательное.
package orderstatus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/rbnsaiful/topup-rewards/internal/http/response"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/models"
)

// Handler обрабатывает HTTP-запросы на смену статуса заказа.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	storage  Storage             // Хранилище заказов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Storage описывает контракт хранилища заказов.
type Storage interface {
	UpdateOrderStatus(ctx context.Context, orderID int, status string) (bool, error)
	GetOrder(ctx context.Context, orderID int) (*models.Order, error)
}

// New создает новый Handler с переданными логгером и хранилищем.
func New(log *slog.Logger, storage Storage) *Handler {
	return &Handler{
		log:      log,
		storage:  storage,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Сменить статус заказа
// @Description Переводит заказ из Pending в Completed или Rejected. Уже решённый заказ не изменяется. Доступно только администратору.
// @Tags Admin
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param id path int true "ID заказа"
// @Param request body models.DummyOrderStatus true "Новый статус"
// @Success 200 {object} map[string]any "Обновлённый заказ"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или JSON"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Заказ не найден"
// @Failure 409 {object} response.ErrorResponse "Заказ уже решён"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/orders/{id}/status [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.orderstatus"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	idStr := chi.URLParam(r, "id")
	orderID, err := strconv.Atoi(idStr)
	if err != nil {
		log.Error("invalid order id format", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid order id"))
		return
	}

	var req models.DummyOrderStatus
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	updated, err := h.storage.UpdateOrderStatus(r.Context(), orderID, req.Status)
	if err != nil {
		log.Error("failed to update order status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update order status"))
		return
	}
	if !updated {
		if _, err := h.storage.GetOrder(r.Context(), orderID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				log.Error("order not found", slog.Int("order_id", orderID))
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error("order not found"))
				return
			}
			log.Error("failed to read order", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not read order"))
			return
		}
		log.Error("order already resolved", slog.Int("order_id", orderID))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("order already resolved"))
		return
	}

	order, err := h.storage.GetOrder(r.Context(), orderID)
	if err != nil {
		log.Error("failed to read updated order", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read order"))
		return
	}

	log.Info("order status updated",
		slog.Int("order_id", orderID),
		slog.String("status", req.Status))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"order": order,
	}))
}
