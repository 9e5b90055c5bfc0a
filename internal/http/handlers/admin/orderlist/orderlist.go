// Package orderlist реализует HTTP-обработчик админки для просмотра
// всех заказов приложения.
package orderlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/rbnsaiful/topup-rewards/internal/http/response"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/models"
)

// Handler обрабатывает HTTP-запросы списка всех заказов.
type Handler struct {
	log     *slog.Logger // Логгер для записи операций и ошибок
	storage Storage      // Хранилище заказов
}

// Storage описывает контракт хранилища заказов.
type Storage interface {
	ListAllOrders(ctx context.Context) ([]*models.Order, error)
}

// New создает новый Handler с переданными логгером и хранилищем.
func New(log *slog.Logger, storage Storage) *Handler {
	return &Handler{
		log:     log,
		storage: storage,
	}
}

// ServeHTTP godoc
// @Summary Все заказы
// @Description Возвращает заказы всех пользователей, новые первыми. Доступно только администратору.
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} map[string]any "Список заказов"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/orders [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.orderlist"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	orders, err := h.storage.ListAllOrders(r.Context())
	if err != nil {
		log.Error("failed to list orders", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list orders"))
		return
	}

	log.Info("orders listed", slog.Int("count", len(orders)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"orders_count": len(orders),
		"orders":       orders,
	}))
}
