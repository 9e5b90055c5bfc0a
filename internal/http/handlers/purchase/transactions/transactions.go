// Package transactions реализует HTTP-обработчик журнала движений
// баланса пользователя.
package transactions

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/rbnsaiful/topup-rewards/internal/http/middlewarectx"
	"github.com/rbnsaiful/topup-rewards/internal/http/response"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/models"
)

// Handler обрабатывает HTTP-запросы журнала движений баланса.
type Handler struct {
	log     *slog.Logger // Логгер для записи операций и ошибок
	storage Storage      // Хранилище журнала транзакций
}

// Storage описывает контракт хранилища журнала транзакций.
type Storage interface {
	ListTransactionsByUser(ctx context.Context, userUID string) ([]*models.Transaction, error)
}

// New создает новый Handler с переданными логгером и хранилищем.
func New(log *slog.Logger, storage Storage) *Handler {
	return &Handler{
		log:     log,
		storage: storage,
	}
}

// ServeHTTP godoc
// @Summary Журнал движений баланса
// @Description Возвращает начисления и списания текущего пользователя, новые первыми.
// @Tags Purchases
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} map[string]any "Список транзакций"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /transactions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.purchase.transactions"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	txs, err := h.storage.ListTransactionsByUser(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list transactions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list transactions"))
		return
	}

	log.Info("transactions listed", slog.Int("count", len(txs)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"transactions_count": len(txs),
		"transactions":       txs,
	}))
}
