// Package markread реализует HTTP-обработчик отметки уведомлений
// прочитанными. Отметка локальная: хранится только временная метка
// последнего прочтения пользователя.
package markread

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/rbnsaiful/topup-rewards/internal/http/middlewarectx"
	"github.com/rbnsaiful/topup-rewards/internal/http/response"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
)

// Handler обрабатывает HTTP-запросы отметки прочтения.
type Handler struct {
	log     *slog.Logger // Логгер для записи операций и ошибок
	service Service      // Сервис бизнес-логики уведомлений
}

// Service описывает интерфейс бизнес-логики отметки прочтения.
type Service interface {
	MarkRead(ctx context.Context, userUID string) (int64, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отметить уведомления прочитанными
// @Description Сдвигает локальную отметку прочтения на самое новое уведомление. Возвращает новую отметку.
// @Tags Notifications
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} map[string]any "Новая отметка прочтения"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /notifications/read [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.markread"
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

	watermark, err := h.service.MarkRead(r.Context(), userUID)
	if err != nil {
		log.Error("failed to mark notifications read", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not mark notifications read"))
		return
	}

	log.Info("notifications marked read", slog.Int64("watermark", watermark))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"last_read_timestamp": watermark,
	}))
}
