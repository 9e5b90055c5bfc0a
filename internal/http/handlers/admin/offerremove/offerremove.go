// Package offerremove реализует HTTP-обработчик админки для удаления
// оффера из каталога.
package offerremove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/rbnsaiful/topup-rewards/internal/http/response"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
)

// Handler обрабатывает HTTP-запросы на удаление оффера.
type Handler struct {
	log     *slog.Logger // Логгер для записи операций и ошибок
	service Service      // Сервис бизнес-логики каталога
}

// Service описывает интерфейс бизнес-логики удаления оффера.
type Service interface {
	RemoveOffer(ctx context.Context, offerID string) (bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить оффер
// @Description Удаляет оффер по ID. Снимки оффера в уже созданных заказах сохраняются. Доступно только администратору.
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Param id path string true "ID оффера"
// @Success 200 {object} map[string]any "Результат удаления"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Оффер не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/offers/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.offerremove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	offerID := chi.URLParam(r, "id")
	if offerID == "" {
		log.Error("missing offer id")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid offer id"))
		return
	}

	removed, err := h.service.RemoveOffer(r.Context(), offerID)
	if err != nil {
		log.Error("failed to remove offer", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove offer"))
		return
	}
	if !removed {
		log.Error("offer not found", slog.String("offer_id", offerID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("offer not found"))
		return
	}

	log.Info("offer removed", slog.String("offer_id", offerID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"removed": true,
	}))
}
