// Package home реализует HTTP-обработчик главного экрана: вкладки
// каталога, офферы по категориям, активная вкладка и рекламный блок.
package home

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/rbnsaiful/topup-rewards/internal/http/response"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/services/catalog"
)

// Handler обрабатывает HTTP-запросы главного экрана.
type Handler struct {
	log     *slog.Logger // Логгер для записи операций и ошибок
	service Service      // Сервис бизнес-логики каталога
}

// Service описывает интерфейс бизнес-логики главного экрана.
type Service interface {
	Home(ctx context.Context, requestedTab string) (*catalog.HomeView, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Главный экран
// @Description Возвращает видимые вкладки каталога, офферы по категориям, активную вкладку и первый активный рекламный блок. Параметр tab задаёт желаемую вкладку.
// @Tags Catalog
// @Security BearerAuth
// @Produce  json
// @Param tab query string false "Желаемая вкладка каталога"
// @Success 200 {object} catalog.HomeView "Содержимое главного экрана"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /home [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.home"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	view, err := h.service.Home(r.Context(), r.URL.Query().Get("tab"))
	if err != nil {
		log.Error("failed to build home view", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load home screen"))
		return
	}

	log.Info("home view built", slog.String("active_tab", view.ActiveTab))
	render.JSON(w, r, response.StatusOKWithData(view))
}
