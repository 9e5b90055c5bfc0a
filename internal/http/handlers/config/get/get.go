// Package get реализует HTTP-обработчик чтения документа удалённой
// конфигурации приложения.
package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/rbnsaiful/topup-rewards/internal/http/response"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/settings"
)

// Handler обрабатывает HTTP-запросы документа конфигурации.
type Handler struct {
	log     *slog.Logger // Логгер для записи операций и ошибок
	service Service      // Сервис бизнес-логики конфигурации
}

// Service описывает интерфейс бизнес-логики чтения конфигурации.
type Service interface {
	Get(ctx context.Context) (settings.AppSettings, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Документ конфигурации приложения
// @Description Возвращает полный документ удалённой конфигурации: видимость разделов, параметры заработка, оформление, режим обслуживания.
// @Tags Settings
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} settings.AppSettings "Документ конфигурации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /settings [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.config.get"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	cfg, err := h.service.Get(r.Context())
	if err != nil {
		log.Error("failed to read settings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read settings"))
		return
	}

	log.Info("settings read")
	render.JSON(w, r, response.StatusOKWithData(cfg))
}
