// Package start реализует HTTP-обработчик начала просмотра рекламы.
//
// Handler проверяет, что заработок включён удалённой конфигурацией,
// и выдаёт одноразовый токен просмотра вместе со способом воспроизведения
// ролика и длительностью отсчёта.
package start

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/rbnsaiful/topup-rewards/internal/http/response"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/services/reward"
)

// Handler обрабатывает HTTP-запросы начала просмотра.
type Handler struct {
	log     *slog.Logger // Логгер для записи операций и ошибок
	service Service      // Сервис бизнес-логики просмотров
}

// Service описывает интерфейс бизнес-логики начала просмотра.
type Service interface {
	StartView(ctx context.Context) (*reward.ViewSession, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Начать просмотр рекламы
// @Description Выдаёт одноразовый токен просмотра, способ воспроизведения ролика и длительность отсчёта. Недоступно, если заработок выключен конфигурацией.
// @Tags Rewards
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} map[string]any "Сессия просмотра"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Заработок выключен"
// @Failure 404 {object} response.ErrorResponse "Ролик не настроен"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /rewards/start [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reward.start"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	view, err := h.service.StartView(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, reward.ErrEarningDisabled):
			log.Error("earning is disabled")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("earning is disabled"))
		case errors.Is(err, reward.ErrNoAdSource):
			log.Error("no ad source configured")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("no ad source configured"))
		default:
			log.Error("failed to start view", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not start view"))
		}
		return
	}

	log.Info("view started", slog.String("view_token", view.Token))
	render.JSON(w, r, response.StatusOKWithData(view))
}
