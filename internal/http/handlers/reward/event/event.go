// Package event реализует HTTP-обработчик событий плеера просмотра:
// загрузки контента, начала и конца воспроизведения, ошибки и повтора.
package event

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/rbnsaiful/topup-rewards/internal/http/response"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/services/reward"
)

// Request — событие плеера для конкретного просмотра.
type Request struct {
	ViewToken string `json:"view_token" validate:"required,uuid"`
	Event     string `json:"event" validate:"required,oneof=content_ready playback_started playback_ended load_failed retry"`
}

// Handler обрабатывает HTTP-запросы с событиями плеера.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис бизнес-логики просмотров
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики событий просмотра.
type Service interface {
	ApplyEvent(token, event string) (string, error)
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
// @Summary Событие плеера просмотра
// @Description Применяет событие плеера к просмотру и возвращает новое состояние машины состояний.
// @Tags Rewards
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Токен просмотра и событие"
// @Success 200 {object} map[string]any "Новое состояние просмотра"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Просмотр не найден"
// @Failure 409 {object} response.ErrorResponse "Событие недопустимо в текущем состоянии"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /rewards/event [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reward.event"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
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

	state, err := h.service.ApplyEvent(req.ViewToken, req.Event)
	if err != nil {
		switch {
		case errors.Is(err, reward.ErrViewNotFound):
			log.Error("view not found", slog.String("view_token", req.ViewToken))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("unknown view token"))
		case errors.Is(err, reward.ErrBadTransition),
			errors.Is(err, reward.ErrUnknownEvent):
			log.Error("event rejected", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			log.Error("failed to apply event", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not apply event"))
		}
		return
	}

	log.Info("event applied",
		slog.String("event", req.Event),
		slog.String("state", state))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"state": state,
	}))
}
