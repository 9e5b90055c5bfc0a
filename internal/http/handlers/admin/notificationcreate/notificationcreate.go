// Package notificationcreate реализует HTTP-обработчик админки для
// широковещательной рассылки уведомления всем пользователям.
package notificationcreate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/rbnsaiful/topup-rewards/internal/http/response"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/models"
)

// Handler обрабатывает HTTP-запросы на рассылку уведомления.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис бизнес-логики уведомлений
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики рассылки уведомлений.
type Service interface {
	Broadcast(ctx context.Context, req models.DummyNotification) (*models.Notification, error)
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
// @Summary Разослать уведомление
// @Description Сохраняет уведомление и рассылает его всем пользователям: в живые сеансы сразу, по почте через очередь. Доступно только администратору.
// @Tags Admin
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.DummyNotification true "Данные уведомления"
// @Success 200 {object} map[string]any "Созданное уведомление"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/notifications [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.notificationcreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyNotification
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("title", req.Title))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	n, err := h.service.Broadcast(r.Context(), req)
	if err != nil {
		log.Error("failed to broadcast notification", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not broadcast notification"))
		return
	}

	log.Info("notification broadcast", slog.String("notification_id", n.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"notification": n,
	}))
}
