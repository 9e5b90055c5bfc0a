// Package offerupsert реализует HTTP-обработчик админки для создания
// и изменения офферов каталога.
package offerupsert

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

// Handler обрабатывает HTTP-запросы на сохранение оффера.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис бизнес-логики каталога
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики сохранения оффера.
type Service interface {
	SaveOffer(ctx context.Context, req models.DummyOffer) (*models.Offer, error)
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
// @Summary Сохранить оффер
// @Description Создает оффер или обновляет существующий по ID. Доступно только администратору.
// @Tags Admin
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.DummyOffer true "Данные оффера"
// @Success 200 {object} map[string]any "Сохранённый оффер"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/offers [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.offerupsert"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyOffer
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	offer, err := h.service.SaveOffer(r.Context(), req)
	if err != nil {
		log.Error("failed to save offer", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not save offer"))
		return
	}

	log.Info("offer saved", slog.String("offer_id", offer.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"offer": offer,
	}))
}
