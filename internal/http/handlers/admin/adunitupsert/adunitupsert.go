// Package adunitupsert реализует HTTP-обработчик админки для создания
// и изменения рекламных блоков главного экрана.
package adunitupsert

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

// Handler обрабатывает HTTP-запросы на сохранение рекламного блока.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис бизнес-логики каталога
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики сохранения рекламного блока.
type Service interface {
	SaveAdUnit(ctx context.Context, req models.DummyAdUnit) (*models.AdUnit, error)
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
// @Summary Сохранить рекламный блок
// @Description Создает рекламный блок или обновляет существующий по ID. На главном экране показывается первый активный блок. Доступно только администратору.
// @Tags Admin
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.DummyAdUnit true "Данные рекламного блока"
// @Success 200 {object} map[string]any "Сохранённый блок"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/adunits [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.adunitupsert"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyAdUnit
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

	unit, err := h.service.SaveAdUnit(r.Context(), req)
	if err != nil {
		log.Error("failed to save ad unit", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not save ad unit"))
		return
	}

	log.Info("ad unit saved", slog.String("ad_unit_id", unit.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"ad_unit": unit,
	}))
}
