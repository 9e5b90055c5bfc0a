// Package claim реализует HTTP-обработчик начисления награды за
// завершённый просмотр рекламы. Начисление идемпотентно: токен просмотра
// одноразовый, повторное предъявление отклоняется.
package claim

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/rbnsaiful/topup-rewards/internal/http/middlewarectx"
	"github.com/rbnsaiful/topup-rewards/internal/http/response"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/models"
	"github.com/rbnsaiful/topup-rewards/internal/services/reward"
)

// Handler обрабатывает HTTP-запросы на начисление награды.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис бизнес-логики просмотров
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики начисления награды.
type Service interface {
	Claim(ctx context.Context, userUID, token string) (int64, error)
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
// @Summary Начислить награду за просмотр
// @Description Начисляет награду за завершённый просмотр. Токен одноразовый, повторное предъявление возвращает 409. Возвращает новый баланс.
// @Tags Rewards
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.DummyRewardClaim true "Токен просмотра"
// @Success 200 {object} map[string]any "Новый баланс"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Просмотр не найден"
// @Failure 409 {object} response.ErrorResponse "Просмотр не завершён или награда уже начислена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при начислении"
// @Router /rewards/claim [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reward.claim"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyRewardClaim
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

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	balance, err := h.service.Claim(r.Context(), userUID, req.ViewToken)
	if err != nil {
		switch {
		case errors.Is(err, reward.ErrViewNotFound):
			log.Error("view not found", slog.String("view_token", req.ViewToken))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("unknown view token"))
		case errors.Is(err, reward.ErrViewNotCompleted),
			errors.Is(err, reward.ErrAlreadyClaimed):
			log.Error("claim rejected", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			log.Error("failed to claim reward", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not claim reward"))
		}
		return
	}

	log.Info("reward claimed",
		slog.String("uid", userUID),
		slog.Int64("balance", balance))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"balance": balance,
	}))
}
