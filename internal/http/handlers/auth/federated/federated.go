// Package federated реализует HTTP-обработчик быстрого входа через
// внешнего провайдера identity. Профиль создаётся при первом входе,
// повторные входы идемпотентны.
package federated

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/rbnsaiful/topup-rewards/internal/http/response"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/models"
	"github.com/rbnsaiful/topup-rewards/internal/services/auth"
)

// Handler обрабатывает HTTP-запросы быстрого входа.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис бизнес-логики аутентификации
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики быстрого входа.
type Service interface {
	Federated(ctx context.Context, req models.DummyFederated) (*models.User, string, error)
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
// @Summary Быстрый вход через внешнего провайдера
// @Description Принимает identity внешнего провайдера, создаёт профиль при первом входе. Возвращает профиль и JWT сессии.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.DummyFederated true "Identity внешнего провайдера"
// @Success 200 {object} map[string]any "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.CodedErrorResponse "Вход отклонён"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Failure 503 {object} response.CodedErrorResponse "Установка настроена неверно"
// @Router /auth/federated [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.federated"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyFederated
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("uid", req.UID))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	user, token, err := h.service.Federated(r.Context(), req)
	if err != nil {
		var authErr *auth.Error
		if errors.As(err, &authErr) {
			log.Error("federated sign-in rejected", sl.Err(err))
			if authErr.Kind == auth.KindConfig {
				w.WriteHeader(http.StatusServiceUnavailable)
			} else {
				w.WriteHeader(http.StatusUnauthorized)
			}
			render.JSON(w, r, response.CodedError(authErr.Kind, authErr.Code, authErr.Message))
			return
		}
		log.Error("federated sign-in failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not sign in"))
		return
	}

	log.Info("federated sign-in success", slog.String("uid", user.UID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token": token,
		"user":  user,
	}))
}
