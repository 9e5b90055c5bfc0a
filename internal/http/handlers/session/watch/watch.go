// Package watch реализует HTTP-обработчик живого состояния сеанса.
//
// Handler держит открытое SSE-соединение: при подключении отдаёт полный
// снимок состояния сеанса, затем отправляет новый снимок на каждое
// событие каналов конфигурации, уведомлений и профиля пользователя.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/rbnsaiful/topup-rewards/internal/http/middlewarectx"
	"github.com/rbnsaiful/topup-rewards/internal/http/response"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/session"
)

// Controller описывает контракт контроллера сеанса.
type Controller interface {
	Start(ctx context.Context) error
	Updates() <-chan session.State
	Stop()
}

// Factory создаёт контроллер сеанса для пользователя.
type Factory func(uid string) Controller

// Handler обрабатывает SSE-подключения к состоянию сеанса.
type Handler struct {
	log        *slog.Logger // Логгер для записи операций и ошибок
	controller Factory      // Фабрика контроллеров сеанса
}

// New создает новый Handler с переданными логгером и фабрикой контроллеров.
func New(log *slog.Logger, controller Factory) *Handler {
	return &Handler{
		log:        log,
		controller: controller,
	}
}

// ServeHTTP godoc
// @Summary Живое состояние сеанса
// @Description Открывает SSE-поток снимков состояния сеанса: профиль, конфигурация, уведомления, текущий экран. Первый снимок отправляется сразу.
// @Tags Session
// @Security BearerAuth
// @Produce  text/event-stream
// @Success 200 {string} string "Поток событий session-state"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка запуска сеанса"
// @Router /session/watch [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.watch"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("response writer does not support streaming")
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("streaming unsupported"))
		return
	}

	ctrl := h.controller(userUID)
	if err := ctrl.Start(r.Context()); err != nil {
		log.Error("failed to start session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not start session"))
		return
	}
	defer ctrl.Stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	log.Info("session stream opened", slog.String("uid", userUID))

	for {
		select {
		case <-r.Context().Done():
			log.Info("session stream closed", slog.String("uid", userUID))
			return
		case state, open := <-ctrl.Updates():
			if !open {
				log.Info("session stream finished", slog.String("uid", userUID))
				return
			}
			payload, err := json.Marshal(state)
			if err != nil {
				log.Error("failed to marshal session state", sl.Err(err))
				continue
			}
			fmt.Fprintf(w, "event: session-state\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
