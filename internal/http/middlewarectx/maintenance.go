package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/rbnsaiful/topup-rewards/internal/http/response"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/models"
	"github.com/rbnsaiful/topup-rewards/internal/settings"
)

// SettingsProvider читает текущую конфигурацию приложения.
type SettingsProvider interface {
	Get(ctx context.Context) (settings.AppSettings, error)
}

// MaintenanceMiddleware закрывает сервис в режиме обслуживания.
// Администраторы проходят всегда, иначе включённый режим нельзя было бы
// выключить.
func MaintenanceMiddleware(log *slog.Logger, cfg SettingsProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			doc, err := cfg.Get(r.Context())
			if err != nil {
				log.Warn("failed to read settings, letting request through", sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if doc.MaintenanceMode {
				role, _ := r.Context().Value(Role).(string)
				if role != models.RoleAdmin {
					w.WriteHeader(http.StatusServiceUnavailable)
					render.JSON(w, r, response.Error("service is under maintenance"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
