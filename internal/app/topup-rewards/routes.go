package topuprewards

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/rbnsaiful/topup-rewards/internal/http/handlers/admin/adunitupsert"
	"github.com/rbnsaiful/topup-rewards/internal/http/handlers/admin/notificationcreate"
	"github.com/rbnsaiful/topup-rewards/internal/http/handlers/admin/offerremove"
	"github.com/rbnsaiful/topup-rewards/internal/http/handlers/admin/offerupsert"
	"github.com/rbnsaiful/topup-rewards/internal/http/handlers/admin/orderlist"
	"github.com/rbnsaiful/topup-rewards/internal/http/handlers/admin/orderstatus"
	"github.com/rbnsaiful/topup-rewards/internal/http/handlers/admin/settingsupdate"
	"github.com/rbnsaiful/topup-rewards/internal/http/handlers/auth/federated"
	"github.com/rbnsaiful/topup-rewards/internal/http/handlers/auth/login"
	"github.com/rbnsaiful/topup-rewards/internal/http/handlers/auth/register"
	configget "github.com/rbnsaiful/topup-rewards/internal/http/handlers/config/get"
	"github.com/rbnsaiful/topup-rewards/internal/http/handlers/health"
	"github.com/rbnsaiful/topup-rewards/internal/http/handlers/home"
	notificationlist "github.com/rbnsaiful/topup-rewards/internal/http/handlers/notification/list"
	"github.com/rbnsaiful/topup-rewards/internal/http/handlers/notification/markread"
	"github.com/rbnsaiful/topup-rewards/internal/http/handlers/profile/referral"
	"github.com/rbnsaiful/topup-rewards/internal/http/handlers/profile/update"
	purchasecreate "github.com/rbnsaiful/topup-rewards/internal/http/handlers/purchase/create"
	purchaselist "github.com/rbnsaiful/topup-rewards/internal/http/handlers/purchase/list"
	"github.com/rbnsaiful/topup-rewards/internal/http/handlers/purchase/transactions"
	rewardclaim "github.com/rbnsaiful/topup-rewards/internal/http/handlers/reward/claim"
	rewardevent "github.com/rbnsaiful/topup-rewards/internal/http/handlers/reward/event"
	rewardstart "github.com/rbnsaiful/topup-rewards/internal/http/handlers/reward/start"
	"github.com/rbnsaiful/topup-rewards/internal/http/handlers/session/watch"
	"github.com/rbnsaiful/topup-rewards/internal/http/middlewarectx"
	"github.com/rbnsaiful/topup-rewards/internal/lib/jwt"
	appconfigservice "github.com/rbnsaiful/topup-rewards/internal/services/appconfig"
	authservice "github.com/rbnsaiful/topup-rewards/internal/services/auth"
	catalogservice "github.com/rbnsaiful/topup-rewards/internal/services/catalog"
	notificationservice "github.com/rbnsaiful/topup-rewards/internal/services/notification"
	profileservice "github.com/rbnsaiful/topup-rewards/internal/services/profile"
	purchaseservice "github.com/rbnsaiful/topup-rewards/internal/services/purchase"
	rewardservice "github.com/rbnsaiful/topup-rewards/internal/services/reward"
	"github.com/rbnsaiful/topup-rewards/internal/storage/repository"
)

// Services зависимости маршрутов приложения.
type Services struct {
	JWTMaker      jwt.Maker
	Storage       *repository.Storage
	AppConfig     *appconfigservice.Service
	Auth          *authservice.Service
	Profile       *profileservice.Service
	Purchase      *purchaseservice.Service
	Reward        *rewardservice.Service
	Catalog       *catalogservice.Service
	Notifications *notificationservice.Service
	Sessions      watch.Factory
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger).ServeHTTP)
		r.Post("/auth/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/federated", federated.New(logger, s.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.JWTMaker, logger))
			r.Use(middlewarectx.BannedMiddleware(logger, s.Storage))
			r.Use(middlewarectx.MaintenanceMiddleware(logger, s.AppConfig))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/home", home.New(logger, s.Catalog).ServeHTTP)
			r.Get("/settings", configget.New(logger, s.AppConfig).ServeHTTP)
			r.Put("/profile", update.New(logger, s.Profile).ServeHTTP)
			r.Post("/profile/referral", referral.New(logger, s.Profile).ServeHTTP)
			r.Post("/purchases", purchasecreate.New(logger, s.Purchase).ServeHTTP)
			r.Get("/orders", purchaselist.New(logger, s.Purchase).ServeHTTP)
			r.Get("/transactions", transactions.New(logger, s.Storage).ServeHTTP)
			r.Post("/rewards/start", rewardstart.New(logger, s.Reward).ServeHTTP)
			r.Post("/rewards/event", rewardevent.New(logger, s.Reward).ServeHTTP)
			r.Post("/rewards/claim", rewardclaim.New(logger, s.Reward).ServeHTTP)
			r.Get("/notifications", notificationlist.New(logger, s.Notifications).ServeHTTP)
			r.Post("/notifications/read", markread.New(logger, s.Notifications).ServeHTTP)
			r.Get("/session/watch", watch.New(logger, s.Sessions).ServeHTTP)

			// Группа администратора
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Post("/admin/offers", offerupsert.New(logger, s.Catalog).ServeHTTP)
				r.Delete("/admin/offers/{id}", offerremove.New(logger, s.Catalog).ServeHTTP)
				r.Post("/admin/adunits", adunitupsert.New(logger, s.Catalog).ServeHTTP)
				r.Post("/admin/notifications", notificationcreate.New(logger, s.Notifications).ServeHTTP)
				r.Patch("/admin/settings", settingsupdate.New(logger, s.AppConfig).ServeHTTP)
				r.Get("/admin/orders", orderlist.New(logger, s.Storage).ServeHTTP)
				r.Put("/admin/orders/{id}/status", orderstatus.New(logger, s.Storage).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
