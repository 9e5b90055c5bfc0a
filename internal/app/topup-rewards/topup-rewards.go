// Package topuprewards собирает основное HTTP-приложение: хранилище,
// кэш, канал событий, брокер рассылки, бизнес-сервисы и маршруты.
package topuprewards

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/streadway/amqp"

	"github.com/rbnsaiful/topup-rewards/internal/cache"
	"github.com/rbnsaiful/topup-rewards/internal/config"
	"github.com/rbnsaiful/topup-rewards/internal/feed"
	"github.com/rbnsaiful/topup-rewards/internal/http/handlers/session/watch"
	"github.com/rbnsaiful/topup-rewards/internal/lib/jwt"
	"github.com/rbnsaiful/topup-rewards/internal/lib/rabbitmq"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/migrations"
	"github.com/rbnsaiful/topup-rewards/internal/prefs"
	appconfigservice "github.com/rbnsaiful/topup-rewards/internal/services/appconfig"
	authservice "github.com/rbnsaiful/topup-rewards/internal/services/auth"
	catalogservice "github.com/rbnsaiful/topup-rewards/internal/services/catalog"
	notificationservice "github.com/rbnsaiful/topup-rewards/internal/services/notification"
	profileservice "github.com/rbnsaiful/topup-rewards/internal/services/profile"
	purchaseservice "github.com/rbnsaiful/topup-rewards/internal/services/purchase"
	rewardservice "github.com/rbnsaiful/topup-rewards/internal/services/reward"
	"github.com/rbnsaiful/topup-rewards/internal/session"
	"github.com/rbnsaiful/topup-rewards/internal/storage/repository"

	"github.com/go-chi/chi"
)

// App основной HTTP-сервер приложения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// brokerPublisher адаптер канала RabbitMQ под контракт сервиса уведомлений.
type brokerPublisher struct {
	ch *amqp.Channel
}

func (b *brokerPublisher) Publish(exchange, routingKey string, message any) error {
	return rabbitmq.PublishMessage(b.ch, exchange, routingKey, message)
}

// New собирает приложение: подключения, сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}
	pub := feed.New(cacheRedis.Db)

	prefsStore, err := prefs.NewStore(cfg.PrefsDir)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	// Брокер рассылки необязателен: без него письма не уходят,
	// остальные уведомления работают.
	var (
		conn   *amqp.Connection
		ch     *amqp.Channel
		broker notificationservice.BrokerPublisher
	)
	if cfg.AmqpURI != "" {
		conn, err = rabbitmq.Connect(cfg.AmqpURI, cfg.ConnectRetries, cfg.ConnectDelay)
		if err != nil {
			logger.Warn("rabbitmq unavailable, email broadcast disabled", sl.Err(err))
		} else {
			ch, err = rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
			if err != nil {
				conn.Close()
				return nil, err
			}
			broker = &brokerPublisher{ch: ch}
		}
	}

	appConfigService := appconfigservice.New(db, cacheRedis, pub, logger)
	authService := authservice.New(db, jwtMaker, pub, logger)
	profileService := profileservice.New(db, pub, logger)
	purchaseService := purchaseservice.New(db, cacheRedis, pub, logger)
	rewardService := rewardservice.New(db, db, cacheRedis, pub, logger, cfg.RewardDuration)
	catalogService := catalogservice.New(db, appConfigService, logger)
	notificationService := notificationservice.New(db, prefsStore, pub, broker, logger)

	sessionFactory := watch.Factory(func(uid string) watch.Controller {
		return session.New(uid, db, pub, notificationService,
			appConfigService, prefsStore, nil, logger)
	})

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		JWTMaker:      jwtMaker,
		Storage:       db,
		AppConfig:     appConfigService,
		Auth:          authService,
		Profile:       profileService,
		Purchase:      purchaseService,
		Reward:        rewardService,
		Catalog:       catalogService,
		Notifications: notificationService,
		Sessions:      sessionFactory,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.ch != nil {
			if closeErr := a.ch.Close(); closeErr != nil {
				a.logger.Error("failed to close channel", sl.Err(closeErr))
			}
		}
		if a.conn != nil {
			if closeErr := a.conn.Close(); closeErr != nil {
				a.logger.Error("failed to close connection", sl.Err(closeErr))
			}
		}
		a.db.DB.Close()
		return err
	}
}
