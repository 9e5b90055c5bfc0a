// Package sender собирает воркер почтовой рассылки: читает сообщения
// очереди рассылки и отправляет письма всем пользователям.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/rbnsaiful/topup-rewards/internal/config"
	"github.com/rbnsaiful/topup-rewards/internal/lib/rabbitmq"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/lib/smtp"
	senderservice "github.com/rbnsaiful/topup-rewards/internal/services/sender"
	"github.com/rbnsaiful/topup-rewards/internal/storage/repository"
)

// App воркер почтовой рассылки.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

// New собирает воркер: хранилище, брокер и SMTP транспорт.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	conn, err := rabbitmq.Connect(cfg.AmqpURI, cfg.ConnectRetries, cfg.ConnectDelay)
	if err != nil {
		return nil, err
	}

	queues := rabbitmq.GetNotificationQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.New(transport, db, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run запускает потребителя очереди рассылки и ждёт отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumeMessages(ctx, a.ch, rabbitmq.BroadcastQueue, a.senderService.SendBroadcast)
	if err != nil {
		a.logger.Error("failed to start broadcast consumer", sl.Err(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
