// Package sender рассылает широковещательные уведомления по электронной
// почте. Работает как отдельный воркер: читает сообщения из очереди
// рассылки и отправляет письма через SMTP.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	libsmtp "github.com/rbnsaiful/topup-rewards/internal/lib/smtp"
	"github.com/rbnsaiful/topup-rewards/internal/models"
)

// Transport фабрика SMTP-подключений.
type Transport interface {
	Connect() (libsmtp.Client, error)
	GetSMTPUser() string
}

// SubscriberSource возвращает адреса получателей рассылки.
type SubscriberSource interface {
	ListUserEmails(ctx context.Context) ([]string, error)
}

// Service отправляет письма с уведомлениями.
type Service struct {
	transport   Transport
	subscribers SubscriberSource
	log         *slog.Logger
}

// New создаёт новый экземпляр Service.
func New(transport Transport, subscribers SubscriberSource, log *slog.Logger) *Service {
	return &Service{
		transport:   transport,
		subscribers: subscribers,
		log:         log,
	}
}

// SendBroadcast обрабатывает одно сообщение очереди рассылки: письмо
// уходит каждому подписчику отдельно. Сбой на одном адресе не
// прерывает рассылку остальным.
func (s *Service) SendBroadcast(body []byte) error {
	var n models.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	emails, err := s.subscribers.ListUserEmails(context.Background())
	if err != nil {
		s.log.Error("failed to list subscribers", sl.Err(err))
		return err
	}

	subject := n.Title
	bodyText := n.Message

	var failed int
	for _, email := range emails {
		if err := s.sendEmail([]string{email}, subject, bodyText); err != nil {
			s.log.Warn("failed to send notification email",
				slog.String("recipient", email), sl.Err(err))
			failed++
		}
	}

	s.log.Info("broadcast processed",
		slog.String("id", n.ID),
		slog.Int("recipients", len(emails)),
		slog.Int("failed", failed))
	return nil
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return client.Quit()
}
