// Package notification содержит бизнес-логику уведомлений: список
// с признаком непрочитанности, локальную отметку прочтения и
// широковещательную рассылку из админки.
package notification

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/rbnsaiful/topup-rewards/internal/feed"
	"github.com/rbnsaiful/topup-rewards/internal/lib/rabbitmq"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/models"
	"github.com/rbnsaiful/topup-rewards/internal/prefs"
)

// Repository описывает контракт хранилища уведомлений.
type Repository interface {
	// CreateNotification сохраняет уведомление.
	CreateNotification(ctx context.Context, n models.Notification) error
	// ListNotifications возвращает все уведомления, новые первыми.
	ListNotifications(ctx context.Context) ([]*models.Notification, error)
}

// PrefsStore локальное хранилище настроек пользователя.
type PrefsStore interface {
	Load(uid string) (prefs.Prefs, error)
	Save(uid string, p prefs.Prefs) error
}

// Publisher публикует события изменений в канал.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// BrokerPublisher отправляет сообщение в очередь рассылки.
type BrokerPublisher interface {
	Publish(exchange, routingKey string, message any) error
}

// View уведомление с вычисленным признаком непрочитанности.
type View struct {
	models.Notification
	Unread bool `json:"unread"`
}

// Service реализует операции над уведомлениями.
type Service struct {
	repo   Repository
	prefs  PrefsStore
	pub    Publisher
	broker BrokerPublisher
	log    *slog.Logger
}

// New создаёт новый экземпляр Service. broker может быть nil,
// тогда рассылка по почте не выполняется.
func New(repo Repository, prefsStore PrefsStore, pub Publisher,
	broker BrokerPublisher, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		prefs:  prefsStore,
		pub:    pub,
		broker: broker,
		log:    log,
	}
}

// List возвращает уведомления пользователя, новые первыми. Признак
// "прочитано" не хранится на сервере: уведомление непрочитано, если его
// время больше локальной отметки последнего прочтения.
func (s *Service) List(ctx context.Context, userUID string) ([]View, int, error) {
	items, err := s.repo.ListNotifications(ctx)
	if err != nil {
		return nil, 0, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})

	p, err := s.prefs.Load(userUID)
	if err != nil {
		s.log.Warn("failed to load prefs", sl.Err(err))
	}

	views := make([]View, 0, len(items))
	unread := 0
	for _, n := range items {
		v := View{Notification: *n, Unread: n.Timestamp > p.LastReadTimestamp}
		if v.Unread {
			unread++
		}
		views = append(views, v)
	}
	return views, unread, nil
}

// MarkRead устанавливает локальную отметку прочтения на время самого
// нового уведомления. Операция чисто локальная, сервер ничего не пишет
// в общие данные.
func (s *Service) MarkRead(ctx context.Context, userUID string) (int64, error) {
	items, err := s.repo.ListNotifications(ctx)
	if err != nil {
		return 0, err
	}
	var newest int64
	for _, n := range items {
		if n.Timestamp > newest {
			newest = n.Timestamp
		}
	}

	p, err := s.prefs.Load(userUID)
	if err != nil {
		s.log.Warn("failed to load prefs", sl.Err(err))
	}
	// Отметка равна максимальной метке загруженных уведомлений:
	// пустой список её не двигает.
	if newest <= p.LastReadTimestamp {
		return p.LastReadTimestamp, nil
	}
	p.LastReadTimestamp = newest
	if err = s.prefs.Save(userUID, p); err != nil {
		return 0, err
	}
	return newest, nil
}

// Broadcast создаёт широковещательное уведомление из админки, публикует
// его в канал изменений и ставит в очередь почтовой рассылки.
func (s *Service) Broadcast(ctx context.Context, req models.DummyNotification) (*models.Notification, error) {
	n := models.Notification{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Message:   req.Message,
		Type:      req.Type,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return nil, err
	}

	if err := s.pub.Publish(ctx, feed.ChannelNotifications, n); err != nil {
		s.log.Warn("failed to publish notification event", sl.Err(err))
	}
	if s.broker != nil {
		if err := s.broker.Publish(rabbitmq.NotificationsExchange,
			rabbitmq.BroadcastRoutingKey, n); err != nil {
			s.log.Warn("failed to enqueue notification broadcast", sl.Err(err))
		}
	}

	s.log.Info("created broadcast notification", slog.String("id", n.ID))
	return &n, nil
}
