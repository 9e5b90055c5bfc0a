// Package purchase содержит бизнес-логику покупки оффера: условное
// списание баланса, создание заказа и защита от повторной отправки.
package purchase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/rbnsaiful/topup-rewards/internal/feed"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/models"
	"github.com/rbnsaiful/topup-rewards/internal/storage/repository"
)

// Ошибки уровня сервиса. ErrPurchaseFailed скрывает детали сбоя:
// пользователю показывается один общий текст.
var (
	ErrOfferNotFound     = errors.New("offer not found")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrPurchaseInFlight  = errors.New("purchase already in progress")
	ErrPurchaseFailed    = errors.New("purchase failed")
)

const inFlightTTL = 30 * time.Second

// OrderRepository описывает контракт хранилища для покупки.
type OrderRepository interface {
	// GetOffer возвращает оффер по идентификатору.
	GetOffer(ctx context.Context, offerID string) (*models.Offer, error)
	// CreateOrder выполняет списание и создание заказа одной транзакцией.
	CreateOrder(ctx context.Context, order models.Order) (*models.Order, error)
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// ListOrdersByUser возвращает заказы пользователя, новые первыми.
	ListOrdersByUser(ctx context.Context, userUID string) ([]*models.Order, error)
}

// Locker одноразовые блокировки для защиты от повторной отправки.
type Locker interface {
	AcquireOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Publisher публикует события изменений в канал.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// Service реализует протокол покупки.
type Service struct {
	repo OrderRepository
	lock Locker
	pub  Publisher
	log  *slog.Logger
}

// New создаёт новый экземпляр Service.
func New(repo OrderRepository, lock Locker, pub Publisher, log *slog.Logger) *Service {
	return &Service{repo: repo, lock: lock, pub: pub, log: log}
}

// Buy выполняет покупку оффера. Повторное подтверждение, пока первое
// ещё обрабатывается, отклоняется блокировкой SETNX. Списание условное:
// при нехватке средств ничего не записывается. Номер заказа — случайные
// 8 цифр, сохраняется только вместе с успешным списанием.
func (s *Service) Buy(ctx context.Context, userUID string, req models.DummyPurchase) (*models.Order, error) {
	lockKey := "purchase:inflight:" + userUID
	ok, err := s.lock.AcquireOnce(ctx, lockKey, inFlightTTL)
	if err != nil {
		return nil, fmt.Errorf("purchase.Buy: %w", err)
	}
	if !ok {
		return nil, ErrPurchaseInFlight
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), lockKey); err != nil {
			s.log.Warn("failed to release purchase lock", sl.Err(err))
		}
	}()

	offer, err := s.repo.GetOffer(ctx, req.OfferID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfferNotFound
		}
		s.log.Error("failed to load offer", sl.Err(err))
		return nil, ErrPurchaseFailed
	}

	order := models.Order{
		Reference:  newOrderReference(),
		UserUID:    userUID,
		Identifier: req.Identifier,
		Offer:      offer.Snapshot(),
		Price:      offer.Price,
	}
	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientFunds) {
			return nil, ErrInsufficientFunds
		}
		s.log.Error("failed to create order", sl.Err(err))
		return nil, ErrPurchaseFailed
	}

	if user, err := s.repo.GetUser(ctx, userUID); err == nil {
		s.publishProfile(ctx, user)
	}
	s.log.Info("created order",
		slog.String("uid", userUID),
		slog.String("reference", created.Reference))
	return created, nil
}

// ListOrders возвращает заказы пользователя, новые первыми.
func (s *Service) ListOrders(ctx context.Context, userUID string) ([]*models.Order, error) {
	return s.repo.ListOrdersByUser(ctx, userUID)
}

func (s *Service) publishProfile(ctx context.Context, user *models.User) {
	if err := s.pub.Publish(ctx, feed.ChannelUser(user.UID), user); err != nil {
		s.log.Warn("failed to publish profile event", sl.Err(err))
	}
}

// newOrderReference возвращает случайный 8-значный номер заказа.
func newOrderReference() string {
	return fmt.Sprintf("%d", 10000000+rand.Intn(90000000))
}
