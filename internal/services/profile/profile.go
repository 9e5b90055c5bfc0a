// Package profile содержит бизнес-логику редактирования профиля
// и применения реферального кода.
package profile

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/rbnsaiful/topup-rewards/internal/feed"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/models"
)

// Ошибки уровня сервиса.
var (
	ErrNoChanges       = errors.New("nothing changed")
	ErrInvalidName     = errors.New("name must be 6-15 letters")
	ErrInvalidPlayerID = errors.New("player id must be 8-12 digits")
	ErrSelfReferral    = errors.New("own code cannot be applied")
	ErrInvalidCode     = errors.New("invalid referral code")
	ErrAlreadyReferred = errors.New("referral code already applied")
)

var (
	nameRe      = regexp.MustCompile(`^[a-zA-Z ]+$`)
	playerUIDRe = regexp.MustCompile(`^\d{8,12}$`)
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// UpdateProfile обновляет редактируемые поля профиля.
	UpdateProfile(ctx context.Context, userUID, name, playerUID, avatarURL string) error
	// SetReferredBy устанавливает пригласившего, только если он ещё не установлен.
	SetReferredBy(ctx context.Context, userUID, referrerUID string) (bool, error)
}

// Publisher публикует события изменений в канал.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// Service реализует операции над профилем.
type Service struct {
	users UserRepository
	pub   Publisher
	log   *slog.Logger
}

// New создаёт новый экземпляр Service.
func New(users UserRepository, pub Publisher, log *slog.Logger) *Service {
	return &Service{users: users, pub: pub, log: log}
}

// Update сохраняет изменения профиля. Сохранение без изменений отклоняется:
// сравнение идёт со снимком текущего состояния. Имя проверяется после
// обрезки пробелов, игровой идентификатор либо пуст, либо 8-12 цифр.
func (s *Service) Update(ctx context.Context, userUID string, req models.DummyProfileUpdate) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	if !nameRe.MatchString(name) || len(name) < 6 || len(name) > 15 {
		return nil, ErrInvalidName
	}
	if req.PlayerUID != "" && !playerUIDRe.MatchString(req.PlayerUID) {
		return nil, ErrInvalidPlayerID
	}

	current, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}

	avatarURL := req.AvatarURL
	if avatarURL == "" {
		avatarURL = current.AvatarURL
	}
	if name == current.Name && req.PlayerUID == current.PlayerUID && avatarURL == current.AvatarURL {
		return nil, ErrNoChanges
	}

	if err = s.users.UpdateProfile(ctx, userUID, name, req.PlayerUID, avatarURL); err != nil {
		return nil, err
	}

	updated, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	s.publishProfile(ctx, updated)
	s.log.Info("updated profile", slog.String("uid", userUID))
	return updated, nil
}

// ApplyReferral применяет реферальный код. Собственный код отклоняется
// до обращения к хранилищу. Код действует один раз: повторное применение
// отклоняется.
func (s *Service) ApplyReferral(ctx context.Context, userUID, code string) error {
	code = strings.TrimSpace(code)
	if code == userUID {
		return ErrSelfReferral
	}

	if _, err := s.users.GetUser(ctx, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidCode
		}
		return err
	}

	ok, err := s.users.SetReferredBy(ctx, userUID, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAlreadyReferred
	}

	updated, err := s.users.GetUser(ctx, userUID)
	if err == nil {
		s.publishProfile(ctx, updated)
	}
	s.log.Info("applied referral code", slog.String("uid", userUID))
	return nil
}

func (s *Service) publishProfile(ctx context.Context, user *models.User) {
	if err := s.pub.Publish(ctx, feed.ChannelUser(user.UID), user); err != nil {
		s.log.Warn("failed to publish profile event", sl.Err(err))
	}
}
