package reward

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rbnsaiful/topup-rewards/internal/feed"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/models"
	"github.com/rbnsaiful/topup-rewards/internal/settings"
)

// Ошибки уровня сервиса.
var (
	ErrEarningDisabled  = errors.New("earning is disabled")
	ErrViewNotFound     = errors.New("unknown view token")
	ErrViewNotCompleted = errors.New("view is not completed")
	ErrAlreadyClaimed   = errors.New("reward already claimed")
)

const (
	claimTTL   = 24 * time.Hour
	sessionTTL = time.Hour
)

// UserRepository описывает контракт хранилища для начисления награды.
type UserRepository interface {
	// CreditBalance начисляет средства и возвращает новый баланс.
	CreditBalance(ctx context.Context, userUID string, amount int64, note string, adView bool) (int64, error)
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// SettingsRepository читает документ конфигурации приложения.
type SettingsRepository interface {
	GetSettings(ctx context.Context) (settings.AppSettings, error)
}

// Locker одноразовые блокировки для идемпотентности начисления.
type Locker interface {
	AcquireOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Publisher публикует события изменений в канал.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// ViewSession выдаётся при старте просмотра: одноразовый токен,
// способ воспроизведения и длительность отсчёта.
type ViewSession struct {
	Token    string        `json:"view_token"`
	Source   AdSource      `json:"source"`
	Duration time.Duration `json:"-"`
	Seconds  int           `json:"duration_seconds"`
}

// Service управляет просмотрами рекламы и начислением наград.
type Service struct {
	users    UserRepository
	settings SettingsRepository
	lock     Locker
	pub      Publisher
	log      *slog.Logger
	duration time.Duration

	mu       sync.Mutex
	sessions map[string]*Player
}

// New создаёт новый экземпляр Service. duration — длительность отсчёта
// одного просмотра.
func New(users UserRepository, settingsRepo SettingsRepository, lock Locker,
	pub Publisher, log *slog.Logger, duration time.Duration) *Service {
	return &Service{
		users:    users,
		settings: settingsRepo,
		lock:     lock,
		pub:      pub,
		log:      log,
		duration: duration,
		sessions: make(map[string]*Player),
	}
}

// StartView начинает просмотр: проверяет, что заработок включён,
// выбирает способ воспроизведения и выдаёт одноразовый токен просмотра.
func (s *Service) StartView(ctx context.Context) (*ViewSession, error) {
	cfg, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.Visibility.Earn || !cfg.EarnSettings.WebAds.Enabled {
		return nil, ErrEarningDisabled
	}

	player := NewPlayer(cfg.EarnSettings.WebAds.VideoURL, s.duration)
	if player.State() == StateError {
		return nil, ErrNoAdSource
	}

	token := uuid.New().String()
	s.mu.Lock()
	s.prune()
	s.sessions[token] = player
	s.mu.Unlock()

	return &ViewSession{
		Token:    token,
		Source:   player.Source(),
		Duration: s.duration,
		Seconds:  int(s.duration / time.Second),
	}, nil
}

// ApplyEvent применяет событие плеера к просмотру и возвращает
// новое состояние.
func (s *Service) ApplyEvent(token, event string) (string, error) {
	player, ok := s.session(token)
	if !ok {
		return "", ErrViewNotFound
	}
	return player.Apply(event)
}

// Claim начисляет награду за завершённый просмотр. Начисление
// идемпотентно: токен просмотра одноразовый, повторное предъявление
// отклоняется. Возвращает новый баланс.
func (s *Service) Claim(ctx context.Context, userUID, token string) (int64, error) {
	player, ok := s.session(token)
	if !ok {
		return 0, ErrViewNotFound
	}
	if player.State() != StateCompleted {
		return 0, ErrViewNotCompleted
	}

	acquired, err := s.lock.AcquireOnce(ctx, "reward:claim:"+token, claimTTL)
	if err != nil {
		return 0, err
	}
	if !acquired {
		return 0, ErrAlreadyClaimed
	}

	cfg, err := s.settings.GetSettings(ctx)
	if err != nil {
		s.releaseClaim(ctx, token)
		return 0, err
	}
	amount := cfg.EarnSettings.WebAds.RewardAmount

	newBalance, err := s.users.CreditBalance(ctx, userUID, amount, "rewarded ad", true)
	if err != nil {
		// Награда не начислена: блокировка снимается, чтобы повтор
		// предъявления не был отклонён как дубликат.
		s.releaseClaim(ctx, token)
		return 0, err
	}

	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()

	if user, err := s.users.GetUser(ctx, userUID); err == nil {
		if err := s.pub.Publish(ctx, feed.ChannelUser(userUID), user); err != nil {
			s.log.Warn("failed to publish profile event", sl.Err(err))
		}
	}

	s.log.Info("credited ad reward",
		slog.String("uid", userUID),
		slog.Int64("amount", amount))
	return newBalance, nil
}

func (s *Service) releaseClaim(ctx context.Context, token string) {
	if err := s.lock.Release(context.WithoutCancel(ctx), "reward:claim:"+token); err != nil {
		s.log.Warn("failed to release claim lock", sl.Err(err))
	}
}

func (s *Service) session(token string) (*Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.sessions[token]
	return player, ok
}

// prune удаляет устаревшие просмотры. Вызывается под мьютексом.
func (s *Service) prune() {
	cutoff := time.Now().Add(-sessionTTL)
	for token, player := range s.sessions {
		if player.createdAt.Before(cutoff) {
			delete(s.sessions, token)
		}
	}
}
