// Package session реализует контроллер сеанса: единое состояние
// пользователя (профиль, конфигурация, уведомления, активный экран),
// обновляемое по событиям канала изменений.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/rbnsaiful/topup-rewards/internal/feed"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/models"
	"github.com/rbnsaiful/topup-rewards/internal/prefs"
	"github.com/rbnsaiful/topup-rewards/internal/services/notification"
	"github.com/rbnsaiful/topup-rewards/internal/settings"
)

// Экраны приложения.
const (
	ScreenHome          = "home"
	ScreenEarn          = "earn"
	ScreenProfile       = "profile"
	ScreenNotifications = "notifications"
	ScreenAdmin         = "admin"
)

// State снимок состояния сеанса.
type State struct {
	User          *models.User         `json:"user"`
	Settings      settings.AppSettings `json:"settings"`
	Notifications []notification.View  `json:"notifications"`
	UnreadCount   int                  `json:"unread_count"`
	Screen        string               `json:"screen"`
}

// UserRepository читает профиль пользователя.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Subscriber подписывается на каналы изменений.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) (<-chan feed.Event, error)
}

// Notifications операции списка уведомлений и отметки прочтения.
type Notifications interface {
	List(ctx context.Context, userUID string) ([]notification.View, int, error)
	MarkRead(ctx context.Context, userUID string) (int64, error)
}

// SettingsProvider читает текущую конфигурацию приложения.
type SettingsProvider interface {
	Get(ctx context.Context) (settings.AppSettings, error)
}

// PrefsStore локальное хранилище настроек пользователя.
type PrefsStore interface {
	Load(uid string) (prefs.Prefs, error)
	Save(uid string, p prefs.Prefs) error
}

// Controller владеет состоянием одного сеанса. Создаётся после
// аутентификации, живёт до Logout или отмены контекста.
type Controller struct {
	uid           string
	users         UserRepository
	sub           Subscriber
	notifications Notifications
	config        SettingsProvider
	prefs         PrefsStore
	signOut       func(ctx context.Context) error
	log           *slog.Logger

	mu      sync.Mutex
	state   State
	updates chan State
	cancel  context.CancelFunc
}

// New создаёт контроллер сеанса для пользователя uid. signOut — необязательное
// удалённое завершение сеанса, вызывается при Logout в последнюю очередь.
func New(uid string, users UserRepository, sub Subscriber, notifications Notifications,
	config SettingsProvider, prefsStore PrefsStore,
	signOut func(ctx context.Context) error, log *slog.Logger) *Controller {
	return &Controller{
		uid:           uid,
		users:         users,
		sub:           sub,
		notifications: notifications,
		config:        config,
		prefs:         prefsStore,
		signOut:       signOut,
		log:           log,
		updates:       make(chan State, 8),
	}
}

// Start загружает начальное состояние и открывает подписки. Кэшированная
// конфигурация из локальных настроек применяется сразу, до ответа
// сервера, чтобы интерфейс не мигал. Подписка на профиль открывается
// только после разрешения личности.
func (c *Controller) Start(ctx context.Context) error {
	const op = "session.Start"
	ctx, c.cancel = context.WithCancel(ctx)

	p, err := c.prefs.Load(c.uid)
	if err != nil {
		c.log.Warn("failed to load prefs", sl.Err(err))
	}

	c.mu.Lock()
	c.state.Screen = ScreenHome
	if p.CachedSettings != nil {
		c.state.Settings = *p.CachedSettings
	} else {
		c.state.Settings = settings.Default()
	}
	c.mu.Unlock()

	user, err := c.users.GetUser(ctx, c.uid)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		// Профиль ещё не создан: синтезируем пустой, ничего не записывая.
		user = &models.User{
			UID:          c.uid,
			Role:         models.RoleUser,
			ReferralCode: c.uid,
		}
	}

	cfg, err := c.config.Get(ctx)
	if err != nil {
		c.log.Warn("failed to load settings", sl.Err(err))
		cfg = c.currentState().Settings
	}

	views, unread, err := c.notifications.List(ctx, c.uid)
	if err != nil {
		c.log.Warn("failed to list notifications", sl.Err(err))
	}

	c.mu.Lock()
	c.state.User = user
	c.state.Settings = cfg
	c.state.Notifications = views
	c.state.UnreadCount = unread
	if user.Role == models.RoleAdmin {
		c.state.Screen = ScreenAdmin
	}
	c.applyRedirectLocked()
	c.mu.Unlock()
	c.persistSettings(cfg)
	c.emit()

	// Личность разрешена: три независимые подписки.
	events, err := c.sub.Subscribe(ctx,
		feed.ChannelConfig,
		feed.ChannelNotifications,
		feed.ChannelUser(c.uid))
	if err != nil {
		return err
	}
	go c.loop(ctx, events)
	return nil
}

// Updates возвращает поток снимков состояния.
func (c *Controller) Updates() <-chan State {
	return c.updates
}

// Current возвращает текущий снимок состояния.
func (c *Controller) Current() State {
	return c.currentState()
}

// SetScreen переключает активный экран с учётом правила перенаправления:
// экран заработка недоступен при выключенной видимости.
func (c *Controller) SetScreen(screen string) {
	c.mu.Lock()
	c.state.Screen = screen
	c.applyRedirectLocked()
	c.mu.Unlock()
	c.emit()
}

// MarkNotificationsRead переносит локальную отметку прочтения на самое
// новое уведомление. Серверные данные не меняются.
func (c *Controller) MarkNotificationsRead(ctx context.Context) error {
	if _, err := c.notifications.MarkRead(ctx, c.uid); err != nil {
		return err
	}
	views, unread, err := c.notifications.List(ctx, c.uid)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.state.Notifications = views
	c.state.UnreadCount = unread
	c.mu.Unlock()
	c.emit()
	return nil
}

// Logout завершает сеанс оптимистично: локальное состояние очищается
// сразу, удалённое завершение выполняется по возможности, его сбой
// только логируется.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	c.state = State{Screen: ScreenHome, Settings: settings.Default()}
	c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	if c.signOut != nil {
		if err := c.signOut(ctx); err != nil {
			c.log.Warn("remote sign-out failed", sl.Err(err))
		}
	}
}

// Stop останавливает подписки без очистки состояния.
func (c *Controller) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Controller) loop(ctx context.Context, events <-chan feed.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.handleEvent(ctx, ev)
		}
	}
}

func (c *Controller) handleEvent(ctx context.Context, ev feed.Event) {
	switch ev.Channel {
	case feed.ChannelConfig:
		// Частичный документ сливается с умолчаниями: известные ключи
		// не теряются.
		var patch settings.Patch
		if err := json.Unmarshal(ev.Payload, &patch); err != nil {
			c.log.Warn("bad config event", sl.Err(err))
			return
		}
		merged := settings.Merge(settings.Default(), patch)
		c.mu.Lock()
		c.state.Settings = merged
		c.applyRedirectLocked()
		c.mu.Unlock()
		c.persistSettings(merged)
	case feed.ChannelNotifications:
		views, unread, err := c.notifications.List(ctx, c.uid)
		if err != nil {
			c.log.Warn("failed to refresh notifications", sl.Err(err))
			return
		}
		c.mu.Lock()
		c.state.Notifications = views
		c.state.UnreadCount = unread
		c.mu.Unlock()
	case feed.ChannelUser(c.uid):
		var user models.User
		if err := json.Unmarshal(ev.Payload, &user); err != nil {
			c.log.Warn("bad profile event", sl.Err(err))
			return
		}
		c.mu.Lock()
		c.state.User = &user
		if user.Role == models.RoleAdmin {
			c.state.Screen = ScreenAdmin
		}
		c.mu.Unlock()
	default:
		return
	}
	c.emit()
}

// applyRedirectLocked правило перенаправления: экран заработка при
// выключенной видимости заменяется домашним. Вызывается под мьютексом.
func (c *Controller) applyRedirectLocked() {
	if c.state.Screen == ScreenEarn && !c.state.Settings.Visibility.Earn {
		c.state.Screen = ScreenHome
	}
}

// persistSettings немедленно сохраняет конфигурацию в локальный кэш,
// чтобы следующий запуск начинался с неё.
func (c *Controller) persistSettings(cfg settings.AppSettings) {
	p, err := c.prefs.Load(c.uid)
	if err != nil {
		c.log.Warn("failed to load prefs", sl.Err(err))
	}
	p.CachedSettings = &cfg
	if err := c.prefs.Save(c.uid, p); err != nil {
		c.log.Warn("failed to persist settings cache", sl.Err(err))
	}
}

func (c *Controller) currentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// emit отправляет снимок без блокировки: медленный получатель пропускает
// промежуточные состояния, но всегда может взять Current.
func (c *Controller) emit() {
	state := c.currentState()
	select {
	case c.updates <- state:
	default:
	}
}
