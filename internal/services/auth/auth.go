// Package auth содержит бизнес-логику регистрации, входа и федеративной
// аутентификации. Ошибки классифицируются по виду: ошибки пользователя
// исправимы самим пользователем, ошибки конфигурации указывают на
// неправильно настроенную установку.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/time/rate"

	"github.com/rbnsaiful/topup-rewards/internal/feed"
	"github.com/rbnsaiful/topup-rewards/internal/lib/jwt"
	"github.com/rbnsaiful/topup-rewards/internal/lib/password"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/models"
)

// Виды ошибок аутентификации.
const (
	KindUser   = "user"
	KindConfig = "config"
)

// Error ошибка аутентификации с фиксированным текстом для пользователя.
type Error struct {
	Kind    string
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

// Таблица ошибок. Тексты показываются пользователю как есть.
var (
	ErrInvalidCredentials  = &Error{KindUser, "invalid-credential", "Incorrect email or password."}
	ErrEmailInUse          = &Error{KindUser, "email-already-in-use", "This email is already registered."}
	ErrWeakPassword        = &Error{KindUser, "weak-password", "Password should be at least 6 characters."}
	ErrInvalidName         = &Error{KindUser, "invalid-name", "Name must be 6-15 letters."}
	ErrPasswordMismatch    = &Error{KindUser, "password-mismatch", "Passwords do not match."}
	ErrTooManyRequests     = &Error{KindUser, "too-many-requests", "Too many attempts. Try again later."}
	ErrOperationNotAllowed = &Error{KindConfig, "operation-not-allowed", "Sign-in is disabled for this installation."}
	ErrPermissionDenied    = &Error{KindConfig, "permission-denied", "The data store rejected the request."}
)

var nameRe = regexp.MustCompile(`^[a-zA-Z ]+$`)

// Ограничение попыток входа на email: всплеск из loginBurst попыток,
// дальше по одной в loginRefill.
const (
	loginBurst  = 5
	loginRefill = time.Minute
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// GetUserByEmail возвращает пользователя по email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Publisher публикует события изменений в канал.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// Service отвечает за регистрацию, вход и выдачу JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	pub      Publisher
	log      *slog.Logger

	mu       sync.Mutex
	attempts map[string]*rate.Limiter
}

// New создаёт новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker, pub Publisher, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		pub:      pub,
		log:      log,
		attempts: make(map[string]*rate.Limiter),
	}
}

// Register создаёт нового пользователя с нулевым балансом и ролью user.
// Имя проверяется повторно на уровне сервиса: 6-15 символов, только буквы
// и пробелы. Возвращает профиль и токен сессии.
func (s *Service) Register(ctx context.Context, req models.DummyRegister) (*models.User, string, error) {
	if req.Password != req.ConfirmPassword {
		return nil, "", ErrPasswordMismatch
	}
	if len(req.Password) < 6 {
		return nil, "", ErrWeakPassword
	}
	if !nameRe.MatchString(req.Name) || len(req.Name) < 6 || len(req.Name) > 15 {
		return nil, "", ErrInvalidName
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, "", err
	}

	user := models.User{
		UID:          uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hashed,
		Name:         req.Name,
		Role:         models.RoleUser,
	}
	if _, err = s.users.RegisterUser(ctx, user); err != nil {
		return nil, "", classifyStoreError(err)
	}

	created, err := s.users.GetUser(ctx, user.UID)
	if err != nil {
		return nil, "", err
	}

	token, err := s.jwtMaker.GenerateToken(created.UID, created.Email, created.Role)
	if err != nil {
		return nil, "", err
	}

	s.publishProfile(ctx, created)
	s.log.Info("registered new user", slog.String("uid", created.UID))
	return created, token, nil
}

// Login проверяет учётные данные и возвращает профиль с токеном сессии.
// Попытки входа на один email ограничены по частоте.
func (s *Service) Login(ctx context.Context, req models.DummyLogin) (*models.User, string, error) {
	if !s.loginLimiter(req.Email).Allow() {
		return nil, "", ErrTooManyRequests
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", classifyStoreError(err)
	}
	if user.PasswordHash == "" {
		// Федеративный аккаунт без пароля.
		return nil, "", ErrInvalidCredentials
	}
	if err = password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Federated выполняет вход через внешнего провайдера. Профиль создаётся
// только при первом входе; повторный вход идемпотентен.
func (s *Service) Federated(ctx context.Context, req models.DummyFederated) (*models.User, string, error) {
	user, err := s.users.GetUser(ctx, req.UID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, "", classifyStoreError(err)
		}
		newUser := models.User{
			UID:       req.UID,
			Email:     req.Email,
			Name:      req.Name,
			AvatarURL: req.AvatarURL,
			Role:      models.RoleUser,
		}
		if _, err = s.users.RegisterUser(ctx, newUser); err != nil {
			return nil, "", classifyStoreError(err)
		}
		if user, err = s.users.GetUser(ctx, req.UID); err != nil {
			return nil, "", err
		}
		s.publishProfile(ctx, user)
		s.log.Info("created profile for federated identity", slog.String("uid", user.UID))
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// loginLimiter возвращает лимитер попыток входа для email.
func (s *Service) loginLimiter(email string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	lim, ok := s.attempts[email]
	if !ok {
		lim = rate.NewLimiter(rate.Every(loginRefill), loginBurst)
		s.attempts[email] = lim
	}
	return lim
}

func (s *Service) publishProfile(ctx context.Context, user *models.User) {
	if err := s.pub.Publish(ctx, feed.ChannelUser(user.UID), user); err != nil {
		s.log.Warn("failed to publish profile event", sl.Err(err))
	}
}

// classifyStoreError переводит ошибки хранилища в таблицу ошибок.
func classifyStoreError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrEmailInUse
		case "25006":
			// База в режиме только для чтения: установка не принимает
			// новые учётные записи.
			return ErrOperationNotAllowed
		case "42501":
			return ErrPermissionDenied
		}
	}
	return err
}
