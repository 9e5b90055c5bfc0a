// Package models содержит доменные структуры приложения: пользователи,
// офферы, заказы, уведомления и рекламные блоки. Структуры используются
// в бизнес-логике и при работе с хранилищем.
package models

import "time"

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет зарегистрированного пользователя приложения.
// Баланс не может быть отрицательным: уменьшается только успешной
// условной транзакцией покупки, увеличивается только явным начислением.
type User struct {
	UID             string    // Уникальный идентификатор пользователя
	Email           string    // Электронная почта
	PasswordHash    string    // bcrypt-хеш пароля, пуст для федеративных аккаунтов
	Name            string    // Отображаемое имя
	AvatarURL       string    // Ссылка или inline-представление аватара
	Balance         int64     // Текущий баланс во внутренней валюте
	PlayerUID       string    // Необязательный игровой идентификатор (8-12 цифр)
	Role            string    // Роль: user или admin
	IsBanned        bool      // Признак блокировки (флаг, не удаление)
	ReferralCode    string    // Собственный реферальный код (равен UID)
	ReferredBy      *string   // UID пригласившего, устанавливается не более одного раза
	TotalAdsWatched int       // Сколько рекламных роликов просмотрено
	TotalEarned     int64     // Сколько всего заработано начислениями
	CreatedAt       time.Time // Дата регистрации
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса
// до их валидации. Имя дополнительно проверяется в сервисе: 6-15 символов,
// только буквы и пробелы.
type DummyRegister struct {
	Name            string `json:"name" validate:"required,min=6,max=15"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,min=6"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// DummyFederated описывает identity, полученную от внешнего провайдера
// быстрого входа. Профиль создаётся только при первом таком входе.
type DummyFederated struct {
	UID       string `json:"uid" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Name      string `json:"name" validate:"omitempty,max=50"`
	AvatarURL string `json:"avatar_url" validate:"omitempty"`
}

// DummyProfileUpdate используется для приёма изменений профиля.
// PlayerUID либо пуст, либо состоит из 8-12 цифр.
type DummyProfileUpdate struct {
	Name      string `json:"name" validate:"required,min=6,max=15"`
	PlayerUID string `json:"player_uid" validate:"omitempty,numeric,min=8,max=12"`
	AvatarURL string `json:"avatar_url" validate:"omitempty"`
}

// DummyReferral используется для приёма реферального кода.
type DummyReferral struct {
	Code string `json:"code" validate:"required"`
}
