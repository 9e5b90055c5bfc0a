package models

// Типы уведомлений.
const (
	NotificationBonus = "bonus"
	NotificationOffer = "offer"
	NotificationInfo  = "info"
)

// Notification представляет широковещательное уведомление приложения.
// Признак "прочитано" не хранится: он вычисляется на устройстве сравнением
// Timestamp с локальной отметкой последнего прочтения.
type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix-время в миллисекундах
}

// DummyNotification используется для приёма уведомления из админки.
type DummyNotification struct {
	Title   string `json:"title" validate:"required"`
	Message string `json:"message" validate:"required"`
	Type    string `json:"type" validate:"required,oneof=bonus offer info"`
}
