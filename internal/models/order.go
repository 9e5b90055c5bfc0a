package models

import "time"

// Статусы заказа. Начальный статус всегда Pending; дальнейшие переходы
// выполняет только администратор.
const (
	OrderPending   = "Pending"
	OrderCompleted = "Completed"
	OrderRejected  = "Rejected"
)

// Order представляет запись о покупке. Создаётся только после успешного
// списания баланса; Reference — случайный 8-значный номер для покупателя.
type Order struct {
	ID         int           // Внутренний идентификатор записи
	Reference  string        // 8-значный номер заказа
	UserUID    string        // UID покупателя
	Identifier string        // Введённый покупателем идентификатор (игровой UID или email)
	Offer      OfferSnapshot // Снимок оффера на момент покупки
	Price      int64         // Цена на момент покупки
	Status     string        // Pending, Completed или Rejected
	CreatedAt  time.Time     // Время создания заказа
}

// DummyPurchase используется для приёма запроса на покупку.
type DummyPurchase struct {
	OfferID    string `json:"offer_id" validate:"required"`
	Identifier string `json:"identifier" validate:"required"`
}

// DummyOrderStatus используется для смены статуса заказа администратором.
type DummyOrderStatus struct {
	Status string `json:"status" validate:"required,oneof=Completed Rejected"`
}
