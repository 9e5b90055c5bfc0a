package models

import "time"

// Виды движений по балансу.
const (
	TxDebit  = "debit"  // Списание при покупке
	TxCredit = "credit" // Начисление за просмотр рекламы или бонус
)

// Transaction представляет запись журнала движений баланса. Журнал
// только добавляется: баланс пользователя всегда равен сумме начислений
// минус сумма списаний.
type Transaction struct {
	ID        int       // Внутренний идентификатор записи
	UserUID   string    // UID пользователя
	Kind      string    // debit или credit
	Amount    int64     // Положительная величина движения
	Note      string    // Краткое описание (номер заказа, источник начисления)
	CreatedAt time.Time // Время операции
}

// DummyRewardClaim используется для приёма запроса на начисление награды
// за просмотр рекламы. ViewToken — одноразовый токен просмотра, защищающий
// от повторного начисления.
type DummyRewardClaim struct {
	ViewToken string `json:"view_token" validate:"required,uuid"`
}
