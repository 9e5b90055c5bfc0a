package models

// Категории офферов каталога.
const (
	CategoryDiamond    = "diamond"
	CategoryLevelUp    = "levelup"
	CategoryMembership = "membership"
	CategoryPremium    = "premium"
)

// Способы ввода идентификатора покупателя при покупке.
const (
	InputUID   = "uid"
	InputEmail = "email"
)

// Offer представляет покупаемую позицию каталога. Diamonds заполняется
// только для алмазных пакетов. InputType определяет, что покупатель
// указывает при покупке: игровой UID или email.
type Offer struct {
	ID        string // Идентификатор оффера
	Category  string // Категория: diamond, levelup, membership, premium
	Name      string // Отображаемое имя (для алмазных пакетов — количество)
	Price     int64  // Цена во внутренней валюте, неотрицательная
	Diamonds  int    // Количество алмазов (0, если не применимо)
	InputType string // uid или email
}

// OfferSnapshot фиксирует оффер на момент покупки внутри заказа.
type OfferSnapshot struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Diamonds int    `json:"diamonds"`
}

// Snapshot возвращает снимок оффера для сохранения в заказе.
func (o Offer) Snapshot() OfferSnapshot {
	return OfferSnapshot{
		ID:       o.ID,
		Name:     o.Name,
		Price:    o.Price,
		Diamonds: o.Diamonds,
	}
}

// DummyOffer используется для приёма оффера из JSON-запроса админки.
type DummyOffer struct {
	ID        string `json:"id" validate:"omitempty"`
	Category  string `json:"category" validate:"required,oneof=diamond levelup membership premium"`
	Name      string `json:"name" validate:"required"`
	Price     int64  `json:"price" validate:"required,gt=0"`
	Diamonds  int    `json:"diamonds" validate:"omitempty,gte=0"`
	InputType string `json:"input_type" validate:"required,oneof=uid email"`
}
