package models

// AdUnit представляет рекламный блок, отображаемый на главном экране.
// Показывается не более одного блока: первый с Active=true.
type AdUnit struct {
	ID     string `json:"id"`
	Code   string `json:"code"` // Непрозрачная разметка/скрипт рекламной сети
	Active bool   `json:"active"`
}

// FirstActiveAd возвращает первый активный рекламный блок или nil.
func FirstActiveAd(units []AdUnit) *AdUnit {
	for i := range units {
		if units[i].Active {
			return &units[i]
		}
	}
	return nil
}

// DummyAdUnit используется для приёма рекламного блока из админки.
type DummyAdUnit struct {
	ID     string `json:"id" validate:"omitempty"`
	Code   string `json:"code" validate:"required"`
	Active bool   `json:"active"`
}
