// Package settings описывает конфигурацию приложения, управляемую удалённо:
// закрытую типизированную схему AppSettings, значения по умолчанию и
// глубокое слияние частичных удалённых документов с дефолтами.
//
// Удалённый документ может содержать любое подмножество полей; слияние
// выполняется по группам (visibility, earnSettings с вложенными webAds и
// adMob, developerSettings), чтобы частичное обновление никогда не теряло
// уже известные ключи.
package settings

// Visibility содержит флаги показа категорий каталога и экрана заработка.
type Visibility struct {
	Diamonds   bool `json:"diamonds"`
	LevelUp    bool `json:"levelUp"`
	Membership bool `json:"membership"`
	Premium    bool `json:"premium"`
	Earn       bool `json:"earn"`
}

// WebAds содержит настройки видеорекламы с веб-источником.
type WebAds struct {
	Enabled      bool   `json:"enabled"`
	VideoURL     string `json:"videoUrl"`
	RewardAmount int64  `json:"rewardAmount"`
	DailyLimit   int    `json:"dailyLimit"`
}

// AdMob содержит настройки мобильной рекламной сети.
type AdMob struct {
	Enabled        bool   `json:"enabled"`
	AppID          string `json:"appId"`
	RewardedUnitID string `json:"rewardedUnitId"`
}

// EarnSettings объединяет настройки провайдеров заработка.
type EarnSettings struct {
	WebAds WebAds `json:"webAds"`
	AdMob  AdMob  `json:"adMob"`
}

// DeveloperSettings содержит служебные настройки.
type DeveloperSettings struct {
	ShowDebugInfo bool   `json:"showDebugInfo"`
	SupportEmail  string `json:"supportEmail"`
}

// AppSettings полная конфигурация приложения.
type AppSettings struct {
	AppName           string            `json:"appName"`
	LogoURL           string            `json:"logoUrl"`
	MaintenanceMode   bool              `json:"maintenanceMode"`
	Notice            string            `json:"notice"`
	Visibility        Visibility        `json:"visibility"`
	EarnSettings      EarnSettings      `json:"earnSettings"`
	DeveloperSettings DeveloperSettings `json:"developerSettings"`
}

// Default возвращает конфигурацию по умолчанию. Используется до получения
// удалённого документа и как основа для слияния.
func Default() AppSettings {
	return AppSettings{
		AppName: "Top-Up Rewards",
		LogoURL: "",
		Visibility: Visibility{
			Diamonds:   true,
			LevelUp:    true,
			Membership: true,
			Premium:    true,
			Earn:       true,
		},
		EarnSettings: EarnSettings{
			WebAds: WebAds{
				Enabled:      true,
				RewardAmount: 10,
				DailyLimit:   20,
			},
		},
	}
}
