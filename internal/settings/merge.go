package settings

// Patch частичный удалённый документ конфигурации. Nil-поле означает
// "ключ отсутствует в документе": при слиянии сохраняется прежнее значение.
type Patch struct {
	AppName           *string            `json:"appName"`
	LogoURL           *string            `json:"logoUrl"`
	MaintenanceMode   *bool              `json:"maintenanceMode"`
	Notice            *string            `json:"notice"`
	Visibility        *VisibilityPatch   `json:"visibility"`
	EarnSettings      *EarnSettingsPatch `json:"earnSettings"`
	DeveloperSettings *DeveloperPatch    `json:"developerSettings"`
}

// VisibilityPatch частичное обновление флагов видимости.
type VisibilityPatch struct {
	Diamonds   *bool `json:"diamonds"`
	LevelUp    *bool `json:"levelUp"`
	Membership *bool `json:"membership"`
	Premium    *bool `json:"premium"`
	Earn       *bool `json:"earn"`
}

// WebAdsPatch частичное обновление настроек веб-рекламы.
type WebAdsPatch struct {
	Enabled      *bool   `json:"enabled"`
	VideoURL     *string `json:"videoUrl"`
	RewardAmount *int64  `json:"rewardAmount"`
	DailyLimit   *int    `json:"dailyLimit"`
}

// AdMobPatch частичное обновление настроек мобильной рекламы.
type AdMobPatch struct {
	Enabled        *bool   `json:"enabled"`
	AppID          *string `json:"appId"`
	RewardedUnitID *string `json:"rewardedUnitId"`
}

// EarnSettingsPatch частичное обновление настроек заработка.
type EarnSettingsPatch struct {
	WebAds *WebAdsPatch `json:"webAds"`
	AdMob  *AdMobPatch  `json:"adMob"`
}

// DeveloperPatch частичное обновление служебных настроек.
type DeveloperPatch struct {
	ShowDebugInfo *bool   `json:"showDebugInfo"`
	SupportEmail  *string `json:"supportEmail"`
}

// Merge накладывает частичный документ на базовую конфигурацию по группам.
// Отсутствующие в документе ключи сохраняют значения base.
func Merge(base AppSettings, p Patch) AppSettings {
	out := base
	if p.AppName != nil {
		out.AppName = *p.AppName
	}
	if p.LogoURL != nil {
		out.LogoURL = *p.LogoURL
	}
	if p.MaintenanceMode != nil {
		out.MaintenanceMode = *p.MaintenanceMode
	}
	if p.Notice != nil {
		out.Notice = *p.Notice
	}
	if p.Visibility != nil {
		out.Visibility = mergeVisibility(base.Visibility, *p.Visibility)
	}
	if p.EarnSettings != nil {
		out.EarnSettings = mergeEarn(base.EarnSettings, *p.EarnSettings)
	}
	if p.DeveloperSettings != nil {
		out.DeveloperSettings = mergeDeveloper(base.DeveloperSettings, *p.DeveloperSettings)
	}
	return out
}

func mergeVisibility(base Visibility, p VisibilityPatch) Visibility {
	out := base
	if p.Diamonds != nil {
		out.Diamonds = *p.Diamonds
	}
	if p.LevelUp != nil {
		out.LevelUp = *p.LevelUp
	}
	if p.Membership != nil {
		out.Membership = *p.Membership
	}
	if p.Premium != nil {
		out.Premium = *p.Premium
	}
	if p.Earn != nil {
		out.Earn = *p.Earn
	}
	return out
}

func mergeEarn(base EarnSettings, p EarnSettingsPatch) EarnSettings {
	out := base
	if p.WebAds != nil {
		if p.WebAds.Enabled != nil {
			out.WebAds.Enabled = *p.WebAds.Enabled
		}
		if p.WebAds.VideoURL != nil {
			out.WebAds.VideoURL = *p.WebAds.VideoURL
		}
		if p.WebAds.RewardAmount != nil {
			out.WebAds.RewardAmount = *p.WebAds.RewardAmount
		}
		if p.WebAds.DailyLimit != nil {
			out.WebAds.DailyLimit = *p.WebAds.DailyLimit
		}
	}
	if p.AdMob != nil {
		if p.AdMob.Enabled != nil {
			out.AdMob.Enabled = *p.AdMob.Enabled
		}
		if p.AdMob.AppID != nil {
			out.AdMob.AppID = *p.AdMob.AppID
		}
		if p.AdMob.RewardedUnitID != nil {
			out.AdMob.RewardedUnitID = *p.AdMob.RewardedUnitID
		}
	}
	return out
}

func mergeDeveloper(base DeveloperSettings, p DeveloperPatch) DeveloperSettings {
	out := base
	if p.ShowDebugInfo != nil {
		out.ShowDebugInfo = *p.ShowDebugInfo
	}
	if p.SupportEmail != nil {
		out.SupportEmail = *p.SupportEmail
	}
	return out
}
