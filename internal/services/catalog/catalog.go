// Package catalog содержит бизнес-логику главного экрана: офферы
// по категориям, видимые вкладки, активный рекламный блок, а также
// админские операции над каталогом.
package catalog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rbnsaiful/topup-rewards/internal/models"
	"github.com/rbnsaiful/topup-rewards/internal/settings"
)

// Фиксированный порядок вкладок каталога.
var tabOrder = []string{
	models.CategoryDiamond,
	models.CategoryLevelUp,
	models.CategoryMembership,
	models.CategoryPremium,
}

// Repository описывает контракт хранилища каталога.
type Repository interface {
	// ListOffers возвращает все офферы каталога.
	ListOffers(ctx context.Context) ([]*models.Offer, error)
	// UpsertOffer создаёт или обновляет оффер.
	UpsertOffer(ctx context.Context, offer models.Offer) error
	// DeleteOffer удаляет оффер.
	DeleteOffer(ctx context.Context, offerID string) (bool, error)
	// ListAdUnits возвращает рекламные блоки в порядке добавления.
	ListAdUnits(ctx context.Context) ([]models.AdUnit, error)
	// UpsertAdUnit создаёт или обновляет рекламный блок.
	UpsertAdUnit(ctx context.Context, unit models.AdUnit) error
}

// SettingsProvider читает текущую конфигурацию приложения.
type SettingsProvider interface {
	Get(ctx context.Context) (settings.AppSettings, error)
}

// HomeView данные главного экрана.
type HomeView struct {
	AppName   string                     `json:"app_name"`
	LogoURL   string                     `json:"logo_url"`
	Notice    string                     `json:"notice"`
	Tabs      []string                   `json:"tabs"`
	ActiveTab string                     `json:"active_tab"`
	Offers    map[string][]*models.Offer `json:"offers"`
	AdUnit    *models.AdUnit             `json:"ad_unit,omitempty"`
}

// Service реализует операции каталога.
type Service struct {
	repo Repository
	cfg  SettingsProvider
	log  *slog.Logger
}

// New создаёт новый экземпляр Service.
func New(repo Repository, cfg SettingsProvider, log *slog.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log}
}

// Home собирает главный экран: офферы по категориям, видимые вкладки
// и первый активный рекламный блок. Активная вкладка корректируется
// к первой видимой; при отсутствии видимых вкладок остаётся пустой.
func (s *Service) Home(ctx context.Context, requestedTab string) (*HomeView, error) {
	cfg, err := s.cfg.Get(ctx)
	if err != nil {
		return nil, err
	}

	offers, err := s.repo.ListOffers(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]*models.Offer, len(tabOrder))
	for _, o := range offers {
		byCategory[o.Category] = append(byCategory[o.Category], o)
	}

	tabs := VisibleTabs(cfg)
	view := &HomeView{
		AppName:   cfg.AppName,
		LogoURL:   cfg.LogoURL,
		Notice:    cfg.Notice,
		Tabs:      tabs,
		ActiveTab: ResolveActiveTab(tabs, requestedTab),
		Offers:    byCategory,
	}

	units, err := s.repo.ListAdUnits(ctx)
	if err != nil {
		return nil, err
	}
	view.AdUnit = models.FirstActiveAd(units)
	return view, nil
}

// VisibleTabs возвращает видимые вкладки в фиксированном порядке.
func VisibleTabs(cfg settings.AppSettings) []string {
	visible := map[string]bool{
		models.CategoryDiamond:    cfg.Visibility.Diamonds,
		models.CategoryLevelUp:    cfg.Visibility.LevelUp,
		models.CategoryMembership: cfg.Visibility.Membership,
		models.CategoryPremium:    cfg.Visibility.Premium,
	}
	var tabs []string
	for _, tab := range tabOrder {
		if visible[tab] {
			tabs = append(tabs, tab)
		}
	}
	return tabs
}

// ResolveActiveTab возвращает запрошенную вкладку, если она видима,
// иначе первую видимую. Без видимых вкладок возвращается пустая строка.
func ResolveActiveTab(tabs []string, requested string) string {
	for _, tab := range tabs {
		if tab == requested {
			return requested
		}
	}
	if len(tabs) > 0 {
		return tabs[0]
	}
	return ""
}

// SaveOffer создаёт или обновляет оффер из админки.
func (s *Service) SaveOffer(ctx context.Context, req models.DummyOffer) (*models.Offer, error) {
	offer := models.Offer{
		ID:        req.ID,
		Category:  req.Category,
		Name:      req.Name,
		Price:     req.Price,
		Diamonds:  req.Diamonds,
		InputType: req.InputType,
	}
	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}
	if err := s.repo.UpsertOffer(ctx, offer); err != nil {
		return nil, err
	}
	s.log.Info("saved offer", slog.String("id", offer.ID))
	return &offer, nil
}

// RemoveOffer удаляет оффер из админки.
func (s *Service) RemoveOffer(ctx context.Context, offerID string) (bool, error) {
	ok, err := s.repo.DeleteOffer(ctx, offerID)
	if err != nil {
		return false, err
	}
	if ok {
		s.log.Info("removed offer", slog.String("id", offerID))
	}
	return ok, nil
}

// SaveAdUnit создаёт или обновляет рекламный блок из админки.
func (s *Service) SaveAdUnit(ctx context.Context, req models.DummyAdUnit) (*models.AdUnit, error) {
	unit := models.AdUnit{
		ID:     req.ID,
		Code:   req.Code,
		Active: req.Active,
	}
	if unit.ID == "" {
		unit.ID = uuid.New().String()
	}
	if err := s.repo.UpsertAdUnit(ctx, unit); err != nil {
		return nil, err
	}
	s.log.Info("saved ad unit", slog.String("id", unit.ID))
	return &unit, nil
}
