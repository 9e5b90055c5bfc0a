// Package prefs хранит локальное состояние устройства, живущее вне
// удалённого хранилища: тему, язык, кэш конфигурации (anti-flicker)
// и отметку последнего прочтения уведомлений.
//
// Persistence — явная граница: загрузка при инициализации, сохранение
// при каждом изменении. Формат — JSON-файл на пользователя.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/rbnsaiful/topup-rewards/internal/settings"
)

// Поддерживаемые темы оформления.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Prefs локальные настройки одного пользователя.
type Prefs struct {
	Theme             string                `json:"theme"`
	Language          string                `json:"language"`
	LastReadTimestamp int64                 `json:"lastReadTimestamp"`
	CachedSettings    *settings.AppSettings `json:"cachedSettings,omitempty"`
}

// Defaults возвращает настройки по умолчанию для нового устройства.
func Defaults() Prefs {
	return Prefs{
		Theme:    ThemeLight,
		Language: "en",
	}
}

// Store файловое хранилище локальных настроек, по файлу на пользователя.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore создаёт хранилище в каталоге dir, создавая его при необходимости.
func NewStore(dir string) (*Store, error) {
	const op = "prefs.NewStore"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{dir: dir}, nil
}

// Load читает настройки пользователя; отсутствие файла — не ошибка,
// возвращаются значения по умолчанию.
func (s *Store) Load(uid string) (Prefs, error) {
	const op = "prefs.Load"
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(uid))
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return Defaults(), fmt.Errorf("%s: %w", op, err)
	}

	p := Defaults()
	if err := json.Unmarshal(data, &p); err != nil {
		return Defaults(), fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Save записывает настройки пользователя атомарно, через временный файл.
func (s *Store) Save(uid string, p Prefs) error {
	const op = "prefs.Save"
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tmp := s.path(uid) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Rename(tmp, s.path(uid)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

var unsafeUIDRe = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// path строит путь файла настроек. UID приходит извне, поэтому в имени
// файла допускаются только безопасные символы: остальные заменяются,
// чтобы путь не мог выйти за пределы каталога.
func (s *Store) path(uid string) string {
	return filepath.Join(s.dir, unsafeUIDRe.ReplaceAllString(uid, "_")+".json")
}
