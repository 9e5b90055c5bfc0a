package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rbnsaiful/topup-rewards/internal/settings"
)

// GetSettings возвращает документ конфигурации приложения.
// Если документ ещё не записан, возвращаются значения по умолчанию.
func (s *Storage) GetSettings(ctx context.Context) (settings.AppSettings, error) {
	const op = "storage.GetSettings"
	select {
	case <-ctx.Done():
		return settings.Default(), fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var doc []byte
	err := s.DB.QueryRowContext(ctx,
		`SELECT document FROM app_settings WHERE id = 1`).Scan(&doc)
	if err == sql.ErrNoRows {
		return settings.Default(), nil
	}
	if err != nil {
		return settings.Default(), fmt.Errorf("%s: %w", op, err)
	}

	result := settings.Default()
	if err = json.Unmarshal(doc, &result); err != nil {
		return settings.Default(), fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SaveSettings перезаписывает документ конфигурации целиком.
// Слияние частичных изменений выполняется на уровне сервиса.
func (s *Storage) SaveSettings(ctx context.Context, doc settings.AppSettings) error {
	const op = "storage.SaveSettings"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO app_settings (id, document)
			  VALUES (1, $1)
			  ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document`
	if _, err = s.DB.ExecContext(ctx, query, data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
