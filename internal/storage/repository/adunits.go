package repository

import (
	"context"
	"fmt"

	"github.com/rbnsaiful/topup-rewards/internal/models"
)

// UpsertAdUnit создаёт или обновляет рекламный блок.
func (s *Storage) UpsertAdUnit(ctx context.Context, unit models.AdUnit) error {
	const op = "storage.UpsertAdUnit"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO ad_units (id, code, active)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (id) DO UPDATE
			  SET code = EXCLUDED.code,
			      active = EXCLUDED.active`
	if _, err := s.DB.ExecContext(ctx, query, unit.ID, unit.Code, unit.Active); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListAdUnits возвращает рекламные блоки в порядке добавления.
func (s *Storage) ListAdUnits(ctx context.Context) ([]models.AdUnit, error) {
	const op = "storage.ListAdUnits"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, code, active
			  FROM ad_units
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.AdUnit
	for rows.Next() {
		var u models.AdUnit
		if err = rows.Scan(&u.ID, &u.Code, &u.Active); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
