package repository

import (
	"context"
	"fmt"

	"github.com/rbnsaiful/topup-rewards/internal/models"
)

// ListTransactionsByUser возвращает журнал движений пользователя, новые первыми.
func (s *Storage) ListTransactionsByUser(ctx context.Context, userUID string) ([]*models.Transaction, error) {
	const op = "storage.ListTransactionsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, kind, amount, note, created_at
			  FROM transactions
			  WHERE user_uid = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err = rows.Scan(&t.ID, &t.UserUID, &t.Kind, &t.Amount, &t.Note,
			&t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
