package repository

import (
	"context"
	"fmt"

	"github.com/rbnsaiful/topup-rewards/internal/models"
)

// UpsertOffer создаёт или обновляет оффер каталога.
func (s *Storage) UpsertOffer(ctx context.Context, offer models.Offer) error {
	const op = "storage.UpsertOffer"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO offers (id, category, name, price, diamonds, input_type)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (id) DO UPDATE
			  SET category = EXCLUDED.category,
			      name = EXCLUDED.name,
			      price = EXCLUDED.price,
			      diamonds = EXCLUDED.diamonds,
			      input_type = EXCLUDED.input_type`
	if _, err := s.DB.ExecContext(ctx, query,
		offer.ID, offer.Category, offer.Name, offer.Price, offer.Diamonds,
		offer.InputType); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteOffer удаляет оффер. Возвращает false, если оффера не было.
func (s *Storage) DeleteOffer(ctx context.Context, offerID string) (bool, error) {
	const op = "storage.DeleteOffer"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM offers WHERE id = $1`, offerID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}

// GetOffer возвращает оффер по идентификатору.
func (s *Storage) GetOffer(ctx context.Context, offerID string) (*models.Offer, error) {
	const op = "storage.GetOffer"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, category, name, price, diamonds, input_type
			  FROM offers
			  WHERE id = $1`
	o := &models.Offer{}
	if err := s.DB.QueryRowContext(ctx, query, offerID).Scan(&o.ID, &o.Category,
		&o.Name, &o.Price, &o.Diamonds, &o.InputType); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

// ListOffers возвращает все офферы каталога, внутри категории дешёвые первыми.
func (s *Storage) ListOffers(ctx context.Context) ([]*models.Offer, error) {
	const op = "storage.ListOffers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, category, name, price, diamonds, input_type
			  FROM offers
			  ORDER BY category, price`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Offer
	for rows.Next() {
		var o models.Offer
		if err = rows.Scan(&o.ID, &o.Category, &o.Name, &o.Price, &o.Diamonds,
			&o.InputType); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
