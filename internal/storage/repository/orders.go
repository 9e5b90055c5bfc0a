package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rbnsaiful/topup-rewards/internal/models"
)

// CreateOrder выполняет покупку одной транзакцией: условное списание
// баланса, создание заказа и запись в журнал движений. Если средств
// не хватает, возвращается ErrInsufficientFunds и ни одна запись
// не создаётся.
func (s *Storage) CreateOrder(ctx context.Context, order models.Order) (*models.Order, error) {
	const op = "storage.CreateOrder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE users
			  SET balance = balance - $1
			  WHERE uid = $2 AND balance >= $1`
	res, err := tx.ExecContext(ctx, query, order.Price, order.UserUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInsufficientFunds)
	}

	offerJSON, err := json.Marshal(order.Offer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query = `INSERT INTO orders (reference, user_uid, identifier, offer, price, status)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, created_at`
	if err = tx.QueryRowContext(ctx, query,
		order.Reference, order.UserUID, order.Identifier, offerJSON,
		order.Price, models.OrderPending).Scan(&order.ID, &order.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	order.Status = models.OrderPending

	query = `INSERT INTO transactions (user_uid, kind, amount, note)
			 VALUES ($1, $2, $3, $4)`
	if _, err = tx.ExecContext(ctx, query,
		order.UserUID, models.TxDebit, order.Price, "order "+order.Reference); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &order, nil
}

// ListOrdersByUser возвращает заказы пользователя, новые первыми.
func (s *Storage) ListOrdersByUser(ctx context.Context, userUID string) ([]*models.Order, error) {
	const op = "storage.ListOrdersByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, reference, user_uid, identifier, offer, price, status, created_at
			  FROM orders
			  WHERE user_uid = $1
			  ORDER BY created_at DESC`
	return s.queryOrders(ctx, op, query, userUID)
}

// ListAllOrders возвращает все заказы для админки, новые первыми.
func (s *Storage) ListAllOrders(ctx context.Context) ([]*models.Order, error) {
	const op = "storage.ListAllOrders"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, reference, user_uid, identifier, offer, price, status, created_at
			  FROM orders
			  ORDER BY created_at DESC`
	return s.queryOrders(ctx, op, query)
}

func (s *Storage) queryOrders(ctx context.Context, op, query string, args ...any) ([]*models.Order, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Order
	for rows.Next() {
		var o models.Order
		var offerJSON []byte
		if err = rows.Scan(&o.ID, &o.Reference, &o.UserUID, &o.Identifier,
			&offerJSON, &o.Price, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = json.Unmarshal(offerJSON, &o.Offer); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateOrderStatus переводит заказ из Pending в конечный статус.
// Возвращает false, если заказ не найден или уже обработан.
func (s *Storage) UpdateOrderStatus(ctx context.Context, orderID int, status string) (bool, error) {
	const op = "storage.UpdateOrderStatus"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE orders
			  SET status = $1
			  WHERE id = $2 AND status = $3`
	res, err := s.DB.ExecContext(ctx, query, status, orderID, models.OrderPending)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}

// GetOrder возвращает заказ по внутреннему идентификатору.
func (s *Storage) GetOrder(ctx context.Context, orderID int) (*models.Order, error) {
	const op = "storage.GetOrder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, reference, user_uid, identifier, offer, price, status, created_at
			  FROM orders
			  WHERE id = $1`
	var o models.Order
	var offerJSON []byte
	if err := s.DB.QueryRowContext(ctx, query, orderID).Scan(&o.ID, &o.Reference,
		&o.UserUID, &o.Identifier, &offerJSON, &o.Price, &o.Status, &o.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(offerJSON, &o.Offer); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &o, nil
}
