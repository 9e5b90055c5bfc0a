package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rbnsaiful/topup-rewards/internal/models"
)

// RegisterUser сохраняет нового пользователя и возвращает его UID.
// UID задаётся вызывающей стороной: для обычной регистрации генерируется
// сервисом, для федеративного входа приходит от провайдера.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (uid, email, password_hash, name, avatar_url, role, balance)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.UID, user.Email, user.PasswordHash, user.Name, user.AvatarURL,
		user.Role, user.Balance).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, password_hash, name, avatar_url, balance, player_uid,
			      role, is_banned, referred_by, total_ads_watched, total_earned, created_at
			  FROM users
			  WHERE uid = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, userUID), op)
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, password_hash, name, avatar_url, balance, player_uid,
			      role, is_banned, referred_by, total_ads_watched, total_earned, created_at
			  FROM users
			  WHERE email = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, email), op)
}

func (s *Storage) scanUser(row *sql.Row, op string) (*models.User, error) {
	u := &models.User{}
	var referredBy sql.NullString
	if err := row.Scan(&u.UID, &u.Email, &u.PasswordHash, &u.Name, &u.AvatarURL,
		&u.Balance, &u.PlayerUID, &u.Role, &u.IsBanned, &referredBy,
		&u.TotalAdsWatched, &u.TotalEarned, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if referredBy.Valid {
		u.ReferredBy = &referredBy.String
	}
	u.ReferralCode = u.UID
	return u, nil
}

// UpdateProfile обновляет редактируемые поля профиля.
func (s *Storage) UpdateProfile(ctx context.Context, userUID, name, playerUID, avatarURL string) error {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET name = $1, player_uid = $2, avatar_url = $3
			  WHERE uid = $4`
	res, err := s.DB.ExecContext(ctx, query, name, playerUID, avatarURL, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}

// SetReferredBy устанавливает пригласившего, только если он ещё не установлен.
// Возвращает false, если код уже был применён ранее.
func (s *Storage) SetReferredBy(ctx context.Context, userUID, referrerUID string) (bool, error) {
	const op = "storage.SetReferredBy"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET referred_by = $1
			  WHERE uid = $2 AND referred_by IS NULL`
	res, err := s.DB.ExecContext(ctx, query, referrerUID, userUID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}

// ListUserEmails возвращает адреса всех незаблокированных пользователей
// для почтовой рассылки.
func (s *Storage) ListUserEmails(ctx context.Context) ([]string, error) {
	const op = "storage.ListUserEmails"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT email FROM users WHERE NOT is_banned AND email <> ''`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []string
	for rows.Next() {
		var email string
		if err = rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, email)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreditBalance начисляет средства пользователю и пишет запись в журнал.
// При adView дополнительно увеличиваются счётчики просмотров и заработка.
// Возвращает новый баланс.
func (s *Storage) CreditBalance(ctx context.Context, userUID string, amount int64, note string, adView bool) (int64, error) {
	const op = "storage.CreditBalance"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE users
			  SET balance = balance + $1,
			      total_earned = total_earned + $1,
			      total_ads_watched = total_ads_watched + CASE WHEN $2 THEN 1 ELSE 0 END
			  WHERE uid = $3
			  RETURNING balance`
	var newBalance int64
	if err = tx.QueryRowContext(ctx, query, amount, adView, userUID).Scan(&newBalance); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query = `INSERT INTO transactions (user_uid, kind, amount, note)
			 VALUES ($1, $2, $3, $4)`
	if _, err = tx.ExecContext(ctx, query, userUID, models.TxCredit, amount, note); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newBalance, nil
}
