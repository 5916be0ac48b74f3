package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/anuragdev21/socialbridge/internal/models"
)

type TiktokAccountRepository interface {
	Create(ctx context.Context, tx *sql.Tx, a *models.TiktokAccount) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.TiktokAccount, error)
	GetByOpenID(ctx context.Context, userID int64, openID string) (*models.TiktokAccount, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.TiktokAccount, error)
	ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.TiktokAccount, error)
	UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error
	Remove(ctx context.Context, id int64) error
}

type tiktokAccountRepository struct {
	db *sql.DB
}

func NewTiktokAccountRepository(db *sql.DB) TiktokAccountRepository {
	return &tiktokAccountRepository{db: db}
}

const tiktokAccountColumns = `
	id, user_id, open_id, account_name, access_token, refresh_token,
	token_expires_at, created_at, updated_at`

func (r *tiktokAccountRepository) Create(ctx context.Context, tx *sql.Tx, a *models.TiktokAccount) (int64, error) {
	var err error
	var id int64

	var insertQuery = `
		INSERT INTO tiktok_accounts(
			user_id, open_id, account_name, access_token, refresh_token, token_expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	args := []interface{}{a.UserID, a.OpenID, a.AccountName, a.AccessToken, a.RefreshToken, a.TokenExpiresAt}

	if tx != nil {
		err = tx.QueryRowContext(ctx, insertQuery, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, insertQuery, args...).Scan(&id)
	}

	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *tiktokAccountRepository) scanRow(row *sql.Row) (*models.TiktokAccount, error) {
	var a models.TiktokAccount
	err := row.Scan(&a.ID, &a.UserID, &a.OpenID, &a.AccountName, &a.AccessToken,
		&a.RefreshToken, &a.TokenExpiresAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &a, nil
}

func (r *tiktokAccountRepository) GetByID(ctx context.Context, id int64) (*models.TiktokAccount, error) {
	query := `SELECT ` + tiktokAccountColumns + ` FROM tiktok_accounts WHERE id = $1`
	return r.scanRow(r.db.QueryRowContext(ctx, query, id))
}

func (r *tiktokAccountRepository) GetByOpenID(ctx context.Context, userID int64, openID string) (*models.TiktokAccount, error) {
	query := `SELECT ` + tiktokAccountColumns + ` FROM tiktok_accounts WHERE user_id = $1 AND open_id = $2`
	return r.scanRow(r.db.QueryRowContext(ctx, query, userID, openID))
}

func (r *tiktokAccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.TiktokAccount, error) {
	query := `SELECT ` + tiktokAccountColumns + ` FROM tiktok_accounts WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.TiktokAccount
	for rows.Next() {
		var a models.TiktokAccount
		err := rows.Scan(&a.ID, &a.UserID, &a.OpenID, &a.AccountName, &a.AccessToken,
			&a.RefreshToken, &a.TokenExpiresAt, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}

func (r *tiktokAccountRepository) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.TiktokAccount, error) {
	query := `SELECT id, user_id, open_id, access_token, refresh_token, token_expires_at
		FROM tiktok_accounts
		WHERE (token_expires_at BETWEEN $1 AND $2 OR token_expires_at < $1)`
	rows, err := r.db.QueryContext(ctx, query, initialTime, finalTime)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.TiktokAccount
	for rows.Next() {
		var a models.TiktokAccount
		err := rows.Scan(&a.ID, &a.UserID, &a.OpenID, &a.AccessToken, &a.RefreshToken, &a.TokenExpiresAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}

func (r *tiktokAccountRepository) UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	query := `
		UPDATE tiktok_accounts
		SET
			access_token = COALESCE(NULLIF($2, ''), access_token),
			refresh_token = COALESCE(NULLIF($3, ''), refresh_token),
			token_expires_at = $4,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, accessToken, refreshToken, expiresAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *tiktokAccountRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM tiktok_accounts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
