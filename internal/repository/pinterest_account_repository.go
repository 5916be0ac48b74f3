package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/anuragdev21/socialbridge/internal/models"
)

type PinterestAccountRepository interface {
	Create(ctx context.Context, tx *sql.Tx, a *models.PinterestAccount) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.PinterestAccount, error)
	GetByUserAccount(ctx context.Context, userID int64, accountID string) (*models.PinterestAccount, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.PinterestAccount, error)
	ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.PinterestAccount, error)
	UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error
	Remove(ctx context.Context, id int64) error
}

type pinterestAccountRepository struct {
	db *sql.DB
}

func NewPinterestAccountRepository(db *sql.DB) PinterestAccountRepository {
	return &pinterestAccountRepository{db: db}
}

const pinterestAccountColumns = `
	id, user_id, user_account_id, account_name, account_username,
	access_token, refresh_token, token_expires_at, created_at, updated_at`

func (r *pinterestAccountRepository) Create(ctx context.Context, tx *sql.Tx, a *models.PinterestAccount) (int64, error) {
	var err error
	var id int64

	var insertQuery = `
		INSERT INTO pinterest_accounts(
			user_id, user_account_id, account_name, account_username,
			access_token, refresh_token, token_expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	args := []interface{}{a.UserID, a.UserAccountID, a.AccountName, a.Username,
		a.AccessToken, a.RefreshToken, a.TokenExpiresAt}

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

func (r *pinterestAccountRepository) scanRow(row *sql.Row) (*models.PinterestAccount, error) {
	var a models.PinterestAccount
	err := row.Scan(&a.ID, &a.UserID, &a.UserAccountID, &a.AccountName, &a.Username,
		&a.AccessToken, &a.RefreshToken, &a.TokenExpiresAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &a, nil
}

func (r *pinterestAccountRepository) GetByID(ctx context.Context, id int64) (*models.PinterestAccount, error) {
	query := `SELECT ` + pinterestAccountColumns + ` FROM pinterest_accounts WHERE id = $1`
	return r.scanRow(r.db.QueryRowContext(ctx, query, id))
}

func (r *pinterestAccountRepository) GetByUserAccount(ctx context.Context, userID int64, accountID string) (*models.PinterestAccount, error) {
	query := `SELECT ` + pinterestAccountColumns + `
		FROM pinterest_accounts WHERE user_id = $1 AND user_account_id = $2`
	return r.scanRow(r.db.QueryRowContext(ctx, query, userID, accountID))
}

func (r *pinterestAccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.PinterestAccount, error) {
	query := `SELECT ` + pinterestAccountColumns + ` FROM pinterest_accounts WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.PinterestAccount
	for rows.Next() {
		var a models.PinterestAccount
		err := rows.Scan(&a.ID, &a.UserID, &a.UserAccountID, &a.AccountName, &a.Username,
			&a.AccessToken, &a.RefreshToken, &a.TokenExpiresAt, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}

func (r *pinterestAccountRepository) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.PinterestAccount, error) {
	query := `SELECT id, user_id, access_token, refresh_token, token_expires_at
		FROM pinterest_accounts
		WHERE refresh_token <> ''
		AND (token_expires_at BETWEEN $1 AND $2 OR token_expires_at < $1)`
	rows, err := r.db.QueryContext(ctx, query, initialTime, finalTime)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.PinterestAccount
	for rows.Next() {
		var a models.PinterestAccount
		err := rows.Scan(&a.ID, &a.UserID, &a.AccessToken, &a.RefreshToken, &a.TokenExpiresAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}

func (r *pinterestAccountRepository) UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	query := `
		UPDATE pinterest_accounts
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

func (r *pinterestAccountRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM pinterest_accounts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
