package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/lib/pq"
)

type MetaAccountRepository interface {
	Create(ctx context.Context, tx *sql.Tx, a *models.MetaAccount) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.MetaAccount, error)
	GetByUserAccount(ctx context.Context, userID int64, platform, accountID string) (*models.MetaAccount, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.MetaAccount, error)
	ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.MetaAccount, error)
	UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error
	Remove(ctx context.Context, id int64) error
}

type metaAccountRepository struct {
	db *sql.DB
}

func NewMetaAccountRepository(db *sql.DB) MetaAccountRepository {
	return &metaAccountRepository{db: db}
}

const metaAccountColumns = `
	id, user_id, platform, page_id, user_account_id, account_name,
	account_username, page_permissions, ig_business_id, instagram_account,
	access_token, refresh_token, token_expires_at, created_at, updated_at`

func (r *metaAccountRepository) Create(ctx context.Context, tx *sql.Tx, a *models.MetaAccount) (int64, error) {
	var err error
	var id int64

	var insertQuery = `
		INSERT INTO meta_accounts(
			user_id,
			platform,
			page_id,
			user_account_id,
			account_name,
			account_username,
			page_permissions,
			ig_business_id,
			instagram_account,
			access_token,
			refresh_token,
			token_expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	args := []interface{}{
		a.UserID,
		a.Platform,
		a.PageID,
		a.UserAccountID,
		a.AccountName,
		a.Username,
		pq.Array(a.Permissions),
		a.IGBusinessID,
		a.InstagramAccount,
		a.AccessToken,
		a.RefreshToken,
		a.TokenExpiresAt,
	}

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

func (r *metaAccountRepository) scanRow(row *sql.Row) (*models.MetaAccount, error) {
	var a models.MetaAccount
	var ig models.InstagramSubAccount
	err := row.Scan(&a.ID, &a.UserID, &a.Platform, &a.PageID, &a.UserAccountID,
		&a.AccountName, &a.Username, pq.Array(&a.Permissions), &a.IGBusinessID,
		&ig, &a.AccessToken, &a.RefreshToken, &a.TokenExpiresAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	if ig.ID != "" {
		a.InstagramAccount = &ig
	}
	return &a, nil
}

func (r *metaAccountRepository) GetByID(ctx context.Context, id int64) (*models.MetaAccount, error) {
	query := `SELECT ` + metaAccountColumns + ` FROM meta_accounts WHERE id = $1`
	return r.scanRow(r.db.QueryRowContext(ctx, query, id))
}

func (r *metaAccountRepository) GetByUserAccount(ctx context.Context, userID int64, platform, accountID string) (*models.MetaAccount, error) {
	query := `SELECT ` + metaAccountColumns + `
		FROM meta_accounts
		WHERE user_id = $1 AND platform = $2
		AND (user_account_id = $3 OR page_id = $3)`
	return r.scanRow(r.db.QueryRowContext(ctx, query, userID, platform, accountID))
}

func (r *metaAccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.MetaAccount, error) {
	query := `SELECT ` + metaAccountColumns + ` FROM meta_accounts WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.MetaAccount
	for rows.Next() {
		var a models.MetaAccount
		var ig models.InstagramSubAccount
		err := rows.Scan(&a.ID, &a.UserID, &a.Platform, &a.PageID, &a.UserAccountID,
			&a.AccountName, &a.Username, pq.Array(&a.Permissions), &a.IGBusinessID,
			&ig, &a.AccessToken, &a.RefreshToken, &a.TokenExpiresAt, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		if ig.ID != "" {
			a.InstagramAccount = &ig
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}

func (r *metaAccountRepository) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.MetaAccount, error) {
	query := `SELECT id, user_id, platform, access_token, refresh_token, token_expires_at
		FROM meta_accounts
		WHERE platform IN ($1, $2)
		AND token_expires_at <> to_timestamp(0)
		AND (token_expires_at BETWEEN $3 AND $4 OR token_expires_at < $3)`
	rows, err := r.db.QueryContext(ctx, query,
		models.PlatformInstagram, models.PlatformThreads, initialTime, finalTime)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.MetaAccount
	for rows.Next() {
		var a models.MetaAccount
		err := rows.Scan(&a.ID, &a.UserID, &a.Platform, &a.AccessToken, &a.RefreshToken, &a.TokenExpiresAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}

func (r *metaAccountRepository) UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	query := `
		UPDATE meta_accounts
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

func (r *metaAccountRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM meta_accounts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
