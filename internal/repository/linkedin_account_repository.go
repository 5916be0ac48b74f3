package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/anuragdev21/socialbridge/internal/models"
)

type LinkedinAccountRepository interface {
	Create(ctx context.Context, tx *sql.Tx, a *models.LinkedinAccount) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.LinkedinAccount, error)
	GetByUserAccount(ctx context.Context, userID int64, accountID string) (*models.LinkedinAccount, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.LinkedinAccount, error)
	UpdateTokens(ctx context.Context, id int64, accessToken string) error
	Remove(ctx context.Context, id int64) error
}

type linkedinAccountRepository struct {
	db *sql.DB
}

func NewLinkedinAccountRepository(db *sql.DB) LinkedinAccountRepository {
	return &linkedinAccountRepository{db: db}
}

func (r *linkedinAccountRepository) Create(ctx context.Context, tx *sql.Tx, a *models.LinkedinAccount) (int64, error) {
	var err error
	var id int64

	var insertQuery = `
		INSERT INTO linkedin_accounts(user_id, user_account_id, account_name, access_token)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	if tx != nil {
		err = tx.QueryRowContext(ctx, insertQuery, a.UserID, a.UserAccountID, a.AccountName, a.AccessToken).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, insertQuery, a.UserID, a.UserAccountID, a.AccountName, a.AccessToken).Scan(&id)
	}

	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *linkedinAccountRepository) GetByID(ctx context.Context, id int64) (*models.LinkedinAccount, error) {
	query := `SELECT id, user_id, user_account_id, account_name, access_token, created_at, updated_at
		FROM linkedin_accounts WHERE id = $1`
	return r.scanRow(r.db.QueryRowContext(ctx, query, id))
}

func (r *linkedinAccountRepository) GetByUserAccount(ctx context.Context, userID int64, accountID string) (*models.LinkedinAccount, error) {
	query := `SELECT id, user_id, user_account_id, account_name, access_token, created_at, updated_at
		FROM linkedin_accounts WHERE user_id = $1 AND user_account_id = $2`
	return r.scanRow(r.db.QueryRowContext(ctx, query, userID, accountID))
}

func (r *linkedinAccountRepository) scanRow(row *sql.Row) (*models.LinkedinAccount, error) {
	var a models.LinkedinAccount
	err := row.Scan(&a.ID, &a.UserID, &a.UserAccountID, &a.AccountName, &a.AccessToken, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &a, nil
}

func (r *linkedinAccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.LinkedinAccount, error) {
	query := `SELECT id, user_id, user_account_id, account_name, access_token, created_at, updated_at
		FROM linkedin_accounts WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.LinkedinAccount
	for rows.Next() {
		var a models.LinkedinAccount
		err := rows.Scan(&a.ID, &a.UserID, &a.UserAccountID, &a.AccountName, &a.AccessToken, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}

func (r *linkedinAccountRepository) UpdateTokens(ctx context.Context, id int64, accessToken string) error {
	query := `UPDATE linkedin_accounts
		SET access_token = COALESCE(NULLIF($2, ''), access_token), updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, accessToken)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *linkedinAccountRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM linkedin_accounts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
