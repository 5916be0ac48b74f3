package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/lib/pq"
)

// UserAccountRepository maintains the denormalized per-user index of
// connected accounts. Appends go through a single INSERT ... ON CONFLICT
// with array_append, so two concurrent reconciliations for the same user
// cannot lose each other's entries.
type UserAccountRepository interface {
	AppendAccount(ctx context.Context, userID int64, platform string, accountRef int64) error
	RemoveAccount(ctx context.Context, userID int64, platform string, accountRef int64) error
	GetByUserID(ctx context.Context, userID int64) (*models.UserAccountIndex, error)
}

type userAccountRepository struct {
	db *sql.DB
}

func NewUserAccountRepository(db *sql.DB) UserAccountRepository {
	return &userAccountRepository{db: db}
}

func indexColumn(platform string) (string, error) {
	switch platform {
	case models.PlatformFacebook, models.PlatformInstagram, models.PlatformThreads:
		return "meta_accounts", nil
	case models.PlatformLinkedin:
		return "linkedin_accounts", nil
	case models.PlatformPinterest:
		return "pinterest_accounts", nil
	case models.PlatformTiktok:
		return "tiktok_accounts", nil
	}
	return "", errors.New("no index column for platform " + platform)
}

func (r *userAccountRepository) AppendAccount(ctx context.Context, userID int64, platform string, accountRef int64) error {
	column, err := indexColumn(platform)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	// column is one of four fixed identifiers, never user input.
	query := fmt.Sprintf(`
		INSERT INTO user_accounts (user_id, %[1]s)
		VALUES ($1, ARRAY[$2]::bigint[])
		ON CONFLICT (user_id) DO UPDATE
		SET %[1]s = array_append(COALESCE(user_accounts.%[1]s, '{}'), $2),
			updated_at = CURRENT_TIMESTAMP
		WHERE NOT $2 = ANY(COALESCE(user_accounts.%[1]s, '{}'))
	`, column)

	_, err = r.db.ExecContext(ctx, query, userID, accountRef)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *userAccountRepository) RemoveAccount(ctx context.Context, userID int64, platform string, accountRef int64) error {
	column, err := indexColumn(platform)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	query := fmt.Sprintf(`
		UPDATE user_accounts
		SET %[1]s = array_remove(COALESCE(%[1]s, '{}'), $2),
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1
	`, column)

	_, err = r.db.ExecContext(ctx, query, userID, accountRef)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *userAccountRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserAccountIndex, error) {
	query := `SELECT user_id, meta_accounts, linkedin_accounts, pinterest_accounts, tiktok_accounts, updated_at
		FROM user_accounts WHERE user_id = $1`
	row := r.db.QueryRowContext(ctx, query, userID)

	var idx models.UserAccountIndex
	err := row.Scan(&idx.UserID, pq.Array(&idx.MetaAccounts), pq.Array(&idx.LinkedinAccounts),
		pq.Array(&idx.PinterestAccounts), pq.Array(&idx.TiktokAccounts), &idx.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &idx, nil
}
