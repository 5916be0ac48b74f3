package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/anuragdev21/socialbridge/internal/models"
)

type UserRepository interface {
	Upsert(ctx context.Context, u *models.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	Remove(ctx context.Context, externalID string) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Upsert(ctx context.Context, u *models.User) (int64, error) {
	query := `
		INSERT INTO users (external_id, email, name, profile_picture_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (external_id) DO UPDATE
		SET email = EXCLUDED.email,
			name = EXCLUDED.name,
			profile_picture_url = EXCLUDED.profile_picture_url
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, u.ExternalID, u.Email, u.Name, u.ProfilePicture).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, external_id, email, name, profile_picture_url, created_at FROM users WHERE id = $1`
	return r.scanRow(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	query := `SELECT id, external_id, email, name, profile_picture_url, created_at FROM users WHERE external_id = $1`
	return r.scanRow(r.db.QueryRowContext(ctx, query, externalID))
}

func (r *userRepository) scanRow(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.ExternalID, &u.Email, &u.Name, &u.ProfilePicture, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Remove(ctx context.Context, externalID string) error {
	query := `DELETE FROM users WHERE external_id = $1`
	_, err := r.db.ExecContext(ctx, query, externalID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
