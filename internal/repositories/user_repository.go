package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository abstracts user persistence used by the messaging core.
type UserRepository interface {
	GetBySubject(ctx context.Context, email string) (models.User, error)
	GetUserSummary(ctx context.Context, userID int) (models.UserSummary, error)
	SetOnline(ctx context.Context, userID int, online bool) error
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetBySubject resolves a verified credential subject to the stored user.
func (r *UserRepo) GetBySubject(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, email, first_name, second_name, photo, is_online FROM users WHERE email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetUserSummary fetches the sender projection for outbound payloads.
func (r *UserRepo) GetUserSummary(ctx context.Context, userID int) (models.UserSummary, error) {
	var user models.UserSummary
	err := r.db.GetContext(ctx, &user, `SELECT id, email, first_name, second_name, photo FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserSummary{}, ErrUserNotFound
	}
	return user, err
}

// SetOnline updates the persisted online flag. Last writer wins.
func (r *UserRepo) SetOnline(ctx context.Context, userID int, online bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_online=$2 WHERE id=$1`, userID, online)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}
