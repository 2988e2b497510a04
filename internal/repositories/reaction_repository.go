package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

// ReactionRepository persists message reactions.
type ReactionRepository interface {
	CreateReaction(ctx context.Context, messageID int, userID int, code int) (models.Reaction, error)
}

// ReactionRepo is a sqlx implementation of ReactionRepository.
type ReactionRepo struct {
	db *sqlx.DB
}

// NewReactionRepo constructs a ReactionRepo.
func NewReactionRepo(db *sqlx.DB) *ReactionRepo {
	return &ReactionRepo{db: db}
}

// CreateReaction stores a reaction. The message FK surfaces reactions to
// nonexistent messages as a constraint error.
func (r *ReactionRepo) CreateReaction(ctx context.Context, messageID int, userID int, code int) (models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.QueryRowxContext(ctx, `INSERT INTO reactions (message_id, user_id, content) VALUES ($1, $2, $3)
        RETURNING id, message_id, user_id, content`, messageID, userID, code).
		StructScan(&reaction)
	return reaction, err
}
