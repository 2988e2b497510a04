package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrChatNotFound = errors.New("chat not found")

// ChatRepository abstracts chat and membership persistence.
type ChatRepository interface {
	CreateChat(ctx context.Context, name, photo *string, chatType string, memberIDs []int) (models.ChatWithMembers, error)
	GetChatSummary(ctx context.Context, chatID int) (models.Chat, error)
	IsMember(ctx context.Context, chatID int, userID int) (bool, error)
	ListChats(ctx context.Context, userID int) ([]models.ChatWithMembers, error)
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// CreateChat stores a chat and its persisted membership in one transaction.
func (r *ChatRepo) CreateChat(ctx context.Context, name, photo *string, chatType string, memberIDs []int) (models.ChatWithMembers, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.ChatWithMembers{}, err
	}
	defer tx.Rollback()

	var chat models.Chat
	if err := tx.QueryRowxContext(ctx, `INSERT INTO chats (name, photo, type) VALUES ($1, $2, $3) RETURNING id, name, photo, type`, name, photo, chatType).
		StructScan(&chat); err != nil {
		return models.ChatWithMembers{}, err
	}

	for _, userID := range memberIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO chat_members (chat_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, chat.ID, userID); err != nil {
			return models.ChatWithMembers{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.ChatWithMembers{}, err
	}

	members, err := r.chatMembers(ctx, chat.ID)
	if err != nil {
		return models.ChatWithMembers{}, err
	}
	return models.ChatWithMembers{Chat: chat, Members: members}, nil
}

// GetChatSummary fetches the minimal chat projection for outbound payloads.
func (r *ChatRepo) GetChatSummary(ctx context.Context, chatID int) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT id, name, photo, type FROM chats WHERE id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// IsMember checks persisted chat membership, independent of live room state.
func (r *ChatRepo) IsMember(ctx context.Context, chatID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM chat_members WHERE chat_id=$1 AND user_id=$2)`, chatID, userID)
	return exists, err
}

// ListChats returns the chats the user belongs to, with members.
func (r *ChatRepo) ListChats(ctx context.Context, userID int) ([]models.ChatWithMembers, error) {
	var chats []models.Chat
	query := `SELECT c.id, c.name, c.photo, c.type FROM chats c
        JOIN chat_members cm ON cm.chat_id = c.id
        WHERE cm.user_id=$1
        ORDER BY c.id`
	if err := r.db.SelectContext(ctx, &chats, query, userID); err != nil {
		return nil, err
	}

	result := make([]models.ChatWithMembers, 0, len(chats))
	for _, chat := range chats {
		members, err := r.chatMembers(ctx, chat.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, models.ChatWithMembers{Chat: chat, Members: members})
	}
	return result, nil
}

func (r *ChatRepo) chatMembers(ctx context.Context, chatID int) ([]models.UserSummary, error) {
	var members []models.UserSummary
	query := `SELECT u.id, u.email, u.first_name, u.second_name, u.photo FROM users u
        JOIN chat_members cm ON cm.user_id = u.id
        WHERE cm.chat_id=$1
        ORDER BY u.id`
	err := r.db.SelectContext(ctx, &members, query, chatID)
	return members, err
}
