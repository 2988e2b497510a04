package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"messaging-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for chat messages. The identifier and
// UTC timestamp are assigned by the store at insert time; client-supplied
// values are never used.
type MessageRepository interface {
	CreateMessage(ctx context.Context, chatID int, senderID int, msgType string, content, filePath *string) (models.Message, error)
	GetMessage(ctx context.Context, messageID int) (models.Message, error)
	ListChatMessages(ctx context.Context, chatID int) ([]models.MessageWithReactions, error)
	AppendReader(ctx context.Context, messageID int, userID int) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message and returns the row with its assigned id and
// timestamp.
func (r *MessageRepo) CreateMessage(ctx context.Context, chatID int, senderID int, msgType string, content, filePath *string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (chat_id, sender_id, type, content, file_path) VALUES ($1, $2, $3, $4, $5)
        RETURNING id, chat_id, sender_id, type, content, file_path, read_by, created_at`,
		chatID, senderID, msgType, content, filePath).
		Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &msg.Type, &msg.Content, &msg.FilePath, &msg.ReadBy, &msg.CreatedAt)
	return msg, err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT id, chat_id, sender_id, type, content, file_path, read_by, created_at FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// ListChatMessages returns the chat history in creation order, with reactions.
func (r *MessageRepo) ListChatMessages(ctx context.Context, chatID int) ([]models.MessageWithReactions, error) {
	var msgs []models.Message
	query := `SELECT id, chat_id, sender_id, type, content, file_path, read_by, created_at
        FROM messages WHERE chat_id=$1 ORDER BY id ASC`
	if err := r.db.SelectContext(ctx, &msgs, query, chatID); err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return []models.MessageWithReactions{}, nil
	}

	messageIDs := make([]int64, 0, len(msgs))
	for _, m := range msgs {
		messageIDs = append(messageIDs, int64(m.ID))
	}

	type reactionRow struct {
		MessageID int `db:"message_id"`
		Content   int `db:"content"`
		models.UserSummary
	}
	var rows []reactionRow
	reactionQuery := `SELECT r.message_id, r.content, u.id, u.email, u.first_name, u.second_name, u.photo
        FROM reactions r
        JOIN users u ON u.id = r.user_id
        WHERE r.message_id = ANY($1)
        ORDER BY r.id`
	if err := r.db.SelectContext(ctx, &rows, reactionQuery, pq.Array(messageIDs)); err != nil {
		return nil, err
	}

	reactionsByMessage := make(map[int][]models.ReactionView, len(rows))
	for _, row := range rows {
		reactionsByMessage[row.MessageID] = append(reactionsByMessage[row.MessageID], models.ReactionView{
			Content: row.Content,
			Sender:  row.UserSummary,
		})
	}

	result := make([]models.MessageWithReactions, 0, len(msgs))
	for _, m := range msgs {
		reactions := reactionsByMessage[m.ID]
		if reactions == nil {
			reactions = []models.ReactionView{}
		}
		result = append(result, models.MessageWithReactions{Message: m, Reactions: reactions})
	}
	return result, nil
}

// AppendReader adds the user to the message's read list once. Re-reads are
// no-ops.
func (r *MessageRepo) AppendReader(ctx context.Context, messageID int, userID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET read_by = array_append(read_by, $2)
        WHERE id=$1 AND NOT (read_by @> ARRAY[$2]::int[])`, messageID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM messages WHERE id=$1)`, messageID); err != nil {
		return err
	}
	if !exists {
		return ErrMessageNotFound
	}
	return nil
}
