package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"polychat/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

const messageColumns = `id, chat_id, sender_id, kind, content, reply_to, sticker_id, from_assistant, created_at`

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, fields models.NewMessage) (models.Message, error)
	GetMessage(ctx context.Context, messageID int) (models.Message, error)
	ListMessages(ctx context.Context, chatID int, limit int) ([]models.Message, error)
	ListRecentTextMessages(ctx context.Context, chatID int, limit int) ([]models.Message, error)
	MessagesByIDs(ctx context.Context, messageIDs []int) (map[int]models.Message, error)
	LastMessage(ctx context.Context, chatID int) (models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message in a chat.
func (r *MessageRepo) CreateMessage(ctx context.Context, fields models.NewMessage) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (chat_id, sender_id, kind, content, reply_to, sticker_id, from_assistant)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING `+messageColumns,
		fields.ChatID, fields.SenderID, fields.Kind, fields.Content, fields.ReplyTo, fields.StickerID, fields.FromAssistant).
		StructScan(&msg)
	return msg, err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// ListMessages returns the newest `limit` messages of the chat, oldest-first.
func (r *MessageRepo) ListMessages(ctx context.Context, chatID int, limit int) ([]models.Message, error) {
	var msgs []models.Message
	query := `SELECT ` + messageColumns + ` FROM (
            SELECT ` + messageColumns + ` FROM messages
            WHERE chat_id=$1
            ORDER BY created_at DESC, id DESC
            LIMIT $2
        ) recent ORDER BY created_at ASC, id ASC`
	err := r.db.SelectContext(ctx, &msgs, query, chatID, limit)
	return msgs, err
}

// ListRecentTextMessages returns the newest `limit` text messages of the
// chat, oldest-first. Used to build the assistant transcript.
func (r *MessageRepo) ListRecentTextMessages(ctx context.Context, chatID int, limit int) ([]models.Message, error) {
	var msgs []models.Message
	query := `SELECT ` + messageColumns + ` FROM (
            SELECT ` + messageColumns + ` FROM messages
            WHERE chat_id=$1 AND kind='text'
            ORDER BY created_at DESC, id DESC
            LIMIT $2
        ) recent ORDER BY created_at ASC, id ASC`
	err := r.db.SelectContext(ctx, &msgs, query, chatID, limit)
	return msgs, err
}

// MessagesByIDs fetches a batch of messages keyed by id.
func (r *MessageRepo) MessagesByIDs(ctx context.Context, messageIDs []int) (map[int]models.Message, error) {
	result := map[int]models.Message{}
	if len(messageIDs) == 0 {
		return result, nil
	}
	var msgs []models.Message
	if err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages WHERE id = ANY($1)`, pq.Array(messageIDs)); err != nil {
		return nil, err
	}
	for _, m := range msgs {
		result[m.ID] = m
	}
	return result, nil
}

// LastMessage returns the newest message of a chat.
func (r *MessageRepo) LastMessage(ctx context.Context, chatID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE chat_id=$1 ORDER BY created_at DESC, id DESC LIMIT 1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}
