package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"polychat/internal/models"
)

var ErrChatNotFound = errors.New("chat not found")

// ChatRepository abstracts chat persistence.
type ChatRepository interface {
	CreateDirectChat(ctx context.Context, userID int, participantID int) (models.Chat, error)
	CreateGroupChat(ctx context.Context, creatorID int, name string, memberIDs []int) (models.Chat, error)
	GetChat(ctx context.Context, chatID int) (models.Chat, error)
	IsParticipant(ctx context.Context, chatID int, userID int) (bool, error)
	ListChatsForUser(ctx context.Context, userID int) ([]models.Chat, error)
	TouchLastMessage(ctx context.Context, chatID int, at time.Time) error
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// CreateDirectChat creates a direct chat between two users, or returns the
// existing one. Direct chats always have exactly two participants.
func (r *ChatRepo) CreateDirectChat(ctx context.Context, userID int, participantID int) (models.Chat, error) {
	if userID == participantID {
		return models.Chat{}, errors.New("cannot create chat with self")
	}

	var chatID int
	query := `SELECT c.id FROM chats c
        WHERE c.type = 'direct'
        AND EXISTS (SELECT 1 FROM chat_members WHERE chat_id = c.id AND user_id = $1)
        AND EXISTS (SELECT 1 FROM chat_members WHERE chat_id = c.id AND user_id = $2)
        LIMIT 1`
	err := r.db.GetContext(ctx, &chatID, query, userID, participantID)
	if err == nil {
		return r.GetChat(ctx, chatID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, err
	}

	return r.insertChat(ctx, models.ChatTypeDirect, "", userID, []int{userID, participantID})
}

// CreateGroupChat creates a group chat with the creator and invitees as members.
func (r *ChatRepo) CreateGroupChat(ctx context.Context, creatorID int, name string, memberIDs []int) (models.Chat, error) {
	memberSet := map[int]struct{}{creatorID: {}}
	for _, id := range memberIDs {
		memberSet[id] = struct{}{}
	}
	ids := make([]int, 0, len(memberSet))
	for id := range memberSet {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	return r.insertChat(ctx, models.ChatTypeGroup, name, creatorID, ids)
}

func (r *ChatRepo) insertChat(ctx context.Context, chatType, name string, creatorID int, memberIDs []int) (models.Chat, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Chat{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var chat models.Chat
	if err = tx.QueryRowxContext(ctx, `INSERT INTO chats (type, name, created_by) VALUES ($1, $2, $3)
        RETURNING id, type, name, created_by, last_message_at, created_at`, chatType, name, creatorID).
		StructScan(&chat); err != nil {
		return models.Chat{}, err
	}

	for _, id := range memberIDs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO chat_members (chat_id, user_id) VALUES ($1, $2)`, chat.ID, id); err != nil {
			return models.Chat{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return models.Chat{}, err
	}
	chat.Participants = memberIDs
	return chat, nil
}

// GetChat fetches a chat by id with its current participant set.
func (r *ChatRepo) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT id, type, name, created_by, last_message_at, created_at FROM chats WHERE id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	if err != nil {
		return models.Chat{}, err
	}

	if err := r.db.SelectContext(ctx, &chat.Participants, `SELECT user_id FROM chat_members WHERE chat_id=$1 ORDER BY user_id`, chatID); err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

// IsParticipant checks whether a user belongs to the chat.
func (r *ChatRepo) IsParticipant(ctx context.Context, chatID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM chat_members WHERE chat_id=$1 AND user_id=$2)`, chatID, userID)
	return exists, err
}

// ListChatsForUser returns the user's chats, most recently active first.
func (r *ChatRepo) ListChatsForUser(ctx context.Context, userID int) ([]models.Chat, error) {
	var chats []models.Chat
	query := `SELECT c.id, c.type, c.name, c.created_by, c.last_message_at, c.created_at FROM chats c
        INNER JOIN chat_members cm ON cm.chat_id = c.id
        WHERE cm.user_id=$1
        ORDER BY c.last_message_at DESC`
	if err := r.db.SelectContext(ctx, &chats, query, userID); err != nil {
		return nil, err
	}
	if len(chats) == 0 {
		return chats, nil
	}

	chatIDs := make([]int, 0, len(chats))
	for _, c := range chats {
		chatIDs = append(chatIDs, c.ID)
	}
	rows, err := r.db.QueryxContext(ctx, `SELECT chat_id, user_id FROM chat_members WHERE chat_id = ANY($1) ORDER BY user_id`, pq.Array(chatIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := map[int][]int{}
	for rows.Next() {
		var chatID, memberID int
		if err := rows.Scan(&chatID, &memberID); err != nil {
			return nil, err
		}
		members[chatID] = append(members[chatID], memberID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range chats {
		chats[i].Participants = members[chats[i].ID]
	}
	return chats, nil
}

// TouchLastMessage bumps the chat's last activity time. The update is
// guarded so the timestamp never moves backwards.
func (r *ChatRepo) TouchLastMessage(ctx context.Context, chatID int, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE chats SET last_message_at = $2 WHERE id=$1 AND last_message_at < $2`, chatID, at)
	return err
}
