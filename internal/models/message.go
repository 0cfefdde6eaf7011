package models

import "time"

// Message kinds.
const (
	MessageKindText    = "text"
	MessageKindImage   = "image"
	MessageKindSticker = "sticker"
	MessageKindSystem  = "system"
)

// Message represents a chat message. Messages are written once and never
// mutated afterwards; translations reference them by id.
type Message struct {
	ID            int       `db:"id" json:"id"`
	ChatID        int       `db:"chat_id" json:"chat_id"`
	SenderID      int       `db:"sender_id" json:"sender_id"`
	Kind          string    `db:"kind" json:"kind"`
	Content       string    `db:"content" json:"content"`
	ReplyTo       *int      `db:"reply_to" json:"reply_to,omitempty"`
	StickerID     *int      `db:"sticker_id" json:"sticker_id,omitempty"`
	FromAssistant bool      `db:"from_assistant" json:"from_assistant"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// NewMessage carries the fields of a message about to be stored.
type NewMessage struct {
	ChatID        int
	SenderID      int
	Kind          string
	Content       string
	ReplyTo       *int
	StickerID     *int
	FromAssistant bool
}

// ChatEvent is broadcasted through websockets as pipeline results land.
type ChatEvent struct {
	Type        string       `json:"type"`
	Message     *Message     `json:"message,omitempty"`
	Translation *Translation `json:"translation,omitempty"`
}
