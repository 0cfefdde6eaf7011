package models

import "time"

// Chat types.
const (
	ChatTypeDirect = "direct"
	ChatTypeGroup  = "group"
)

// Chat represents a conversation between two or more users.
type Chat struct {
	ID            int       `db:"id" json:"id"`
	Type          string    `db:"type" json:"type"`
	Name          string    `db:"name" json:"name,omitempty"`
	CreatedBy     int       `db:"created_by" json:"created_by"`
	LastMessageAt time.Time `db:"last_message_at" json:"last_message_at"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`

	// Participants is loaded separately from chat_members.
	Participants []int `db:"-" json:"participants,omitempty"`
}

// DisplayName returns the name shown in transcripts and chat lists.
func (c Chat) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return "Direct Chat"
}

// IsParticipant reports whether the user belongs to the chat. It requires
// Participants to be loaded.
func (c Chat) IsParticipant(userID int) bool {
	for _, id := range c.Participants {
		if id == userID {
			return true
		}
	}
	return false
}
