package models

import "time"

// Profile statuses.
const (
	StatusOnline  = "online"
	StatusAway    = "away"
	StatusOffline = "offline"
)

// Profile holds a user's chat identity and preferences. Each user has
// exactly one profile; the preferred language drives translation targets.
type Profile struct {
	UserID            int       `db:"user_id" json:"user_id"`
	Name              string    `db:"name" json:"name"`
	PreferredLanguage string    `db:"preferred_language" json:"preferred_language"`
	Status            string    `db:"status" json:"status"`
	IsAssistant       bool      `db:"is_assistant" json:"is_assistant,omitempty"`
	LastSeen          time.Time `db:"last_seen" json:"last_seen"`
}

// ProfileSummary is the short view returned in chat listings and search.
type ProfileSummary struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Summary converts a profile to its short view.
func (p Profile) Summary() ProfileSummary {
	return ProfileSummary{UserID: p.UserID, Name: p.Name, Status: p.Status}
}
