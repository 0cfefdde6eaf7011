package models

import "time"

// Translation is the stored result of translating a message into one target
// language. At most one row exists per (message, language) pair; rows are
// written once and never updated.
type Translation struct {
	MessageID      int       `db:"message_id" json:"message_id"`
	TargetLanguage string    `db:"target_language" json:"target_language"`
	TranslatedText string    `db:"translated_text" json:"translated_text"`
	OriginalText   string    `db:"original_text" json:"original_text"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
