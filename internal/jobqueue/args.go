package jobqueue

import (
	"time"

	"github.com/riverqueue/river"
)

// Translation jobs run shortly after the message is stored so the sender's
// request returns without waiting on the provider. Assistant replies wait a
// little longer to let the triggering message settle in clients first.
const (
	TranslationDelay = 100 * time.Millisecond
	AssistantDelay   = 1000 * time.Millisecond
)

// TranslationFanOutArgs describes one fan-out run: translate a stored
// message into every language needed by the chat's participants.
type TranslationFanOutArgs struct {
	MessageID      int    `json:"message_id"`
	ChatID         int    `json:"chat_id"`
	OriginalText   string `json:"original_text"`
	SenderLanguage string `json:"sender_language"`
}

func (TranslationFanOutArgs) Kind() string { return "translation_fanout" }

// Provider failures are handled per language inside the worker; a failed
// language is skipped, not retried.
func (TranslationFanOutArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 1}
}

// AssistantMentionArgs describes a pending assistant reply for a chat.
type AssistantMentionArgs struct {
	ChatID    int `json:"chat_id"`
	MessageID int `json:"message_id"`
}

func (AssistantMentionArgs) Kind() string { return "assistant_mention" }

func (AssistantMentionArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 1}
}
