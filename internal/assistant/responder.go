// Package assistant produces replies for @assistant mentions from recent
// chat history.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"polychat/internal/models"
)

// MentionToken triggers the assistant when present in a message's content.
const MentionToken = "@assistant"

// TranscriptLimit caps how many recent text messages feed the reply.
const TranscriptLimit = 20

// Responder generates a single assistant reply from a conversation
// transcript. May fail transiently; a failed generation means no reply is
// posted, nothing more.
type Responder interface {
	Generate(ctx context.Context, transcript, chatName string) (string, error)
}

// ContainsMention reports whether content mentions the assistant.
func ContainsMention(content string) bool {
	return strings.Contains(content, MentionToken)
}

// BuildTranscript formats messages oldest-first as "Name: content" lines.
// Senders without a known profile are labeled Unknown.
func BuildTranscript(messages []models.Message, profiles map[int]models.Profile) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		name := "Unknown"
		if p, ok := profiles[m.SenderID]; ok {
			name = p.Name
		}
		lines = append(lines, fmt.Sprintf("%s: %s", name, m.Content))
	}
	return strings.Join(lines, "\n")
}

// LangchainResponder implements Responder on an OpenAI-compatible chat model.
type LangchainResponder struct {
	llm llms.Model
}

// Config for the langchain responder.
type Config struct {
	APIKey    string
	BaseURL   string
	ModelName string
}

// NewLangchainResponder builds the responder and initializes the model.
func NewLangchainResponder(cfg Config) (*LangchainResponder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.ModelName),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize llm: %w", err)
	}
	return &LangchainResponder{llm: llm}, nil
}

// Generate produces one reply for the conversation.
func (r *LangchainResponder) Generate(ctx context.Context, transcript, chatName string) (string, error) {
	system := fmt.Sprintf("You are a helpful AI assistant in a chat called %q. "+
		"You can see the conversation history and should respond helpfully and naturally. "+
		"Keep responses concise and friendly.", chatName)
	prompt := fmt.Sprintf("Recent conversation:\n%s\n\nPlease respond to the conversation.", transcript)

	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}

	resp, err := r.llm.GenerateContent(ctx, content, llms.WithMaxTokens(300))
	if err != nil {
		return "", fmt.Errorf("generate assistant reply: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generate assistant reply: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
