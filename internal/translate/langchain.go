package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// LangchainProvider implements Provider on top of an OpenAI-compatible chat
// model via langchaingo.
type LangchainProvider struct {
	llm llms.Model
}

// Config for the langchain provider.
type Config struct {
	APIKey    string
	BaseURL   string
	ModelName string
}

// NewLangchainProvider builds the provider and initializes the underlying model.
func NewLangchainProvider(cfg Config) (*LangchainProvider, error) {
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
	return &LangchainProvider{llm: llm}, nil
}

// Translate asks the model for a translation and returns only the
// translated text. A result equal to the input means the text was already
// in the target language or the model declined; callers skip persisting it.
func (p *LangchainProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if sourceLang == targetLang {
		return text, nil
	}

	sourceName := LanguageName(sourceLang)
	targetName := LanguageName(targetLang)

	system := fmt.Sprintf("You are a professional translator. Translate the following text from %s to %s. "+
		"Only return the translated text, nothing else. If the text is already in %s or if no translation is needed, "+
		"return the original text unchanged.", sourceName, targetName, targetName)

	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, text),
	}

	resp, err := p.llm.GenerateContent(ctx, content,
		llms.WithTemperature(0.1),
		llms.WithMaxTokens(500),
	)
	if err != nil {
		return "", fmt.Errorf("translate %s->%s: %w", sourceLang, targetLang, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("translate %s->%s: empty response", sourceLang, targetLang)
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
