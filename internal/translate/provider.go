package translate

import "context"

// Provider translates text between two languages. Implementations may be
// slow and may fail transiently; callers bound each call with a timeout and
// treat failures as terminal for that language.
type Provider interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// NoopProvider returns the input unchanged. It is used when no backend is
// configured; since an unchanged result is never persisted, running with it
// simply disables translation.
type NoopProvider struct{}

// Translate returns text as-is.
func (NoopProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return text, nil
}
