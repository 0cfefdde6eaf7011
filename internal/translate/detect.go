package translate

import "github.com/abadojack/whatlanggo"

// DetectLanguage guesses the language code of a text. Used as a fallback
// when the sender's profile language is unknown at fan-out time; returns
// the given default when detection is unreliable.
func DetectLanguage(text, fallback string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return fallback
	}
	if code := info.Lang.Iso6391(); code != "" {
		return code
	}
	return fallback
}
