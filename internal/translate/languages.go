package translate

import "strings"

// languageNames maps supported language codes to the names used in provider
// prompts. Unknown codes fall back to the code itself, so adding a language
// only requires a profile to use it; EXTRA_LANGUAGES extends the table
// without a code change.
var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"ar": "Arabic",
	"hi": "Hindi",
}

// LanguageName resolves a language code to its display name for prompts.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// ExtendLanguages merges entries of the form "code=Name,code=Name" into the
// language table. Malformed entries are skipped.
func ExtendLanguages(raw string) {
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		languageNames[parts[0]] = parts[1]
	}
}
