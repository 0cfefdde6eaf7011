package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguageNameKnownCode(t *testing.T) {
	assert.Equal(t, "Spanish", LanguageName("es"))
	assert.Equal(t, "Japanese", LanguageName("ja"))
}

func TestLanguageNameUnknownCodeFallsBack(t *testing.T) {
	assert.Equal(t, "tlh", LanguageName("tlh"))
}

func TestExtendLanguages(t *testing.T) {
	ExtendLanguages("nl=Dutch, pl=Polish")
	assert.Equal(t, "Dutch", LanguageName("nl"))
	assert.Equal(t, "Polish", LanguageName("pl"))
}

func TestExtendLanguagesSkipsMalformedEntries(t *testing.T) {
	ExtendLanguages("bogus,=Nameless,xx=")
	assert.Equal(t, "bogus", LanguageName("bogus"))
	assert.Equal(t, "xx", LanguageName("xx"))
}
