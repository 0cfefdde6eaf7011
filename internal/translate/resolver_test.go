package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"polychat/internal/models"
)

func TestTargetLanguagesExcludesSender(t *testing.T) {
	participants := []models.Profile{
		{UserID: 1, PreferredLanguage: "en"},
		{UserID: 2, PreferredLanguage: "es"},
		{UserID: 3, PreferredLanguage: "fr"},
	}

	targets := TargetLanguages(participants, "en")
	assert.ElementsMatch(t, []string{"es", "fr"}, targets)
}

func TestTargetLanguagesDeduplicates(t *testing.T) {
	participants := []models.Profile{
		{UserID: 1, PreferredLanguage: "es"},
		{UserID: 2, PreferredLanguage: "es"},
		{UserID: 3, PreferredLanguage: "es"},
	}

	targets := TargetLanguages(participants, "en")
	assert.Equal(t, []string{"es"}, targets)
}

func TestTargetLanguagesEmptyWhenAllShareLanguage(t *testing.T) {
	participants := []models.Profile{
		{UserID: 1, PreferredLanguage: "en"},
		{UserID: 2, PreferredLanguage: "en"},
	}

	targets := TargetLanguages(participants, "en")
	assert.Empty(t, targets)
}

func TestTargetLanguagesSingleParticipant(t *testing.T) {
	participants := []models.Profile{{UserID: 1, PreferredLanguage: "en"}}

	targets := TargetLanguages(participants, "en")
	assert.Empty(t, targets)
}

func TestTargetLanguagesSkipsEmptyLanguage(t *testing.T) {
	participants := []models.Profile{
		{UserID: 1, PreferredLanguage: ""},
		{UserID: 2, PreferredLanguage: "de"},
	}

	targets := TargetLanguages(participants, "en")
	assert.Equal(t, []string{"de"}, targets)
}

func TestTargetLanguagesRegionalVariantsAreDistinct(t *testing.T) {
	participants := []models.Profile{
		{UserID: 1, PreferredLanguage: "pt"},
		{UserID: 2, PreferredLanguage: "pt-BR"},
	}

	targets := TargetLanguages(participants, "en")
	assert.ElementsMatch(t, []string{"pt", "pt-BR"}, targets)
}
