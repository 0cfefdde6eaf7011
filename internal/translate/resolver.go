package translate

import (
	"github.com/samber/lo"

	"polychat/internal/models"
)

// TargetLanguages computes the distinct languages a message must be
// translated into: every preferred language present among the participants
// that differs from the sender's. Codes are compared exactly and
// case-sensitively ("pt" and "pt-BR" are distinct targets). Participants
// without a resolvable profile are simply not in the input. Returns an
// empty slice when everyone shares the sender's language, including the
// one-participant case.
func TargetLanguages(participants []models.Profile, senderLang string) []string {
	languages := make([]string, 0, len(participants))
	for _, p := range participants {
		if p.PreferredLanguage == "" || p.PreferredLanguage == senderLang {
			continue
		}
		languages = append(languages, p.PreferredLanguage)
	}
	return lo.Uniq(languages)
}
