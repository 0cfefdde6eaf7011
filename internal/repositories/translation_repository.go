package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"polychat/internal/models"
)

var ErrTranslationNotFound = errors.New("translation not found")

// TranslationRepository is the write-once store for message translations.
type TranslationRepository interface {
	// TryInsert stores a translation unless one already exists for the
	// (message, language) pair. It reports whether the row was inserted;
	// losing the race is not an error.
	TryInsert(ctx context.Context, tr models.Translation) (bool, error)
	GetTranslation(ctx context.Context, messageID int, targetLanguage string) (models.Translation, error)
	TranslationsForMessages(ctx context.Context, messageIDs []int, targetLanguage string) (map[int]models.Translation, error)
}

// TranslationRepo is a sqlx implementation of TranslationRepository.
type TranslationRepo struct {
	db *sqlx.DB
}

// NewTranslationRepo constructs a TranslationRepo.
func NewTranslationRepo(db *sqlx.DB) *TranslationRepo {
	return &TranslationRepo{db: db}
}

// TryInsert relies on the translations primary key, so concurrent fan-out
// runs for the same message cannot both materialize a row; the check and
// the insert are a single atomic statement.
func (r *TranslationRepo) TryInsert(ctx context.Context, tr models.Translation) (bool, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO translations (message_id, target_language, translated_text, original_text)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (message_id, target_language) DO NOTHING`,
		tr.MessageID, tr.TargetLanguage, tr.TranslatedText, tr.OriginalText)
	if err != nil {
		return false, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetTranslation fetches the stored translation of a message for one language.
func (r *TranslationRepo) GetTranslation(ctx context.Context, messageID int, targetLanguage string) (models.Translation, error) {
	var tr models.Translation
	err := r.db.GetContext(ctx, &tr, `SELECT message_id, target_language, translated_text, original_text, created_at
        FROM translations WHERE message_id=$1 AND target_language=$2`, messageID, targetLanguage)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Translation{}, ErrTranslationNotFound
	}
	return tr, err
}

// TranslationsForMessages fetches translations for a batch of messages in
// one language, keyed by message id. Messages without a stored translation
// are simply absent from the result.
func (r *TranslationRepo) TranslationsForMessages(ctx context.Context, messageIDs []int, targetLanguage string) (map[int]models.Translation, error) {
	result := map[int]models.Translation{}
	if len(messageIDs) == 0 {
		return result, nil
	}
	var trs []models.Translation
	err := r.db.SelectContext(ctx, &trs, `SELECT message_id, target_language, translated_text, original_text, created_at
        FROM translations WHERE message_id = ANY($1) AND target_language=$2`, pq.Array(messageIDs), targetLanguage)
	if err != nil {
		return nil, err
	}
	for _, tr := range trs {
		result[tr.MessageID] = tr
	}
	return result, nil
}
