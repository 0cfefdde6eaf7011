package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"polychat/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

// AssistantName is the fixed display name of the shared assistant identity.
const AssistantName = "AI Assistant"

const profileColumns = `user_id, name, preferred_language, status, is_assistant, last_seen`

// ProfileRepository abstracts user profile persistence.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID int) (models.Profile, error)
	UpsertProfile(ctx context.Context, userID int, name, preferredLanguage string) (models.Profile, error)
	UpdateStatus(ctx context.Context, userID int, status string) error
	ProfilesByUserIDs(ctx context.Context, userIDs []int) (map[int]models.Profile, error)
	SearchProfiles(ctx context.Context, query string, limit int) ([]models.Profile, error)
	EnsureAssistant(ctx context.Context) (models.Profile, error)
}

// ProfileRepo is a sqlx implementation of ProfileRepository.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// GetProfile fetches a profile by user id.
func (r *ProfileRepo) GetProfile(ctx context.Context, userID int) (models.Profile, error) {
	var p models.Profile
	err := r.db.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM profiles WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	return p, err
}

// UpsertProfile creates or updates the user's profile.
func (r *ProfileRepo) UpsertProfile(ctx context.Context, userID int, name, preferredLanguage string) (models.Profile, error) {
	var p models.Profile
	err := r.db.QueryRowxContext(ctx, `INSERT INTO profiles (user_id, name, preferred_language, status, last_seen)
        VALUES ($1, $2, $3, 'online', NOW())
        ON CONFLICT (user_id) DO UPDATE SET name = EXCLUDED.name, preferred_language = EXCLUDED.preferred_language, last_seen = NOW()
        RETURNING `+profileColumns, userID, name, preferredLanguage).
		StructScan(&p)
	return p, err
}

// UpdateStatus sets the user's presence status and bumps last_seen.
func (r *ProfileRepo) UpdateStatus(ctx context.Context, userID int, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET status=$2, last_seen=NOW() WHERE user_id=$1`, userID, status)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// ProfilesByUserIDs fetches a batch of profiles keyed by user id. Users
// without a profile are absent from the result, not an error.
func (r *ProfileRepo) ProfilesByUserIDs(ctx context.Context, userIDs []int) (map[int]models.Profile, error) {
	result := map[int]models.Profile{}
	if len(userIDs) == 0 {
		return result, nil
	}
	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, `SELECT `+profileColumns+` FROM profiles WHERE user_id = ANY($1)`, pq.Array(userIDs)); err != nil {
		return nil, err
	}
	for _, p := range profiles {
		result[p.UserID] = p
	}
	return result, nil
}

// SearchProfiles returns profiles whose name matches the query, excluding
// the assistant identity.
func (r *ProfileRepo) SearchProfiles(ctx context.Context, query string, limit int) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.SelectContext(ctx, &profiles, `SELECT `+profileColumns+` FROM profiles
        WHERE name ILIKE '%' || $1 || '%' AND NOT is_assistant
        ORDER BY name ASC LIMIT $2`, query, limit)
	return profiles, err
}

// EnsureAssistant provisions the shared assistant identity on first use.
// The insert races against concurrent callers on the partial unique index
// over assistant names, so exactly one row ever exists.
func (r *ProfileRepo) EnsureAssistant(ctx context.Context) (models.Profile, error) {
	_, err := r.db.ExecContext(ctx, `INSERT INTO profiles (name, preferred_language, status, is_assistant, last_seen)
        VALUES ($1, 'en', 'online', TRUE, NOW())
        ON CONFLICT DO NOTHING`, AssistantName)
	if err != nil {
		return models.Profile{}, err
	}

	var p models.Profile
	err = r.db.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM profiles WHERE name=$1 AND is_assistant`, AssistantName)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	return p, err
}

// TouchLastSeen records user activity without changing status.
func (r *ProfileRepo) TouchLastSeen(ctx context.Context, userID int, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE profiles SET last_seen=$2 WHERE user_id=$1`, userID, at)
	return err
}
