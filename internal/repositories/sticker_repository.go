package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"polychat/internal/models"
)

var ErrStickerNotFound = errors.New("sticker not found")

// StickerRepository reads the sticker catalog.
type StickerRepository interface {
	ListStickers(ctx context.Context, category string) ([]models.Sticker, error)
	GetSticker(ctx context.Context, stickerID int) (models.Sticker, error)
}

// StickerRepo is a sqlx implementation of StickerRepository.
type StickerRepo struct {
	db *sqlx.DB
}

// NewStickerRepo constructs a StickerRepo.
func NewStickerRepo(db *sqlx.DB) *StickerRepo {
	return &StickerRepo{db: db}
}

// ListStickers returns stickers, optionally filtered by category.
func (r *StickerRepo) ListStickers(ctx context.Context, category string) ([]models.Sticker, error) {
	var stickers []models.Sticker
	if category != "" {
		err := r.db.SelectContext(ctx, &stickers, `SELECT id, name, image_url, category, tags, created_at FROM stickers WHERE category=$1 ORDER BY name ASC`, category)
		return stickers, err
	}
	err := r.db.SelectContext(ctx, &stickers, `SELECT id, name, image_url, category, tags, created_at FROM stickers ORDER BY category ASC, name ASC`)
	return stickers, err
}

// GetSticker fetches a single sticker.
func (r *StickerRepo) GetSticker(ctx context.Context, stickerID int) (models.Sticker, error) {
	var s models.Sticker
	err := r.db.GetContext(ctx, &s, `SELECT id, name, image_url, category, tags, created_at FROM stickers WHERE id=$1`, stickerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Sticker{}, ErrStickerNotFound
	}
	return s, err
}
