package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"polychat/internal/repositories"
)

// StickerHandler serves the sticker catalog.
type StickerHandler struct {
	stickerRepo repositories.StickerRepository
}

// NewStickerHandler builds a StickerHandler.
func NewStickerHandler(stickerRepo repositories.StickerRepository) *StickerHandler {
	return &StickerHandler{stickerRepo: stickerRepo}
}

// ListStickers returns the catalog, optionally filtered by category.
func (h *StickerHandler) ListStickers(c *gin.Context) {
	stickers, err := h.stickerRepo.ListStickers(c.Request.Context(), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stickers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stickers": stickers})
}
