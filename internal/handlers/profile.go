package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"polychat/internal/models"
	"polychat/internal/repositories"
)

const defaultSearchLimit = 20

// ProfileHandler manages profile endpoints.
type ProfileHandler struct {
	profileRepo repositories.ProfileRepository
}

// NewProfileHandler builds a ProfileHandler.
func NewProfileHandler(profileRepo repositories.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{profileRepo: profileRepo}
}

// GetMe returns the caller's profile.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID := c.GetInt("userID")

	profile, err := h.profileRepo.GetProfile(c.Request.Context(), userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrProfileNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "profile not found"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateMe creates or updates the caller's profile. Changing the preferred
// language affects future messages only; stored translations stay as they
// are.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	var req struct {
		Name              string `json:"name" binding:"required"`
		PreferredLanguage string `json:"preferred_language" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	profile, err := h.profileRepo.UpsertProfile(c.Request.Context(), userID, req.Name, req.PreferredLanguage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateStatus sets the caller's presence status.
func (h *ProfileHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Status {
	case models.StatusOnline, models.StatusAway, models.StatusOffline:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	userID := c.GetInt("userID")
	if err := h.profileRepo.UpdateStatus(c.Request.Context(), userID, req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update status"})
		return
	}

	c.Status(http.StatusNoContent)
}

// SearchUsers returns profiles matching the query by name. The assistant
// profile is never listed.
func (h *ProfileHandler) SearchUsers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	profiles, err := h.profileRepo.SearchProfiles(c.Request.Context(), query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	results := make([]models.ProfileSummary, 0, len(profiles))
	for _, p := range profiles {
		results = append(results, p.Summary())
	}

	c.JSON(http.StatusOK, gin.H{"users": results})
}
