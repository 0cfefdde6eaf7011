package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"polychat/internal/mocks"
	"polychat/internal/models"
	"polychat/internal/repositories"
)

func setupProfileRouter(handler *ProfileHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/me", handler.GetMe)
	r.PUT("/me", handler.UpdateMe)
	r.PUT("/me/status", handler.UpdateStatus)
	r.GET("/users/search", handler.SearchUsers)
	return r
}

func TestGetMeSuccess(t *testing.T) {
	profileRepo := new(mocks.ProfileRepositoryMock)
	router := setupProfileRouter(NewProfileHandler(profileRepo))

	profileRepo.On("GetProfile", mock.Anything, 1).Return(models.Profile{UserID: 1, Name: "Ana", PreferredLanguage: "es"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	profileRepo.AssertExpectations(t)
}

func TestGetMeNotFound(t *testing.T) {
	profileRepo := new(mocks.ProfileRepositoryMock)
	router := setupProfileRouter(NewProfileHandler(profileRepo))

	profileRepo.On("GetProfile", mock.Anything, 1).Return(models.Profile{}, repositories.ErrProfileNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateMeSuccess(t *testing.T) {
	profileRepo := new(mocks.ProfileRepositoryMock)
	router := setupProfileRouter(NewProfileHandler(profileRepo))

	profileRepo.On("UpsertProfile", mock.Anything, 1, "Ana", "es").Return(models.Profile{UserID: 1, Name: "Ana", PreferredLanguage: "es"}, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/me", bytes.NewBufferString(`{"name":"Ana","preferred_language":"es"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	profileRepo.AssertExpectations(t)
}

func TestUpdateMeMissingFields(t *testing.T) {
	profileRepo := new(mocks.ProfileRepositoryMock)
	router := setupProfileRouter(NewProfileHandler(profileRepo))

	req := httptest.NewRequest(http.MethodPut, "/me", bytes.NewBufferString(`{"name":"Ana"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	profileRepo.AssertNotCalled(t, "UpsertProfile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatusSuccess(t *testing.T) {
	profileRepo := new(mocks.ProfileRepositoryMock)
	router := setupProfileRouter(NewProfileHandler(profileRepo))

	profileRepo.On("UpdateStatus", mock.Anything, 1, models.StatusAway).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/me/status", bytes.NewBufferString(`{"status":"away"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	profileRepo.AssertExpectations(t)
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	profileRepo := new(mocks.ProfileRepositoryMock)
	router := setupProfileRouter(NewProfileHandler(profileRepo))

	req := httptest.NewRequest(http.MethodPut, "/me/status", bytes.NewBufferString(`{"status":"sleeping"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	profileRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchUsers(t *testing.T) {
	profileRepo := new(mocks.ProfileRepositoryMock)
	router := setupProfileRouter(NewProfileHandler(profileRepo))

	profileRepo.On("SearchProfiles", mock.Anything, "an", 20).Return([]models.Profile{
		{UserID: 2, Name: "Ana", Status: models.StatusOnline},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/search?q=an", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Users []models.ProfileSummary `json:"users"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "Ana", resp.Users[0].Name)
	profileRepo.AssertExpectations(t)
}

func TestSearchUsersRequiresQuery(t *testing.T) {
	profileRepo := new(mocks.ProfileRepositoryMock)
	router := setupProfileRouter(NewProfileHandler(profileRepo))

	req := httptest.NewRequest(http.MethodGet, "/users/search", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	profileRepo.AssertNotCalled(t, "SearchProfiles", mock.Anything, mock.Anything, mock.Anything)
}
