package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/organico-dev/organico/internal/models"
)

// CreateFavoriteRequest represents a direct favorite creation
type CreateFavoriteRequest struct {
	LocationID string `json:"location_id" binding:"required"`
	Note       string `json:"note"`
}

// ToggleFavoriteRequest represents a favorite toggle request
type ToggleFavoriteRequest struct {
	LocationID string `json:"location_id" binding:"required"`
	Note       string `json:"note"`
}

// @Summary List favorites
// @Description List the authenticated user's favorites, newest first
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Favorite
// @Router /api/favorites/ [get]
func (s *Server) listFavorites(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var favorites []models.Favorite
	err := s.db.Where("user_id = ?", sessionData.UserID).
		Preload("Location").
		Preload("Location.Address").
		Preload("Location.Producer").
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list favorites")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, favorites)
}

// @Summary Create favorite
// @Tags favorites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateFavoriteRequest true "Favorite data"
// @Success 201 {object} models.Favorite
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/favorites/ [post]
func (s *Server) createFavorite(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req CreateFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !s.locationExists(c, req.LocationID) {
		return
	}

	favorite := &models.Favorite{
		UserID:     sessionData.UserID,
		LocationID: req.LocationID,
		Note:       req.Note,
	}
	if err := s.db.Create(favorite).Error; err != nil {
		// The unique (user, location) index rejects duplicates
		c.JSON(http.StatusBadRequest, gin.H{"error": "Localização já está nos favoritos"})
		return
	}

	c.JSON(http.StatusCreated, favorite)
}

// @Summary Toggle favorite
// @Description Favorite a location, or remove it when already favorited
// @Tags favorites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ToggleFavoriteRequest true "Toggle data"
// @Success 200 {object} map[string]interface{}
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/favorites/toggle/ [post]
func (s *Server) toggleFavorite(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req ToggleFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location_id é obrigatório"})
		return
	}

	if !s.locationExists(c, req.LocationID) {
		return
	}

	var favorite models.Favorite
	err := s.db.Where("user_id = ? AND location_id = ?", sessionData.UserID, req.LocationID).First(&favorite).Error
	switch {
	case err == nil:
		if err := s.db.Delete(&favorite).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to remove favorite")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":   "Removido dos favoritos",
			"favorited": false,
		})

	case err == gorm.ErrRecordNotFound:
		favorite = models.Favorite{
			UserID:     sessionData.UserID,
			LocationID: req.LocationID,
			Note:       req.Note,
		}
		if err := s.db.Create(&favorite).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to create favorite")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message":   "Adicionado aos favoritos",
			"favorited": true,
			"favorite":  favorite,
		})

	default:
		s.logger.Error().Err(err).Msg("Failed to query favorite")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// @Summary Check favorite
// @Description Report whether a location is favorited by the current user
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param location_id query string true "Location ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/favorites/check/ [get]
func (s *Server) checkFavorite(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	locationID := c.Query("location_id")
	if locationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location_id é obrigatório"})
		return
	}

	var count int64
	err := s.db.Model(&models.Favorite{}).
		Where("user_id = ? AND location_id = ?", sessionData.UserID, locationID).
		Count(&count).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to check favorite")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorited": count > 0})
}

// @Summary Delete favorite
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param id path string true "Favorite ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /api/favorites/{id}/ [delete]
func (s *Server) deleteFavorite(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var favorite models.Favorite
	err := s.db.Where("id = ? AND user_id = ?", c.Param("id"), sessionData.UserID).First(&favorite).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Favorito não encontrado"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find favorite")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := s.db.Delete(&favorite).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete favorite")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

// locationExists answers 404 when the referenced location is missing
func (s *Server) locationExists(c *gin.Context, locationID string) bool {
	var count int64
	if err := s.db.Model(&models.Location{}).Where("id = ?", locationID).Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to check location")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return false
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Localização não encontrada"})
		return false
	}
	return true
}
