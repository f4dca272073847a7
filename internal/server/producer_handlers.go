package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UpdateProducerProfileRequest represents a partial producer profile update
type UpdateProducerProfileRequest struct {
	BusinessName            *string `json:"business_name"`
	Description             *string `json:"description"`
	CoverImage              *string `json:"cover_image"`
	HasOrganicCertification *bool   `json:"has_organic_certification"`
	CertificationDetails    *string `json:"certification_details"`
	Website                 *string `json:"website" binding:"omitempty,url"`
	Instagram               *string `json:"instagram"`
	Facebook                *string `json:"facebook"`
	Whatsapp                *string `json:"whatsapp"`
}

// @Summary Get producer profile
// @Description Get the authenticated producer's business profile
// @Tags producers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ProducerProfile
// @Failure 404 {object} map[string]interface{}
// @Router /api/producers/me/ [get]
func (s *Server) getProducerProfile(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	profile, ok := s.producerProfileFor(c, sessionData.UserID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, profile)
}

// @Summary Update producer profile
// @Tags producers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProducerProfileRequest true "Fields to update"
// @Success 200 {object} models.ProducerProfile
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/producers/me/ [patch]
func (s *Server) updateProducerProfile(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	profile, ok := s.producerProfileFor(c, sessionData.UserID)
	if !ok {
		return
	}

	var req UpdateProducerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.BusinessName != nil {
		profile.BusinessName = *req.BusinessName
	}
	if req.Description != nil {
		profile.Description = *req.Description
	}
	if req.CoverImage != nil {
		profile.CoverImage = *req.CoverImage
	}
	if req.HasOrganicCertification != nil {
		profile.HasOrganicCertification = *req.HasOrganicCertification
	}
	if req.CertificationDetails != nil {
		profile.CertificationDetails = *req.CertificationDetails
	}
	if req.Website != nil {
		profile.Website = *req.Website
	}
	if req.Instagram != nil {
		profile.Instagram = *req.Instagram
	}
	if req.Facebook != nil {
		profile.Facebook = *req.Facebook
	}
	if req.Whatsapp != nil {
		profile.Whatsapp = *req.Whatsapp
	}

	if err := s.db.Save(profile).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update producer profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}
