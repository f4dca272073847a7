package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/organico-dev/organico/internal/models"
)

// AddressPayload is the nested address accepted on location writes
type AddressPayload struct {
	Street       string   `json:"street"`
	Number       string   `json:"number"`
	Complement   string   `json:"complement"`
	Neighborhood string   `json:"neighborhood"`
	City         string   `json:"city" validate:"required"`
	State        string   `json:"state" validate:"required,len=2"`
	ZipCode      string   `json:"zip_code" validate:"omitempty,cep"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

// CreateLocationRequest represents a location creation request
type CreateLocationRequest struct {
	Name           string         `json:"name" binding:"required"`
	Type           string         `json:"location_type" binding:"required,oneof=FAIR STORE FARM DELIVERY OTHER"`
	Description    string         `json:"description"`
	Address        AddressPayload `json:"address" binding:"required"`
	OperationDays  string         `json:"operation_days"`
	OperationHours string         `json:"operation_hours"`
	Phone          string         `json:"phone"`
	Whatsapp       string         `json:"whatsapp"`
	ProductIDs     []string       `json:"products"`
}

// UpdateLocationRequest represents a partial location update
type UpdateLocationRequest struct {
	Name           *string         `json:"name"`
	Type           *string         `json:"location_type" binding:"omitempty,oneof=FAIR STORE FARM DELIVERY OTHER"`
	Description    *string         `json:"description"`
	Address        *AddressPayload `json:"address"`
	OperationDays  *string         `json:"operation_days"`
	OperationHours *string         `json:"operation_hours"`
	Phone          *string         `json:"phone"`
	Whatsapp       *string         `json:"whatsapp"`
	ProductIDs     []string        `json:"products"`
	IsActive       *bool           `json:"is_active"`
}

// LocationListItem is the compact shape used by list, map and my_locations
type LocationListItem struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"location_type"`
	ProducerName string   `json:"producer_name"`
	MainImage    string   `json:"main_image,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	ProductCount int      `json:"product_count"`
	IsVerified   bool     `json:"is_verified"`
	IsFavorited  *bool    `json:"is_favorited,omitempty"`
}

func locationListItemFrom(loc *models.Location) LocationListItem {
	item := LocationListItem{
		ID:           loc.ID,
		Name:         loc.Name,
		Type:         loc.Type,
		MainImage:    loc.MainImage,
		Latitude:     loc.Address.Latitude,
		Longitude:    loc.Address.Longitude,
		City:         loc.Address.City,
		State:        loc.Address.State,
		ProductCount: len(loc.Products),
		IsVerified:   loc.IsVerified,
	}
	if loc.Producer != nil {
		item.ProducerName = loc.Producer.BusinessName
	}
	return item
}

// activeLocations is the base query for public location reads
func (s *Server) activeLocations() *gorm.DB {
	return s.db.Model(&models.Location{}).
		Where("locations.is_active = ?", true).
		Preload("Producer").
		Preload("Address").
		Preload("Products")
}

// applyLocationFilters narrows a location query from request parameters
func applyLocationFilters(query *gorm.DB, c *gin.Context) *gorm.DB {
	if locationType := c.Query("location_type"); locationType != "" {
		query = query.Where("locations.type = ?", locationType)
	}
	if city := c.Query("city"); city != "" {
		query = query.Joins("JOIN addresses ON addresses.id = locations.address_id").
			Where("addresses.city = ?", city)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("locations.name LIKE ? OR locations.description LIKE ?", pattern, pattern)
	}
	return query
}

// markFavorited fills is_favorited for an authenticated viewer
func (s *Server) markFavorited(c *gin.Context, items []LocationListItem) {
	sessionData, exists := GetSessionData(c)
	if !exists || len(items) == 0 {
		return
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	var favorites []models.Favorite
	if err := s.db.Where("user_id = ? AND location_id IN ?", sessionData.UserID, ids).Find(&favorites).Error; err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load favorites for listing")
		return
	}

	favorited := make(map[string]bool, len(favorites))
	for _, fav := range favorites {
		favorited[fav.LocationID] = true
	}

	for i := range items {
		flag := favorited[items[i].ID]
		items[i].IsFavorited = &flag
	}
}

// @Summary List locations
// @Description List active sale locations, newest first
// @Tags locations
// @Produce json
// @Success 200 {array} LocationListItem
// @Router /api/locations/ [get]
func (s *Server) listLocations(c *gin.Context) {
	var locations []models.Location
	query := applyLocationFilters(s.activeLocations(), c).Order("locations.created_at DESC")
	if err := query.Find(&locations).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list locations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	items := make([]LocationListItem, len(locations))
	for i := range locations {
		items[i] = locationListItemFrom(&locations[i])
	}
	s.markFavorited(c, items)

	c.JSON(http.StatusOK, items)
}

// @Summary Map data
// @Description List geolocated active locations for the discovery map
// @Tags locations
// @Produce json
// @Success 200 {array} LocationListItem
// @Router /api/locations/map_data/ [get]
func (s *Server) getMapData(c *gin.Context) {
	var locations []models.Location
	query := applyLocationFilters(s.activeLocations(), c).
		Joins("JOIN addresses a ON a.id = locations.address_id").
		Where("a.latitude IS NOT NULL AND a.longitude IS NOT NULL")
	if err := query.Find(&locations).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load map data")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	items := make([]LocationListItem, len(locations))
	for i := range locations {
		items[i] = locationListItemFrom(&locations[i])
	}

	c.JSON(http.StatusOK, items)
}

// @Summary My locations
// @Description List the authenticated producer's locations
// @Tags locations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} LocationListItem
// @Failure 404 {object} map[string]interface{}
// @Router /api/locations/my_locations/ [get]
func (s *Server) getMyLocations(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	profile, ok := s.producerProfileFor(c, sessionData.UserID)
	if !ok {
		return
	}

	var locations []models.Location
	if err := s.activeLocations().Where("locations.producer_id = ?", profile.ID).Find(&locations).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list producer locations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	items := make([]LocationListItem, len(locations))
	for i := range locations {
		items[i] = locationListItemFrom(&locations[i])
	}

	c.JSON(http.StatusOK, items)
}

// @Summary Location detail
// @Tags locations
// @Produce json
// @Param id path string true "Location ID"
// @Success 200 {object} models.Location
// @Failure 404 {object} map[string]interface{}
// @Router /api/locations/{id}/ [get]
func (s *Server) getLocation(c *gin.Context) {
	var location models.Location
	err := models.FindByIDWithPreload(s.db, c.Param("id"), &location,
		"Producer", "Address", "Products", "Products.Category", "Images")
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load location")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, location)
}

// producerProfileFor loads the producer profile of a user, answering 404
// when the account has none (the response the SPA expects)
func (s *Server) producerProfileFor(c *gin.Context, userID string) (*models.ProducerProfile, bool) {
	var profile models.ProducerProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Você não possui um perfil de produtor."})
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to load producer profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}
	return &profile, true
}

// @Summary Create location
// @Tags locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateLocationRequest true "Location data"
// @Success 201 {object} models.Location
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/locations/ [post]
func (s *Server) createLocation(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.validator.Struct(req.Address); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, ok := s.producerProfileFor(c, sessionData.UserID)
	if !ok {
		return
	}

	location := &models.Location{
		ProducerID:     profile.ID,
		Name:           req.Name,
		Type:           req.Type,
		Description:    req.Description,
		OperationDays:  req.OperationDays,
		OperationHours: req.OperationHours,
		Phone:          req.Phone,
		Whatsapp:       req.Whatsapp,
		IsActive:       true,
		Address: models.Address{
			Street:       req.Address.Street,
			Number:       req.Address.Number,
			Complement:   req.Address.Complement,
			Neighborhood: req.Address.Neighborhood,
			City:         req.Address.City,
			State:        req.Address.State,
			ZipCode:      req.Address.ZipCode,
			Latitude:     req.Address.Latitude,
			Longitude:    req.Address.Longitude,
		},
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(location).Error; err != nil {
			return err
		}
		if len(req.ProductIDs) > 0 {
			var products []models.Product
			if err := tx.Where("id IN ?", req.ProductIDs).Find(&products).Error; err != nil {
				return err
			}
			return tx.Model(location).Association("Products").Replace(products)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create location")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create location"})
		return
	}

	s.logger.Info().
		Str("location_id", location.ID).
		Str("producer_id", profile.ID).
		Msg("Location created")

	c.JSON(http.StatusCreated, location)
}

// loadOwnedLocation fetches a location and verifies the requester owns it
func (s *Server) loadOwnedLocation(c *gin.Context) (*models.Location, bool) {
	sessionData, _ := GetSessionData(c)

	var location models.Location
	err := models.FindByIDWithPreload(s.db, c.Param("id"), &location, "Producer", "Address")
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to load location")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}

	if location.Producer == nil || location.Producer.UserID != sessionData.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Você só pode alterar suas próprias localizações"})
		return nil, false
	}

	return &location, true
}

// @Summary Update location
// @Tags locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Location ID"
// @Param request body UpdateLocationRequest true "Fields to update"
// @Success 200 {object} models.Location
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/locations/{id}/ [patch]
func (s *Server) updateLocation(c *gin.Context) {
	location, ok := s.loadOwnedLocation(c)
	if !ok {
		return
	}

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Address != nil {
		if err := s.validator.Struct(req.Address); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if req.Name != nil {
		location.Name = *req.Name
	}
	if req.Type != nil {
		location.Type = *req.Type
	}
	if req.Description != nil {
		location.Description = *req.Description
	}
	if req.OperationDays != nil {
		location.OperationDays = *req.OperationDays
	}
	if req.OperationHours != nil {
		location.OperationHours = *req.OperationHours
	}
	if req.Phone != nil {
		location.Phone = *req.Phone
	}
	if req.Whatsapp != nil {
		location.Whatsapp = *req.Whatsapp
	}
	if req.IsActive != nil {
		location.IsActive = *req.IsActive
	}
	if req.Address != nil {
		location.Address.Street = req.Address.Street
		location.Address.Number = req.Address.Number
		location.Address.Complement = req.Address.Complement
		location.Address.Neighborhood = req.Address.Neighborhood
		location.Address.City = req.Address.City
		location.Address.State = req.Address.State
		location.Address.ZipCode = req.Address.ZipCode
		location.Address.Latitude = req.Address.Latitude
		location.Address.Longitude = req.Address.Longitude
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&location.Address).Error; err != nil {
			return err
		}
		if err := tx.Save(location).Error; err != nil {
			return err
		}
		if req.ProductIDs != nil {
			var products []models.Product
			if err := tx.Where("id IN ?", req.ProductIDs).Find(&products).Error; err != nil {
				return err
			}
			return tx.Model(location).Association("Products").Replace(products)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to update location")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update location"})
		return
	}

	c.JSON(http.StatusOK, location)
}

// @Summary Delete location
// @Tags locations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Location ID"
// @Success 204
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/locations/{id}/ [delete]
func (s *Server) deleteLocation(c *gin.Context) {
	location, ok := s.loadOwnedLocation(c)
	if !ok {
		return
	}

	if err := s.db.Delete(location).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete location")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete location"})
		return
	}

	s.logger.Info().Str("location_id", location.ID).Msg("Location deleted")

	c.Status(http.StatusNoContent)
}
