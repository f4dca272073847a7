package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/organico-dev/organico/internal/models"
)

// Messaging is an early surface: the SPA ships the screens but the product
// has not launched conversations yet. The endpoints are schema-backed so the
// contract is stable, and listing is expected to be empty in production.

// ConversationSummary is the shape the conversations screen consumes
type ConversationSummary struct {
	ID              string     `json:"id"`
	UserName        string     `json:"user_name"`
	LastMessage     string     `json:"last_message"`
	LastMessageTime *time.Time `json:"last_message_time"`
	UnreadCount     int64      `json:"unread_count"`
}

// SendMessageRequest represents a new message in a conversation
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// loadConversation fetches a conversation and verifies membership
func (s *Server) loadConversation(c *gin.Context, userID string) (*models.Conversation, bool) {
	var conversation models.Conversation
	err := s.db.Where("id = ?", c.Param("id")).First(&conversation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversa não encontrada"})
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to load conversation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}

	if conversation.ConsumerID != userID && conversation.ProducerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Você não participa desta conversa"})
		return nil, false
	}

	return &conversation, true
}

// @Summary List conversations
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ConversationSummary
// @Router /api/messages/conversations/ [get]
func (s *Server) listConversations(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var conversations []models.Conversation
	err := s.db.Where("consumer_id = ? OR producer_id = ?", sessionData.UserID, sessionData.UserID).
		Order("last_message_at DESC").
		Find(&conversations).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list conversations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conversation := range conversations {
		summary := ConversationSummary{
			ID:              conversation.ID,
			LastMessageTime: conversation.LastMessageAt,
		}

		otherID := conversation.ConsumerID
		if otherID == sessionData.UserID {
			otherID = conversation.ProducerID
		}
		var other models.User
		if err := models.FindByID(s.db, otherID, &other); err == nil {
			summary.UserName = other.DisplayName()
		}

		var last models.Message
		if err := s.db.Where("conversation_id = ?", conversation.ID).
			Order("created_at DESC").First(&last).Error; err == nil {
			summary.LastMessage = last.Content
		}

		s.db.Model(&models.Message{}).
			Where("conversation_id = ? AND sender_id != ? AND is_read = ?", conversation.ID, sessionData.UserID, false).
			Count(&summary.UnreadCount)

		summaries = append(summaries, summary)
	}

	c.JSON(http.StatusOK, summaries)
}

// @Summary List messages
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {array} models.Message
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/messages/conversations/{id}/messages/ [get]
func (s *Server) listMessages(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	conversation, ok := s.loadConversation(c, sessionData.UserID)
	if !ok {
		return
	}

	var messages []models.Message
	err := s.db.Where("conversation_id = ?", conversation.ID).
		Order("created_at").
		Find(&messages).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list messages")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Reading a conversation marks the other side's messages as read
	s.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id != ?", conversation.ID, sessionData.UserID).
		Update("is_read", true)

	c.JSON(http.StatusOK, messages)
}

// @Summary Send message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param request body SendMessageRequest true "Message content"
// @Success 201 {object} models.Message
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/messages/conversations/{id}/messages/ [post]
func (s *Server) sendMessage(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	conversation, ok := s.loadConversation(c, sessionData.UserID)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		SenderID:       sessionData.UserID,
		Content:        req.Content,
	}

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(conversation).Update("last_message_at", now).Error
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to send message")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, message)
}
