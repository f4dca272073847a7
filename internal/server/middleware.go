package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/organico-dev/organico/internal/auth"
	"github.com/organico-dev/organico/internal/models"
)

const (
	bearerPrefix = "Bearer "
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
	ErrInvalidToken      = errors.New("invalid token")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserInactive      = errors.New("user inactive")
)

func setSession(c *gin.Context, sessionData *auth.SessionData) {
	c.Set("session", sessionData)
}

func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	session, exists := c.Get("session")
	if !exists {
		return nil, false
	}

	sessionData, ok := session.(*auth.SessionData)
	return sessionData, ok
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

func respondWithError(c *gin.Context, log zerolog.Logger, statusCode int, err error, message string) {
	log.Warn().Err(err).Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
	c.Abort()
}

// resolveSession validates a bearer token and loads the matching user
func resolveSession(db *gorm.DB, token string) (*auth.SessionData, error) {
	claims, err := auth.ValidateToken(token, auth.TokenTypeAccess)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	return &auth.SessionData{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, nil
}

// JWTAuthMiddleware requires a valid access token and an active account
func JWTAuthMiddleware(db *gorm.DB, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract token from Authorization header
		authHeader := c.GetHeader("Authorization")
		token, err := extractBearerToken(authHeader)
		if err != nil {
			var message string
			switch err {
			case ErrMissingAuthHeader:
				message = "Missing authorization header"
			case ErrInvalidAuthFormat:
				message = "Invalid authorization header format"
			case ErrEmptyToken:
				message = "Empty token"
			}
			respondWithError(c, log, http.StatusUnauthorized, err, message)
			return
		}

		sessionData, err := resolveSession(db, token)
		if err != nil {
			respondWithError(c, log, http.StatusUnauthorized, err, "Invalid or expired token")
			return
		}

		setSession(c, sessionData)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches session data when a valid token is present
// and lets the request through unauthenticated otherwise. Public reads use it
// so responses can carry per-user fields like is_favorited.
func OptionalAuthMiddleware(db *gorm.DB, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.Next()
			return
		}

		sessionData, err := resolveSession(db, token)
		if err != nil {
			// A bad credential on a public route degrades to anonymous
			log.Debug().Err(err).Msg("Ignoring invalid token on public route")
			c.Next()
			return
		}

		setSession(c, sessionData)
		c.Next()
	}
}

// ProducerOnlyMiddleware ensures the authenticated user is a producer
func ProducerOnlyMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionData, exists := GetSessionData(c)
		if !exists {
			respondWithError(c, log, http.StatusUnauthorized, errors.New("no session"), "Unauthorized")
			return
		}

		if sessionData.Role != models.RoleProducer {
			respondWithError(c, log, http.StatusForbidden, errors.New("not a producer"), "Producer access required")
			return
		}

		c.Next()
	}
}
