package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in the token_type claim. Refresh tokens can only be
// exchanged for new access tokens, never presented as credentials.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
)

// Claims represents the JWT token claims
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// InitializeJWT sets the JWT secret key and token lifetimes
func InitializeJWT(secret string, access, refresh time.Duration) {
	jwtSecret = []byte(secret)
	accessTTL = access
	refreshTTL = refresh
}

// GenerateTokenPair creates an access/refresh token pair for a user
func GenerateTokenPair(userID, email, role string) (access string, refresh string, err error) {
	access, err = generateToken(userID, email, role, TokenTypeAccess, accessTTL)
	if err != nil {
		return "", "", err
	}

	refresh, err = generateToken(userID, email, role, TokenTypeRefresh, refreshTTL)
	if err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

// GenerateAccessToken creates a new access token, used by the refresh endpoint
func GenerateAccessToken(userID, email, role string) (string, error) {
	return generateToken(userID, email, role, TokenTypeAccess, accessTTL)
}

func generateToken(userID, email, role, tokenType string, ttl time.Duration) (string, error) {
	if len(jwtSecret) == 0 {
		return "", fmt.Errorf("JWT secret not initialized")
	}

	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ValidateToken validates a JWT token of the expected type and returns the claims
func ValidateToken(tokenString, wantType string) (*Claims, error) {
	if len(jwtSecret) == 0 {
		return nil, fmt.Errorf("JWT secret not initialized")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.TokenType != wantType {
		return nil, fmt.Errorf("token is not a %s token", wantType)
	}

	return claims, nil
}
