package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/organico-dev/organico/internal/auth"
	"github.com/organico-dev/organico/internal/config"
	"github.com/organico-dev/organico/internal/models"
)

// newTestServer spins up a server over an isolated in-memory database.
// The shared-cache URI keeps the pooled connections on the same database.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			URL: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		},
		Redis: config.RedisConfig{Address: "localhost:6379"},
		JWT: config.JWTConfig{
			Secret:     "test-secret",
			AccessTTL:  5 * time.Minute,
			RefreshTTL: 24 * time.Hour,
		},
	}

	srv, err := New(cfg, zerolog.Nop(), "test")
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

// createUser inserts a user and returns it with a valid access token
func createUser(t *testing.T, s *Server, email, role string) (*models.User, string) {
	t.Helper()

	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     true,
	}
	if err := s.db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	access, _, err := auth.GenerateTokenPair(user.ID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("failed to generate tokens: %v", err)
	}
	return user, access
}

// createProducer inserts a producer user together with a producer profile
func createProducer(t *testing.T, s *Server, email string) (*models.User, *models.ProducerProfile, string) {
	t.Helper()

	user, token := createUser(t, s, email, models.RoleProducer)
	profile := &models.ProducerProfile{
		UserID:       user.ID,
		BusinessName: "Sítio Teste",
	}
	if err := s.db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create producer profile: %v", err)
	}
	return user, profile, token
}

// doRequest sends a JSON request through the router and returns the recorder
func doRequest(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a recorder body into out
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
	}
}

// createLocation inserts a location owned by the given producer profile
func createTestLocation(t *testing.T, s *Server, profile *models.ProducerProfile, name string, lat, lng *float64) *models.Location {
	t.Helper()

	address := &models.Address{
		Street:    "Rua das Flores",
		City:      "Curitiba",
		State:     "PR",
		Latitude:  lat,
		Longitude: lng,
	}
	if err := s.db.Create(address).Error; err != nil {
		t.Fatalf("failed to create address: %v", err)
	}
	location := &models.Location{
		ProducerID:  profile.ID,
		Name:        name,
		Type:        models.LocationTypeFair,
		Description: "Feira de produtos orgânicos",
		AddressID:   address.ID,
		IsActive:    true,
	}
	if err := s.db.Create(location).Error; err != nil {
		t.Fatalf("failed to create location: %v", err)
	}
	return location
}

func floatPtr(v float64) *float64 { return &v }
