package server

import (
	"net/http"
	"testing"

	"github.com/organico-dev/organico/internal/auth"
	"github.com/organico-dev/organico/internal/models"
)

func TestObtainTokenPair(t *testing.T) {
	s := newTestServer(t)
	createUser(t, s, "ana@example.com", models.RoleConsumer)

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
	}{
		{
			name:       "valid credentials",
			body:       map[string]string{"email": "ana@example.com", "password": "secret123"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong password",
			body:       map[string]string{"email": "ana@example.com", "password": "wrong-pass"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown email",
			body:       map[string]string{"email": "nobody@example.com", "password": "secret123"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing password",
			body:       map[string]string{"email": "ana@example.com"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/api/token/", "", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				var pair TokenPairResponse
				decodeBody(t, rec, &pair)
				if pair.Access == "" || pair.Refresh == "" {
					t.Error("expected both access and refresh tokens")
				}
			}
		})
	}
}

func TestObtainTokenPairInactiveUser(t *testing.T) {
	s := newTestServer(t)
	user, _ := createUser(t, s, "inactive@example.com", models.RoleConsumer)
	s.db.Model(user).Update("is_active", false)

	body := map[string]string{"email": "inactive@example.com", "password": "secret123"}
	rec := doRequest(t, s, http.MethodPost, "/api/token/", "", body)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// The refresh endpoint returns a fresh access token only; the refresh token
// is neither rotated nor returned.
func TestRefreshToken(t *testing.T) {
	s := newTestServer(t)
	user, _ := createUser(t, s, "ana@example.com", models.RoleConsumer)
	access, refresh, err := auth.GenerateTokenPair(user.ID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("failed to generate tokens: %v", err)
	}

	rec := doRequest(t, s, http.MethodPost, "/api/token/refresh/", "", map[string]string{"refresh": refresh})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["access"] == "" {
		t.Error("expected a new access token")
	}
	if _, ok := resp["refresh"]; ok {
		t.Error("refresh endpoint must not rotate the refresh token")
	}

	// An access token is not accepted in place of a refresh token
	rec = doRequest(t, s, http.MethodPost, "/api/token/refresh/", "", map[string]string{"refresh": access})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("access-as-refresh status = %d, want 401", rec.Code)
	}
}

func TestRefreshTokenDeactivatedUser(t *testing.T) {
	s := newTestServer(t)
	user, _ := createUser(t, s, "ana@example.com", models.RoleConsumer)
	_, refresh, err := auth.GenerateTokenPair(user.ID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("failed to generate tokens: %v", err)
	}
	s.db.Model(user).Update("is_active", false)

	rec := doRequest(t, s, http.MethodPost, "/api/token/refresh/", "", map[string]string{"refresh": refresh})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	body := map[string]string{
		"email":            "novo@example.com",
		"password":         "secret123",
		"password_confirm": "secret123",
		"first_name":       "Novo",
		"last_name":        "Usuário",
		"user_type":        models.RoleConsumer,
	}
	rec := doRequest(t, s, http.MethodPost, "/api/users/register/", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var profile UserProfile
	decodeBody(t, rec, &profile)
	if profile.Email != "novo@example.com" || profile.UserType != models.RoleConsumer {
		t.Errorf("profile = %+v", profile)
	}

	// Same email again
	rec = doRequest(t, s, http.MethodPost, "/api/users/register/", "", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}
}

func TestRegisterPasswordMismatch(t *testing.T) {
	s := newTestServer(t)

	body := map[string]string{
		"email":            "novo@example.com",
		"password":         "secret123",
		"password_confirm": "different",
		"first_name":       "Novo",
		"user_type":        models.RoleConsumer,
	}
	rec := doRequest(t, s, http.MethodPost, "/api/users/register/", "", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["error"] != "As senhas não coincidem" {
		t.Errorf("error = %q", resp["error"])
	}
}

// Registering as a producer provisions the producer profile right away
func TestRegisterProducerCreatesProfile(t *testing.T) {
	s := newTestServer(t)

	body := map[string]string{
		"email":            "produtor@example.com",
		"password":         "secret123",
		"password_confirm": "secret123",
		"first_name":       "João",
		"last_name":        "Silva",
		"user_type":        models.RoleProducer,
	}
	rec := doRequest(t, s, http.MethodPost, "/api/users/register/", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var user models.User
	if err := s.db.Where("email = ?", "produtor@example.com").First(&user).Error; err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	var count int64
	s.db.Model(&models.ProducerProfile{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Errorf("producer profiles = %d, want 1", count)
	}
}

func TestGetCurrentUser(t *testing.T) {
	s := newTestServer(t)
	_, token := createUser(t, s, "ana@example.com", models.RoleConsumer)

	rec := doRequest(t, s, http.MethodGet, "/api/users/me/", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var profile UserProfile
	decodeBody(t, rec, &profile)
	if profile.Email != "ana@example.com" {
		t.Errorf("email = %q", profile.Email)
	}
	if profile.FullName != "Test User" {
		t.Errorf("full_name = %q", profile.FullName)
	}

	// No token
	rec = doRequest(t, s, http.MethodGet, "/api/users/me/", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rec.Code)
	}
}

func TestUpdateCurrentUserPartial(t *testing.T) {
	s := newTestServer(t)
	_, token := createUser(t, s, "ana@example.com", models.RoleConsumer)

	rec := doRequest(t, s, http.MethodPatch, "/api/users/me/", token, map[string]string{"phone": "(41) 99999-0000"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var profile UserProfile
	decodeBody(t, rec, &profile)
	if profile.Phone != "(41) 99999-0000" {
		t.Errorf("phone = %q", profile.Phone)
	}
	if profile.FirstName != "Test" {
		t.Errorf("untouched field changed: first_name = %q", profile.FirstName)
	}
}

func TestDeactivatedUserRejectedByMiddleware(t *testing.T) {
	s := newTestServer(t)
	user, token := createUser(t, s, "ana@example.com", models.RoleConsumer)
	s.db.Model(user).Update("is_active", false)

	rec := doRequest(t, s, http.MethodGet, "/api/users/me/", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
