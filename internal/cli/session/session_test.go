package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/organico-dev/organico/internal/cli/client"
	"github.com/organico-dev/organico/internal/cli/tokenstore"
)

type fixture struct {
	store  *Store
	tokens *tokenstore.Memory
}

// newFixture runs a fake API where login succeeds for secret123 and the
// profile endpoint answers for the a1 access token.
func newFixture(t *testing.T) fixture {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid email or password"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access": "a1", "refresh": "r1"})
	})
	mux.HandleFunc("/api/users/me/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer a1" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid or expired token"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":         "u1",
			"email":      "ana@example.com",
			"first_name": "Ana",
			"full_name":  "Ana Souza",
			"user_type":  "CONSUMER",
		})
	})
	mux.HandleFunc("/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid or expired refresh token"})
	})
	mux.HandleFunc("/api/users/register/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] == "taken@example.com" {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"error": "Email já cadastrado"})
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "u2"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	tokens := tokenstore.NewMemory()
	return fixture{
		store:  New(client.New(srv.URL, tokens), tokens),
		tokens: tokens,
	}
}

func TestStartsLoadingAndAnonymous(t *testing.T) {
	f := newFixture(t)
	if !f.store.IsLoading() {
		t.Error("store should be loading before bootstrap")
	}
	if f.store.IsAuthenticated() {
		t.Error("store should not be authenticated before bootstrap")
	}
}

func TestBootstrapWithoutTokensSettlesAnonymous(t *testing.T) {
	f := newFixture(t)
	f.store.Bootstrap(context.Background())

	if f.store.IsLoading() {
		t.Error("loading should end after bootstrap")
	}
	if f.store.CurrentUser() != nil {
		t.Error("no user expected without stored tokens")
	}
}

func TestBootstrapRestoresStoredSession(t *testing.T) {
	f := newFixture(t)
	f.tokens.Set(tokenstore.KeyAccessToken, "a1")
	f.tokens.Set(tokenstore.KeyRefreshToken, "r1")

	f.store.Bootstrap(context.Background())

	user := f.store.CurrentUser()
	if user == nil || user.Email != "ana@example.com" {
		t.Fatalf("user = %+v, want restored profile", user)
	}
	if !f.store.IsAuthenticated() {
		t.Error("store should be authenticated after restore")
	}
}

func TestBootstrapClearsBrokenSession(t *testing.T) {
	f := newFixture(t)
	// Stale access and a refresh the server rejects
	f.tokens.Set(tokenstore.KeyAccessToken, "expired")
	f.tokens.Set(tokenstore.KeyRefreshToken, "expired")
	f.tokens.Set(tokenstore.KeyUserData, `{"id":"u1"}`)

	f.store.Bootstrap(context.Background())

	if f.store.CurrentUser() != nil {
		t.Error("broken session should leave the store anonymous")
	}
	for _, key := range tokenstore.Keys {
		if _, err := f.tokens.Get(key); !errors.Is(err, tokenstore.ErrNotFound) {
			t.Errorf("key %s survived a failed bootstrap", key)
		}
	}
}

func TestBootstrapRunsOnce(t *testing.T) {
	f := newFixture(t)
	f.store.Bootstrap(context.Background())

	// Tokens stored after the first bootstrap must not be picked up
	f.tokens.Set(tokenstore.KeyAccessToken, "a1")
	f.store.Bootstrap(context.Background())

	if f.store.CurrentUser() != nil {
		t.Error("second bootstrap should be a no-op")
	}
}

func TestLoginPersistsTokensAndUser(t *testing.T) {
	f := newFixture(t)

	if err := f.store.Login(context.Background(), "ana@example.com", "secret123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if access, _ := f.tokens.Get(tokenstore.KeyAccessToken); access != "a1" {
		t.Errorf("access token = %q, want a1", access)
	}
	if refresh, _ := f.tokens.Get(tokenstore.KeyRefreshToken); refresh != "r1" {
		t.Errorf("refresh token = %q, want r1", refresh)
	}
	if data, _ := f.tokens.Get(tokenstore.KeyUserData); data == "" {
		t.Error("user data not cached")
	}
	if user := f.store.CurrentUser(); user == nil || user.FullName != "Ana Souza" {
		t.Errorf("user = %+v", user)
	}
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)

	err := f.store.Login(context.Background(), "ana@example.com", "wrong")
	if err == nil {
		t.Fatal("expected login error")
	}

	if f.store.IsAuthenticated() {
		t.Error("failed login must not authenticate")
	}
	if _, err := f.tokens.Get(tokenstore.KeyAccessToken); !errors.Is(err, tokenstore.ErrNotFound) {
		t.Error("failed login must not write tokens")
	}
}

func TestRegisterFailurePropagatesWithoutLogin(t *testing.T) {
	f := newFixture(t)

	err := f.store.Register(context.Background(), client.RegisterData{
		Email:           "taken@example.com",
		Password:        "secret123",
		PasswordConfirm: "secret123",
		UserType:        "CONSUMER",
	})

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusConflict {
		t.Fatalf("error = %v, want 409 APIError", err)
	}
	if f.store.IsAuthenticated() {
		t.Error("failed registration must not authenticate")
	}
}

func TestRegisterThenLogin(t *testing.T) {
	f := newFixture(t)

	err := f.store.Register(context.Background(), client.RegisterData{
		Email:           "ana@example.com",
		Password:        "secret123",
		PasswordConfirm: "secret123",
		UserType:        "CONSUMER",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if !f.store.IsAuthenticated() {
		t.Error("registration should end logged in")
	}
}

func TestLogoutClearsEverythingAndNeverFails(t *testing.T) {
	f := newFixture(t)
	if err := f.store.Login(context.Background(), "ana@example.com", "secret123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	f.store.Logout()

	if f.store.IsAuthenticated() {
		t.Error("logout should leave the store anonymous")
	}
	for _, key := range tokenstore.Keys {
		if _, err := f.tokens.Get(key); !errors.Is(err, tokenstore.ErrNotFound) {
			t.Errorf("key %s survived logout", key)
		}
	}

	// Logging out twice is fine
	f.store.Logout()
}
