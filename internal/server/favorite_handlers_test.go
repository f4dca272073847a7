package server

import (
	"net/http"
	"testing"

	"github.com/organico-dev/organico/internal/models"
)

func TestToggleFavorite(t *testing.T) {
	s := newTestServer(t)
	_, profile, _ := createProducer(t, s, "produtor@example.com")
	location := createTestLocation(t, s, profile, "Feira do Largo", nil, nil)
	_, token := createUser(t, s, "ana@example.com", models.RoleConsumer)

	// First toggle adds
	rec := doRequest(t, s, http.MethodPost, "/api/favorites/toggle/", token, map[string]string{"location_id": location.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first toggle status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Favorited bool `json:"favorited"`
	}
	decodeBody(t, rec, &created)
	if !created.Favorited {
		t.Error("first toggle should favorite")
	}

	// Second toggle removes
	rec = doRequest(t, s, http.MethodPost, "/api/favorites/toggle/", token, map[string]string{"location_id": location.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("second toggle status = %d, body %s", rec.Code, rec.Body.String())
	}
	var removed struct {
		Favorited bool   `json:"favorited"`
		Message   string `json:"message"`
	}
	decodeBody(t, rec, &removed)
	if removed.Favorited {
		t.Error("second toggle should unfavorite")
	}
	if removed.Message != "Removido dos favoritos" {
		t.Errorf("message = %q", removed.Message)
	}

	var count int64
	s.db.Model(&models.Favorite{}).Count(&count)
	if count != 0 {
		t.Errorf("favorites = %d, want 0", count)
	}
}

func TestToggleFavoriteUnknownLocation(t *testing.T) {
	s := newTestServer(t)
	_, token := createUser(t, s, "ana@example.com", models.RoleConsumer)

	rec := doRequest(t, s, http.MethodPost, "/api/favorites/toggle/", token, map[string]string{"location_id": "01JUNKJUNKJUNKJUNKJUNKJUNK"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestCreateFavoriteDuplicate(t *testing.T) {
	s := newTestServer(t)
	_, profile, _ := createProducer(t, s, "produtor@example.com")
	location := createTestLocation(t, s, profile, "Feira do Largo", nil, nil)
	_, token := createUser(t, s, "ana@example.com", models.RoleConsumer)

	body := map[string]string{"location_id": location.ID}
	rec := doRequest(t, s, http.MethodPost, "/api/favorites/", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, http.MethodPost, "/api/favorites/", token, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate status = %d, want 400", rec.Code)
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["error"] != "Localização já está nos favoritos" {
		t.Errorf("error = %q", resp["error"])
	}
}

func TestCheckFavorite(t *testing.T) {
	s := newTestServer(t)
	_, profile, _ := createProducer(t, s, "produtor@example.com")
	location := createTestLocation(t, s, profile, "Feira do Largo", nil, nil)
	_, token := createUser(t, s, "ana@example.com", models.RoleConsumer)

	rec := doRequest(t, s, http.MethodGet, "/api/favorites/check/?location_id="+location.ID, token, nil)
	var resp struct {
		Favorited bool `json:"favorited"`
	}
	decodeBody(t, rec, &resp)
	if resp.Favorited {
		t.Error("not yet favorited")
	}

	doRequest(t, s, http.MethodPost, "/api/favorites/toggle/", token, map[string]string{"location_id": location.ID})

	rec = doRequest(t, s, http.MethodGet, "/api/favorites/check/?location_id="+location.ID, token, nil)
	decodeBody(t, rec, &resp)
	if !resp.Favorited {
		t.Error("expected favorited after toggle")
	}
}

// Favorite state is scoped per user in listings
func TestListLocationsMarksFavorites(t *testing.T) {
	s := newTestServer(t)
	_, profile, _ := createProducer(t, s, "produtor@example.com")
	location := createTestLocation(t, s, profile, "Feira do Largo", nil, nil)
	createTestLocation(t, s, profile, "Feira Nova", nil, nil)
	_, token := createUser(t, s, "ana@example.com", models.RoleConsumer)

	doRequest(t, s, http.MethodPost, "/api/favorites/toggle/", token, map[string]string{"location_id": location.ID})

	rec := doRequest(t, s, http.MethodGet, "/api/locations/", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var items []LocationListItem
	decodeBody(t, rec, &items)
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	for _, item := range items {
		if item.IsFavorited == nil {
			t.Fatalf("authenticated listing must carry is_favorited for %s", item.Name)
		}
		want := item.ID == location.ID
		if *item.IsFavorited != want {
			t.Errorf("is_favorited for %s = %v, want %v", item.Name, *item.IsFavorited, want)
		}
	}
}

func TestDeleteFavoriteScopedToOwner(t *testing.T) {
	s := newTestServer(t)
	_, profile, _ := createProducer(t, s, "produtor@example.com")
	location := createTestLocation(t, s, profile, "Feira do Largo", nil, nil)
	_, anaToken := createUser(t, s, "ana@example.com", models.RoleConsumer)
	_, bobToken := createUser(t, s, "bob@example.com", models.RoleConsumer)

	rec := doRequest(t, s, http.MethodPost, "/api/favorites/", anaToken, map[string]string{"location_id": location.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var fav struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &fav)

	// Another user cannot delete it
	rec = doRequest(t, s, http.MethodDelete, "/api/favorites/"+fav.ID+"/", bobToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user delete status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/favorites/"+fav.ID+"/", anaToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("owner delete status = %d, want 204", rec.Code)
	}
}
