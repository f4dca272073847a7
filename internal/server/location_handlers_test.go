package server

import (
	"net/http"
	"testing"

	"github.com/organico-dev/organico/internal/models"
)

func TestListLocationsPublic(t *testing.T) {
	s := newTestServer(t)
	_, profile, _ := createProducer(t, s, "produtor@example.com")
	createTestLocation(t, s, profile, "Feira do Largo", floatPtr(-25.43), floatPtr(-49.27))
	inactive := createTestLocation(t, s, profile, "Feira Fechada", nil, nil)
	s.db.Model(inactive).Update("is_active", false)

	rec := doRequest(t, s, http.MethodGet, "/api/locations/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var items []LocationListItem
	decodeBody(t, rec, &items)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1 (inactive hidden)", len(items))
	}
	if items[0].Name != "Feira do Largo" || items[0].City != "Curitiba" {
		t.Errorf("item = %+v", items[0])
	}
	if items[0].IsFavorited != nil {
		t.Error("anonymous listing must not carry is_favorited")
	}
}

func TestListLocationsFilters(t *testing.T) {
	s := newTestServer(t)
	_, profile, _ := createProducer(t, s, "produtor@example.com")
	createTestLocation(t, s, profile, "Feira do Largo", nil, nil)
	store := createTestLocation(t, s, profile, "Empório Verde", nil, nil)
	s.db.Model(store).Update("type", models.LocationTypeStore)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"by type", "?location_type=STORE", 1},
		{"by search", "?search=Largo", 1},
		{"by city", "?city=Curitiba", 2},
		{"no match", "?city=Recife", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodGet, "/api/locations/"+tt.query, "", nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			var items []LocationListItem
			decodeBody(t, rec, &items)
			if len(items) != tt.want {
				t.Errorf("items = %d, want %d", len(items), tt.want)
			}
		})
	}
}

// Map data carries only locations with both coordinates set
func TestGetMapData(t *testing.T) {
	s := newTestServer(t)
	_, profile, _ := createProducer(t, s, "produtor@example.com")
	createTestLocation(t, s, profile, "Feira do Largo", floatPtr(-25.43), floatPtr(-49.27))
	createTestLocation(t, s, profile, "Sem Coordenadas", nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/locations/map_data/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var items []LocationListItem
	decodeBody(t, rec, &items)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].Latitude == nil || items[0].Longitude == nil {
		t.Error("map rows must carry coordinates")
	}
}

func TestGetMyLocations(t *testing.T) {
	s := newTestServer(t)
	_, profile, token := createProducer(t, s, "produtor@example.com")
	createTestLocation(t, s, profile, "Feira do Largo", nil, nil)

	_, otherProfile, _ := createProducer(t, s, "outro@example.com")
	createTestLocation(t, s, otherProfile, "Feira Alheia", nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/locations/my_locations/", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var items []LocationListItem
	decodeBody(t, rec, &items)
	if len(items) != 1 || items[0].Name != "Feira do Largo" {
		t.Errorf("items = %+v, want only the owner's location", items)
	}
}

// A producer user without a provisioned profile gets the Portuguese detail
// message the web client shows verbatim.
func TestGetMyLocationsWithoutProfile(t *testing.T) {
	s := newTestServer(t)
	_, token := createUser(t, s, "produtor@example.com", models.RoleProducer)

	rec := doRequest(t, s, http.MethodGet, "/api/locations/my_locations/", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["detail"] != "Você não possui um perfil de produtor." {
		t.Errorf("detail = %q", resp["detail"])
	}
}

func TestCreateLocation(t *testing.T) {
	s := newTestServer(t)
	_, _, token := createProducer(t, s, "produtor@example.com")

	body := map[string]any{
		"name":          "Feira Nova",
		"location_type": models.LocationTypeFair,
		"description":   "Orgânicos aos sábados",
		"address": map[string]any{
			"street":   "Praça Central",
			"city":     "Curitiba",
			"state":    "PR",
			"zip_code": "80010-000",
		},
	}
	rec := doRequest(t, s, http.MethodPost, "/api/locations/", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var count int64
	s.db.Model(&models.Location{}).Count(&count)
	if count != 1 {
		t.Errorf("locations = %d, want 1", count)
	}
}

func TestCreateLocationInvalidZipCode(t *testing.T) {
	s := newTestServer(t)
	_, _, token := createProducer(t, s, "produtor@example.com")

	body := map[string]any{
		"name":          "Feira Nova",
		"location_type": models.LocationTypeFair,
		"address": map[string]any{
			"city":     "Curitiba",
			"state":    "PR",
			"zip_code": "80010",
		},
	}
	rec := doRequest(t, s, http.MethodPost, "/api/locations/", token, body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
}

// Updating or deleting someone else's location is refused with the same
// Portuguese message for both operations.
func TestLocationOwnership(t *testing.T) {
	s := newTestServer(t)
	_, profile, _ := createProducer(t, s, "dono@example.com")
	location := createTestLocation(t, s, profile, "Feira do Dono", nil, nil)
	_, _, intruderToken := createProducer(t, s, "intruso@example.com")

	rec := doRequest(t, s, http.MethodPatch, "/api/locations/"+location.ID+"/", intruderToken, map[string]string{"name": "Tomada"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("update status = %d, want 403 (body %s)", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["error"] != "Você só pode alterar suas próprias localizações" {
		t.Errorf("error = %q", resp["error"])
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/locations/"+location.ID+"/", intruderToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("delete status = %d, want 403", rec.Code)
	}
}

func TestUpdateAndDeleteOwnLocation(t *testing.T) {
	s := newTestServer(t)
	_, profile, token := createProducer(t, s, "dono@example.com")
	location := createTestLocation(t, s, profile, "Feira do Dono", nil, nil)

	rec := doRequest(t, s, http.MethodPatch, "/api/locations/"+location.ID+"/", token, map[string]string{"name": "Feira Renomeada"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}

	var updated models.Location
	s.db.First(&updated, "id = ?", location.ID)
	if updated.Name != "Feira Renomeada" {
		t.Errorf("name = %q", updated.Name)
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/locations/"+location.ID+"/", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	var count int64
	s.db.Model(&models.Location{}).Where("id = ?", location.ID).Count(&count)
	if count != 0 {
		t.Error("location still present after delete")
	}
}
