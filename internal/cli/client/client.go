// Package client talks to the API. Every request attaches the stored access
// token; a 401 triggers exactly one refresh-and-retry round before the error
// is surfaced, mirroring the session contract of the web client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/organico-dev/organico/internal/cli/tokenstore"
	"github.com/organico-dev/organico/internal/permissions"
)

// ErrSessionExpired wraps the refresh failure after the stored session has
// been cleared. Callers should direct the user back to login.
var ErrSessionExpired = errors.New("session expired, please log in again")

// APIError carries a non-2xx response from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error (%d)", e.StatusCode)
}

// Client is the authenticated HTTP gateway to the API
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     tokenstore.Store
}

// New creates a client rooted at baseURL, reading credentials from tokens
func New(baseURL string, tokens tokenstore.Store) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
	}
}

// SetHTTPClient overrides the underlying HTTP client, mainly for tests
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// do sends one request and decodes the response into out (when non-nil).
// On a 401 it attempts a single token refresh and resends the request once;
// a failed refresh clears the stored session before the error is returned.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		original := decodeError(resp)

		refreshToken, err := c.tokens.Get(tokenstore.KeyRefreshToken)
		if err != nil {
			// Nothing to refresh with, the original failure stands
			return original
		}

		if err := c.refreshAccessToken(ctx, refreshToken); err != nil {
			// The session is beyond repair. Drop every stored credential
			// so the next command starts from a clean anonymous state.
			c.tokens.Clear() //nolint:errcheck
			return fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}

		resp, err = c.send(ctx, method, path, body)
		if err != nil {
			return err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		resp.Body.Close()
		return nil
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// send performs one HTTP round trip with the current access token attached
func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access, err := c.tokens.Get(tokenstore.KeyAccessToken); err == nil && access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// refreshAccessToken exchanges the refresh token for a new access token and
// persists it. The request deliberately bypasses do so a rejected refresh
// can never recurse into another refresh.
func (c *Client) refreshAccessToken(ctx context.Context, refreshToken string) error {
	payload, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/token/refresh/", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	defer resp.Body.Close()

	var result struct {
		Access string `json:"access"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if result.Access == "" {
		return errors.New("refresh response missing access token")
	}
	return c.tokens.Set(tokenstore.KeyAccessToken, result.Access)
}

// decodeError turns a non-2xx response into an APIError, draining the body
func decodeError(resp *http.Response) error {
	defer resp.Body.Close()
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	message := ""
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		message = payload.Error
		if message == "" {
			message = payload.Detail
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

// TokenPair is the response of a credential login
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for a token pair. Nothing is persisted here;
// the session store decides when tokens are written.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	body := map[string]string{"email": email, "password": password}
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/token/", body, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// RegisterData carries the fields of a new account
type RegisterData struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	UserType        string `json:"user_type"`
	Phone           string `json:"phone,omitempty"`
}

// Register creates a new account without logging in
func (c *Client) Register(ctx context.Context, data RegisterData) error {
	return c.do(ctx, http.MethodPost, "/api/users/register/", data, nil)
}

// CurrentUser fetches the authenticated user's profile
func (c *Client) CurrentUser(ctx context.Context) (*permissions.User, error) {
	var user permissions.User
	if err := c.do(ctx, http.MethodGet, "/api/users/me/", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileUpdate carries a partial profile update; nil fields are untouched
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
	UserType  *string `json:"user_type,omitempty"`
}

// UpdateProfile applies a partial update and returns the fresh profile
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*permissions.User, error) {
	var user permissions.User
	if err := c.do(ctx, http.MethodPatch, "/api/users/me/", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// LocationSummary is one row of a location listing
type LocationSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	LocationType string   `json:"location_type"`
	ProducerName string   `json:"producer_name"`
	MainImage    string   `json:"main_image"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	ProductCount int      `json:"product_count"`
	IsVerified   bool     `json:"is_verified"`
	IsFavorited  *bool    `json:"is_favorited,omitempty"`
}

// LocationFilters narrows a location listing; zero values are omitted
type LocationFilters struct {
	LocationType string
	City         string
	Search       string
}

func (f LocationFilters) encode() string {
	values := url.Values{}
	if f.LocationType != "" {
		values.Set("location_type", f.LocationType)
	}
	if f.City != "" {
		values.Set("city", f.City)
	}
	if f.Search != "" {
		values.Set("search", f.Search)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// ListLocations fetches active locations, optionally filtered
func (c *Client) ListLocations(ctx context.Context, filters LocationFilters) ([]LocationSummary, error) {
	var locations []LocationSummary
	if err := c.do(ctx, http.MethodGet, "/api/locations/"+filters.encode(), nil, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// MapData fetches the locations that carry coordinates
func (c *Client) MapData(ctx context.Context) ([]LocationSummary, error) {
	var locations []LocationSummary
	if err := c.do(ctx, http.MethodGet, "/api/locations/map_data/", nil, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// MyLocations fetches the locations owned by the authenticated producer
func (c *Client) MyLocations(ctx context.Context) ([]LocationSummary, error) {
	var locations []LocationSummary
	if err := c.do(ctx, http.MethodGet, "/api/locations/my_locations/", nil, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// FavoriteLocation is the embedded location of a favorite listing
type FavoriteLocation struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LocationType string `json:"location_type"`
	MainImage    string `json:"main_image,omitempty"`
}

// Favorite is one saved location of a consumer. The location id rides
// under "location" and the expanded record under "location_details".
type Favorite struct {
	ID         string            `json:"id"`
	LocationID string            `json:"location"`
	Note       string            `json:"note"`
	CreatedAt  time.Time         `json:"created_at"`
	Location   *FavoriteLocation `json:"location_details"`
}

// ListFavorites fetches the authenticated user's favorites, newest first
func (c *Client) ListFavorites(ctx context.Context) ([]Favorite, error) {
	var favorites []Favorite
	if err := c.do(ctx, http.MethodGet, "/api/favorites/", nil, &favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}

// ToggleResult reports the state after a favorite toggle
type ToggleResult struct {
	Favorited bool   `json:"favorited"`
	Message   string `json:"message"`
}

// ToggleFavorite adds or removes a location from the user's favorites
func (c *Client) ToggleFavorite(ctx context.Context, locationID string) (*ToggleResult, error) {
	body := map[string]string{"location_id": locationID}
	var result ToggleResult
	if err := c.do(ctx, http.MethodPost, "/api/favorites/toggle/", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CheckFavorite reports whether a location is among the user's favorites
func (c *Client) CheckFavorite(ctx context.Context, locationID string) (bool, error) {
	var result struct {
		Favorited bool `json:"favorited"`
	}
	path := "/api/favorites/check/?location_id=" + url.QueryEscape(locationID)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return false, err
	}
	return result.Favorited, nil
}

// Product is one catalog entry
type Product struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	CategoryName string `json:"category_name"`
	IsActive     bool   `json:"is_active"`
}

// ListProducts fetches active products, optionally filtered by search text
func (c *Client) ListProducts(ctx context.Context, search string) ([]Product, error) {
	path := "/api/products/"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}
	var products []Product
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Category is one product grouping
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Icon string `json:"icon"`
}

// ListCategories fetches all product categories
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.do(ctx, http.MethodGet, "/api/products/categories/", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
