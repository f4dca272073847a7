// Package permissions derives role-based access decisions from a user
// snapshot. Every function here is a pure predicate: same snapshot in, same
// decision out, no I/O and no caching.
package permissions

// User roles as returned by the API
const (
	RoleConsumer = "CONSUMER"
	RoleProducer = "PRODUCER"
)

// Route targets for post-decision navigation
const (
	HomeRoute             = "/"
	ProducerDashboardRoute = "/minhas-feiras"
)

// User is the profile snapshot the API returns for the current account.
// A nil *User means nobody is logged in.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
	Role      string `json:"user_type"`
	Phone     string `json:"phone"`
	Avatar    string `json:"avatar,omitempty"`
	// IsActive is optional in API responses; absent counts as active
	IsActive *bool `json:"is_active,omitempty"`
}

// IsAuthenticated reports whether the snapshot belongs to a usable account.
// A missing is_active flag counts as active.
func IsAuthenticated(u *User) bool {
	return u != nil && (u.IsActive == nil || *u.IsActive)
}

// IsConsumer reports whether the user is an authenticated consumer
func IsConsumer(u *User) bool {
	return IsAuthenticated(u) && u.Role == RoleConsumer
}

// IsProducer reports whether the user is an authenticated producer
func IsProducer(u *User) bool {
	return IsAuthenticated(u) && u.Role == RoleProducer
}

// CanAccessConsumerFeatures gates consumer areas (favorites, search)
func CanAccessConsumerFeatures(u *User) bool {
	return IsConsumer(u)
}

// CanAccessProducerFeatures gates producer areas (managing feiras, products)
func CanAccessProducerFeatures(u *User) bool {
	return IsProducer(u)
}

// CanManageLocation reports whether the user may edit a specific location
func CanManageLocation(u *User, ownerID string) bool {
	return IsProducer(u) && u.ID == ownerID
}

// CanSendMessages is open to both roles
func CanSendMessages(u *User) bool {
	return IsAuthenticated(u)
}

// CanFavoriteLocations is a consumer-only capability
func CanFavoriteLocations(u *User) bool {
	return IsConsumer(u)
}

// NeedsProfileCompletion reports whether the profile is missing name fields.
// Both role branches currently apply the same rule; the producer branch is
// kept separate because it is expected to grow a business-name check.
func NeedsProfileCompletion(u *User) bool {
	if !IsAuthenticated(u) {
		return false
	}

	if IsProducer(u) {
		return u.FirstName == "" || u.LastName == ""
	}

	return u.FirstName == "" || u.LastName == ""
}

// RoleLabel returns the user-facing label for a role
func RoleLabel(role string) string {
	switch role {
	case RoleConsumer:
		return "Consumidor"
	case RoleProducer:
		return "Produtor"
	default:
		return role
	}
}

// HomeRouteFor returns the landing route for a user snapshot
func HomeRouteFor(u *User) string {
	if IsProducer(u) {
		return ProducerDashboardRoute
	}
	return HomeRoute
}
