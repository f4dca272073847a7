package models

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// User roles
const (
	RoleConsumer = "CONSUMER"
	RoleProducer = "PRODUCER"
)

// Location types ("feira" kinds)
const (
	LocationTypeFair     = "FAIR"
	LocationTypeStore    = "STORE"
	LocationTypeFarm     = "FARM"
	LocationTypeDelivery = "DELIVERY"
	LocationTypeOther    = "OTHER"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User represents a marketplace account, either a consumer or a producer
type User struct {
	BaseModel
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"user_type" gorm:"not null;default:CONSUMER"`
	Phone        string    `json:"phone"`
	Avatar       string    `json:"avatar,omitempty"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Computed field (populated at runtime, not persisted)
	FullName string `json:"full_name" gorm:"-"`
}

// AfterFind populates computed fields after loading from database
func (u *User) AfterFind(tx *gorm.DB) error {
	u.FullName = u.DisplayName()
	return nil
}

// DisplayName returns the user's full name, falling back to the email
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// ProducerProfile is the extended profile for producer users
type ProducerProfile struct {
	BaseModel
	UserID       string `json:"user_id" gorm:"uniqueIndex;not null"`
	BusinessName string `json:"business_name" gorm:"not null"`
	Description  string `json:"description"`
	CoverImage   string `json:"cover_image,omitempty"`

	HasOrganicCertification bool   `json:"has_organic_certification" gorm:"not null;default:false"`
	CertificationDetails    string `json:"certification_details"`

	Website   string `json:"website"`
	Instagram string `json:"instagram"`
	Facebook  string `json:"facebook"`
	Whatsapp  string `json:"whatsapp"`

	IsVerified bool      `json:"is_verified" gorm:"not null;default:false"`
	IsActive   bool      `json:"is_active" gorm:"not null;default:true"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Address is a street address with optional geolocation
type Address struct {
	BaseModel
	Street       string   `json:"street"`
	Number       string   `json:"number"`
	Complement   string   `json:"complement"`
	Neighborhood string   `json:"neighborhood"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	ZipCode      string   `json:"zip_code"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

// Category groups catalog products (vegetables, fruits, grains, ...)
type Category struct {
	BaseModel
	Name        string    `json:"name" gorm:"unique;not null"`
	Slug        string    `json:"slug" gorm:"unique;not null"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"` // emoji or icon name
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// BeforeCreate derives the slug from the name when absent
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if err := c.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	return nil
}

// Product is a catalog item, not inventory. Producers associate products
// with their locations.
type Product struct {
	BaseModel
	Name        string    `json:"name" gorm:"not null"`
	CategoryID  *string   `json:"category" gorm:"type:varchar(26)"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Category *Category `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`

	// Computed field (populated at runtime, not persisted)
	CategoryName string `json:"category_name" gorm:"-"`
}

// AfterFind populates computed fields after loading from database
func (p *Product) AfterFind(tx *gorm.DB) error {
	if p.Category != nil {
		p.CategoryName = p.Category.Name
	}
	return nil
}

// Location is a point of sale ("feira"): market stall, store, farm or
// delivery-only operation
type Location struct {
	BaseModel
	ProducerID string `json:"producer" gorm:"not null;index"`
	Name       string `json:"name" gorm:"not null"`
	Type       string `json:"location_type" gorm:"not null;default:FAIR"`

	Description string `json:"description"`
	AddressID   string `json:"-" gorm:"not null"`
	MainImage   string `json:"main_image,omitempty"`

	OperationDays  string `json:"operation_days"`  // e.g. "Segunda a Sábado"
	OperationHours string `json:"operation_hours"` // e.g. "7h às 12h"

	Phone    string `json:"phone"`
	Whatsapp string `json:"whatsapp"`

	IsActive   bool      `json:"is_active" gorm:"not null;default:true"`
	IsVerified bool      `json:"is_verified" gorm:"not null;default:false"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Producer *ProducerProfile `json:"-" gorm:"foreignKey:ProducerID;constraint:OnDelete:CASCADE"`
	Address  Address          `json:"address" gorm:"foreignKey:AddressID;constraint:OnDelete:CASCADE"`
	Products []Product        `json:"products,omitempty" gorm:"many2many:location_products"`
	Images   []LocationImage  `json:"images,omitempty" gorm:"foreignKey:LocationID"`

	// Computed field (populated at runtime, not persisted)
	ProducerName string `json:"producer_name" gorm:"-"`
}

// AfterFind populates computed fields after loading from database
func (l *Location) AfterFind(tx *gorm.DB) error {
	if l.Producer != nil {
		l.ProducerName = l.Producer.BusinessName
	}
	return nil
}

// LocationImage is an additional gallery image for a location
type LocationImage struct {
	BaseModel
	LocationID string `json:"-" gorm:"not null;index"`
	Image      string `json:"image" gorm:"not null"`
	Caption    string `json:"caption"`
	Order      int    `json:"order" gorm:"not null;default:0"`
}

// Favorite marks a location a user wants to find again. Unique per
// (user, location) pair.
type Favorite struct {
	BaseModel
	UserID     string `json:"user" gorm:"not null;uniqueIndex:idx_user_location"`
	LocationID string `json:"location" gorm:"not null;uniqueIndex:idx_user_location"`
	Note       string `json:"note"`

	// Relationships
	Location *Location `json:"location_details,omitempty" gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE"`
}

// Conversation pairs a consumer with a producer. Messaging is stubbed:
// the schema exists so the endpoints have a contract to grow into.
type Conversation struct {
	BaseModel
	ConsumerID    string     `json:"consumer" gorm:"not null;index"`
	ProducerID    string     `json:"producer" gorm:"not null;index"`
	LastMessageAt *time.Time `json:"last_message_at"`

	Messages []Message `json:"messages,omitempty" gorm:"foreignKey:ConversationID"`
}

// Message is a single message inside a conversation
type Message struct {
	BaseModel
	ConversationID string `json:"conversation" gorm:"not null;index"`
	SenderID       string `json:"sender" gorm:"not null"`
	Content        string `json:"content" gorm:"not null"`
	IsRead         bool   `json:"is_read" gorm:"not null;default:false"`
}

// Slugify lowercases a name and replaces runs of non-alphanumerics with a dash
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&User{}, &ProducerProfile{}, &Address{}, &Category{}, &Product{},
		&Location{}, &LocationImage{}, &Favorite{}, &Conversation{}, &Message{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// FindByIDWithPreload finds a record by ID with preloading
func FindByIDWithPreload[T any](db *gorm.DB, id string, model *T, preloads ...string) error {
	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	return query.Where("id = ?", id).First(model).Error
}
