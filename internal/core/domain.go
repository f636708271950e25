package core

import (
	"errors"
	"strings"
)

// Availability states reported by the platform for an apartment listing.
// The backend may introduce new values; anything other than Available is
// treated as "not bookable" by the UI.
const (
	Available   AvailabilityStatus = "available"
	Unavailable AvailabilityStatus = "unavailable"
	Maintenance AvailabilityStatus = "maintenance"
)

// Transaction settlement states.
const (
	TxCompleted TransactionStatus = "completed"
	TxPending   TransactionStatus = "pending"
	TxFailed    TransactionStatus = "failed"
)

type (
	AvailabilityStatus string

	TransactionStatus string

	// Credentials are the admin login form fields.
	Credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	// LoginResponse is the payload returned by the authentication endpoint.
	LoginResponse struct {
		ID        int64  `json:"id"`
		Username  string `json:"username"`
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expiresIn"`
	}

	// User mirrors the platform user record. The id is assigned server-side
	// and never changes once created.
	User struct {
		ID                   int64  `json:"id"`
		Username             string `json:"username"`
		FirstName            string `json:"firstName"`
		LastName             string `json:"lastName"`
		Email                string `json:"email"`
		CreatedAt            string `json:"createdAt"`
		IsAdmin              bool   `json:"isAdmin"`
		NationalID           string `json:"nationalID,omitempty"`
		Phone                string `json:"phone,omitempty"`
		ProfilePictureURL    string `json:"profilePictureUrl,omitempty"`
		Bio                  string `json:"bio,omitempty"`
		DateOfBirth          string `json:"dateOfBirth,omitempty"`
		GovernmentIDVerified bool   `json:"governmentIdVerified"`
		EmailVerified        bool   `json:"emailVerified"`
		PhoneVerified        bool   `json:"phoneVerified"`
		HostSince            string `json:"hostSince,omitempty"`
		IsSuperhost          bool   `json:"isSuperhost"`
		PreferredLanguage    string `json:"preferredLanguage,omitempty"`
		Timezone             string `json:"timezone,omitempty"`
	}

	// Apartment mirrors the platform listing record.
	Apartment struct {
		ID                 int64              `json:"id"`
		OwnerID            int64              `json:"ownerId"`
		Title              string             `json:"title"`
		Description        string             `json:"description"`
		Location           string             `json:"location"`
		PricePerNight      float64            `json:"pricePerNight"`
		Bedrooms           int                `json:"bedrooms"`
		MaxGuests          int                `json:"maxGuests"`
		SquareMeter        int                `json:"squareMeter"`
		AvailabilityStatus AvailabilityStatus `json:"availabilityStatus"`
		MinimumStay        int                `json:"minimumStay"`
		AddressLine1       string             `json:"addressLine1"`
		AddressLine2       string             `json:"addressLine2,omitempty"`
		City               string             `json:"city"`
		State              string             `json:"state"`
		Country            string             `json:"country"`
		PostalCode         string             `json:"postalCode"`
		Latitude           float64            `json:"latitude,omitempty"`
		Longitude          float64            `json:"longitude,omitempty"`
		PropertyType       string             `json:"propertyType"`
		InstantBook        bool               `json:"instantBook"`
		Rating             float64            `json:"rating"`
		Photos             []string           `json:"photos,omitempty"`
		CreatedAt          string             `json:"createdAt"`
		UpdatedAt          string             `json:"updatedAt"`
		Tags               []string           `json:"apartment_tags,omitempty"`
	}

	// ApartmentUpdate is the allow-listed subset of fields accepted by the
	// listing update endpoint. Tags are deliberately absent: the platform
	// manages them outside the update call, so they are never sent.
	ApartmentUpdate struct {
		Title              string             `json:"title"`
		Description        string             `json:"description"`
		Location           string             `json:"location"`
		PricePerNight      float64            `json:"pricePerNight"`
		Bedrooms           int                `json:"bedrooms"`
		MaxGuests          int                `json:"maxGuests"`
		SquareMeter        int                `json:"squareMeter"`
		AvailabilityStatus AvailabilityStatus `json:"availabilityStatus"`
		MinimumStay        int                `json:"minimumStay"`
		AddressLine1       string             `json:"addressLine1"`
		AddressLine2       string             `json:"addressLine2,omitempty"`
		City               string             `json:"city"`
		State              string             `json:"state"`
		Country            string             `json:"country"`
		PostalCode         string             `json:"postalCode"`
		PropertyType       string             `json:"propertyType"`
		InstantBook        bool               `json:"instantBook"`
	}

	// Category is a taxonomy entry for listings.
	Category struct {
		ID           int64  `json:"id"`
		Name         string `json:"name"`
		Description  string `json:"description"`
		Icon         string `json:"icon"`
		IsActive     bool   `json:"isActive"`
		DisplayOrder int    `json:"displayOrder"`
		CreatedAt    string `json:"createdAt"`
		UpdatedAt    string `json:"updatedAt"`
	}

	// Transaction is a transfer between two platform users.
	Transaction struct {
		ID         int64             `json:"id"`
		SenderID   int64             `json:"senderID"`
		ReceiverID int64             `json:"receiverID"`
		Amount     float64           `json:"amount"`
		Currency   string            `json:"currency"`
		Status     TransactionStatus `json:"status"`
		Method     string            `json:"method"`
		CreatedAt  string            `json:"createdAt"`
	}
)

var (
	ErrEmptyUsername  = errors.New("empty username")
	ErrEmptyPassword  = errors.New("empty password")
	ErrEmptyEmail     = errors.New("empty email")
	ErrEmptyTitle     = errors.New("empty title")
	ErrEmptyName      = errors.New("empty name")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrEmptyCurrency  = errors.New("empty currency")
	ErrSameParties    = errors.New("sender and receiver must differ")
	ErrInvalidParties = errors.New("invalid sender or receiver id")
)

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return ErrEmptyUsername
	}
	if c.Password == "" {
		return ErrEmptyPassword
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}
	return nil
}

func (a Apartment) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrEmptyTitle
	}
	if a.PricePerNight <= 0 {
		return errors.New("price per night must be positive")
	}
	if a.MaxGuests < 1 {
		return errors.New("max guests must be at least 1")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.DisplayOrder < 0 {
		return errors.New("display order cannot be negative")
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Currency) == "" {
		return ErrEmptyCurrency
	}
	if t.SenderID <= 0 || t.ReceiverID <= 0 {
		return ErrInvalidParties
	}
	if t.SenderID == t.ReceiverID {
		return ErrSameParties
	}
	return nil
}

// UpdatePayload projects an apartment onto the allow-listed update subset.
// Fields the update endpoint does not accept (tags, photos, rating and the
// server-computed timestamps) are dropped here, not at the call site.
func (a Apartment) UpdatePayload() ApartmentUpdate {
	return ApartmentUpdate{
		Title:              a.Title,
		Description:        a.Description,
		Location:           a.Location,
		PricePerNight:      a.PricePerNight,
		Bedrooms:           a.Bedrooms,
		MaxGuests:          a.MaxGuests,
		SquareMeter:        a.SquareMeter,
		AvailabilityStatus: a.AvailabilityStatus,
		MinimumStay:        a.MinimumStay,
		AddressLine1:       a.AddressLine1,
		AddressLine2:       a.AddressLine2,
		City:               a.City,
		State:              a.State,
		Country:            a.Country,
		PostalCode:         a.PostalCode,
		PropertyType:       a.PropertyType,
		InstantBook:        a.InstantBook,
	}
}
