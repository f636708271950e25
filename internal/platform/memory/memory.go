// Package memory is a seeded in-memory backend for local development, demos
// and handler tests. Ids are assigned here the way the real server would,
// so the UI's "id is server-side and immutable" assumption holds.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"agrly-admin/internal/core"
	"agrly-admin/internal/platform"
)

const searchPageSize = 10

var ErrNotFound = errors.New("memory: record not found")

type Store struct {
	mu           sync.Mutex
	authed       bool
	nextID       int64
	users        []core.User
	apartments   []core.Apartment
	categories   []core.Category
	transactions []core.Transaction
}

// Ensure interface conformance
var _ platform.Backend = (*Store)(nil)

// New returns a store with a small built-in seed.
func New() *Store {
	s := &Store{nextID: 1}
	s.seedDefaults()
	return s
}

// NewFromFiles loads seed collections from JSON files under base, falling
// back to the built-in seed for any file that is missing or malformed.
func NewFromFiles(base string) *Store {
	s := &Store{nextID: 1}

	okUsers := readSeed(filepath.Join(base, "seed_users.json"), &s.users)
	okApts := readSeed(filepath.Join(base, "seed_apartments.json"), &s.apartments)
	okCats := readSeed(filepath.Join(base, "seed_categories.json"), &s.categories)
	okTxs := readSeed(filepath.Join(base, "seed_transactions.json"), &s.transactions)
	if !okUsers && !okApts && !okCats && !okTxs {
		s.seedDefaults()
	}

	for _, u := range s.users {
		s.bumpNextID(u.ID)
	}
	for _, a := range s.apartments {
		s.bumpNextID(a.ID)
	}
	for _, c := range s.categories {
		s.bumpNextID(c.ID)
	}
	for _, t := range s.transactions {
		s.bumpNextID(t.ID)
	}
	return s
}

func (s *Store) seedDefaults() {
	now := time.Now().UTC().Format(time.RFC3339)
	s.users = []core.User{
		{ID: 1, Username: "admin", FirstName: "Ada", LastName: "Hosts", Email: "admin@example.com", IsAdmin: true, EmailVerified: true, CreatedAt: now},
		{ID: 2, Username: "jsmith", FirstName: "John", LastName: "Smith", Email: "jsmith@example.com", IsSuperhost: true, CreatedAt: now},
	}
	s.apartments = []core.Apartment{
		{ID: 3, OwnerID: 2, Title: "Harbour loft", Location: "Old Town", City: "Lisbon", Country: "PT", PricePerNight: 120, Bedrooms: 2, MaxGuests: 4, AvailabilityStatus: core.Available, PropertyType: "loft", CreatedAt: now, UpdatedAt: now},
	}
	s.categories = []core.Category{
		{ID: 4, Name: "Beachfront", Icon: "🏖️", IsActive: true, DisplayOrder: 1, CreatedAt: now, UpdatedAt: now},
		{ID: 5, Name: "City center", Icon: "🏙️", IsActive: true, DisplayOrder: 2, CreatedAt: now, UpdatedAt: now},
	}
	s.transactions = []core.Transaction{
		{ID: 6, SenderID: 2, ReceiverID: 1, Amount: 240, Currency: "EUR", Status: core.TxCompleted, Method: "card", CreatedAt: now},
	}
	s.nextID = 7
}

func (s *Store) bumpNextID(id int64) {
	if id >= s.nextID {
		s.nextID = id + 1
	}
}

func (s *Store) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func readSeed[T any](path string, out *[]T) bool {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false
	}
	return len(*out) > 0
}

// Login accepts any non-empty credentials; the local store has no password
// database to check against.
func (s *Store) Login(_ context.Context, creds core.Credentials) (core.LoginResponse, error) {
	if err := creds.Validate(); err != nil {
		return core.LoginResponse{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authed = true
	return core.LoginResponse{
		ID:        1,
		Username:  creds.Username,
		Token:     "local-session",
		ExpiresIn: 3600,
	}, nil
}

func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authed = false
}

func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authed
}

// Users

func (s *Store) ListUsers(_ context.Context) ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return core.User{}, ErrNotFound
}

func (s *Store) CreateUser(_ context.Context, u core.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.allocID()
	u.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	s.users = append(s.users, u)
	return nil
}

func (s *Store) UpdateUser(_ context.Context, u core.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == u.ID {
			s.users[i] = u
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.users)
	s.users = core.RemoveByID(s.users, id, func(u core.User) int64 { return u.ID })
	if len(s.users) == before {
		return ErrNotFound
	}
	return nil
}

// Apartments

func (s *Store) ListApartments(_ context.Context) ([]core.Apartment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Apartment, len(s.apartments))
	copy(out, s.apartments)
	return out, nil
}

func (s *Store) GetApartment(_ context.Context, id int64) (core.Apartment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.apartments {
		if a.ID == id {
			return a, nil
		}
	}
	return core.Apartment{}, ErrNotFound
}

func (s *Store) CreateApartment(_ context.Context, a core.Apartment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC().Format(time.RFC3339)
	a.ID = s.allocID()
	a.CreatedAt = now
	a.UpdatedAt = now
	s.apartments = append(s.apartments, a)
	return nil
}

func (s *Store) UpdateApartment(_ context.Context, id int64, upd core.ApartmentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.apartments {
		if s.apartments[i].ID != id {
			continue
		}
		a := &s.apartments[i]
		a.Title = upd.Title
		a.Description = upd.Description
		a.Location = upd.Location
		a.PricePerNight = upd.PricePerNight
		a.Bedrooms = upd.Bedrooms
		a.MaxGuests = upd.MaxGuests
		a.SquareMeter = upd.SquareMeter
		a.AvailabilityStatus = upd.AvailabilityStatus
		a.MinimumStay = upd.MinimumStay
		a.AddressLine1 = upd.AddressLine1
		a.AddressLine2 = upd.AddressLine2
		a.City = upd.City
		a.State = upd.State
		a.Country = upd.Country
		a.PostalCode = upd.PostalCode
		a.PropertyType = upd.PropertyType
		a.InstantBook = upd.InstantBook
		a.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		return nil
	}
	return ErrNotFound
}

func (s *Store) DeleteApartment(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.apartments)
	s.apartments = core.RemoveByID(s.apartments, id, func(a core.Apartment) int64 { return a.ID })
	if len(s.apartments) == before {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SearchApartments(_ context.Context, query string, page int) ([]core.Apartment, error) {
	if page < 0 {
		page = 0
	}
	s.mu.Lock()
	matched := core.FilterApartments(s.apartments, query)
	s.mu.Unlock()

	start := page * searchPageSize
	if start >= len(matched) {
		return []core.Apartment{}, nil
	}
	end := start + searchPageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

// Categories

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC().Format(time.RFC3339)
	c.ID = s.allocID()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.categories = append(s.categories, c)
	return nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == c.ID {
			c.CreatedAt = s.categories[i].CreatedAt
			c.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
			s.categories[i] = c
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.categories)
	s.categories = core.RemoveByID(s.categories, id, func(c core.Category) int64 { return c.ID })
	if len(s.categories) == before {
		return ErrNotFound
	}
	return nil
}

// Transactions

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, ErrNotFound
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.allocID()
	if t.Status == "" {
		t.Status = core.TxPending
	}
	t.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	s.transactions = append(s.transactions, t)
	return nil
}

// UploadApartmentPhoto records a synthetic photo URL on the apartment.
func (s *Store) UploadApartmentPhoto(_ context.Context, apartmentID string, filename string, r io.Reader) error {
	id, err := strconv.ParseInt(apartmentID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid apartment id %q: %w", apartmentID, err)
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return fmt.Errorf("read photo data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.apartments {
		if s.apartments[i].ID == id {
			s.apartments[i].Photos = append(s.apartments[i].Photos,
				fmt.Sprintf("/media/apartments/%d/%s", id, filename))
			return nil
		}
	}
	return ErrNotFound
}
