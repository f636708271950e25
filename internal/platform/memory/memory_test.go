package memory

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrly-admin/internal/core"
)

func TestLoginLogout(t *testing.T) {
	s := New()
	ctx := context.Background()

	assert.False(t, s.Authenticated())

	_, err := s.Login(ctx, core.Credentials{Username: "admin"})
	require.ErrorIs(t, err, core.ErrEmptyPassword)
	assert.False(t, s.Authenticated())

	resp, err := s.Login(ctx, core.Credentials{Username: "admin", Password: "pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, s.Authenticated())

	s.Logout()
	assert.False(t, s.Authenticated())
}

func TestUserCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	initial, err := s.ListUsers(ctx)
	require.NoError(t, err)

	require.NoError(t, s.CreateUser(ctx, core.User{Username: "newbie", Email: "new@example.com"}))
	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, len(initial)+1)

	created := users[len(users)-1]
	assert.NotZero(t, created.ID, "ids are assigned by the store")
	assert.NotEmpty(t, created.CreatedAt)

	created.FirstName = "Nora"
	require.NoError(t, s.UpdateUser(ctx, created))
	got, err := s.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nora", got.FirstName)

	require.NoError(t, s.DeleteUser(ctx, created.ID))
	_, err = s.GetUser(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.DeleteUser(ctx, created.ID), ErrNotFound)
}

func TestApartmentUpdateAppliesOnlyAllowListedFields(t *testing.T) {
	s := New()
	ctx := context.Background()

	apartments, err := s.ListApartments(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, apartments)
	target := apartments[0]

	upd := target.UpdatePayload()
	upd.Title = "Renamed loft"
	upd.PricePerNight = 199
	require.NoError(t, s.UpdateApartment(ctx, target.ID, upd))

	got, err := s.GetApartment(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed loft", got.Title)
	assert.Equal(t, 199.0, got.PricePerNight)
	assert.Equal(t, target.CreatedAt, got.CreatedAt)
	assert.Equal(t, target.Rating, got.Rating)

	require.ErrorIs(t, s.UpdateApartment(ctx, 99999, upd), ErrNotFound)
}

func TestSearchApartmentsPaginates(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		require.NoError(t, s.CreateApartment(ctx, core.Apartment{
			Title:         fmt.Sprintf("Beach flat %02d", i),
			City:          "Faro",
			PricePerNight: 50,
			MaxGuests:     2,
		}))
	}

	page0, err := s.SearchApartments(ctx, "beach flat", 0)
	require.NoError(t, err)
	assert.Len(t, page0, 10)

	page1, err := s.SearchApartments(ctx, "beach flat", 1)
	require.NoError(t, err)
	assert.Len(t, page1, 5)

	empty, err := s.SearchApartments(ctx, "beach flat", 2)
	require.NoError(t, err)
	assert.Empty(t, empty)

	// Search matches case-insensitively on title, location and city.
	byCity, err := s.SearchApartments(ctx, "FARO", 0)
	require.NoError(t, err)
	assert.Len(t, byCity, 10)
}

func TestCategoryUpdatePreservesCreatedAt(t *testing.T) {
	s := New()
	ctx := context.Background()

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, cats)

	c := cats[0]
	createdAt := c.CreatedAt
	c.Name = "Seafront"
	c.CreatedAt = "tampered"
	require.NoError(t, s.UpdateCategory(ctx, c))

	updated, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Seafront", updated[0].Name)
	assert.Equal(t, createdAt, updated[0].CreatedAt)
}

func TestCreateTransactionDefaultsToPending(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.CreateTransaction(ctx, core.Transaction{SenderID: 1, ReceiverID: 1, Amount: 10, Currency: "EUR"})
	require.ErrorIs(t, err, core.ErrSameParties)

	require.NoError(t, s.CreateTransaction(ctx, core.Transaction{SenderID: 1, ReceiverID: 2, Amount: 10, Currency: "EUR"}))
	txs, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	created := txs[len(txs)-1]
	assert.Equal(t, core.TxPending, created.Status)
	assert.NotZero(t, created.ID)
}

func TestUploadApartmentPhoto(t *testing.T) {
	s := New()
	ctx := context.Background()

	apartments, err := s.ListApartments(ctx)
	require.NoError(t, err)
	target := apartments[0]

	idStr := fmt.Sprintf("%d", target.ID)
	require.NoError(t, s.UploadApartmentPhoto(ctx, idStr, "front.jpg", strings.NewReader("jpeg")))

	got, err := s.GetApartment(ctx, target.ID)
	require.NoError(t, err)
	require.Len(t, got.Photos, len(target.Photos)+1)
	assert.Contains(t, got.Photos[len(got.Photos)-1], "front.jpg")

	require.Error(t, s.UploadApartmentPhoto(ctx, "not-a-number", "x.jpg", strings.NewReader("")))
	require.ErrorIs(t, s.UploadApartmentPhoto(ctx, "99999", "x.jpg", strings.NewReader("")), ErrNotFound)
}
