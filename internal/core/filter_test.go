package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleUsers() []User {
	return []User{
		{ID: 1, Username: "jdoe", FirstName: "John", LastName: "Doe", Email: "john@example.com"},
		{ID: 2, Username: "asmith", FirstName: "Anna", LastName: "Smith", Email: "anna@example.com"},
		{ID: 3, Username: "SMITHY", FirstName: "Bob", LastName: "Jones", Email: "bob@example.com"},
	}
}

func TestFilterUsers(t *testing.T) {
	tests := []struct {
		name    string
		term    string
		wantIDs []int64
	}{
		{"empty term matches all", "", []int64{1, 2, 3}},
		{"matches last name case-insensitively", "smith", []int64{2, 3}},
		{"matches username", "jdoe", []int64{1}},
		{"matches email domain", "example.com", []int64{1, 2, 3}},
		{"no match", "zzz", []int64{}},
		{"whitespace-only term matches all", "   ", []int64{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterUsers(sampleUsers(), tt.term)
			ids := make([]int64, 0, len(got))
			for _, u := range got {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestFilterApartments(t *testing.T) {
	apartments := []Apartment{
		{ID: 1, Title: "Sunny loft", Location: "Old Town", City: "Lisbon"},
		{ID: 2, Title: "Beach house", Location: "Coast", City: "Porto"},
	}

	assert.Len(t, FilterApartments(apartments, "LISBON"), 1)
	assert.Len(t, FilterApartments(apartments, "loft"), 1)
	assert.Len(t, FilterApartments(apartments, ""), 2)
	assert.Empty(t, FilterApartments(apartments, "berlin"))
}

func TestFilterCategories(t *testing.T) {
	cats := []Category{
		{ID: 1, Name: "Beachfront"},
		{ID: 2, Name: "City center"},
	}

	assert.Len(t, FilterCategories(cats, "beach"), 1)
	assert.Len(t, FilterCategories(cats, "C"), 2)
	assert.Len(t, FilterCategories(cats, ""), 2)
	assert.Empty(t, FilterCategories(cats, "mountain"))
}

func TestFilterTransactionsByStatus(t *testing.T) {
	txs := []Transaction{
		{ID: 1, Status: TxCompleted},
		{ID: 2, Status: TxPending},
		{ID: 3, Status: TxCompleted},
	}

	assert.Len(t, FilterTransactionsByStatus(txs, "completed"), 2)
	assert.Len(t, FilterTransactionsByStatus(txs, "pending"), 1)
	assert.Empty(t, FilterTransactionsByStatus(txs, "failed"))
	assert.Len(t, FilterTransactionsByStatus(txs, "all"), 3)
	assert.Len(t, FilterTransactionsByStatus(txs, ""), 3)

	// Status matching is exact, not substring.
	assert.Empty(t, FilterTransactionsByStatus(txs, "complet"))
}

func TestRemoveByID(t *testing.T) {
	users := []User{{ID: 1}, {ID: 5}, {ID: 9}}

	got := RemoveByID(users, 5, func(u User) int64 { return u.ID })
	ids := make([]int64, 0, len(got))
	for _, u := range got {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []int64{1, 9}, ids)

	// Removing an absent id leaves the collection unchanged.
	assert.Len(t, RemoveByID(users, 42, func(u User) int64 { return u.ID }), 3)
}
