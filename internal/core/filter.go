// Package core holds the platform records mirrored from the remote API and
// the pure filtering/aggregation helpers the dashboard displays are built on.
// Filtering is entirely local: it never triggers a network call.
package core

import "strings"

// matchAny reports whether term is a case-insensitive substring of any of
// the given fields. An empty term matches everything.
func matchAny(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// FilterUsers returns the users whose username, email, first or last name
// contains term, case-insensitively.
func FilterUsers(users []User, term string) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if matchAny(term, u.Username, u.Email, u.FirstName, u.LastName) {
			out = append(out, u)
		}
	}
	return out
}

// FilterApartments returns the apartments whose title, location or city
// contains term, case-insensitively.
func FilterApartments(apartments []Apartment, term string) []Apartment {
	out := make([]Apartment, 0, len(apartments))
	for _, a := range apartments {
		if matchAny(term, a.Title, a.Location, a.City) {
			out = append(out, a)
		}
	}
	return out
}

// FilterCategories returns the categories whose name contains term,
// case-insensitively.
func FilterCategories(categories []Category, term string) []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if matchAny(term, c.Name) {
			out = append(out, c)
		}
	}
	return out
}

// FilterTransactionsByStatus returns the transactions with exactly the given
// status. The pseudo-status "all" (or an empty string) matches everything.
func FilterTransactionsByStatus(txs []Transaction, status string) []Transaction {
	if status == "" || status == "all" {
		out := make([]Transaction, len(txs))
		copy(out, txs)
		return out
	}
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if string(t.Status) == status {
			out = append(out, t)
		}
	}
	return out
}

// RemoveByID drops the record with the given id from a loaded collection.
// Used after a successful delete so the cached collection stays consistent
// without a re-fetch.
func RemoveByID[T any](items []T, id int64, idOf func(T) int64) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if idOf(it) == id {
			continue
		}
		out = append(out, it)
	}
	return out
}
