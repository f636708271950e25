// Package platform defines the outbound ports every feature screen depends
// on. The real implementation is the agrly REST client; a seeded in-memory
// store backs local development and tests.
package platform

import (
	"context"
	"io"

	"agrly-admin/internal/core"
)

type (
	// Authenticator owns the admin session lifecycle.
	Authenticator interface {
		Login(ctx context.Context, creds core.Credentials) (core.LoginResponse, error)
		// Logout clears the session locally. It never talks to the server
		// and is safe to call when already logged out.
		Logout()
		Authenticated() bool
	}

	UserStore interface {
		ListUsers(ctx context.Context) ([]core.User, error)
		GetUser(ctx context.Context, id int64) (core.User, error)
		CreateUser(ctx context.Context, u core.User) error
		// UpdateUser sends the full edited record; the server decides which
		// fields it honors.
		UpdateUser(ctx context.Context, u core.User) error
		DeleteUser(ctx context.Context, id int64) error
	}

	ApartmentStore interface {
		ListApartments(ctx context.Context) ([]core.Apartment, error)
		GetApartment(ctx context.Context, id int64) (core.Apartment, error)
		CreateApartment(ctx context.Context, a core.Apartment) error
		UpdateApartment(ctx context.Context, id int64, upd core.ApartmentUpdate) error
		DeleteApartment(ctx context.Context, id int64) error
		// SearchApartments queries the remote paginated search endpoint;
		// page is zero-based.
		SearchApartments(ctx context.Context, query string, page int) ([]core.Apartment, error)
	}

	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) error
		UpdateCategory(ctx context.Context, c core.Category) error
		DeleteCategory(ctx context.Context, id int64) error
	}

	TransactionStore interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) error
	}

	MediaUploader interface {
		// UploadApartmentPhoto streams a photo as multipart form data.
		UploadApartmentPhoto(ctx context.Context, apartmentID string, filename string, r io.Reader) error
	}

	// Backend bundles everything a fully wired dashboard needs.
	Backend interface {
		Authenticator
		UserStore
		ApartmentStore
		CategoryStore
		TransactionStore
		MediaUploader
	}
)
