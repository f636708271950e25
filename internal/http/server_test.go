package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrly-admin/internal/audit"
	"agrly-admin/internal/core"
)

// fakeBackend implements platform.Backend with overridable functions and
// call counters.
type fakeBackend struct {
	authed bool

	listUsersFn func(context.Context) ([]core.User, error)
	listAptsFn  func(context.Context) ([]core.Apartment, error)
	listCatsFn  func(context.Context) ([]core.Category, error)
	listTxsFn   func(context.Context) ([]core.Transaction, error)

	listUsersCalls  int
	listCatsCalls   int
	deleteUserCalls int
	updateCatCalls  int
	createTxCalls   int
	logoutCalls     int

	deleteUserErr error
	updateCatErr  error
}

func (f *fakeBackend) Login(_ context.Context, creds core.Credentials) (core.LoginResponse, error) {
	if creds.Password == "wrong" {
		return core.LoginResponse{}, errors.New("denied")
	}
	f.authed = true
	return core.LoginResponse{ID: 1, Username: creds.Username, Token: "t"}, nil
}

func (f *fakeBackend) Logout() {
	f.logoutCalls++
	f.authed = false
}

func (f *fakeBackend) Authenticated() bool { return f.authed }

func (f *fakeBackend) ListUsers(ctx context.Context) ([]core.User, error) {
	f.listUsersCalls++
	if f.listUsersFn != nil {
		return f.listUsersFn(ctx)
	}
	return nil, nil
}

func (f *fakeBackend) GetUser(context.Context, int64) (core.User, error) { return core.User{}, nil }
func (f *fakeBackend) CreateUser(context.Context, core.User) error       { return nil }
func (f *fakeBackend) UpdateUser(context.Context, core.User) error       { return nil }

func (f *fakeBackend) DeleteUser(context.Context, int64) error {
	f.deleteUserCalls++
	return f.deleteUserErr
}

func (f *fakeBackend) ListApartments(ctx context.Context) ([]core.Apartment, error) {
	if f.listAptsFn != nil {
		return f.listAptsFn(ctx)
	}
	return nil, nil
}

func (f *fakeBackend) GetApartment(context.Context, int64) (core.Apartment, error) {
	return core.Apartment{}, nil
}
func (f *fakeBackend) CreateApartment(context.Context, core.Apartment) error { return nil }
func (f *fakeBackend) UpdateApartment(context.Context, int64, core.ApartmentUpdate) error {
	return nil
}
func (f *fakeBackend) DeleteApartment(context.Context, int64) error { return nil }
func (f *fakeBackend) SearchApartments(context.Context, string, int) ([]core.Apartment, error) {
	return nil, nil
}

func (f *fakeBackend) ListCategories(ctx context.Context) ([]core.Category, error) {
	f.listCatsCalls++
	if f.listCatsFn != nil {
		return f.listCatsFn(ctx)
	}
	return nil, nil
}

func (f *fakeBackend) CreateCategory(context.Context, core.Category) error { return nil }

func (f *fakeBackend) UpdateCategory(context.Context, core.Category) error {
	f.updateCatCalls++
	return f.updateCatErr
}

func (f *fakeBackend) DeleteCategory(context.Context, int64) error { return nil }

func (f *fakeBackend) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	if f.listTxsFn != nil {
		return f.listTxsFn(ctx)
	}
	return nil, nil
}

func (f *fakeBackend) GetTransaction(context.Context, int64) (core.Transaction, error) {
	return core.Transaction{}, nil
}

func (f *fakeBackend) CreateTransaction(context.Context, core.Transaction) error {
	f.createTxCalls++
	return nil
}

func (f *fakeBackend) UploadApartmentPhoto(context.Context, string, string, io.Reader) error {
	return nil
}

type recordingPublisher struct {
	events []*audit.Event
}

func (p *recordingPublisher) PublishEvent(_ context.Context, e *audit.Event) error {
	p.events = append(p.events, e)
	return nil
}

func newTestServer(t *testing.T, be *fakeBackend, pub AuditPublisher) *Server {
	t.Helper()
	srv := NewServer(":0", be, pub)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func get(srv *Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func postForm(srv *Server, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{}, nil)

	for _, target := range []string{"/", "/users", "/apartments", "/categories", "/transactions"} {
		rec := get(srv, target)
		assert.Equal(t, http.StatusSeeOther, rec.Code, target)
		assert.Equal(t, "/login", rec.Header().Get("Location"), target)
	}
}

func TestHealthEndpointsNeedNoAuth(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{}, nil)
	assert.Equal(t, http.StatusOK, get(srv, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(srv, "/readyz").Code)
}

func TestLoginFlow(t *testing.T) {
	be := &fakeBackend{}
	srv := newTestServer(t, be, nil)

	rec := get(srv, "/login")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = postForm(srv, "/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")
	assert.False(t, be.authed)

	rec = postForm(srv, "/login", url.Values{"username": {"admin"}, "password": {"pw"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.True(t, be.authed)

	// Once signed in, the login page bounces to the dashboard.
	rec = get(srv, "/login")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestLogoutClearsSessionLocally(t *testing.T) {
	be := &fakeBackend{authed: true}
	srv := newTestServer(t, be, nil)

	rec := postForm(srv, "/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, 1, be.logoutCalls)
	assert.False(t, be.authed)

	// Logout is POST-only.
	assert.Equal(t, http.StatusMethodNotAllowed, get(srv, "/logout").Code)
}

func TestUsersListFiltersLocally(t *testing.T) {
	be := &fakeBackend{authed: true}
	be.listUsersFn = func(context.Context) ([]core.User, error) {
		return []core.User{
			{ID: 1, Username: "jdoe", LastName: "Doe", Email: "j@example.com"},
			{ID: 2, Username: "anna", LastName: "Smith", Email: "a@example.com"},
		}, nil
	}
	srv := newTestServer(t, be, nil)

	rec := get(srv, "/users?q=smith")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Smith")
	assert.NotContains(t, body, "jdoe")

	// The filter runs against the cache; no second fetch.
	_ = get(srv, "/users?q=doe")
	assert.Equal(t, 1, be.listUsersCalls)
}

func TestFailedLoadRendersEmptyWithBanner(t *testing.T) {
	be := &fakeBackend{authed: true}
	be.listUsersFn = func(context.Context) ([]core.User, error) {
		return nil, errors.New("upstream 500")
	}
	srv := newTestServer(t, be, nil)

	rec := get(srv, "/users")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Could not load data")
	assert.Contains(t, body, "No users.")
}

func TestDeleteConfirmThenPatchCache(t *testing.T) {
	be := &fakeBackend{authed: true}
	be.listUsersFn = func(context.Context) ([]core.User, error) {
		return []core.User{
			{ID: 1, Username: "first", Email: "1@x"},
			{ID: 5, Username: "victim", Email: "5@x"},
			{ID: 9, Username: "last", Email: "9@x"},
		}, nil
	}
	pub := &recordingPublisher{}
	srv := newTestServer(t, be, pub)

	// Warm the cache.
	require.Equal(t, http.StatusOK, get(srv, "/users").Code)
	require.Equal(t, 1, be.listUsersCalls)

	// The confirmation screen triggers no platform calls.
	rec := get(srv, "/users/delete?id=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user #5")
	assert.Equal(t, 0, be.deleteUserCalls)
	assert.Equal(t, 1, be.listUsersCalls)

	// Confirming deletes exactly once and patches the cached list.
	rec = postForm(srv, "/users/delete", url.Values{"id": {"5"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 1, be.deleteUserCalls)

	rec = get(srv, "/users")
	body := rec.Body.String()
	assert.Contains(t, body, "first")
	assert.Contains(t, body, "last")
	assert.NotContains(t, body, "victim")
	assert.Equal(t, 1, be.listUsersCalls, "delete must not trigger a re-fetch")

	require.Len(t, pub.events, 1)
	assert.Equal(t, audit.EntityUser, pub.events[0].Entity)
	assert.Equal(t, audit.OpDelete, pub.events[0].Op)
	assert.Equal(t, "5", pub.events[0].EntityID)
}

func TestFailedDeleteLeavesCacheIntact(t *testing.T) {
	be := &fakeBackend{authed: true, deleteUserErr: errors.New("boom")}
	be.listUsersFn = func(context.Context) ([]core.User, error) {
		return []core.User{{ID: 5, Username: "victim", Email: "5@x"}}, nil
	}
	srv := newTestServer(t, be, nil)

	require.Equal(t, http.StatusOK, get(srv, "/users").Code)

	rec := postForm(srv, "/users/delete", url.Values{"id": {"5"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Could not delete the user")
	assert.Contains(t, rec.Body.String(), "victim")
}

func TestCategoryUpdateMakesOneCallThenReloads(t *testing.T) {
	be := &fakeBackend{authed: true}
	be.listCatsFn = func(context.Context) ([]core.Category, error) {
		return []core.Category{{ID: 3, Name: "Beachfront"}}, nil
	}
	srv := newTestServer(t, be, nil)

	require.Equal(t, http.StatusOK, get(srv, "/categories").Code)
	require.Equal(t, 1, be.listCatsCalls)

	rec := postForm(srv, "/categories/update", url.Values{
		"id":   {"3"},
		"name": {"Seafront"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 1, be.updateCatCalls, "exactly one update call")

	// The redirect target reloads the collection from the platform.
	require.Equal(t, http.StatusOK, get(srv, "/categories").Code)
	assert.Equal(t, 2, be.listCatsCalls)
}

func TestDashboardToleratesPartialFailure(t *testing.T) {
	be := &fakeBackend{authed: true}
	be.listUsersFn = func(context.Context) ([]core.User, error) {
		return []core.User{{ID: 1}, {ID: 2}, {ID: 3}}, nil
	}
	be.listAptsFn = func(context.Context) ([]core.Apartment, error) {
		return []core.Apartment{{ID: 4}}, nil
	}
	be.listCatsFn = func(context.Context) ([]core.Category, error) {
		return []core.Category{{ID: 5}, {ID: 6}}, nil
	}
	be.listTxsFn = func(context.Context) ([]core.Transaction, error) {
		return nil, errors.New("upstream 500")
	}
	srv := newTestServer(t, be, nil)

	rec := get(srv, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, ">3<")
	assert.Contains(t, body, ">1<")
	assert.Contains(t, body, ">2<")
	// Revenue counts only successfully fetched transactions: none here.
	assert.Contains(t, body, "0.00")
	assert.Contains(t, body, "could not load transactions")
}

func TestDashboardRevenueSumsTransactions(t *testing.T) {
	be := &fakeBackend{authed: true}
	be.listTxsFn = func(context.Context) ([]core.Transaction, error) {
		return []core.Transaction{
			{ID: 1, Amount: 100.5, Status: core.TxCompleted},
			{ID: 2, Amount: 24.5, Status: core.TxPending},
		}, nil
	}
	srv := newTestServer(t, be, nil)

	rec := get(srv, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "125.00")
}

func TestTransactionStatusChips(t *testing.T) {
	be := &fakeBackend{authed: true}
	be.listTxsFn = func(context.Context) ([]core.Transaction, error) {
		return []core.Transaction{
			{ID: 1, Amount: 10, Status: core.TxCompleted},
			{ID: 2, Amount: 20, Status: core.TxPending},
			{ID: 3, Amount: 30, Status: core.TxCompleted},
		}, nil
	}
	srv := newTestServer(t, be, nil)

	rec := get(srv, "/transactions?status=pending")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	// Chips summarize the whole collection even when the table is filtered.
	assert.Contains(t, body, "All (3)")
	assert.Contains(t, body, "Completed (2)")
	assert.Contains(t, body, "Pending (1)")
	assert.Contains(t, body, "20.00")
	assert.NotContains(t, body, "30.00")
}

func TestTransactionCreateValidation(t *testing.T) {
	be := &fakeBackend{authed: true}
	srv := newTestServer(t, be, nil)

	rec := postForm(srv, "/transactions/create", url.Values{
		"senderID":   {"1"},
		"receiverID": {"1"},
		"amount":     {"10"},
		"currency":   {"EUR"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid transaction")
	assert.Equal(t, 0, be.createTxCalls)

	rec = postForm(srv, "/transactions/create", url.Values{
		"senderID":   {"1"},
		"receiverID": {"2"},
		"amount":     {"10"},
		"currency":   {"EUR"},
		"status":     {"pending"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 1, be.createTxCalls)
}

func TestMutationsAreRateLimited(t *testing.T) {
	be := &fakeBackend{authed: true}
	srv := newTestServer(t, be, nil)

	var limited bool
	for i := 0; i < rateLimitMaxRequests+5; i++ {
		rec := postForm(srv, "/logout", nil)
		be.authed = true
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited, "repeated mutations from one client must hit the limiter")
}
