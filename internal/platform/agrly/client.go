// Package agrly is the HTTP client for the rental-platform backend. Every
// outbound call goes through a single request choke point that shapes the
// URL and headers, attaches the bearer token, and converts failure statuses
// into typed errors. The client never retries and never queues; requests
// are fire-once and cancellable only through their context.
package agrly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"time"

	"agrly-admin/internal/core"
	"agrly-admin/internal/platform"
)

// Client talks to the agrly REST API on behalf of the admin session.
type Client struct {
	baseURL string
	httpc   *http.Client
	session *Session
}

// Ensure interface conformance
var (
	_ platform.Authenticator    = (*Client)(nil)
	_ platform.UserStore        = (*Client)(nil)
	_ platform.ApartmentStore   = (*Client)(nil)
	_ platform.CategoryStore    = (*Client)(nil)
	_ platform.TransactionStore = (*Client)(nil)
	_ platform.MediaUploader    = (*Client)(nil)
	_ platform.Backend          = (*Client)(nil)
)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the pooled default, mainly for tests.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// New builds a client for the given base origin. The session carries the
// bearer token and must outlive the client.
func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL: trimTrailingSlash(baseURL),
		httpc:   newPooledHTTPClient(),
		session: session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// newPooledHTTPClient configures connection pooling and per-phase network
// timeouts. There is no overall request deadline; callers bound calls with
// their context.
func newPooledHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{Transport: transport}
}

// do is the single choke point for all outbound requests.
//
// Default headers declare JSON accept/content-type and, when a token is
// held, a bearer Authorization. Caller headers are applied last so special
// cases (multipart upload) can replace the JSON content type. Any status
// >= 400 becomes a *StatusError without reading the body. On success the
// body is decoded into out as JSON, or drained when out is nil.
func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, endpoint, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json-patch+json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, vals := range header {
		req.Header.Del(k)
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Status: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, endpoint, err)
	}
	return nil
}

// doJSON marshals in as the request body and delegates to do.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, endpoint, err)
		}
		body = bytes.NewReader(raw)
	}
	return c.do(ctx, method, endpoint, body, nil, out)
}

// Login authenticates against the fixed auth endpoint. When the response
// carries a token it is stored in the session (memory and durable store);
// the full response is returned either way. Transport and HTTP errors
// propagate unchanged.
func (c *Client) Login(ctx context.Context, creds core.Credentials) (core.LoginResponse, error) {
	var resp core.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/AuthenticateUser/auth", creds, &resp); err != nil {
		return core.LoginResponse{}, err
	}
	if resp.Token != "" {
		c.session.SetToken(resp.Token)
	}
	return resp, nil
}

// Logout clears the session. Purely local; no server call is made.
func (c *Client) Logout() {
	c.session.Clear()
}

func (c *Client) Authenticated() bool {
	return c.session.Authenticated()
}

// Users

func (c *Client) ListUsers(ctx context.Context) ([]core.User, error) {
	var users []core.User
	if err := c.do(ctx, http.MethodGet, "/api/Users/getallusers", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/Users/getuser/%d", id), nil, nil, &u); err != nil {
		return core.User{}, err
	}
	return u, nil
}

func (c *Client) CreateUser(ctx context.Context, u core.User) error {
	return c.doJSON(ctx, http.MethodPost, "/api/Users/adduser", u, nil)
}

func (c *Client) UpdateUser(ctx context.Context, u core.User) error {
	return c.doJSON(ctx, http.MethodPost, "/api/Users/updateuser", u, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/Users/deleteuser/%d", id), nil, nil, nil)
}

// Apartments

func (c *Client) ListApartments(ctx context.Context) ([]core.Apartment, error) {
	var apartments []core.Apartment
	if err := c.do(ctx, http.MethodGet, "/api/Apartments", nil, nil, &apartments); err != nil {
		return nil, err
	}
	return apartments, nil
}

func (c *Client) GetApartment(ctx context.Context, id int64) (core.Apartment, error) {
	var a core.Apartment
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/Apartments/%d", id), nil, nil, &a); err != nil {
		return core.Apartment{}, err
	}
	return a, nil
}

func (c *Client) CreateApartment(ctx context.Context, a core.Apartment) error {
	return c.doJSON(ctx, http.MethodPost, "/api/Apartments", a, nil)
}

// UpdateApartment sends only the allow-listed field subset; in particular
// tags never travel on update even when the caller's record has them.
func (c *Client) UpdateApartment(ctx context.Context, id int64, upd core.ApartmentUpdate) error {
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/Apartments/%d", id), upd, nil)
}

func (c *Client) DeleteApartment(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/Apartments/%d", id), nil, nil, nil)
}

func (c *Client) SearchApartments(ctx context.Context, query string, page int) ([]core.Apartment, error) {
	endpoint := fmt.Sprintf("/api/Apartments/search?query=%s&currentPage=%d", url.QueryEscape(query), page)
	var apartments []core.Apartment
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &apartments); err != nil {
		return nil, err
	}
	return apartments, nil
}

// Categories

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	var cats []core.Category
	if err := c.do(ctx, http.MethodGet, "/api/Apartments/categories", nil, nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (c *Client) CreateCategory(ctx context.Context, cat core.Category) error {
	return c.doJSON(ctx, http.MethodPost, "/api/Apartments/categories/add", cat, nil)
}

func (c *Client) UpdateCategory(ctx context.Context, cat core.Category) error {
	return c.doJSON(ctx, http.MethodPut, "/api/Apartments/categories/update", cat, nil)
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/Apartments/categories/%d", id), nil, nil, nil)
}

// Transactions

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var txs []core.Transaction
	if err := c.do(ctx, http.MethodGet, "/api/Transactions", nil, nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (c *Client) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	var t core.Transaction
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/Transactions/%d", id), nil, nil, &t); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (c *Client) CreateTransaction(ctx context.Context, t core.Transaction) error {
	return c.doJSON(ctx, http.MethodPost, "/api/Transactions/create-transaction", t, nil)
}

// UploadApartmentPhoto posts a multipart form with the photo under the
// "file" field. The multipart content type replaces the JSON default via
// the caller-header merge in do.
func (c *Client) UploadApartmentPhoto(ctx context.Context, apartmentID string, filename string, r io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("copy photo data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", mw.FormDataContentType())

	endpoint := "/api/MediaAssets/upload-apartment-photo?apartmentId=" + url.QueryEscape(apartmentID)
	return c.do(ctx, http.MethodPost, endpoint, &buf, header, nil)
}
