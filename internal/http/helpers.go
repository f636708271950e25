package http

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"agrly-admin/internal/cache"
	"agrly-admin/internal/platform/agrly"
)

// fetchCached returns the cached collection or loads it through the port.
// On a failed load the stale entry is dropped so the screen renders an
// empty collection with an error banner instead of outdated rows.
func fetchCached[T any](ctx context.Context, c *cache.Cache[[]T], load func(context.Context) ([]T, error)) ([]T, error) {
	if items, ok := c.Get(cacheKeyAll); ok {
		out := make([]T, len(items))
		copy(out, items)
		return out, nil
	}

	items, err := load(ctx)
	if err != nil {
		c.Delete(cacheKeyAll)
		return nil, err
	}

	c.Set(cacheKeyAll, items)
	out := make([]T, len(items))
	copy(out, items)
	return out, nil
}

// render buffers the template output so a mid-render failure produces a
// clean 500 instead of a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Failed to render template", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// loadError turns a platform failure into the banner text shown on the
// affected screen.
func loadError(err error) string {
	if errors.Is(err, agrly.ErrUnauthorized) {
		return "Your session is no longer valid. Please sign in again."
	}
	return "Could not load data from the platform. Please try again."
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

func formInt64(r *http.Request, key string) int64 {
	v, _ := strconv.ParseInt(r.FormValue(key), 10, 64)
	return v
}

func formInt(r *http.Request, key string) int {
	v, _ := strconv.Atoi(r.FormValue(key))
	return v
}

func formFloat(r *http.Request, key string) float64 {
	v, _ := strconv.ParseFloat(r.FormValue(key), 64)
	return v
}

// formBool accepts both checkbox ("on") and explicit boolean values.
func formBool(r *http.Request, key string) bool {
	switch r.FormValue(key) {
	case "on", "true", "1":
		return true
	default:
		return false
	}
}
