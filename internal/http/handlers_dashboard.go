package http

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"agrly-admin/internal/core"
)

type dashboardPage struct {
	Title string
	Error string
	Stats core.DashboardStats
}

// handleDashboard fetches all four collections concurrently. A failed fetch
// contributes zero to its figure and is named in the banner; the other
// figures still render.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	ctx := r.Context()

	var (
		users        []core.User
		apartments   []core.Apartment
		categories   []core.Category
		transactions []core.Transaction

		usersErr, apartmentsErr, categoriesErr, transactionsErr error
	)

	// Each goroutine returns nil so one failure never cancels the others.
	var g errgroup.Group
	g.Go(func() error {
		users, usersErr = fetchCached(ctx, s.usersCache, s.backend.ListUsers)
		return nil
	})
	g.Go(func() error {
		apartments, apartmentsErr = fetchCached(ctx, s.apartmentsCache, s.backend.ListApartments)
		return nil
	})
	g.Go(func() error {
		categories, categoriesErr = fetchCached(ctx, s.categoriesCache, s.backend.ListCategories)
		return nil
	})
	g.Go(func() error {
		transactions, transactionsErr = fetchCached(ctx, s.transactionsCache, s.backend.ListTransactions)
		return nil
	})
	_ = g.Wait()

	var failed []string
	for _, part := range []struct {
		name string
		err  error
	}{
		{"users", usersErr},
		{"apartments", apartmentsErr},
		{"categories", categoriesErr},
		{"transactions", transactionsErr},
	} {
		if part.err != nil {
			slog.WarnContext(ctx, "Dashboard fetch failed", "collection", part.name, "error", part.err)
			failed = append(failed, part.name)
		}
	}

	page := dashboardPage{
		Title: "Dashboard",
		Stats: core.DashboardStats{
			TotalUsers:        len(users),
			TotalApartments:   len(apartments),
			TotalCategories:   len(categories),
			TotalTransactions: len(transactions),
			TotalRevenue:      core.SumAmounts(transactions),
		},
	}
	if len(failed) > 0 {
		page.Error = "Some figures are unavailable: could not load " + strings.Join(failed, ", ") + "."
	}

	s.render(w, r, "dashboard.html", page)
}
