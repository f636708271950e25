package http

import (
	"log/slog"
	"net/http"

	"agrly-admin/internal/audit"
	"agrly-admin/internal/core"
)

type categoriesPage struct {
	Title      string
	Error      string
	Query      string
	Categories []core.Category
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	s.renderCategories(w, r, "")
}

func (s *Server) renderCategories(w http.ResponseWriter, r *http.Request, errMsg string) {
	query := r.URL.Query().Get("q")

	categories, err := fetchCached(r.Context(), s.categoriesCache, s.backend.ListCategories)
	page := categoriesPage{Title: "Categories", Query: query}
	switch {
	case errMsg != "":
		page.Error = errMsg
	case err != nil:
		page.Error = loadError(err)
	}

	page.Categories = core.FilterCategories(categories, query)
	s.render(w, r, "categories.html", page)
}

func categoryFromForm(r *http.Request) core.Category {
	return core.Category{
		ID:           formInt64(r, "id"),
		Name:         r.FormValue("name"),
		Description:  r.FormValue("description"),
		Icon:         r.FormValue("icon"),
		IsActive:     formBool(r, "isActive"),
		DisplayOrder: formInt(r, "displayOrder"),
	}
}

func (s *Server) handleCategoryCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	c := categoryFromForm(r)
	if err := c.Validate(); err != nil {
		s.renderCategories(w, r, "Invalid category: "+err.Error())
		return
	}

	if err := s.backend.CreateCategory(r.Context(), c); err != nil {
		slog.ErrorContext(r.Context(), "Failed to create category", "name", c.Name, "error", err)
		s.renderCategories(w, r, "Could not create the category.")
		return
	}

	s.categoriesCache.Delete(cacheKeyAll)
	s.publishAudit(r.Context(), audit.EntityCategory, audit.OpCreate, c.ID)
	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}

// handleCategoryUpdate issues exactly one update call, then drops the cache
// so the redirect target reloads the full collection.
func (s *Server) handleCategoryUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	c := categoryFromForm(r)
	if c.ID <= 0 {
		http.Error(w, "Missing category id", http.StatusBadRequest)
		return
	}
	if err := c.Validate(); err != nil {
		s.renderCategories(w, r, "Invalid category: "+err.Error())
		return
	}

	if err := s.backend.UpdateCategory(r.Context(), c); err != nil {
		slog.ErrorContext(r.Context(), "Failed to update category", "category_id", c.ID, "error", err)
		s.renderCategories(w, r, "Could not update the category.")
		return
	}

	s.categoriesCache.Delete(cacheKeyAll)
	s.publishAudit(r.Context(), audit.EntityCategory, audit.OpUpdate, c.ID)
	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}

func (s *Server) handleCategoryDelete(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		id := formInt64(r, "id")
		if id <= 0 {
			http.Error(w, "Missing category id", http.StatusBadRequest)
			return
		}
		s.render(w, r, "confirm_delete.html", confirmPage{
			Title:  "Delete category",
			Entity: "category",
			ID:     id,
			Action: "/categories/delete",
			Cancel: "/categories",
		})

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		id := formInt64(r, "id")
		if id <= 0 {
			http.Error(w, "Missing category id", http.StatusBadRequest)
			return
		}

		if err := s.backend.DeleteCategory(r.Context(), id); err != nil {
			slog.ErrorContext(r.Context(), "Failed to delete category", "category_id", id, "error", err)
			s.renderCategories(w, r, "Could not delete the category.")
			return
		}

		if cached, ok := s.categoriesCache.Get(cacheKeyAll); ok {
			s.categoriesCache.Set(cacheKeyAll, core.RemoveByID(cached, id, func(c core.Category) int64 { return c.ID }))
		}

		s.publishAudit(r.Context(), audit.EntityCategory, audit.OpDelete, id)
		http.Redirect(w, r, "/categories", http.StatusSeeOther)

	default:
		methodNotAllowed(w)
	}
}
