package http

import (
	"log/slog"
	"net/http"

	"agrly-admin/internal/audit"
	"agrly-admin/internal/core"
)

type usersPage struct {
	Title string
	Error string
	Query string
	Users []core.User
}

// confirmPage backs the shared delete-confirmation screen. Rendering it
// makes no platform calls; the delete happens only on the confirming POST.
type confirmPage struct {
	Title  string
	Entity string
	ID     int64
	Action string
	Cancel string
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	s.renderUsers(w, r, "")
}

func (s *Server) renderUsers(w http.ResponseWriter, r *http.Request, errMsg string) {
	query := r.URL.Query().Get("q")

	users, err := fetchCached(r.Context(), s.usersCache, s.backend.ListUsers)
	page := usersPage{Title: "Users", Query: query}
	switch {
	case errMsg != "":
		page.Error = errMsg
	case err != nil:
		page.Error = loadError(err)
	}

	page.Users = core.FilterUsers(users, query)
	s.render(w, r, "users.html", page)
}

func userFromForm(r *http.Request) core.User {
	return core.User{
		ID:                   formInt64(r, "id"),
		Username:             r.FormValue("username"),
		FirstName:            r.FormValue("firstName"),
		LastName:             r.FormValue("lastName"),
		Email:                r.FormValue("email"),
		CreatedAt:            r.FormValue("createdAt"),
		IsAdmin:              formBool(r, "isAdmin"),
		NationalID:           r.FormValue("nationalID"),
		Phone:                r.FormValue("phone"),
		ProfilePictureURL:    r.FormValue("profilePictureUrl"),
		Bio:                  r.FormValue("bio"),
		DateOfBirth:          r.FormValue("dateOfBirth"),
		GovernmentIDVerified: formBool(r, "governmentIdVerified"),
		EmailVerified:        formBool(r, "emailVerified"),
		PhoneVerified:        formBool(r, "phoneVerified"),
		HostSince:            r.FormValue("hostSince"),
		IsSuperhost:          formBool(r, "isSuperhost"),
		PreferredLanguage:    r.FormValue("preferredLanguage"),
		Timezone:             r.FormValue("timezone"),
	}
}

func (s *Server) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	u := userFromForm(r)
	if err := u.Validate(); err != nil {
		s.renderUsers(w, r, "Invalid user: "+err.Error())
		return
	}

	if err := s.backend.CreateUser(r.Context(), u); err != nil {
		slog.ErrorContext(r.Context(), "Failed to create user", "username", u.Username, "error", err)
		s.renderUsers(w, r, "Could not create the user.")
		return
	}

	s.usersCache.Delete(cacheKeyAll)
	s.publishAudit(r.Context(), audit.EntityUser, audit.OpCreate, u.ID)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (s *Server) handleUserUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	u := userFromForm(r)
	if u.ID <= 0 {
		http.Error(w, "Missing user id", http.StatusBadRequest)
		return
	}
	if err := u.Validate(); err != nil {
		s.renderUsers(w, r, "Invalid user: "+err.Error())
		return
	}

	if err := s.backend.UpdateUser(r.Context(), u); err != nil {
		slog.ErrorContext(r.Context(), "Failed to update user", "user_id", u.ID, "error", err)
		s.renderUsers(w, r, "Could not update the user.")
		return
	}

	s.usersCache.Delete(cacheKeyAll)
	s.publishAudit(r.Context(), audit.EntityUser, audit.OpUpdate, u.ID)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (s *Server) handleUserDelete(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		id := formInt64(r, "id")
		if id <= 0 {
			http.Error(w, "Missing user id", http.StatusBadRequest)
			return
		}
		s.render(w, r, "confirm_delete.html", confirmPage{
			Title:  "Delete user",
			Entity: "user",
			ID:     id,
			Action: "/users/delete",
			Cancel: "/users",
		})

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		id := formInt64(r, "id")
		if id <= 0 {
			http.Error(w, "Missing user id", http.StatusBadRequest)
			return
		}

		if err := s.backend.DeleteUser(r.Context(), id); err != nil {
			slog.ErrorContext(r.Context(), "Failed to delete user", "user_id", id, "error", err)
			s.renderUsers(w, r, "Could not delete the user.")
			return
		}

		// Patch the cached collection in place; no re-fetch after a delete.
		if cached, ok := s.usersCache.Get(cacheKeyAll); ok {
			s.usersCache.Set(cacheKeyAll, core.RemoveByID(cached, id, func(u core.User) int64 { return u.ID }))
		}

		s.publishAudit(r.Context(), audit.EntityUser, audit.OpDelete, id)
		http.Redirect(w, r, "/users", http.StatusSeeOther)

	default:
		methodNotAllowed(w)
	}
}
