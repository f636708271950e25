package http

import (
	"log/slog"
	"net/http"

	"agrly-admin/internal/core"
)

type loginPage struct {
	Title string
	Error string
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if s.backend.Authenticated() {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.render(w, r, "login.html", loginPage{Title: "Sign in"})

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		creds := core.Credentials{
			Username: r.FormValue("username"),
			Password: r.FormValue("password"),
		}
		if err := creds.Validate(); err != nil {
			s.render(w, r, "login.html", loginPage{Title: "Sign in", Error: "Username and password are required."})
			return
		}

		resp, err := s.backend.Login(r.Context(), creds)
		if err != nil {
			slog.WarnContext(r.Context(), "Login failed", "username", creds.Username, "error", err)
			s.render(w, r, "login.html", loginPage{Title: "Sign in", Error: "Invalid username or password."})
			return
		}

		slog.InfoContext(r.Context(), "Admin logged in", "user_id", resp.ID, "username", resp.Username)
		http.Redirect(w, r, "/", http.StatusSeeOther)

	default:
		methodNotAllowed(w)
	}
}

// handleLogout clears the local session only; there is no server-side
// logout call on the platform.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s.backend.Logout()
	slog.InfoContext(r.Context(), "Admin logged out")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
