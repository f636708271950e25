package http

import (
	"log/slog"
	"net/http"
	"strings"

	"agrly-admin/internal/audit"
	"agrly-admin/internal/core"
)

type apartmentsPage struct {
	Title      string
	Error      string
	Query      string
	Apartments []core.Apartment
}

type apartmentSearchPage struct {
	Title      string
	Error      string
	Query      string
	Page       int
	Apartments []core.Apartment
	Searched   bool
}

func (s *Server) handleApartments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	s.renderApartments(w, r, "")
}

func (s *Server) renderApartments(w http.ResponseWriter, r *http.Request, errMsg string) {
	query := r.URL.Query().Get("q")

	apartments, err := fetchCached(r.Context(), s.apartmentsCache, s.backend.ListApartments)
	page := apartmentsPage{Title: "Apartments", Query: query}
	switch {
	case errMsg != "":
		page.Error = errMsg
	case err != nil:
		page.Error = loadError(err)
	}

	page.Apartments = core.FilterApartments(apartments, query)
	s.render(w, r, "apartments.html", page)
}

func apartmentFromForm(r *http.Request) core.Apartment {
	var tags []string
	for _, t := range strings.Split(r.FormValue("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	return core.Apartment{
		ID:                 formInt64(r, "id"),
		OwnerID:            formInt64(r, "ownerId"),
		Title:              r.FormValue("title"),
		Description:        r.FormValue("description"),
		Location:           r.FormValue("location"),
		PricePerNight:      formFloat(r, "pricePerNight"),
		Bedrooms:           formInt(r, "bedrooms"),
		MaxGuests:          formInt(r, "maxGuests"),
		SquareMeter:        formInt(r, "squareMeter"),
		AvailabilityStatus: core.AvailabilityStatus(r.FormValue("availabilityStatus")),
		MinimumStay:        formInt(r, "minimumStay"),
		AddressLine1:       r.FormValue("addressLine1"),
		AddressLine2:       r.FormValue("addressLine2"),
		City:               r.FormValue("city"),
		State:              r.FormValue("state"),
		Country:            r.FormValue("country"),
		PostalCode:         r.FormValue("postalCode"),
		Latitude:           formFloat(r, "latitude"),
		Longitude:          formFloat(r, "longitude"),
		PropertyType:       r.FormValue("propertyType"),
		InstantBook:        formBool(r, "instantBook"),
		Tags:               tags,
	}
}

func (s *Server) handleApartmentCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	a := apartmentFromForm(r)
	if err := a.Validate(); err != nil {
		s.renderApartments(w, r, "Invalid apartment: "+err.Error())
		return
	}

	if err := s.backend.CreateApartment(r.Context(), a); err != nil {
		slog.ErrorContext(r.Context(), "Failed to create apartment", "title", a.Title, "error", err)
		s.renderApartments(w, r, "Could not create the apartment.")
		return
	}

	s.apartmentsCache.Delete(cacheKeyAll)
	s.publishAudit(r.Context(), audit.EntityApartment, audit.OpCreate, a.ID)
	http.Redirect(w, r, "/apartments", http.StatusSeeOther)
}

// handleApartmentUpdate sends only the allow-listed update payload; edits to
// tags or photos through this form are discarded rather than transmitted.
func (s *Server) handleApartmentUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	a := apartmentFromForm(r)
	if a.ID <= 0 {
		http.Error(w, "Missing apartment id", http.StatusBadRequest)
		return
	}
	if err := a.Validate(); err != nil {
		s.renderApartments(w, r, "Invalid apartment: "+err.Error())
		return
	}

	if err := s.backend.UpdateApartment(r.Context(), a.ID, a.UpdatePayload()); err != nil {
		slog.ErrorContext(r.Context(), "Failed to update apartment", "apartment_id", a.ID, "error", err)
		s.renderApartments(w, r, "Could not update the apartment.")
		return
	}

	s.apartmentsCache.Delete(cacheKeyAll)
	s.publishAudit(r.Context(), audit.EntityApartment, audit.OpUpdate, a.ID)
	http.Redirect(w, r, "/apartments", http.StatusSeeOther)
}

func (s *Server) handleApartmentDelete(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		id := formInt64(r, "id")
		if id <= 0 {
			http.Error(w, "Missing apartment id", http.StatusBadRequest)
			return
		}
		s.render(w, r, "confirm_delete.html", confirmPage{
			Title:  "Delete apartment",
			Entity: "apartment",
			ID:     id,
			Action: "/apartments/delete",
			Cancel: "/apartments",
		})

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		id := formInt64(r, "id")
		if id <= 0 {
			http.Error(w, "Missing apartment id", http.StatusBadRequest)
			return
		}

		if err := s.backend.DeleteApartment(r.Context(), id); err != nil {
			slog.ErrorContext(r.Context(), "Failed to delete apartment", "apartment_id", id, "error", err)
			s.renderApartments(w, r, "Could not delete the apartment.")
			return
		}

		if cached, ok := s.apartmentsCache.Get(cacheKeyAll); ok {
			s.apartmentsCache.Set(cacheKeyAll, core.RemoveByID(cached, id, func(a core.Apartment) int64 { return a.ID }))
		}

		s.publishAudit(r.Context(), audit.EntityApartment, audit.OpDelete, id)
		http.Redirect(w, r, "/apartments", http.StatusSeeOther)

	default:
		methodNotAllowed(w)
	}
}

// handleApartmentSearch queries the remote paginated search endpoint
// directly; results are not cached.
func (s *Server) handleApartmentSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	pageNum := formInt(r, "page")
	if pageNum < 0 {
		pageNum = 0
	}

	page := apartmentSearchPage{Title: "Search apartments", Query: query, Page: pageNum}
	if query != "" {
		page.Searched = true
		results, err := s.backend.SearchApartments(r.Context(), query, pageNum)
		if err != nil {
			slog.WarnContext(r.Context(), "Apartment search failed", "query", query, "page", pageNum, "error", err)
			page.Error = loadError(err)
		}
		page.Apartments = results
	}

	s.render(w, r, "apartment_search.html", page)
}

// handleApartmentPhoto streams an uploaded photo through to the platform's
// media endpoint and drops the cached listings so the new URL shows up.
func (s *Server) handleApartmentPhoto(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	apartmentID := r.FormValue("apartmentId")
	if apartmentID == "" {
		http.Error(w, "Missing apartment id", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing photo file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if err := s.backend.UploadApartmentPhoto(r.Context(), apartmentID, header.Filename, file); err != nil {
		slog.ErrorContext(r.Context(), "Failed to upload apartment photo",
			"apartment_id", apartmentID, "filename", header.Filename, "error", err)
		s.renderApartments(w, r, "Could not upload the photo.")
		return
	}

	s.apartmentsCache.Delete(cacheKeyAll)
	http.Redirect(w, r, "/apartments", http.StatusSeeOther)
}
