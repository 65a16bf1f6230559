package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/feastly/catalog-client/pkg/catalog"
	"github.com/feastly/catalog-client/pkg/client"
	"github.com/feastly/catalog-client/pkg/filter"
	"github.com/feastly/catalog-client/pkg/pagination"
	"github.com/feastly/catalog-client/pkg/session"
)

// browseResponse is one rendered catalog page.
type browseResponse struct {
	Items      []catalog.Item `json:"items"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	Window     []int          `json:"window"`
	Facets     catalog.Facets `json:"facets"`
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleBrowse serves GET /api/catalog: load products (optionally
// scoped to one restaurant), apply the filter chain and sort from the
// query string, and return the requested page. refresh=1 bypasses the
// cache.
func (s *server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	resource := catalog.Products()
	if restaurantID := query.Get("restaurant_id"); restaurantID != "" {
		resource = catalog.ProductsByRestaurant(restaurantID)
	}

	var opts []catalog.LoadOption
	if query.Get("refresh") == "1" {
		opts = append(opts, catalog.WithForceRefresh())
	}

	items, err := s.loader.Load(r.Context(), resource, opts...)
	if err != nil {
		s.writeLoadError(w, err)
		return
	}

	facets, _ := s.loader.Facets(resource)

	spec := specFromQuery(query, facets.MaxPrice)
	filtered := filter.Apply(items, spec)

	page := intParam(query.Get("page"), 1)
	size := intParam(query.Get("page_size"), pagination.DefaultPageSize)

	result := pagination.Page(filtered, page, size)

	s.writeJSON(w, http.StatusOK, browseResponse{
		Items:      result.Items,
		Page:       result.Number,
		TotalPages: result.TotalPages,
		Window:     pagination.Window(result.Number, result.TotalPages),
		Facets:     facets,
	})
}

// handleProduct serves GET /api/catalog/{productID}: one item by id,
// read through the cache.
func (s *server) handleProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if productID == "" {
		s.writeError(w, http.StatusBadRequest, "product id is required")
		return
	}

	var opts []catalog.LoadOption
	if r.URL.Query().Get("refresh") == "1" {
		opts = append(opts, catalog.WithForceRefresh())
	}

	item, err := s.loader.LoadItem(r.Context(), productID, opts...)
	if err != nil {
		if client.IsStatus(err, http.StatusNotFound) {
			s.writeError(w, http.StatusNotFound, "product not found")
			return
		}
		s.writeLoadError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, item)
}

func (s *server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.serveCollection(w, r, catalog.Categories())
}

func (s *server) handleRestaurants(w http.ResponseWriter, r *http.Request) {
	s.serveCollection(w, r, catalog.Restaurants())
}

func (s *server) serveCollection(w http.ResponseWriter, r *http.Request, resource catalog.Resource) {
	var opts []catalog.LoadOption
	if r.URL.Query().Get("refresh") == "1" {
		opts = append(opts, catalog.WithForceRefresh())
	}

	items, err := s.loader.Load(r.Context(), resource, opts...)
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

// sessionResponse mirrors a session without exposing the raw token.
type sessionResponse struct {
	State    string `json:"state"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
	FirmID   string `json:"firmId,omitempty"`
	FirmName string `json:"firmName,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

func toSessionResponse(sess *session.Session) sessionResponse {
	resp := sessionResponse{
		State:    string(sess.State),
		UserID:   sess.UserID,
		Username: sess.Username,
		FirmID:   sess.FirmID,
		FirmName: sess.FirmName,
	}
	if sess.Warning != nil {
		resp.Warning = sess.Warning.Error()
	}
	return resp
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds session.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed credentials")
		return
	}

	sess, err := s.linker.Login(r.Context(), creds)
	if err != nil {
		var authErr *session.AuthError
		if errors.As(err, &authErr) {
			s.writeError(w, http.StatusUnauthorized, authErr.Message)
			return
		}
		s.logger.Error().Err(err).Msg("Login failed")
		s.writeError(w, http.StatusBadGateway, "login unavailable")
		return
	}

	s.writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.linker.Logout(r.Context()); err != nil {
		s.logger.Error().Err(err).Msg("Logout failed")
		s.writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.linker.Restore(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Session restore failed")
		s.writeError(w, http.StatusInternalServerError, "session unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// specFromQuery builds the filter spec from browse query parameters.
// Absent parameters leave their dimension unconstrained.
func specFromQuery(query url.Values, maxPrice float64) filter.Spec {
	spec := filter.DefaultSpec(maxPrice)
	spec.Search = query.Get("q")
	if category := query.Get("category"); category != "" {
		spec.Category = category
	}
	if restaurant := query.Get("restaurant"); restaurant != "" {
		spec.Restaurant = restaurant
	}
	spec.Sort = filter.ParseSort(query.Get("sort"))

	minPrice := floatParam(query.Get("min_price"), 0)
	maxPriceParam := floatParam(query.Get("max_price"), maxPrice)
	if minPrice != 0 || maxPriceParam != 0 {
		spec.Price = filter.NewRange(minPrice, maxPriceParam)
	}

	spec.MinRating = floatParam(query.Get("min_rating"), 0)

	return spec
}

func intParam(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func floatParam(value string, fallback float64) float64 {
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return f
}

// writeLoadError maps a loader failure onto an HTTP status. The proxy
// never retries; the caller decides whether to try again.
func (s *server) writeLoadError(w http.ResponseWriter, err error) {
	s.logger.Warn().Err(err).Msg("Catalog load failed")

	switch client.ClassOf(err) {
	case client.ErrorClassClient:
		s.writeError(w, http.StatusBadRequest, err.Error())
	case client.ErrorClassNetwork, client.ErrorClassServer:
		s.writeError(w, http.StatusBadGateway, "storefront unavailable")
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"message": message})
}
