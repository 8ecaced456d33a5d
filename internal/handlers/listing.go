package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shareit-housing/apiserver/internal/services"
)

// ListingHandler serves the public listing views and owner deletion.
type ListingHandler struct {
	listings *services.ListingService
}

// NewListingHandler constructs a ListingHandler.
func NewListingHandler(listings *services.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

// ListingRouter registers listing routes on the given router.
func ListingRouter(r chi.Router, listings *services.ListingService, jwtSecret string) {
	handler := NewListingHandler(listings)

	r.Get("/", handler.List)
	r.Get("/{listingID}", handler.Get)
	r.With(RequireAuth(jwtSecret)).Delete("/{listingID}", handler.Delete)
}

// List returns summaries of all active listings, newest first.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.listings.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// Get returns one listing joined with its owner's profile, preferences
// and contact details.
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := listingIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	listing, err := h.listings.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// Delete removes a listing. Only the owner may delete; a non-owner gets
// 403 while a missing listing gets 404, so existence is not hidden.
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := listingIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	if err := h.listings.Delete(r.Context(), id, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "listing deleted successfully"})
}

func listingIDParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "listingID"))
	if err != nil || id < 1 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
