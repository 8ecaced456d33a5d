package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shareit-housing/apiserver/internal/services"
	"github.com/shareit-housing/apiserver/types"
)

// maxImageUploadBytes bounds a single listing image upload.
const maxImageUploadBytes = 10 << 20

// MeHandler serves the authenticated wizard endpoints that build up a
// user's profile, preferences, contact details and listing.
type MeHandler struct {
	wizard   *services.WizardService
	listings *services.ListingService
}

// NewMeHandler constructs a MeHandler.
func NewMeHandler(wizard *services.WizardService, listings *services.ListingService) *MeHandler {
	return &MeHandler{wizard: wizard, listings: listings}
}

// MeRouter registers the wizard routes on the given router. Every route
// requires a valid session.
func MeRouter(r chi.Router, wizard *services.WizardService, listings *services.ListingService, jwtSecret string) {
	handler := NewMeHandler(wizard, listings)

	r.Use(RequireAuth(jwtSecret))
	r.Put("/profile", handler.SaveProfile)
	r.Put("/preferences", handler.SavePreferences)
	r.Put("/contact", handler.SaveContactInfo)
	r.Put("/listing", handler.SaveListing)
	r.Post("/listing/images", handler.UploadListingImage)
	r.Post("/listing/finalize", handler.FinalizeListing)
	r.Get("/data", handler.GetUserData)
	r.Get("/listings", handler.ListOwn)
}

// SaveProfile creates or replaces the caller's profile.
func (h *MeHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ProfileRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	profile, err := h.wizard.SaveProfile(r.Context(), userID, types.Profile{
		UserType:              req.UserType,
		AcademicLevel:         req.AcademicLevel,
		Gender:                req.Gender,
		AgeGroup:              req.AgeGroup,
		StudySchedule:         req.StudySchedule,
		SocializingPreference: req.SocializingPreference,
		Tidiness:              req.Tidiness,
		DrinkingPreference:    req.DrinkingPreference,
		SmokingPreference:     req.SmokingPreference,
		Hobbies:               req.Hobbies,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// SavePreferences creates or replaces the caller's roommate preferences.
func (h *MeHandler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req PreferencesRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	prefs, err := h.wizard.SavePreferences(r.Context(), userID, types.Preferences{
		Roommate:             req.Roommate,
		GuestPreference:      req.GuestPreference,
		AdditionalPreference: req.AdditionalPreference,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// SaveContactInfo creates or replaces the caller's contact details.
func (h *MeHandler) SaveContactInfo(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ContactInfoRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	info, err := h.wizard.SaveContactInfo(r.Context(), userID, types.ContactInfo{
		Phone:            req.Phone,
		Email:            req.Email,
		PreferredContact: req.PreferredContact,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// SaveListing creates or replaces the caller's draft listing fields.
// Status, images and publish time are never writable through this
// endpoint.
func (h *MeHandler) SaveListing(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ListingRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	listing, err := h.listings.Save(r.Context(), userID, types.Listing{
		AccommodationType:  req.AccommodationType,
		PrivateBathroom:    req.PrivateBathroom,
		Rent:               req.Rent,
		UtilityIncluded:    req.UtilityIncluded,
		Amenities:          req.Amenities,
		DistanceFromCampus: req.DistanceFromCampus,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// UploadListingImage stores one multipart image and appends its public
// URL to the caller's listing.
func (h *MeHandler) UploadListingImage(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUploadBytes)
	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	url, err := h.listings.UploadImage(r.Context(), userID, header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ImageUploadResponse{URL: url})
}

// FinalizeListing publishes the caller's draft listing. Finalizing an
// already active listing is a no-op returning the listing unchanged.
func (h *MeHandler) FinalizeListing(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	listing, err := h.listings.Finalize(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// GetUserData returns everything the wizard has collected for the
// caller so far. Steps not yet completed come back as null.
func (h *MeHandler) GetUserData(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	data, err := h.wizard.GetUserData(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// ListOwn returns the caller's listings regardless of status.
func (h *MeHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summaries, err := h.listings.ListByOwner(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

type ProfileRequest struct {
	UserType              types.UserType              `json:"user_type"`
	AcademicLevel         types.AcademicLevel         `json:"academic_level"`
	Gender                types.Gender                `json:"gender"`
	AgeGroup              types.AgeGroup              `json:"age_group"`
	StudySchedule         types.StudySchedule         `json:"study_schedule"`
	SocializingPreference types.SocializingPreference `json:"socializing_preference"`
	Tidiness              int                         `json:"tidiness"`
	DrinkingPreference    types.HabitPreference       `json:"drinking_preference"`
	SmokingPreference     types.HabitPreference       `json:"smoking_preference"`
	Hobbies               []string                    `json:"hobbies"`
}

type PreferencesRequest struct {
	Roommate             []string `json:"roommate"`
	GuestPreference      int      `json:"guest_preference"`
	AdditionalPreference string   `json:"additional_preference"`
}

type ContactInfoRequest struct {
	Phone            string              `json:"phone"`
	Email            string              `json:"email"`
	PreferredContact types.ContactMethod `json:"preferred_contact"`
}

type ListingRequest struct {
	AccommodationType  types.AccommodationType `json:"accommodation_type"`
	PrivateBathroom    types.BathroomOption    `json:"private_bathroom"`
	Rent               string                  `json:"rent"`
	UtilityIncluded    bool                    `json:"utility_included"`
	Amenities          []string                `json:"amenities"`
	DistanceFromCampus string                  `json:"distance_from_campus"`
}

type ImageUploadResponse struct {
	URL string `json:"url"`
}
