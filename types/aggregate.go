package types

import "time"

// OwnerDetails is the denormalized owner block embedded in an
// aggregated listing view. Profile and contact fields are zero-valued
// when the owner never completed those wizard steps.
type OwnerDetails struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	Gender                Gender                `json:"gender,omitempty"`
	AcademicLevel         AcademicLevel         `json:"academic_level,omitempty"`
	StudySchedule         StudySchedule         `json:"study_schedule,omitempty"`
	SocializingPreference SocializingPreference `json:"socializing_preference,omitempty"`
	Tidiness              int                   `json:"tidiness,omitempty"`
	DrinkingPreference    HabitPreference       `json:"drinking_preference,omitempty"`
	SmokingPreference     HabitPreference       `json:"smoking_preference,omitempty"`
	Hobbies               []string              `json:"hobbies"`

	// Email falls back to the account email when no contact info exists.
	Email            string        `json:"email"`
	Phone            string        `json:"phone,omitempty"`
	PreferredContact ContactMethod `json:"preferred_contact,omitempty"`
}

// RoommatePreferences is the preferences block of an aggregated listing.
type RoommatePreferences struct {
	Roommate             []string `json:"roommate"`
	GuestPreference      int      `json:"guest_preference,omitempty"`
	AdditionalPreference string   `json:"additional_preference,omitempty"`
}

// AggregatedListing is the full read view of a listing joined with its
// owner's user, profile, preferences, and contact records. It is built
// fresh per request and never persisted.
type AggregatedListing struct {
	ID                 int                 `json:"id"`
	AccommodationType  AccommodationType   `json:"accommodation_type"`
	PrivateBathroom    BathroomOption      `json:"private_bathroom"`
	Rent               string              `json:"rent"`
	UtilityIncluded    bool                `json:"utility_included"`
	Amenities          []string            `json:"amenities"`
	DistanceFromCampus string              `json:"distance_from_campus"`
	Images             []string            `json:"images"`
	Status             ListingStatus       `json:"status"`
	PublishedAt        *time.Time          `json:"published_at"`
	CreatedAt          time.Time           `json:"created_at"`
	User               OwnerDetails        `json:"user"`
	Preferences        RoommatePreferences `json:"preferences"`
}

// OwnerSummary is the lightweight owner block attached to list rows.
type OwnerSummary struct {
	FirstName        string        `json:"first_name"`
	LastName         string        `json:"last_name"`
	Email            string        `json:"email"`
	Phone            string        `json:"phone,omitempty"`
	PreferredContact ContactMethod `json:"preferred_contact,omitempty"`
}

// AggregatedListingSummary is one row of a listing enumeration.
type AggregatedListingSummary struct {
	ID                 int               `json:"id"`
	AccommodationType  AccommodationType `json:"accommodation_type"`
	PrivateBathroom    BathroomOption    `json:"private_bathroom"`
	Rent               string            `json:"rent"`
	UtilityIncluded    bool              `json:"utility_included"`
	Amenities          []string          `json:"amenities"`
	DistanceFromCampus string            `json:"distance_from_campus"`
	Images             []string          `json:"images"`
	Status             ListingStatus     `json:"status"`
	PublishedAt        *time.Time        `json:"published_at"`
	CreatedAt          time.Time         `json:"created_at"`
	User               OwnerSummary      `json:"user"`
}

// UserData is the owner-facing merge of everything the wizard has
// collected so far. Steps not yet completed are nil.
type UserData struct {
	User        User         `json:"user"`
	Profile     *Profile     `json:"profile"`
	Listing     *Listing     `json:"listing"`
	Preferences *Preferences `json:"preferences"`
	ContactInfo *ContactInfo `json:"contact_info"`
}
