package types

import "time"

// Enumerations for listing fields.
type (
	AccommodationType string
	BathroomOption    string
	ListingStatus     string
)

const (
	AccommodationSingleRoom AccommodationType = "Single room"
	AccommodationEntireUnit AccommodationType = "Entire Unit"

	BathroomPrivate BathroomOption = "Yes"
	BathroomShared  BathroomOption = "No, Shared"

	// ListingDraft is the initial status of every listing. A listing
	// moves draft -> active exactly once, when it is finalized.
	ListingDraft    ListingStatus = "draft"
	ListingActive   ListingStatus = "active"
	ListingInactive ListingStatus = "inactive"
)

func (v AccommodationType) Valid() bool {
	return v == AccommodationSingleRoom || v == AccommodationEntireUnit
}

func (v BathroomOption) Valid() bool {
	return v == BathroomPrivate || v == BathroomShared
}

func (v ListingStatus) Valid() bool {
	return v == ListingDraft || v == ListingActive || v == ListingInactive
}

// Listing represents a housing offer built up by the multi-step wizard.
// There is at most one listing per user; the wizard updates it in place.
type Listing struct {
	// ID is the unique identifier of the listing.
	ID int `json:"id" db:"id"`

	// UserID references the owning user. Unique per user; only the
	// owner may mutate or delete the listing.
	UserID int `json:"user_id" db:"user_id"`

	AccommodationType AccommodationType `json:"accommodation_type" db:"accommodation_type"`
	PrivateBathroom   BathroomOption    `json:"private_bathroom" db:"private_bathroom"`

	// Rent is the asking monthly rent. Kept as a string, matching the
	// free-form value collected by the wizard.
	Rent string `json:"rent" db:"rent"`

	// UtilityIncluded reports whether utilities are part of the rent.
	UtilityIncluded bool `json:"utility_included" db:"utility_included"`

	// Amenities are free-form labels (e.g. "Parking", "Laundry").
	Amenities []string `json:"amenities" db:"amenities"`

	// DistanceFromCampus is the distance to campus, free-form.
	DistanceFromCampus string `json:"distance_from_campus" db:"distance_from_campus"`

	// Images is the ordered list of public image URLs appended during
	// the upload step.
	Images []string `json:"images" db:"images"`

	// Status is draft until the listing is finalized. Only active
	// listings appear in public enumeration.
	Status ListingStatus `json:"status" db:"status"`

	// PublishedAt is stamped when the listing first becomes active.
	PublishedAt *time.Time `json:"published_at" db:"published_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
