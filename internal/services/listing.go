package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shareit-housing/apiserver/internal/store"
	"github.com/shareit-housing/apiserver/types"
)

// ListingPublishedChannel is the event bus channel carrying
// listing-published notifications.
const ListingPublishedChannel = "listing.published"

// ListingRepository defines persistence operations for listings.
type ListingRepository interface {
	GetByID(ctx context.Context, id int) (types.Listing, error)
	GetByUserID(ctx context.Context, userID int) (types.Listing, error)
	Upsert(ctx context.Context, listing types.Listing) (types.Listing, error)
	AppendImage(ctx context.Context, userID int, url string) error
	Finalize(ctx context.Context, userID int, publishedAt time.Time) (bool, error)
	ListByStatus(ctx context.Context, status types.ListingStatus) ([]types.Listing, error)
	ListByOwner(ctx context.Context, userID int) ([]types.Listing, error)
	Delete(ctx context.Context, id int) error
}

// ImageStore uploads listing images and resolves their public URLs.
type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PublicURL(key string) string
}

// EventPublisher publishes lifecycle events to the configured bus.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// ownerReader is the slice of repositories the aggregator joins a
// listing's owner from.
type ownerReader interface {
	GetByID(ctx context.Context, id int) (types.User, error)
}

// ListingService builds aggregated listing views and drives the listing
// half of the wizard: save, image upload, finalize, delete.
type ListingService struct {
	listings ListingRepository
	users    ownerReader
	profiles ProfileRepositoryReader
	prefs    PreferencesRepositoryReader
	contacts ContactInfoRepositoryReader
	images   ImageStore
	events   EventPublisher
	logger   zerolog.Logger
}

// Read-only slices of the wizard repositories, shared with the
// aggregation paths.
type (
	ProfileRepositoryReader interface {
		GetByUserID(ctx context.Context, userID int) (types.Profile, error)
	}
	PreferencesRepositoryReader interface {
		GetByUserID(ctx context.Context, userID int) (types.Preferences, error)
	}
	ContactInfoRepositoryReader interface {
		GetByUserID(ctx context.Context, userID int) (types.ContactInfo, error)
	}
)

// NewListingService constructs a ListingService. images and events may
// be nil when no object storage or event bus is configured; the
// corresponding operations degrade (uploads fail, events are skipped).
func NewListingService(
	listings ListingRepository,
	users ownerReader,
	profiles ProfileRepositoryReader,
	prefs PreferencesRepositoryReader,
	contacts ContactInfoRepositoryReader,
	images ImageStore,
	events EventPublisher,
	logger zerolog.Logger,
) *ListingService {
	return &ListingService{
		listings: listings,
		users:    users,
		profiles: profiles,
		prefs:    prefs,
		contacts: contacts,
		images:   images,
		events:   events,
		logger:   logger,
	}
}

// Get returns the full aggregated view of one listing. A listing whose
// owner never completed the profile, preferences, or contact steps is
// still viewable; those blocks come back zero-valued.
func (s *ListingService) Get(ctx context.Context, id int) (types.AggregatedListing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return types.AggregatedListing{}, err
	}
	return s.aggregate(ctx, listing)
}

// List returns active listings, newest first, each with a lightweight
// owner summary. Drafts and inactive listings are never enumerated
// publicly.
func (s *ListingService) List(ctx context.Context) ([]types.AggregatedListingSummary, error) {
	listings, err := s.listings.ListByStatus(ctx, types.ListingActive)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, listings)
}

// ListByOwner returns the caller's own listings in any status, so the
// dashboard can show drafts.
func (s *ListingService) ListByOwner(ctx context.Context, userID int) ([]types.AggregatedListingSummary, error) {
	listings, err := s.listings.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, listings)
}

// Save validates and upserts the caller's single listing. First save
// creates it as a draft.
func (s *ListingService) Save(ctx context.Context, userID int, listing types.Listing) (types.Listing, error) {
	if listing.AccommodationType != "" && !listing.AccommodationType.Valid() {
		return types.Listing{}, validationError("accommodation_type")
	}
	if listing.PrivateBathroom != "" && !listing.PrivateBathroom.Valid() {
		return types.Listing{}, validationError("private_bathroom")
	}

	listing.UserID = userID
	return s.listings.Upsert(ctx, listing)
}

// UploadImage stores the file under the caller's listing prefix and
// appends its public URL to the listing's image list.
func (s *ListingService) UploadImage(ctx context.Context, userID int, filename, contentType string, r io.Reader, size int64) (string, error) {
	if s.images == nil {
		return "", errors.New("object storage is not configured")
	}

	name := path.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == "/" {
		return "", validationError("filename")
	}

	key := fmt.Sprintf("listings/%d/%s-%s", userID, randomSuffix(), name)
	if err := s.images.Put(ctx, key, r, size, contentType); err != nil {
		return "", err
	}

	url := s.images.PublicURL(key)
	if err := s.listings.AppendImage(ctx, userID, url); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrNoDraftListing
		}
		return "", err
	}
	return url, nil
}

// Finalize publishes the caller's draft listing: status moves
// draft -> active and published_at is stamped. The transition is
// one-directional; finalizing an already-active listing is a no-op that
// keeps the original publish time.
func (s *ListingService) Finalize(ctx context.Context, userID int) (types.Listing, error) {
	changed, err := s.listings.Finalize(ctx, userID, time.Now())
	if err != nil {
		return types.Listing{}, err
	}

	listing, err := s.listings.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Listing{}, ErrNoDraftListing
		}
		return types.Listing{}, err
	}

	if !changed {
		if listing.Status == types.ListingActive {
			return listing, nil
		}
		return types.Listing{}, ErrNoDraftListing
	}

	s.publishEvent(ctx, listing)
	return listing, nil
}

// Delete removes a listing. Existence is checked before ownership, so
// deleting a missing listing reports not-found regardless of caller.
func (s *ListingService) Delete(ctx context.Context, id, callerID int) error {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.UserID != callerID {
		return ErrForbidden
	}
	return s.listings.Delete(ctx, id)
}

func (s *ListingService) aggregate(ctx context.Context, listing types.Listing) (types.AggregatedListing, error) {
	owner, err := s.owner(ctx, listing.UserID)
	if err != nil {
		return types.AggregatedListing{}, err
	}

	prefs := types.RoommatePreferences{Roommate: []string{}}
	if p, err := s.prefs.GetByUserID(ctx, listing.UserID); err == nil {
		prefs = types.RoommatePreferences{
			Roommate:             p.Roommate,
			GuestPreference:      p.GuestPreference,
			AdditionalPreference: p.AdditionalPreference,
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.AggregatedListing{}, err
	}

	return types.AggregatedListing{
		ID:                 listing.ID,
		AccommodationType:  listing.AccommodationType,
		PrivateBathroom:    listing.PrivateBathroom,
		Rent:               listing.Rent,
		UtilityIncluded:    listing.UtilityIncluded,
		Amenities:          listing.Amenities,
		DistanceFromCampus: listing.DistanceFromCampus,
		Images:             listing.Images,
		Status:             listing.Status,
		PublishedAt:        listing.PublishedAt,
		CreatedAt:          listing.CreatedAt,
		User:               owner,
		Preferences:        prefs,
	}, nil
}

// owner joins the user, profile, and contact records into the
// denormalized owner block. Missing profile or contact records are
// tolerated; the account email is the contact fallback.
func (s *ListingService) owner(ctx context.Context, userID int) (types.OwnerDetails, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return types.OwnerDetails{}, err
	}

	owner := types.OwnerDetails{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Hobbies:   []string{},
	}

	if profile, err := s.profiles.GetByUserID(ctx, userID); err == nil {
		owner.Gender = profile.Gender
		owner.AcademicLevel = profile.AcademicLevel
		owner.StudySchedule = profile.StudySchedule
		owner.SocializingPreference = profile.SocializingPreference
		owner.Tidiness = profile.Tidiness
		owner.DrinkingPreference = profile.DrinkingPreference
		owner.SmokingPreference = profile.SmokingPreference
		if profile.Hobbies != nil {
			owner.Hobbies = profile.Hobbies
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.OwnerDetails{}, err
	}

	if contact, err := s.contacts.GetByUserID(ctx, userID); err == nil {
		if contact.Email != "" {
			owner.Email = contact.Email
		}
		owner.Phone = contact.Phone
		owner.PreferredContact = contact.PreferredContact
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.OwnerDetails{}, err
	}

	return owner, nil
}

func (s *ListingService) summarize(ctx context.Context, listings []types.Listing) ([]types.AggregatedListingSummary, error) {
	summaries := make([]types.AggregatedListingSummary, 0, len(listings))
	for _, listing := range listings {
		owner, err := s.owner(ctx, listing.UserID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, types.AggregatedListingSummary{
			ID:                 listing.ID,
			AccommodationType:  listing.AccommodationType,
			PrivateBathroom:    listing.PrivateBathroom,
			Rent:               listing.Rent,
			UtilityIncluded:    listing.UtilityIncluded,
			Amenities:          listing.Amenities,
			DistanceFromCampus: listing.DistanceFromCampus,
			Images:             listing.Images,
			Status:             listing.Status,
			PublishedAt:        listing.PublishedAt,
			CreatedAt:          listing.CreatedAt,
			User: types.OwnerSummary{
				FirstName:        owner.FirstName,
				LastName:         owner.LastName,
				Email:            owner.Email,
				Phone:            owner.Phone,
				PreferredContact: owner.PreferredContact,
			},
		})
	}
	return summaries, nil
}

// publishEvent emits a listing.published event. Event delivery is best
// effort and never fails the finalize operation.
func (s *ListingService) publishEvent(ctx context.Context, listing types.Listing) {
	if s.events == nil {
		return
	}

	data, err := json.Marshal(map[string]any{
		"listing_id":   listing.ID,
		"user_id":      listing.UserID,
		"published_at": listing.PublishedAt,
	})
	if err != nil {
		return
	}

	if _, err := s.events.Publish(ctx, ListingPublishedChannel, data, map[string]string{
		"event": ListingPublishedChannel,
	}); err != nil {
		s.logger.Warn().Err(err).Int("listing_id", listing.ID).Msg("failed to publish listing event")
	}
}

func randomSuffix() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "0"
	}
	return hex.EncodeToString(buf[:])
}
