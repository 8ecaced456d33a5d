package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shareit-housing/apiserver/internal/store"
	"github.com/shareit-housing/apiserver/types"
)

type listingFixture struct {
	svc      *ListingService
	users    *fakeUserRepo
	listings *fakeListingRepo
	profiles *fakeProfileRepo
	prefs    *fakePreferencesRepo
	contacts *fakeContactRepo
	images   *fakeImageStore
	events   *fakePublisher
}

func newListingFixture() *listingFixture {
	f := &listingFixture{
		users:    newFakeUserRepo(),
		listings: newFakeListingRepo(),
		profiles: newFakeProfileRepo(),
		prefs:    newFakePreferencesRepo(),
		contacts: newFakeContactRepo(),
		images:   newFakeImageStore(),
		events:   &fakePublisher{},
	}
	f.svc = NewListingService(
		f.listings, f.users, f.profiles, f.prefs, f.contacts,
		f.images, f.events, zerolog.Nop(),
	)
	return f
}

func (f *listingFixture) addUser(t *testing.T, email string) types.User {
	t.Helper()
	user, err := f.users.Create(context.Background(), types.User{
		FirstName:     "Grace",
		LastName:      "Hopper",
		Email:         email,
		EmailVerified: true,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (f *listingFixture) addDraft(t *testing.T, userID int) types.Listing {
	t.Helper()
	listing, err := f.svc.Save(context.Background(), userID, types.Listing{
		AccommodationType:  types.AccommodationSingleRoom,
		PrivateBathroom:    types.BathroomPrivate,
		Rent:               "750",
		UtilityIncluded:    true,
		Amenities:          []string{"Parking"},
		DistanceFromCampus: "10 min walk",
	})
	if err != nil {
		t.Fatalf("save listing: %v", err)
	}
	return listing
}

func TestSaveCreatesDraft(t *testing.T) {
	f := newListingFixture()
	user := f.addUser(t, "grace@uni.edu")

	listing := f.addDraft(t, user.ID)
	if listing.Status != types.ListingDraft {
		t.Fatalf("new listing status %q, want draft", listing.Status)
	}
	if listing.UserID != user.ID {
		t.Fatalf("listing owner %d, want %d", listing.UserID, user.ID)
	}
	if listing.PublishedAt != nil {
		t.Fatalf("draft must not carry a publish time")
	}
}

func TestSaveRejectsUnknownAccommodationType(t *testing.T) {
	f := newListingFixture()
	user := f.addUser(t, "grace@uni.edu")

	_, err := f.svc.Save(context.Background(), user.ID, types.Listing{
		AccommodationType: "Castle",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
}

func TestSaveIgnoresCallerSuppliedOwner(t *testing.T) {
	f := newListingFixture()
	owner := f.addUser(t, "grace@uni.edu")
	other := f.addUser(t, "mallory@uni.edu")

	listing, err := f.svc.Save(context.Background(), owner.ID, types.Listing{
		UserID: other.ID,
		Rent:   "500",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if listing.UserID != owner.ID {
		t.Fatalf("listing owner %d, want caller %d", listing.UserID, owner.ID)
	}
}

func TestUploadImageAppendsPublicURL(t *testing.T) {
	f := newListingFixture()
	user := f.addUser(t, "grace@uni.edu")
	f.addDraft(t, user.ID)

	url, err := f.svc.UploadImage(context.Background(), user.ID, "room.jpg", "image/jpeg", strings.NewReader("jpegdata"), 8)
	if err != nil {
		t.Fatalf("upload image: %v", err)
	}
	if !strings.HasPrefix(url, "https://img.example.com/listings/") {
		t.Fatalf("unexpected image url %q", url)
	}

	listing, err := f.listings.GetByUserID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get listing: %v", err)
	}
	if len(listing.Images) != 1 || listing.Images[0] != url {
		t.Fatalf("image url not appended: %v", listing.Images)
	}
}

func TestUploadImageWithoutListing(t *testing.T) {
	f := newListingFixture()
	user := f.addUser(t, "grace@uni.edu")

	_, err := f.svc.UploadImage(context.Background(), user.ID, "room.jpg", "image/jpeg", strings.NewReader("jpegdata"), 8)
	if !errors.Is(err, ErrNoDraftListing) {
		t.Fatalf("got %v, want ErrNoDraftListing", err)
	}
}

func TestFinalizePublishesOnce(t *testing.T) {
	f := newListingFixture()
	user := f.addUser(t, "grace@uni.edu")
	f.addDraft(t, user.ID)

	published, err := f.svc.Finalize(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if published.Status != types.ListingActive {
		t.Fatalf("status %q, want active", published.Status)
	}
	if published.PublishedAt == nil {
		t.Fatalf("publish time not stamped")
	}
	if len(f.events.events) != 1 {
		t.Fatalf("got %d events, want 1", len(f.events.events))
	}
	if f.events.events[0].channel != ListingPublishedChannel {
		t.Fatalf("event channel %q", f.events.events[0].channel)
	}
	var payload struct {
		ListingID int `json:"listing_id"`
		UserID    int `json:"user_id"`
	}
	if err := json.Unmarshal(f.events.events[0].data, &payload); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if payload.ListingID != published.ID || payload.UserID != user.ID {
		t.Fatalf("event payload %+v", payload)
	}

	// A second finalize is a no-op keeping the original publish time.
	again, err := f.svc.Finalize(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("second finalize: %v", err)
	}
	if !again.PublishedAt.Equal(*published.PublishedAt) {
		t.Fatalf("publish time changed on re-finalize")
	}
	if len(f.events.events) != 1 {
		t.Fatalf("re-finalize published another event")
	}
}

func TestFinalizeWithoutListing(t *testing.T) {
	f := newListingFixture()
	user := f.addUser(t, "grace@uni.edu")

	_, err := f.svc.Finalize(context.Background(), user.ID)
	if !errors.Is(err, ErrNoDraftListing) {
		t.Fatalf("got %v, want ErrNoDraftListing", err)
	}
}

func TestDeleteOwnerOnly(t *testing.T) {
	f := newListingFixture()
	owner := f.addUser(t, "grace@uni.edu")
	other := f.addUser(t, "mallory@uni.edu")
	listing := f.addDraft(t, owner.ID)

	if err := f.svc.Delete(context.Background(), listing.ID, other.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner delete: got %v, want ErrForbidden", err)
	}
	if err := f.svc.Delete(context.Background(), listing.ID, owner.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	// A missing listing is not-found for everyone, owner included.
	if err := f.svc.Delete(context.Background(), listing.ID, other.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("deleted listing: got %v, want ErrNotFound", err)
	}
}

func TestListReturnsOnlyActiveListings(t *testing.T) {
	f := newListingFixture()
	published := f.addUser(t, "grace@uni.edu")
	drafting := f.addUser(t, "alan@uni.edu")
	f.addDraft(t, published.ID)
	f.addDraft(t, drafting.ID)

	if _, err := f.svc.Finalize(context.Background(), published.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	summaries, err := f.svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d listings, want 1", len(summaries))
	}
	if summaries[0].User.FirstName != "Grace" {
		t.Fatalf("unexpected owner %q", summaries[0].User.FirstName)
	}
}

func TestListByOwnerIncludesDrafts(t *testing.T) {
	f := newListingFixture()
	user := f.addUser(t, "grace@uni.edu")
	f.addDraft(t, user.ID)

	summaries, err := f.svc.ListByOwner(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d listings, want 1", len(summaries))
	}
	if summaries[0].Status != types.ListingDraft {
		t.Fatalf("status %q, want draft", summaries[0].Status)
	}
}

func TestGetAggregatesOwnerRecords(t *testing.T) {
	f := newListingFixture()
	user := f.addUser(t, "grace@uni.edu")
	listing := f.addDraft(t, user.ID)

	if _, err := f.profiles.Upsert(context.Background(), types.Profile{
		UserID:        user.ID,
		Gender:        types.GenderFemale,
		AcademicLevel: types.AcademicPhD,
		Tidiness:      4,
		Hobbies:       []string{"sailing"},
	}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	if _, err := f.contacts.Upsert(context.Background(), types.ContactInfo{
		UserID:           user.ID,
		Email:            "contact@uni.edu",
		Phone:            "555-0100",
		PreferredContact: types.ContactByPhone,
	}); err != nil {
		t.Fatalf("seed contact: %v", err)
	}
	if _, err := f.prefs.Upsert(context.Background(), types.Preferences{
		UserID:          user.ID,
		Roommate:        []string{"Quiet"},
		GuestPreference: 2,
	}); err != nil {
		t.Fatalf("seed preferences: %v", err)
	}

	view, err := f.svc.Get(context.Background(), listing.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.User.Email != "contact@uni.edu" {
		t.Fatalf("contact email must win over account email, got %q", view.User.Email)
	}
	if view.User.AcademicLevel != types.AcademicPhD || view.User.Tidiness != 4 {
		t.Fatalf("profile fields not joined: %+v", view.User)
	}
	if len(view.Preferences.Roommate) != 1 || view.Preferences.GuestPreference != 2 {
		t.Fatalf("preferences not joined: %+v", view.Preferences)
	}
}

func TestGetToleratesMissingWizardSteps(t *testing.T) {
	f := newListingFixture()
	user := f.addUser(t, "grace@uni.edu")
	listing := f.addDraft(t, user.ID)

	view, err := f.svc.Get(context.Background(), listing.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.User.Email != user.Email {
		t.Fatalf("account email fallback missing, got %q", view.User.Email)
	}
	if view.User.Hobbies == nil || len(view.User.Hobbies) != 0 {
		t.Fatalf("hobbies must be an empty slice, got %#v", view.User.Hobbies)
	}
	if view.Preferences.Roommate == nil {
		t.Fatalf("roommate preferences must be an empty slice")
	}
}

func TestUploadImageWithoutStorageConfigured(t *testing.T) {
	f := newListingFixture()
	user := f.addUser(t, "grace@uni.edu")
	f.addDraft(t, user.ID)

	svc := NewListingService(
		f.listings, f.users, f.profiles, f.prefs, f.contacts,
		nil, nil, zerolog.Nop(),
	)
	if _, err := svc.UploadImage(context.Background(), user.ID, "room.jpg", "image/jpeg", strings.NewReader("x"), 1); err == nil {
		t.Fatalf("expected an error with no object storage configured")
	}
}

func TestFinalizeWithoutEventBus(t *testing.T) {
	f := newListingFixture()
	user := f.addUser(t, "grace@uni.edu")
	f.addDraft(t, user.ID)

	svc := NewListingService(
		f.listings, f.users, f.profiles, f.prefs, f.contacts,
		nil, nil, zerolog.Nop(),
	)
	listing, err := svc.Finalize(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("finalize without bus: %v", err)
	}
	if listing.Status != types.ListingActive {
		t.Fatalf("status %q, want active", listing.Status)
	}
}
