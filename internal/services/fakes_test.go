package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/shareit-housing/apiserver/internal/store"
	"github.com/shareit-housing/apiserver/types"
)

type fakeUserRepo struct {
	users  map[int]types.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]types.User{}}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return types.User{}, store.ErrDuplicate
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) MarkEmailVerified(_ context.Context, id int) error {
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.EmailVerified = true
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) SetResetToken(_ context.Context, id int, tok string, expiry time.Time) error {
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.ResetToken = &tok
	user.ResetTokenExpiry = &expiry
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) RedeemResetToken(_ context.Context, id int, tok, passwordHash string) error {
	user, ok := f.users[id]
	if !ok || user.ResetToken == nil || *user.ResetToken != tok {
		return store.ErrNotFound
	}
	if user.ResetTokenExpiry == nil || !user.ResetTokenExpiry.After(time.Now()) {
		return store.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.ResetToken = nil
	user.ResetTokenExpiry = nil
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeTokenRepo struct {
	tokens []types.VerificationToken
	nextID int
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{}
}

func (f *fakeTokenRepo) Create(_ context.Context, tok types.VerificationToken) (types.VerificationToken, error) {
	f.nextID++
	tok.ID = f.nextID
	tok.CreatedAt = time.Now()
	f.tokens = append(f.tokens, tok)
	return tok, nil
}

func (f *fakeTokenRepo) GetByToken(_ context.Context, raw string) (types.VerificationToken, error) {
	for _, tok := range f.tokens {
		if tok.Token == raw {
			return tok, nil
		}
	}
	return types.VerificationToken{}, store.ErrNotFound
}

func (f *fakeTokenRepo) DeleteByUserID(_ context.Context, userID int) error {
	kept := f.tokens[:0]
	for _, tok := range f.tokens {
		if tok.UserID != userID {
			kept = append(kept, tok)
		}
	}
	f.tokens = kept
	return nil
}

type fakeMailer struct {
	fail              bool
	verificationLinks map[string]string
	resetLinks        map[string]string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{
		verificationLinks: map[string]string{},
		resetLinks:        map[string]string{},
	}
}

func (f *fakeMailer) SendVerificationEmail(_ context.Context, to, link string) error {
	if f.fail {
		return io.ErrUnexpectedEOF
	}
	f.verificationLinks[to] = link
	return nil
}

func (f *fakeMailer) SendPasswordResetEmail(_ context.Context, to, link string) error {
	if f.fail {
		return io.ErrUnexpectedEOF
	}
	f.resetLinks[to] = link
	return nil
}

type fakeListingRepo struct {
	listings map[int]types.Listing
	nextID   int
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: map[int]types.Listing{}}
}

func (f *fakeListingRepo) GetByID(_ context.Context, id int) (types.Listing, error) {
	listing, ok := f.listings[id]
	if !ok {
		return types.Listing{}, store.ErrNotFound
	}
	return listing, nil
}

func (f *fakeListingRepo) GetByUserID(_ context.Context, userID int) (types.Listing, error) {
	for _, listing := range f.listings {
		if listing.UserID == userID {
			return listing, nil
		}
	}
	return types.Listing{}, store.ErrNotFound
}

func (f *fakeListingRepo) Upsert(_ context.Context, listing types.Listing) (types.Listing, error) {
	for id, existing := range f.listings {
		if existing.UserID == listing.UserID {
			existing.AccommodationType = listing.AccommodationType
			existing.PrivateBathroom = listing.PrivateBathroom
			existing.Rent = listing.Rent
			existing.UtilityIncluded = listing.UtilityIncluded
			existing.Amenities = listing.Amenities
			existing.DistanceFromCampus = listing.DistanceFromCampus
			existing.UpdatedAt = time.Now()
			f.listings[id] = existing
			return existing, nil
		}
	}
	f.nextID++
	listing.ID = f.nextID
	listing.Status = types.ListingDraft
	listing.Images = []string{}
	listing.CreatedAt = time.Now()
	listing.UpdatedAt = listing.CreatedAt
	f.listings[listing.ID] = listing
	return listing, nil
}

func (f *fakeListingRepo) AppendImage(_ context.Context, userID int, url string) error {
	for id, listing := range f.listings {
		if listing.UserID == userID {
			listing.Images = append(listing.Images, url)
			f.listings[id] = listing
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeListingRepo) Finalize(_ context.Context, userID int, publishedAt time.Time) (bool, error) {
	for id, listing := range f.listings {
		if listing.UserID == userID && listing.Status == types.ListingDraft {
			listing.Status = types.ListingActive
			listing.PublishedAt = &publishedAt
			f.listings[id] = listing
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeListingRepo) ListByStatus(_ context.Context, status types.ListingStatus) ([]types.Listing, error) {
	var out []types.Listing
	for _, listing := range f.listings {
		if listing.Status == status {
			out = append(out, listing)
		}
	}
	return out, nil
}

func (f *fakeListingRepo) ListByOwner(_ context.Context, userID int) ([]types.Listing, error) {
	var out []types.Listing
	for _, listing := range f.listings {
		if listing.UserID == userID {
			out = append(out, listing)
		}
	}
	return out, nil
}

func (f *fakeListingRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.listings[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.listings, id)
	return nil
}

type fakeProfileRepo struct {
	profiles map[int]types.Profile
	nextID   int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[int]types.Profile{}}
}

func (f *fakeProfileRepo) GetByUserID(_ context.Context, userID int) (types.Profile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return types.Profile{}, store.ErrNotFound
	}
	return profile, nil
}

func (f *fakeProfileRepo) Upsert(_ context.Context, profile types.Profile) (types.Profile, error) {
	if existing, ok := f.profiles[profile.UserID]; ok {
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
	} else {
		f.nextID++
		profile.ID = f.nextID
		profile.CreatedAt = time.Now()
	}
	profile.UpdatedAt = time.Now()
	f.profiles[profile.UserID] = profile
	return profile, nil
}

type fakePreferencesRepo struct {
	prefs  map[int]types.Preferences
	nextID int
}

func newFakePreferencesRepo() *fakePreferencesRepo {
	return &fakePreferencesRepo{prefs: map[int]types.Preferences{}}
}

func (f *fakePreferencesRepo) GetByUserID(_ context.Context, userID int) (types.Preferences, error) {
	prefs, ok := f.prefs[userID]
	if !ok {
		return types.Preferences{}, store.ErrNotFound
	}
	return prefs, nil
}

func (f *fakePreferencesRepo) Upsert(_ context.Context, prefs types.Preferences) (types.Preferences, error) {
	if existing, ok := f.prefs[prefs.UserID]; ok {
		prefs.ID = existing.ID
		prefs.CreatedAt = existing.CreatedAt
	} else {
		f.nextID++
		prefs.ID = f.nextID
		prefs.CreatedAt = time.Now()
	}
	prefs.UpdatedAt = time.Now()
	f.prefs[prefs.UserID] = prefs
	return prefs, nil
}

type fakeContactRepo struct {
	contacts map[int]types.ContactInfo
	nextID   int
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{contacts: map[int]types.ContactInfo{}}
}

func (f *fakeContactRepo) GetByUserID(_ context.Context, userID int) (types.ContactInfo, error) {
	info, ok := f.contacts[userID]
	if !ok {
		return types.ContactInfo{}, store.ErrNotFound
	}
	return info, nil
}

func (f *fakeContactRepo) Upsert(_ context.Context, info types.ContactInfo) (types.ContactInfo, error) {
	if existing, ok := f.contacts[info.UserID]; ok {
		info.ID = existing.ID
		info.CreatedAt = existing.CreatedAt
	} else {
		f.nextID++
		info.ID = f.nextID
		info.CreatedAt = time.Now()
	}
	info.UpdatedAt = time.Now()
	f.contacts[info.UserID] = info
	return info, nil
}

type fakeImageStore struct {
	objects map[string][]byte
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{objects: map[string][]byte{}}
}

func (f *fakeImageStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	f.objects[key] = buf.Bytes()
	return nil
}

func (f *fakeImageStore) PublicURL(key string) string {
	return "https://img.example.com/" + key
}

type publishedEvent struct {
	channel string
	data    []byte
}

type fakePublisher struct {
	events []publishedEvent
}

func (f *fakePublisher) Publish(_ context.Context, channel string, data []byte, _ map[string]string) (string, error) {
	f.events = append(f.events, publishedEvent{channel: channel, data: data})
	return "msg-1", nil
}
