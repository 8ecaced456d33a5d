package services

import (
	"context"
	"errors"

	"github.com/shareit-housing/apiserver/internal/store"
	"github.com/shareit-housing/apiserver/types"
)

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID int) (types.Profile, error)
	Upsert(ctx context.Context, profile types.Profile) (types.Profile, error)
}

// PreferencesRepository defines persistence operations for preferences.
type PreferencesRepository interface {
	GetByUserID(ctx context.Context, userID int) (types.Preferences, error)
	Upsert(ctx context.Context, prefs types.Preferences) (types.Preferences, error)
}

// ContactInfoRepository defines persistence operations for contact info.
type ContactInfoRepository interface {
	GetByUserID(ctx context.Context, userID int) (types.ContactInfo, error)
	Upsert(ctx context.Context, info types.ContactInfo) (types.ContactInfo, error)
}

// WizardService handles the profile, preferences, and contact steps of
// the listing wizard, plus the merged owner view the wizard resumes
// from. Every save is an allow-listed, validated, atomic upsert keyed
// on the caller's user id.
type WizardService struct {
	users    UserRepository
	profiles ProfileRepository
	prefs    PreferencesRepository
	contacts ContactInfoRepository
	listings ListingRepository
}

func NewWizardService(
	users UserRepository,
	profiles ProfileRepository,
	prefs PreferencesRepository,
	contacts ContactInfoRepository,
	listings ListingRepository,
) *WizardService {
	return &WizardService{
		users:    users,
		profiles: profiles,
		prefs:    prefs,
		contacts: contacts,
		listings: listings,
	}
}

// SaveProfile validates the enumerated fields against the schema and
// upserts the caller's profile.
func (s *WizardService) SaveProfile(ctx context.Context, userID int, profile types.Profile) (types.Profile, error) {
	if !profile.UserType.Valid() {
		return types.Profile{}, validationError("user_type")
	}
	if profile.AcademicLevel == "" {
		profile.AcademicLevel = types.AcademicUndergraduate
	}
	if !profile.AcademicLevel.Valid() {
		return types.Profile{}, validationError("academic_level")
	}
	if !profile.Gender.Valid() {
		return types.Profile{}, validationError("gender")
	}
	if !profile.AgeGroup.Valid() {
		return types.Profile{}, validationError("age_group")
	}
	if profile.StudySchedule == "" {
		profile.StudySchedule = types.ScheduleFlexible
	}
	if !profile.StudySchedule.Valid() {
		return types.Profile{}, validationError("study_schedule")
	}
	if profile.SocializingPreference == "" {
		profile.SocializingPreference = types.SocializingMixed
	}
	if !profile.SocializingPreference.Valid() {
		return types.Profile{}, validationError("socializing_preference")
	}
	if profile.Tidiness == 0 {
		profile.Tidiness = 3
	}
	if profile.Tidiness < 1 || profile.Tidiness > 5 {
		return types.Profile{}, validationError("tidiness")
	}
	if profile.DrinkingPreference == "" {
		profile.DrinkingPreference = types.HabitNo
	}
	if !profile.DrinkingPreference.Valid() {
		return types.Profile{}, validationError("drinking_preference")
	}
	if profile.SmokingPreference == "" {
		profile.SmokingPreference = types.HabitNo
	}
	if !profile.SmokingPreference.Valid() {
		return types.Profile{}, validationError("smoking_preference")
	}
	if profile.Hobbies == nil {
		profile.Hobbies = []string{}
	}

	profile.UserID = userID
	return s.profiles.Upsert(ctx, profile)
}

// SavePreferences validates and upserts the caller's roommate preferences.
func (s *WizardService) SavePreferences(ctx context.Context, userID int, prefs types.Preferences) (types.Preferences, error) {
	if prefs.GuestPreference != 0 && (prefs.GuestPreference < 1 || prefs.GuestPreference > 5) {
		return types.Preferences{}, validationError("guest_preference")
	}
	if prefs.Roommate == nil {
		prefs.Roommate = []string{}
	}

	prefs.UserID = userID
	return s.prefs.Upsert(ctx, prefs)
}

// SaveContactInfo validates and upserts the caller's contact details.
func (s *WizardService) SaveContactInfo(ctx context.Context, userID int, info types.ContactInfo) (types.ContactInfo, error) {
	if info.PreferredContact == "" {
		info.PreferredContact = types.ContactByEmail
	}
	if !info.PreferredContact.Valid() {
		return types.ContactInfo{}, validationError("preferred_contact")
	}

	info.UserID = userID
	return s.contacts.Upsert(ctx, info)
}

// GetUserData merges the caller's account with whatever wizard steps
// exist so far. Missing steps are nil, never an error.
func (s *WizardService) GetUserData(ctx context.Context, userID int) (types.UserData, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return types.UserData{}, err
	}

	data := types.UserData{User: user}

	if profile, err := s.profiles.GetByUserID(ctx, userID); err == nil {
		data.Profile = &profile
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.UserData{}, err
	}

	if listing, err := s.listings.GetByUserID(ctx, userID); err == nil {
		data.Listing = &listing
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.UserData{}, err
	}

	if prefs, err := s.prefs.GetByUserID(ctx, userID); err == nil {
		data.Preferences = &prefs
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.UserData{}, err
	}

	if contact, err := s.contacts.GetByUserID(ctx, userID); err == nil {
		data.ContactInfo = &contact
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.UserData{}, err
	}

	return data, nil
}
