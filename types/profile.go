package types

import "time"

// Closed enumerations for profile fields. Unknown values are rejected
// before any write.
type (
	UserType              string
	AcademicLevel         string
	Gender                string
	AgeGroup              string
	StudySchedule         string
	SocializingPreference string
	HabitPreference       string
)

const (
	UserTypeStudent UserType = "Student"
	UserTypeStaff   UserType = "University Staff"

	AcademicUndergraduate AcademicLevel = "Undergraduate"
	AcademicGraduate      AcademicLevel = "Graduate"
	AcademicPhD           AcademicLevel = "PhD"

	GenderFemale    Gender = "Female"
	GenderMale      Gender = "Male"
	GenderNonBinary Gender = "Non-Binary"

	AgeGroup18To21 AgeGroup = "18-21"
	AgeGroup22To25 AgeGroup = "22-25"
	AgeGroupOver25 AgeGroup = "25+"

	ScheduleMorning  StudySchedule = "Morning Person"
	ScheduleNightOwl StudySchedule = "Night Owl"
	ScheduleFlexible StudySchedule = "Flexible"

	SocializingOutgoing SocializingPreference = "Enjoys hanging out"
	SocializingPrivate  SocializingPreference = "I prefer my privacy"
	SocializingMixed    SocializingPreference = "A mixture of both"

	HabitYes          HabitPreference = "Yes"
	HabitNo           HabitPreference = "No"
	HabitOccasionally HabitPreference = "Occasionally"
)

func (v UserType) Valid() bool {
	return v == UserTypeStudent || v == UserTypeStaff
}

func (v AcademicLevel) Valid() bool {
	return v == AcademicUndergraduate || v == AcademicGraduate || v == AcademicPhD
}

func (v Gender) Valid() bool {
	return v == GenderFemale || v == GenderMale || v == GenderNonBinary
}

func (v AgeGroup) Valid() bool {
	return v == AgeGroup18To21 || v == AgeGroup22To25 || v == AgeGroupOver25
}

func (v StudySchedule) Valid() bool {
	return v == ScheduleMorning || v == ScheduleNightOwl || v == ScheduleFlexible
}

func (v SocializingPreference) Valid() bool {
	return v == SocializingOutgoing || v == SocializingPrivate || v == SocializingMixed
}

func (v HabitPreference) Valid() bool {
	return v == HabitYes || v == HabitNo || v == HabitOccasionally
}

// Profile describes a user's roommate-matching attributes. There is at
// most one profile per user, updated in place by the wizard.
type Profile struct {
	// ID is the unique identifier of the profile.
	ID int `json:"id" db:"id"`

	// UserID references the owning user. Unique per user.
	UserID int `json:"user_id" db:"user_id"`

	UserType              UserType              `json:"user_type" db:"user_type"`
	AcademicLevel         AcademicLevel         `json:"academic_level" db:"academic_level"`
	Gender                Gender                `json:"gender" db:"gender"`
	AgeGroup              AgeGroup              `json:"age_group" db:"age_group"`
	StudySchedule         StudySchedule         `json:"study_schedule" db:"study_schedule"`
	SocializingPreference SocializingPreference `json:"socializing_preference" db:"socializing_preference"`

	// Tidiness is a self-rating from 1 (messy) to 5 (very tidy).
	Tidiness int `json:"tidiness" db:"tidiness"`

	DrinkingPreference HabitPreference `json:"drinking_preference" db:"drinking_preference"`
	SmokingPreference  HabitPreference `json:"smoking_preference" db:"smoking_preference"`

	// Hobbies are free-form labels shown on the listing page.
	Hobbies []string `json:"hobbies" db:"hobbies"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
