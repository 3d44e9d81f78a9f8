package model

import (
	"encoding/json"
	"time"
)

type UserType string

const (
	UserTypeCandidate UserType = "candidate"
	UserTypeCompany   UserType = "company"
	UserTypeAdmin     UserType = "admin"
)

func (t UserType) Valid() bool {
	switch t {
	case UserTypeCandidate, UserTypeCompany, UserTypeAdmin:
		return true
	}
	return false
}

// User carries the identity plus the neurodivergent accommodation profile.
// Flags describe the user's condition indicators; Prefers* toggles describe
// which accommodations the user wants offered during an assessment.
type User struct {
	ID             string   `json:"id"`
	Username       string   `json:"username"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	HashedPassword string   `json:"-"` // Not exposed
	UserType       UserType `json:"user_type"`

	IsADHD          bool `json:"is_adhd"`
	IsASD           bool `json:"is_asd"`
	IsDyslexia      bool `json:"is_dyslexia"`
	IsSocialAnxiety bool `json:"is_social_anxiety"`

	PrefersSegmentedSessions  bool `json:"prefers_segmented_sessions"`
	PrefersExtraTime          bool `json:"prefers_extra_time"`
	PrefersTextCommunication  bool `json:"prefers_text_communication"`
	PrefersVisualAids         bool `json:"prefers_visual_aids"`
	PrefersLiteralLanguage    bool `json:"prefers_literal_language"`
	PrefersDyslexiaFormatting bool `json:"prefers_dyslexia_formatting"`

	CustomPreferences json.RawMessage `json:"custom_preferences,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsStaff reports whether the user holds the platform-wide admin role,
// as opposed to administering a particular company.
func (u *User) IsStaff() bool {
	return u.UserType == UserTypeAdmin
}
