package service

import (
	"context"
	"encoding/json"

	"neurohire/internal/common"
	"neurohire/internal/domain/model"
	"neurohire/internal/domain/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetUser is readable by any authenticated caller.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.HashedPassword = ""
	return user, nil
}

type UpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// UpdateUser applies the self-or-admin predicate: only the record's own
// identity or a staff account may write.
func (s *UserService) UpdateUser(ctx context.Context, requester Requester, id string, req UpdateUserRequest) (*model.User, error) {
	if requester.UserID != id && !requester.IsStaff() {
		return nil, common.Errorf("only the user or an admin may modify this account: %w", common.ErrForbidden)
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	user.HashedPassword = ""
	return user, nil
}

// PreferencePatch lists exactly the mutable accommodation preference fields.
// Absent fields are left untouched; unknown fields are rejected at decode
// time by the handler.
type PreferencePatch struct {
	IsADHD          *bool `json:"is_adhd,omitempty"`
	IsASD           *bool `json:"is_asd,omitempty"`
	IsDyslexia      *bool `json:"is_dyslexia,omitempty"`
	IsSocialAnxiety *bool `json:"is_social_anxiety,omitempty"`

	PrefersSegmentedSessions  *bool `json:"prefers_segmented_sessions,omitempty"`
	PrefersExtraTime          *bool `json:"prefers_extra_time,omitempty"`
	PrefersTextCommunication  *bool `json:"prefers_text_communication,omitempty"`
	PrefersVisualAids         *bool `json:"prefers_visual_aids,omitempty"`
	PrefersLiteralLanguage    *bool `json:"prefers_literal_language,omitempty"`
	PrefersDyslexiaFormatting *bool `json:"prefers_dyslexia_formatting,omitempty"`

	CustomPreferences json.RawMessage `json:"custom_preferences,omitempty"`
}

// UpdatePreferences patches the requester's own accommodation profile.
func (s *UserService) UpdatePreferences(ctx context.Context, requester Requester, patch PreferencePatch) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, requester.UserID)
	if err != nil {
		return nil, err
	}

	apply := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&user.IsADHD, patch.IsADHD)
	apply(&user.IsASD, patch.IsASD)
	apply(&user.IsDyslexia, patch.IsDyslexia)
	apply(&user.IsSocialAnxiety, patch.IsSocialAnxiety)
	apply(&user.PrefersSegmentedSessions, patch.PrefersSegmentedSessions)
	apply(&user.PrefersExtraTime, patch.PrefersExtraTime)
	apply(&user.PrefersTextCommunication, patch.PrefersTextCommunication)
	apply(&user.PrefersVisualAids, patch.PrefersVisualAids)
	apply(&user.PrefersLiteralLanguage, patch.PrefersLiteralLanguage)
	apply(&user.PrefersDyslexiaFormatting, patch.PrefersDyslexiaFormatting)
	if patch.CustomPreferences != nil {
		user.CustomPreferences = patch.CustomPreferences
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	user.HashedPassword = ""
	return user, nil
}
