package app

import (
	"context"
	"encoding/json"
	"fmt"

	"novastore/internal/domain"
)

// ProfileService loads and stores per-user profile settings.
type ProfileService struct {
	store domain.CollectionStore
}

// NewProfileService creates a ProfileService backed by store.
func NewProfileService(store domain.CollectionStore) *ProfileService {
	return &ProfileService{store: store}
}

// DefaultProfile returns the settings shown before anything is saved.
func DefaultProfile(user domain.SessionUser) domain.ProfileSettings {
	return domain.ProfileSettings{
		ProfileEmail:       user.Email,
		ReceiveOrderAlerts: true,
	}
}

// Load returns the stored settings for user. Each field that is missing or
// has the wrong type falls back to its default.
func (s *ProfileService) Load(ctx context.Context, user domain.SessionUser) (domain.ProfileSettings, error) {
	out := DefaultProfile(user)

	raw, ok, err := s.store.Get(ctx, domain.ProfileKey(user.UserID))
	if err != nil {
		return out, fmt.Errorf("read profile: %w", err)
	}
	if !ok {
		return out, nil
	}

	var rec map[string]any
	if err := json.Unmarshal(raw, &rec); err != nil || rec == nil {
		return out, nil
	}

	stringField(rec, "fullName", &out.FullName)
	stringField(rec, "profileEmail", &out.ProfileEmail)
	stringField(rec, "phone", &out.Phone)
	stringField(rec, "city", &out.City)
	stringField(rec, "company", &out.Company)
	stringField(rec, "bio", &out.Bio)
	boolField(rec, "receiveOrderAlerts", &out.ReceiveOrderAlerts)
	boolField(rec, "receiveMarketingEmails", &out.ReceiveMarketingEmails)
	return out, nil
}

// Save stores settings for user.
func (s *ProfileService) Save(ctx context.Context, user domain.SessionUser, settings domain.ProfileSettings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.store.Put(ctx, domain.ProfileKey(user.UserID), payload); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

func stringField(rec map[string]any, key string, dst *string) {
	if v, ok := rec[key].(string); ok {
		*dst = v
	}
}

func boolField(rec map[string]any, key string, dst *bool) {
	if v, ok := rec[key].(bool); ok {
		*dst = v
	}
}
