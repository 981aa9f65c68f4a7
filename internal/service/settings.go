package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"citypulse/internal/models"
	"citypulse/internal/platform"
	"citypulse/internal/repository"
)

// SettingsService is the credential store: one mergeable record per
// (business, platform) with derived configuration state. Saves are serialized
// per destination so concurrent partial updates cannot clobber each other.
type SettingsService struct {
	Repo   repository.Repository
	Crypto *CredentialCipher
	Logger *zap.Logger

	locks *keyedMutex
}

func NewSettingsService(repo repository.Repository, crypto *CredentialCipher, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		Repo:   repo,
		Crypto: crypto,
		Logger: logger,
		locks:  newKeyedMutex(),
	}
}

// SaveInput carries a partial update. Nil pointer fields and absent credential
// keys leave the stored values untouched; supplied credential keys overwrite
// (an explicit empty string clears a field).
type SaveInput struct {
	Platform            string
	Credentials         map[string]string
	PublishEvents       *bool
	PublishPromotions   *bool
	AutoPublishOnCreate *bool
	IsEnabled           *bool

	// Validate makes the save fail when, after the merge, a mandatory
	// credential field is still empty. Plain toggles leave it false.
	Validate bool
}

// SettingSummary is the API-facing view. Credential values are masked; raw
// secrets never leave the service.
type SettingSummary struct {
	Platform            string            `json:"platform"`
	IsConfigured        bool              `json:"is_configured"`
	IsEnabled           bool              `json:"is_enabled"`
	PublishEvents       bool              `json:"publish_events"`
	PublishPromotions   bool              `json:"publish_promotions"`
	AutoPublishOnCreate bool              `json:"auto_publish_on_create"`
	Credentials         map[string]string `json:"credentials"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

func (s *SettingsService) Save(ctx context.Context, businessID string, in SaveInput) (*SettingSummary, error) {
	if !platform.Known(in.Platform) {
		return nil, ErrUnknownPlatform
	}

	key := businessID + "|" + in.Platform
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	existing, err := s.Repo.GetPlatformSetting(ctx, businessID, in.Platform)
	if err != nil {
		return nil, err
	}

	item := existing
	creds := platform.Credentials{}
	if item == nil {
		item = &models.PlatformSetting{
			BusinessID: businessID,
			Platform:   in.Platform,
			IsEnabled:  true,
		}
	} else {
		creds = s.decodeCredentials(item)
	}

	for k, v := range in.Credentials {
		creds[k] = v
	}
	if in.PublishEvents != nil {
		item.PublishEvents = *in.PublishEvents
	}
	if in.PublishPromotions != nil {
		item.PublishPromotions = *in.PublishPromotions
	}
	if in.AutoPublishOnCreate != nil {
		item.AutoPublishOnCreate = *in.AutoPublishOnCreate
	}
	if in.IsEnabled != nil {
		item.IsEnabled = *in.IsEnabled
	}

	if in.Validate {
		if missing := platform.MissingFields(in.Platform, creds); len(missing) > 0 {
			return nil, &ValidationError{Platform: in.Platform, MissingFields: missing}
		}
	}

	raw, err := json.Marshal(creds)
	if err != nil {
		return nil, err
	}
	item.Credentials = datatypes.JSON(s.Crypto.Seal(businessID, in.Platform, raw))
	item.UpdatedAt = time.Now().UTC()

	if err := s.Repo.UpsertPlatformSetting(ctx, item); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("platform setting saved",
			zap.String("business_id", businessID),
			zap.String("platform", in.Platform),
			zap.Bool("configured", platform.IsConfigured(in.Platform, creds)),
		)
	}

	summary := s.summarize(item, creds)
	return &summary, nil
}

// Get returns the stored setting with its decrypted credential bundle.
func (s *SettingsService) Get(ctx context.Context, businessID, platformName string) (*models.PlatformSetting, platform.Credentials, error) {
	if !platform.Known(platformName) {
		return nil, nil, ErrUnknownPlatform
	}
	item, err := s.Repo.GetPlatformSetting(ctx, businessID, platformName)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, ErrNotFound
	}
	return item, s.decodeCredentials(item), nil
}

func (s *SettingsService) List(ctx context.Context, businessID string) ([]SettingSummary, error) {
	items, err := s.Repo.ListPlatformSettings(ctx, businessID)
	if err != nil {
		return nil, err
	}
	out := make([]SettingSummary, 0, len(items))
	for i := range items {
		out = append(out, s.summarize(&items[i], s.decodeCredentials(&items[i])))
	}
	return out, nil
}

// Delete removes the destination. Deleting an absent record is a no-op;
// re-adding later requires re-entering credentials.
func (s *SettingsService) Delete(ctx context.Context, businessID, platformName string) error {
	if !platform.Known(platformName) {
		return ErrUnknownPlatform
	}
	key := businessID + "|" + platformName
	s.locks.Lock(key)
	defer s.locks.Unlock(key)
	return s.Repo.DeletePlatformSetting(ctx, businessID, platformName)
}

// PurgeBusiness removes every destination of a business. Called when the
// business itself is deleted; history rows stay for audit.
func (s *SettingsService) PurgeBusiness(ctx context.Context, businessID string) error {
	return s.Repo.DeletePlatformSettingsForBusiness(ctx, businessID)
}

// Destination is an eligible publish target resolved with live credentials.
type Destination struct {
	Setting      models.PlatformSetting
	Credentials  platform.Credentials
	IsConfigured bool
}

func (s *SettingsService) Destinations(ctx context.Context, businessID string) ([]Destination, error) {
	items, err := s.Repo.ListPlatformSettings(ctx, businessID)
	if err != nil {
		return nil, err
	}
	out := make([]Destination, 0, len(items))
	for i := range items {
		creds := s.decodeCredentials(&items[i])
		out = append(out, Destination{
			Setting:      items[i],
			Credentials:  creds,
			IsConfigured: platform.IsConfigured(items[i].Platform, creds),
		})
	}
	return out, nil
}

func (s *SettingsService) decodeCredentials(item *models.PlatformSetting) platform.Credentials {
	creds := platform.Credentials{}
	raw := s.Crypto.Open(item.BusinessID, item.Platform, []byte(item.Credentials))
	if len(raw) == 0 {
		return creds
	}
	if err := json.Unmarshal(raw, &creds); err != nil && s.Logger != nil {
		s.Logger.Warn("stored credentials unreadable",
			zap.String("business_id", item.BusinessID),
			zap.String("platform", item.Platform),
		)
	}
	return creds
}

func (s *SettingsService) summarize(item *models.PlatformSetting, creds platform.Credentials) SettingSummary {
	return SettingSummary{
		Platform:            item.Platform,
		IsConfigured:        platform.IsConfigured(item.Platform, creds),
		IsEnabled:           item.IsEnabled,
		PublishEvents:       item.PublishEvents,
		PublishPromotions:   item.PublishPromotions,
		AutoPublishOnCreate: item.AutoPublishOnCreate,
		Credentials:         maskCredentials(creds),
		UpdatedAt:           item.UpdatedAt,
	}
}

func maskCredentials(creds platform.Credentials) map[string]string {
	out := make(map[string]string, len(creds))
	keys := make([]string, 0, len(creds))
	for k := range creds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out[k] = maskValue(creds[k])
	}
	return out
}

func maskValue(v string) string {
	if v == "" {
		return ""
	}
	runes := []rune(v)
	if len(runes) <= 8 {
		return "****"
	}
	return string(runes[:4]) + "****"
}
