package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"citypulse/internal/models"
	"citypulse/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
// Dispatcher tests hit it from multiple goroutines, so it is mutex guarded.
// Every method refuses a cancelled context the way a real driver would.
type stubRepo struct {
	mu       sync.Mutex
	settings map[string]*models.PlatformSetting
	history  []*models.PublishHistoryItem
	nextID   uint64
}

func newStubRepo() *stubRepo {
	return &stubRepo{settings: make(map[string]*models.PlatformSetting)}
}

func settingKey(businessID, platform string) string {
	return businessID + "|" + platform
}

func (s *stubRepo) GetPlatformSetting(ctx context.Context, businessID, platform string) (*models.PlatformSetting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.settings[settingKey(businessID, platform)]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (s *stubRepo) ListPlatformSettings(ctx context.Context, businessID string) ([]models.PlatformSetting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PlatformSetting
	for _, item := range s.settings {
		if item.BusinessID == businessID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out, nil
}

func (s *stubRepo) UpsertPlatformSetting(ctx context.Context, item *models.PlatformSetting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *item
	s.settings[settingKey(item.BusinessID, item.Platform)] = &cp
	return nil
}

func (s *stubRepo) DeletePlatformSetting(ctx context.Context, businessID, platform string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.settings, settingKey(businessID, platform))
	return nil
}

func (s *stubRepo) DeletePlatformSettingsForBusiness(ctx context.Context, businessID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, item := range s.settings {
		if item.BusinessID == businessID {
			delete(s.settings, key)
		}
	}
	return nil
}

func (s *stubRepo) InsertPublishHistory(ctx context.Context, item *models.PublishHistoryItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	item.ID = s.nextID
	cp := *item
	s.history = append(s.history, &cp)
	return nil
}

func (s *stubRepo) CompletePublishHistory(ctx context.Context, id uint64, status, externalPostURL, errorMessage string, completedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.history {
		if row.ID != id {
			continue
		}
		if row.Status != models.PublishStatusPending {
			return errors.New("history row already completed")
		}
		row.Status = status
		row.ExternalPostURL = externalPostURL
		row.ErrorMessage = errorMessage
		at := completedAt
		row.CompletedAt = &at
		return nil
	}
	return errors.New("history row not found")
}

func (s *stubRepo) GetPublishHistoryByID(ctx context.Context, id uint64) (*models.PublishHistoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.history {
		if row.ID == id {
			cp := *row
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ListPublishHistory(ctx context.Context, params repository.ListPublishHistoryParams) ([]models.PublishHistoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PublishHistoryItem
	for _, row := range s.history {
		if historyMatches(row, params) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *stubRepo) CountPublishHistory(ctx context.Context, params repository.ListPublishHistoryParams) (int64, error) {
	items, err := s.ListPublishHistory(ctx, params)
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}

func (s *stubRepo) CountHistoryForContent(ctx context.Context, businessID, platform, contentType, contentID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, row := range s.history {
		if row.BusinessID == businessID && row.Platform == platform &&
			row.ContentType == contentType && row.ContentID == contentID {
			n++
		}
	}
	return n, nil
}

func (s *stubRepo) FailStalePending(ctx context.Context, olderThan time.Time, message string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, row := range s.history {
		if row.Status == models.PublishStatusPending && row.CreatedAt.Before(olderThan) {
			row.Status = models.PublishStatusFailed
			row.ErrorMessage = message
			at := time.Now().UTC()
			row.CompletedAt = &at
			n++
		}
	}
	return n, nil
}

func (s *stubRepo) DeleteHistoryBefore(ctx context.Context, before time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []*models.PublishHistoryItem
	var n int64
	for _, row := range s.history {
		if row.Status != models.PublishStatusPending && row.CreatedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, row)
	}
	s.history = kept
	return n, nil
}

func historyMatches(row *models.PublishHistoryItem, params repository.ListPublishHistoryParams) bool {
	if row.BusinessID != params.BusinessID {
		return false
	}
	if params.Platform != nil && row.Platform != *params.Platform {
		return false
	}
	if params.ContentType != nil && row.ContentType != *params.ContentType {
		return false
	}
	if params.Status != nil && row.Status != *params.Status {
		return false
	}
	return true
}

func (s *stubRepo) historyRows() []models.PublishHistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PublishHistoryItem, 0, len(s.history))
	for _, row := range s.history {
		out = append(out, *row)
	}
	return out
}
