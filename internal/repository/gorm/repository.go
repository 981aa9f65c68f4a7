package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"citypulse/internal/models"
	"citypulse/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- platform settings -------------------------------------------------------

func (s *Store) GetPlatformSetting(ctx context.Context, businessID, platform string) (*models.PlatformSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.PlatformSetting
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND platform = ?", businessID, platform).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListPlatformSettings(ctx context.Context, businessID string) ([]models.PlatformSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.PlatformSetting
	if err := s.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("platform asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpsertPlatformSetting(ctx context.Context, item *models.PlatformSetting) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.BusinessID) == "" || strings.TrimSpace(item.Platform) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "business_id"}, {Name: "platform"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"credentials",
			"publish_events",
			"publish_promotions",
			"auto_publish_on_create",
			"is_enabled",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) DeletePlatformSetting(ctx context.Context, businessID, platform string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("business_id = ? AND platform = ?", businessID, platform).
		Delete(&models.PlatformSetting{}).Error
}

func (s *Store) DeletePlatformSettingsForBusiness(ctx context.Context, businessID string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Delete(&models.PlatformSetting{}).Error
}

// --- publish history ---------------------------------------------------------

func (s *Store) InsertPublishHistory(ctx context.Context, item *models.PublishHistoryItem) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) CompletePublishHistory(ctx context.Context, id uint64, status, externalPostURL, errorMessage string, completedAt time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	// The pending guard makes the terminal transition happen at most once.
	res := s.db.WithContext(ctx).
		Model(&models.PublishHistoryItem{}).
		Where("id = ? AND status = ?", id, models.PublishStatusPending).
		Updates(map[string]any{
			"status":            status,
			"external_post_url": externalPostURL,
			"error_message":     errorMessage,
			"completed_at":      completedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("history row already completed")
	}
	return nil
}

func (s *Store) GetPublishHistoryByID(ctx context.Context, id uint64) (*models.PublishHistoryItem, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.PublishHistoryItem
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func historyQuery(db *gorm.DB, params repository.ListPublishHistoryParams) *gorm.DB {
	query := db.Model(&models.PublishHistoryItem{}).
		Where("business_id = ?", params.BusinessID)
	if params.Platform != nil && strings.TrimSpace(*params.Platform) != "" {
		query = query.Where("platform = ?", strings.TrimSpace(*params.Platform))
	}
	if params.ContentType != nil && strings.TrimSpace(*params.ContentType) != "" {
		query = query.Where("content_type = ?", strings.TrimSpace(*params.ContentType))
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	return query
}

func (s *Store) ListPublishHistory(ctx context.Context, params repository.ListPublishHistoryParams) ([]models.PublishHistoryItem, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	var items []models.PublishHistoryItem
	err := historyQuery(s.db.WithContext(ctx), params).
		Order("created_at desc, id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountPublishHistory(ctx context.Context, params repository.ListPublishHistoryParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := historyQuery(s.db.WithContext(ctx), params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) CountHistoryForContent(ctx context.Context, businessID, platform, contentType, contentID string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	err := s.db.WithContext(ctx).
		Model(&models.PublishHistoryItem{}).
		Where("business_id = ? AND platform = ? AND content_type = ? AND content_id = ?",
			businessID, platform, contentType, contentID).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// --- maintenance -------------------------------------------------------------

func (s *Store) FailStalePending(ctx context.Context, olderThan time.Time, message string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).
		Model(&models.PublishHistoryItem{}).
		Where("status = ?", models.PublishStatusPending).
		Where("created_at < ?", olderThan).
		Updates(map[string]any{
			"status":        models.PublishStatusFailed,
			"error_message": message,
			"completed_at":  now,
		})
	return res.RowsAffected, res.Error
}

func (s *Store) DeleteHistoryBefore(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("created_at < ?", before).
		Where("status <> ?", models.PublishStatusPending).
		Delete(&models.PublishHistoryItem{})
	return res.RowsAffected, res.Error
}
