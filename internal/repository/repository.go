package repository

import (
	"context"
	"time"

	"citypulse/internal/models"
)

// Repository is the persistence boundary of the publish engine. The gorm
// implementation lives in the gorm subpackage; tests substitute an in-memory
// stub.
type Repository interface {
	// Platform settings. Get returns (nil, nil) when no row exists; Delete of
	// an absent row is a no-op.
	GetPlatformSetting(ctx context.Context, businessID, platform string) (*models.PlatformSetting, error)
	ListPlatformSettings(ctx context.Context, businessID string) ([]models.PlatformSetting, error)
	UpsertPlatformSetting(ctx context.Context, item *models.PlatformSetting) error
	DeletePlatformSetting(ctx context.Context, businessID, platform string) error
	DeletePlatformSettingsForBusiness(ctx context.Context, businessID string) error

	// Publish history. Rows are append-only: Insert creates the pending row,
	// Complete performs the single terminal write and refuses rows that have
	// already left pending.
	InsertPublishHistory(ctx context.Context, item *models.PublishHistoryItem) error
	CompletePublishHistory(ctx context.Context, id uint64, status, externalPostURL, errorMessage string, completedAt time.Time) error
	GetPublishHistoryByID(ctx context.Context, id uint64) (*models.PublishHistoryItem, error)
	ListPublishHistory(ctx context.Context, params ListPublishHistoryParams) ([]models.PublishHistoryItem, error)
	CountPublishHistory(ctx context.Context, params ListPublishHistoryParams) (int64, error)
	CountHistoryForContent(ctx context.Context, businessID, platform, contentType, contentID string) (int64, error)

	// Maintenance sweeps.
	FailStalePending(ctx context.Context, olderThan time.Time, message string) (int64, error)
	DeleteHistoryBefore(ctx context.Context, before time.Time) (int64, error)
}

type ListPublishHistoryParams struct {
	BusinessID  string
	Limit       int
	Offset      int
	Platform    *string
	ContentType *string
	Status      *string
}
