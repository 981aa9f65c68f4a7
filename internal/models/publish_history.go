package models

import "time"

const (
	PublishStatusPending   = "pending"
	PublishStatusPublished = "published"
	PublishStatusFailed    = "failed"
)

// PublishHistoryItem is one publish attempt against one destination.
// Rows are append-only: a row is created pending and receives exactly one
// terminal write (published or failed); after that it is never edited.
type PublishHistoryItem struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	// DispatchID groups the rows produced by a single dispatch call.
	DispatchID string `gorm:"type:varchar(36);not null;index"`

	BusinessID  string `gorm:"type:varchar(64);not null;index:idx_publish_history_business_created,priority:1"`
	Platform    string `gorm:"type:varchar(20);not null"`
	ContentType string `gorm:"type:varchar(20);not null"`
	ContentID   string `gorm:"type:varchar(64);not null;index"`

	Status string `gorm:"type:varchar(20);not null;default:'pending';index"`

	ExternalPostURL string `gorm:"type:text"`
	ErrorMessage    string `gorm:"type:text"`

	CreatedAt   time.Time  `gorm:"type:timestamptz;autoCreateTime;index:idx_publish_history_business_created,priority:2,sort:desc"`
	CompletedAt *time.Time `gorm:"type:timestamptz"`
}

func (PublishHistoryItem) TableName() string {
	return "publish_history"
}
