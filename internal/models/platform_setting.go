package models

import (
	"time"

	"gorm.io/datatypes"
)

// PlatformSetting is one auto-publish destination: a (business, platform)
// pair with its credentials and publishing toggles. At most one row exists
// per pair; repeated saves merge into it.
type PlatformSetting struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	BusinessID string `gorm:"type:varchar(64);not null;uniqueIndex:ux_platform_settings_business_platform,priority:1;index"`
	Platform   string `gorm:"type:varchar(20);not null;uniqueIndex:ux_platform_settings_business_platform,priority:2"`

	// Credentials holds the platform-specific key/value bundle, encrypted at
	// rest when an encryption key is configured. Never returned raw by the API.
	Credentials datatypes.JSON `gorm:"type:jsonb;not null"`

	PublishEvents       bool `gorm:"not null;default:false"`
	PublishPromotions   bool `gorm:"not null;default:false"`
	AutoPublishOnCreate bool `gorm:"not null;default:false"`
	IsEnabled           bool `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (PlatformSetting) TableName() string {
	return "platform_settings"
}
