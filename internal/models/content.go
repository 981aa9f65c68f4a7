package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ContentTypeEvent     = "event"
	ContentTypePromotion = "promotion"
)

func ValidContentType(t string) bool {
	return t == ContentTypeEvent || t == ContentTypePromotion
}

// PublishContent is the generic, already-composed payload handed to the
// dispatcher. It is derived from the source Event or Promotion by the content
// workflow; the engine never composes content itself.
type PublishContent struct {
	Title       string `json:"title"`
	Description string `json:"description"`

	// SourceURL links back to the listing page on the directory.
	SourceURL string `json:"source_url"`
	ImageURL  string `json:"image_url"`

	// StartsAt/EndsAt are the event date or the promotion validity window.
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`

	// Promotion pricing, absent for events.
	OriginalPrice   *decimal.Decimal `json:"original_price,omitempty"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price,omitempty"`
}
