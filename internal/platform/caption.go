package platform

import (
	"strings"

	"citypulse/internal/models"
)

const captionDateLayout = "2 Jan 2006 15:04"

// RenderCaption flattens the generic content into a plain-text caption capped
// at maxLen runes. The source link is kept intact: the body is truncated
// first so the URL never gets cut mid-way.
func RenderCaption(content models.PublishContent, maxLen int) string {
	var parts []string
	if t := strings.TrimSpace(content.Title); t != "" {
		parts = append(parts, t)
	}
	if d := strings.TrimSpace(content.Description); d != "" {
		parts = append(parts, d)
	}
	if line := scheduleLine(content); line != "" {
		parts = append(parts, line)
	}
	if line := priceLine(content); line != "" {
		parts = append(parts, line)
	}

	body := strings.Join(parts, "\n\n")
	link := strings.TrimSpace(content.SourceURL)

	if maxLen <= 0 {
		if link == "" {
			return body
		}
		return body + "\n\n" + link
	}

	budget := maxLen
	if link != "" {
		budget -= len([]rune(link)) + 2
	}
	if budget < 0 {
		budget = 0
	}
	body = truncateRunes(body, budget)
	if link == "" {
		return body
	}
	if body == "" {
		return truncateRunes(link, maxLen)
	}
	return body + "\n\n" + link
}

func scheduleLine(content models.PublishContent) string {
	switch {
	case content.StartsAt != nil && content.EndsAt != nil:
		return content.StartsAt.Format(captionDateLayout) + " - " + content.EndsAt.Format(captionDateLayout)
	case content.StartsAt != nil:
		return content.StartsAt.Format(captionDateLayout)
	case content.EndsAt != nil:
		return "Until " + content.EndsAt.Format(captionDateLayout)
	}
	return ""
}

func priceLine(content models.PublishContent) string {
	if content.DiscountedPrice == nil {
		return ""
	}
	if content.OriginalPrice != nil {
		return content.OriginalPrice.String() + " -> " + content.DiscountedPrice.String()
	}
	return content.DiscountedPrice.String()
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return ""
	}
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}
