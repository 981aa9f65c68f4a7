package platform

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"citypulse/internal/models"
)

func TestRenderCaption_Unlimited(t *testing.T) {
	content := models.PublishContent{
		Title:       "Jazz Night",
		Description: "Live quartet at the riverside stage.",
		SourceURL:   "https://citypulse.example/events/jazz-night",
	}
	got := RenderCaption(content, 0)
	want := "Jazz Night\n\nLive quartet at the riverside stage.\n\nhttps://citypulse.example/events/jazz-night"
	if got != want {
		t.Fatalf("caption=%q want=%q", got, want)
	}
}

func TestRenderCaption_TruncationKeepsLinkIntact(t *testing.T) {
	link := "https://citypulse.example/events/very-long-event"
	content := models.PublishContent{
		Title:       "Festival",
		Description: strings.Repeat("all summer long ", 50),
		SourceURL:   link,
	}
	got := RenderCaption(content, 120)
	if len([]rune(got)) > 120 {
		t.Fatalf("caption length=%d want<=120", len([]rune(got)))
	}
	if !strings.HasSuffix(got, link) {
		t.Fatalf("caption=%q want suffix %q", got, link)
	}
	if !strings.Contains(got, "…") {
		t.Fatalf("caption=%q want truncated body", got)
	}
}

func TestRenderCaption_ScheduleAndPrice(t *testing.T) {
	start := time.Date(2026, 6, 12, 19, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 12, 23, 0, 0, 0, time.UTC)
	orig := decimal.NewFromInt(500)
	disc := decimal.NewFromInt(350)
	content := models.PublishContent{
		Title:           "Summer Sale",
		StartsAt:        &start,
		EndsAt:          &end,
		OriginalPrice:   &orig,
		DiscountedPrice: &disc,
	}
	got := RenderCaption(content, 0)
	if !strings.Contains(got, "12 Jun 2026 19:00 - 12 Jun 2026 23:00") {
		t.Fatalf("caption=%q want schedule line", got)
	}
	if !strings.Contains(got, "500 -> 350") {
		t.Fatalf("caption=%q want price line", got)
	}
}

func TestRenderCaption_EndOnly(t *testing.T) {
	end := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	content := models.PublishContent{Title: "Deal", EndsAt: &end}
	got := RenderCaption(content, 0)
	if !strings.Contains(got, "Until 1 Jul 2026 00:00") {
		t.Fatalf("caption=%q want until line", got)
	}
}
