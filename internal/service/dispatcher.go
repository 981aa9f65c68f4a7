package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"citypulse/internal/models"
	"citypulse/internal/platform"
	"citypulse/internal/repository"
)

// HistoryNotifier receives terminal history transitions. The websocket hub
// implements it; a nil notifier disables broadcasting.
type HistoryNotifier interface {
	Broadcast(item models.PublishHistoryItem)
}

// DispatcherService fans one content item out to every eligible destination.
// Each destination runs in its own goroutine with its own history row; one
// destination failing never blocks or cancels another.
type DispatcherService struct {
	Repo     repository.Repository
	Settings *SettingsService
	Adapters *platform.Registry
	Logger   *zap.Logger
	Notifier HistoryNotifier

	// Timeout bounds each outbound publish call.
	Timeout time.Duration

	// Disabled rejects every dispatch (maintenance kill-switch).
	Disabled bool

	locks *keyedMutex
}

func NewDispatcherService(repo repository.Repository, settings *SettingsService, adapters *platform.Registry, logger *zap.Logger) *DispatcherService {
	return &DispatcherService{
		Repo:     repo,
		Settings: settings,
		Adapters: adapters,
		Logger:   logger,
		Timeout:  30 * time.Second,
		locks:    newKeyedMutex(),
	}
}

// Dispatch publishes content to all enabled, configured destinations whose
// content-type flag matches. auto marks a dispatch triggered by content
// creation: it only targets destinations with auto-publish on, and it fires
// at most once per content item per destination. An empty eligible set is a
// valid outcome and returns an empty list.
func (d *DispatcherService) Dispatch(ctx context.Context, businessID, contentType, contentID string, content models.PublishContent, auto bool) ([]models.PublishHistoryItem, error) {
	if d.Disabled {
		return nil, ErrPublishingDisabled
	}
	if !models.ValidContentType(contentType) {
		return nil, ErrUnknownContentType
	}

	destinations, err := d.Settings.Destinations(ctx, businessID)
	if err != nil {
		return nil, err
	}

	var eligible []Destination
	for _, dst := range destinations {
		if !dst.Setting.IsEnabled || !dst.IsConfigured {
			continue
		}
		if contentType == models.ContentTypeEvent && !dst.Setting.PublishEvents {
			continue
		}
		if contentType == models.ContentTypePromotion && !dst.Setting.PublishPromotions {
			continue
		}
		if auto && !dst.Setting.AutoPublishOnCreate {
			continue
		}
		eligible = append(eligible, dst)
	}
	if len(eligible) == 0 {
		return []models.PublishHistoryItem{}, nil
	}

	dispatchID := uuid.NewString()
	results := make([]*models.PublishHistoryItem, len(eligible))

	var wg sync.WaitGroup
	for i, dst := range eligible {
		wg.Add(1)
		go func(i int, dst Destination) {
			defer wg.Done()
			results[i] = d.publishOne(ctx, dispatchID, businessID, contentType, contentID, content, dst, auto)
		}(i, dst)
	}
	wg.Wait()

	out := make([]models.PublishHistoryItem, 0, len(eligible))
	for _, item := range results {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (d *DispatcherService) publishOne(ctx context.Context, dispatchID, businessID, contentType, contentID string, content models.PublishContent, dst Destination, auto bool) *models.PublishHistoryItem {
	platformName := dst.Setting.Platform

	// Serializing per (business, platform, content) closes the window where
	// an auto dispatch and a manual publish-now race into duplicate posts.
	key := businessID + "|" + platformName + "|" + contentID
	d.locks.Lock(key)
	defer d.locks.Unlock(key)

	// A started attempt runs to its terminal history write even when the
	// caller goes away mid-dispatch; otherwise a disconnect during the
	// platform call strands the row in pending and the sweeper later marks
	// a succeeded post as timed out.
	ctx = context.WithoutCancel(ctx)

	if auto {
		count, err := d.Repo.CountHistoryForContent(ctx, businessID, platformName, contentType, contentID)
		if err != nil {
			d.logWarn("auto dedup check failed", businessID, platformName, err)
			return nil
		}
		if count > 0 {
			return nil
		}
	}

	item := &models.PublishHistoryItem{
		DispatchID:  dispatchID,
		BusinessID:  businessID,
		Platform:    platformName,
		ContentType: contentType,
		ContentID:   contentID,
		Status:      models.PublishStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := d.Repo.InsertPublishHistory(ctx, item); err != nil {
		d.logWarn("history insert failed", businessID, platformName, err)
		return nil
	}

	result := d.callAdapter(ctx, dst, content)

	completedAt := time.Now().UTC()
	if result.Success {
		item.Status = models.PublishStatusPublished
		item.ExternalPostURL = result.ExternalPostURL
	} else {
		item.Status = models.PublishStatusFailed
		item.ErrorMessage = result.Failure.String()
	}
	item.CompletedAt = &completedAt

	if err := d.Repo.CompletePublishHistory(ctx, item.ID, item.Status, item.ExternalPostURL, item.ErrorMessage, completedAt); err != nil {
		d.logWarn("history complete failed", businessID, platformName, err)
	}
	if d.Logger != nil {
		d.Logger.Info("publish attempt finished",
			zap.String("business_id", businessID),
			zap.String("platform", platformName),
			zap.String("content_id", contentID),
			zap.String("status", item.Status),
		)
	}
	if d.Notifier != nil {
		d.Notifier.Broadcast(*item)
	}
	return item
}

func (d *DispatcherService) callAdapter(ctx context.Context, dst Destination, content models.PublishContent) platform.PublishResult {
	adapter, ok := d.Adapters.Get(dst.Setting.Platform)
	if !ok {
		return platform.PublishResult{
			Failure: &platform.Failure{Kind: platform.FailureNotFound, Message: "no adapter registered"},
		}
	}

	callCtx := ctx
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	return adapter.Publish(callCtx, dst.Credentials, content)
}

func (d *DispatcherService) logWarn(msg, businessID, platformName string, err error) {
	if d.Logger == nil {
		return
	}
	d.Logger.Warn(msg,
		zap.String("business_id", businessID),
		zap.String("platform", platformName),
		zap.Error(err),
	)
}
