package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"citypulse/internal/models"
	"citypulse/internal/repository"
)

// HistoryService is the read side of the ledger plus its maintenance sweeps.
type HistoryService struct {
	Repo            repository.Repository
	Logger          *zap.Logger
	DefaultPageSize int
}

func (h *HistoryService) List(ctx context.Context, params repository.ListPublishHistoryParams) ([]models.PublishHistoryItem, int64, error) {
	if params.Limit <= 0 {
		params.Limit = h.DefaultPageSize
	}
	if params.Limit <= 0 {
		params.Limit = 20
	}
	items, err := h.Repo.ListPublishHistory(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := h.Repo.CountPublishHistory(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SweepStalePending fails out pending rows older than budget. A dispatch
// normally resolves its own rows; this catches rows orphaned by a crash so
// no record stays pending forever.
func (h *HistoryService) SweepStalePending(ctx context.Context, budget time.Duration) error {
	if budget <= 0 {
		budget = time.Minute
	}
	cutoff := time.Now().UTC().Add(-budget)
	n, err := h.Repo.FailStalePending(ctx, cutoff, "publish timed out")
	if err != nil {
		return err
	}
	if n > 0 && h.Logger != nil {
		h.Logger.Warn("failed out stale pending publishes", zap.Int64("count", n))
	}
	return nil
}

// SweepRetention deletes completed rows older than the retention window.
func (h *HistoryService) SweepRetention(ctx context.Context, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	before := time.Now().UTC().AddDate(0, 0, -retentionDays)
	n, err := h.Repo.DeleteHistoryBefore(ctx, before)
	if err != nil {
		return err
	}
	if n > 0 && h.Logger != nil {
		h.Logger.Info("pruned old publish history", zap.Int64("count", n))
	}
	return nil
}
