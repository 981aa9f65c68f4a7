package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"citypulse/internal/platform"
)

// TesterService probes stored credentials without publishing anything. It
// writes no history rows and flips no flags, so it is safe to call
// repeatedly from the dashboard.
type TesterService struct {
	Settings *SettingsService
	Adapters *platform.Registry
	Logger   *zap.Logger
	Timeout  time.Duration
}

func (t *TesterService) Test(ctx context.Context, businessID, platformName string) (platform.ProbeResult, error) {
	setting, creds, err := t.Settings.Get(ctx, businessID, platformName)
	if err != nil {
		return platform.ProbeResult{}, err
	}

	// Unconfigured destinations fail fast; the network is never touched.
	if missing := platform.MissingFields(setting.Platform, creds); len(missing) > 0 {
		return platform.ProbeResult{}, &ValidationError{Platform: platformName, MissingFields: missing}
	}

	adapter, ok := t.Adapters.Get(platformName)
	if !ok {
		return platform.ProbeResult{}, ErrUnknownPlatform
	}

	callCtx := ctx
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	result := adapter.Probe(callCtx, creds)
	if t.Logger != nil {
		t.Logger.Info("connection probe finished",
			zap.String("business_id", businessID),
			zap.String("platform", platformName),
			zap.Bool("success", result.Success),
		)
	}
	return result, nil
}
