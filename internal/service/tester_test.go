package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"citypulse/internal/models"
	"citypulse/internal/platform"
)

func newTestTester(repo *stubRepo, adapters ...platform.Adapter) *TesterService {
	return &TesterService{
		Settings: NewSettingsService(repo, &CredentialCipher{}, zap.NewNop()),
		Adapters: platform.NewRegistry(adapters...),
		Logger:   zap.NewNop(),
	}
}

func TestTester_ProbeSuccess(t *testing.T) {
	repo := newStubRepo()
	seedSetting(t, repo, "biz-1", platform.Telegram, telegramCredsJSON, nil)
	tg := &fakeAdapter{
		name:  platform.Telegram,
		probe: platform.ProbeResult{Success: true, Info: "CityPulse News (@citypulse)"},
	}
	tester := newTestTester(repo, tg)

	res, err := tester.Test(context.Background(), "biz-1", platform.Telegram)
	if err != nil {
		t.Fatalf("test: %v", err)
	}
	if !res.Success || res.Info == "" {
		t.Fatalf("result=%+v want success with info", res)
	}
	if atomic.LoadInt32(&tg.calls) != 1 {
		t.Fatalf("calls=%d want=1", tg.calls)
	}
}

func TestTester_WritesNoHistory(t *testing.T) {
	repo := newStubRepo()
	seedSetting(t, repo, "biz-1", platform.Telegram, telegramCredsJSON, nil)
	tester := newTestTester(repo, &fakeAdapter{name: platform.Telegram, probe: platform.ProbeResult{Success: true}})

	if _, err := tester.Test(context.Background(), "biz-1", platform.Telegram); err != nil {
		t.Fatalf("test: %v", err)
	}
	if rows := repo.historyRows(); len(rows) != 0 {
		t.Fatalf("history rows=%d want=0, connection tests are not publishes", len(rows))
	}
}

func TestTester_UnconfiguredFailsWithoutNetwork(t *testing.T) {
	repo := newStubRepo()
	item := &models.PlatformSetting{
		BusinessID:  "biz-1",
		Platform:    platform.Telegram,
		IsEnabled:   true,
		Credentials: datatypes.JSON([]byte(`{"bot_token":"123:abc"}`)),
	}
	if err := repo.UpsertPlatformSetting(context.Background(), item); err != nil {
		t.Fatalf("seed: %v", err)
	}
	tg := &fakeAdapter{name: platform.Telegram, probe: platform.ProbeResult{Success: true}}
	tester := newTestTester(repo, tg)

	_, err := tester.Test(context.Background(), "biz-1", platform.Telegram)
	if !IsValidation(err) {
		t.Fatalf("err=%v want ValidationError", err)
	}
	if atomic.LoadInt32(&tg.calls) != 0 {
		t.Fatal("probe was called for an unconfigured destination")
	}
}

func TestTester_AbsentSetting(t *testing.T) {
	tester := newTestTester(newStubRepo(), &fakeAdapter{name: platform.Telegram})
	_, err := tester.Test(context.Background(), "biz-1", platform.Telegram)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v want=ErrNotFound", err)
	}
}
