package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"citypulse/internal/models"
)

func telegramCreds() Credentials {
	return Credentials{"bot_token": "123:abc", "channel_id": "@citypulse"}
}

func TestTelegramProbe_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/getChat") {
			t.Errorf("path=%s want suffix /getChat", r.URL.Path)
		}
		if !strings.Contains(r.URL.Path, "bot123:abc") {
			t.Errorf("path=%s want bot token segment", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"title": "CityPulse News", "username": "citypulse"},
		})
	}))
	defer srv.Close()

	a := NewTelegramAdapter(srv.Client(), srv.URL)
	res := a.Probe(context.Background(), telegramCreds())
	if !res.Success {
		t.Fatalf("success=false failure=%v", res.Failure)
	}
	if res.Info != "CityPulse News (@citypulse)" {
		t.Fatalf("info=%q", res.Info)
	}
}

func TestTelegramPublish_TextMessage(t *testing.T) {
	var gotMethod string
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		gotMethod = parts[len(parts)-1]
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"message_id": 42},
		})
	}))
	defer srv.Close()

	a := NewTelegramAdapter(srv.Client(), srv.URL)
	res := a.Publish(context.Background(), telegramCreds(), models.PublishContent{Title: "Hello"})
	if !res.Success {
		t.Fatalf("success=false failure=%v", res.Failure)
	}
	if gotMethod != "sendMessage" {
		t.Fatalf("method=%s want=sendMessage", gotMethod)
	}
	if gotPayload["text"] != "Hello" {
		t.Fatalf("text=%v want=Hello", gotPayload["text"])
	}
	if res.ExternalPostURL != "https://t.me/citypulse/42" {
		t.Fatalf("url=%q", res.ExternalPostURL)
	}
}

func TestTelegramPublish_PhotoWithCaption(t *testing.T) {
	var gotMethod string
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		gotMethod = parts[len(parts)-1]
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"message_id": 7},
		})
	}))
	defer srv.Close()

	a := NewTelegramAdapter(srv.Client(), srv.URL)
	content := models.PublishContent{Title: "Pic", ImageURL: "https://img.example/p.jpg"}
	res := a.Publish(context.Background(), telegramCreds(), content)
	if !res.Success {
		t.Fatalf("success=false failure=%v", res.Failure)
	}
	if gotMethod != "sendPhoto" {
		t.Fatalf("method=%s want=sendPhoto", gotMethod)
	}
	if gotPayload["photo"] != "https://img.example/p.jpg" {
		t.Fatalf("photo=%v", gotPayload["photo"])
	}
	if gotPayload["caption"] != "Pic" {
		t.Fatalf("caption=%v", gotPayload["caption"])
	}
}

func TestTelegramPublish_NumericChatHasNoPermalink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"message_id": 9},
		})
	}))
	defer srv.Close()

	a := NewTelegramAdapter(srv.Client(), srv.URL)
	creds := Credentials{"bot_token": "123:abc", "channel_id": "-1001234"}
	res := a.Publish(context.Background(), creds, models.PublishContent{Title: "x"})
	if !res.Success {
		t.Fatalf("success=false failure=%v", res.Failure)
	}
	if res.ExternalPostURL != "" {
		t.Fatalf("url=%q want empty", res.ExternalPostURL)
	}
}

func TestTelegramFailureClassification(t *testing.T) {
	cases := []struct {
		name        string
		code        int
		description string
		wantKind    FailureKind
	}{
		{"unauthorized", 401, "Unauthorized", FailureCredential},
		{"rate_limited", 429, "Too Many Requests: retry after 5", FailureRateLimited},
		{"chat_missing", 400, "Bad Request: chat not found", FailureNotFound},
		{"forbidden", 403, "Forbidden: bot was kicked", FailurePermission},
		{"no_rights", 400, "Bad Request: not enough rights to send text messages", FailurePermission},
		{"other", 400, "Bad Request: message is too long", FailureNetwork},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"ok":          false,
					"error_code":  tc.code,
					"description": tc.description,
				})
			}))
			defer srv.Close()

			a := NewTelegramAdapter(srv.Client(), srv.URL)
			res := a.Probe(context.Background(), telegramCreds())
			if res.Success {
				t.Fatal("success=true want failure")
			}
			if res.Failure.Kind != tc.wantKind {
				t.Fatalf("kind=%s want=%s", res.Failure.Kind, tc.wantKind)
			}
		})
	}
}

func TestTelegramNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	a := NewTelegramAdapter(nil, srv.URL)
	res := a.Probe(context.Background(), telegramCreds())
	if res.Success {
		t.Fatal("success=true want network failure")
	}
	if res.Failure.Kind != FailureNetwork {
		t.Fatalf("kind=%s want=network", res.Failure.Kind)
	}
}
