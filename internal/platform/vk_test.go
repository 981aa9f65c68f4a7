package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"citypulse/internal/models"
)

func vkCreds() Credentials {
	return Credentials{"access_token": "vk-token", "group_id": "9876"}
}

func TestVKProbe_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/method/groups.getById" {
			t.Errorf("path=%s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostFormValue("group_id"); got != "9876" {
			t.Errorf("group_id=%s", got)
		}
		if got := r.PostFormValue("v"); got != "5.199" {
			t.Errorf("v=%s", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"response": map[string]any{
				"groups": []map[string]any{{"name": "CityPulse Community", "screen_name": "citypulse"}},
			},
		})
	}))
	defer srv.Close()

	a := NewVKAdapter(srv.Client(), srv.URL, "")
	res := a.Probe(context.Background(), vkCreds())
	if !res.Success {
		t.Fatalf("success=false failure=%v", res.Failure)
	}
	if res.Info != "CityPulse Community" {
		t.Fatalf("info=%q", res.Info)
	}
}

func TestVKPublish_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/method/wall.post" {
			t.Errorf("path=%s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostFormValue("owner_id"); got != "-9876" {
			t.Errorf("owner_id=%s want=-9876", got)
		}
		if got := r.PostFormValue("from_group"); got != "1" {
			t.Errorf("from_group=%s", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"response": map[string]any{"post_id": 321},
		})
	}))
	defer srv.Close()

	a := NewVKAdapter(srv.Client(), srv.URL, "")
	res := a.Publish(context.Background(), vkCreds(), models.PublishContent{Title: "News"})
	if !res.Success {
		t.Fatalf("success=false failure=%v", res.Failure)
	}
	if res.ExternalPostURL != "https://vk.com/wall-9876_321" {
		t.Fatalf("url=%q", res.ExternalPostURL)
	}
}

func TestVKFailureClassification(t *testing.T) {
	cases := []struct {
		name     string
		code     int
		wantKind FailureKind
	}{
		{"bad_token", 5, FailureCredential},
		{"too_many", 6, FailureRateLimited},
		{"flood", 9, FailureRateLimited},
		{"access_denied", 15, FailurePermission},
		{"wall_denied", 214, FailurePermission},
		{"bad_group", 100, FailureNotFound},
		{"other", 1, FailureNetwork},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				// API errors still arrive with HTTP 200.
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"error_code": tc.code, "error_msg": "boom"},
				})
			}))
			defer srv.Close()

			a := NewVKAdapter(srv.Client(), srv.URL, "")
			res := a.Publish(context.Background(), vkCreds(), models.PublishContent{Title: "x"})
			if res.Success {
				t.Fatal("success=true want failure")
			}
			if res.Failure.Kind != tc.wantKind {
				t.Fatalf("kind=%s want=%s", res.Failure.Kind, tc.wantKind)
			}
		})
	}
}
