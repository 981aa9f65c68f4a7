package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"citypulse/internal/models"
)

const instagramCaptionLimit = 2200

// InstagramAdapter publishes to an Instagram business account via the Graph
// API. Publishing is a two-step flow: create a media container from the image
// URL, then publish the container. Instagram requires an image.
type InstagramAdapter struct {
	httpClient *http.Client
	baseURL    string
}

func NewInstagramAdapter(httpClient *http.Client, baseURL string) *InstagramAdapter {
	if baseURL == "" {
		baseURL = "https://graph.facebook.com/v19.0"
	}
	return &InstagramAdapter{
		httpClient: defaultedClient(httpClient),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (a *InstagramAdapter) Name() string { return Instagram }

func (a *InstagramAdapter) Probe(ctx context.Context, creds Credentials) ProbeResult {
	accountID := creds.Get("business_account_id")
	probeURL := fmt.Sprintf("%s/%s?fields=username&access_token=%s",
		a.baseURL, url.PathEscape(accountID), url.QueryEscape(creds.Get("access_token")))

	raw, failure := graphCall(ctx, a.httpClient, http.MethodGet, probeURL, nil)
	if failure != nil {
		return ProbeResult{Failure: failure}
	}
	var account struct {
		Username string `json:"username"`
	}
	_ = json.Unmarshal(raw, &account)
	info := ""
	if account.Username != "" {
		info = "@" + account.Username
	}
	return ProbeResult{Success: true, Info: info}
}

func (a *InstagramAdapter) Publish(ctx context.Context, creds Credentials, content models.PublishContent) PublishResult {
	if strings.TrimSpace(content.ImageURL) == "" {
		return publishFailure(FailureInvalidContent, "instagram requires an image")
	}
	token := creds.Get("access_token")
	accountID := creds.Get("business_account_id")

	form := url.Values{}
	form.Set("image_url", content.ImageURL)
	form.Set("caption", RenderCaption(content, instagramCaptionLimit))
	form.Set("access_token", token)
	raw, failure := graphCall(ctx, a.httpClient, http.MethodPost,
		fmt.Sprintf("%s/%s/media", a.baseURL, url.PathEscape(accountID)), form)
	if failure != nil {
		return PublishResult{Failure: failure}
	}
	var container struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(raw, &container)
	if container.ID == "" {
		return publishFailure(FailureNetwork, "media container id missing")
	}

	form = url.Values{}
	form.Set("creation_id", container.ID)
	form.Set("access_token", token)
	raw, failure = graphCall(ctx, a.httpClient, http.MethodPost,
		fmt.Sprintf("%s/%s/media_publish", a.baseURL, url.PathEscape(accountID)), form)
	if failure != nil {
		return PublishResult{Failure: failure}
	}
	var media struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(raw, &media)

	return PublishResult{Success: true, ExternalPostURL: a.permalink(ctx, token, media.ID)}
}

// permalink is best-effort: a publish that succeeded but whose permalink
// lookup fails still counts as published, just without a URL.
func (a *InstagramAdapter) permalink(ctx context.Context, token, mediaID string) string {
	if mediaID == "" {
		return ""
	}
	lookupURL := fmt.Sprintf("%s/%s?fields=permalink&access_token=%s",
		a.baseURL, url.PathEscape(mediaID), url.QueryEscape(token))
	raw, failure := graphCall(ctx, a.httpClient, http.MethodGet, lookupURL, nil)
	if failure != nil {
		return ""
	}
	var media struct {
		Permalink string `json:"permalink"`
	}
	_ = json.Unmarshal(raw, &media)
	return media.Permalink
}
