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

// FacebookAdapter publishes to a page feed via the Graph API. Credentials:
// page_access_token and page_id. Posts with an image go to /photos, plain
// posts to /feed with the source link attached.
type FacebookAdapter struct {
	httpClient *http.Client
	baseURL    string
}

func NewFacebookAdapter(httpClient *http.Client, baseURL string) *FacebookAdapter {
	if baseURL == "" {
		baseURL = "https://graph.facebook.com/v19.0"
	}
	return &FacebookAdapter{
		httpClient: defaultedClient(httpClient),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (a *FacebookAdapter) Name() string { return Facebook }

func (a *FacebookAdapter) Probe(ctx context.Context, creds Credentials) ProbeResult {
	pageID := creds.Get("page_id")
	probeURL := fmt.Sprintf("%s/%s?fields=name&access_token=%s",
		a.baseURL, url.PathEscape(pageID), url.QueryEscape(creds.Get("page_access_token")))

	raw, failure := graphCall(ctx, a.httpClient, http.MethodGet, probeURL, nil)
	if failure != nil {
		return ProbeResult{Failure: failure}
	}
	var page struct {
		Name string `json:"name"`
	}
	_ = json.Unmarshal(raw, &page)
	return ProbeResult{Success: true, Info: page.Name}
}

func (a *FacebookAdapter) Publish(ctx context.Context, creds Credentials, content models.PublishContent) PublishResult {
	token := creds.Get("page_access_token")
	pageID := creds.Get("page_id")

	var endpoint string
	form := url.Values{}
	form.Set("access_token", token)
	if content.ImageURL != "" {
		endpoint = fmt.Sprintf("%s/%s/photos", a.baseURL, url.PathEscape(pageID))
		form.Set("url", content.ImageURL)
		form.Set("caption", RenderCaption(content, 0))
	} else {
		endpoint = fmt.Sprintf("%s/%s/feed", a.baseURL, url.PathEscape(pageID))
		form.Set("message", RenderCaption(content, 0))
		if content.SourceURL != "" {
			form.Set("link", content.SourceURL)
		}
	}

	raw, failure := graphCall(ctx, a.httpClient, http.MethodPost, endpoint, form)
	if failure != nil {
		return PublishResult{Failure: failure}
	}
	var created struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	_ = json.Unmarshal(raw, &created)
	postID := created.PostID
	if postID == "" {
		postID = created.ID
	}
	postURL := ""
	if postID != "" {
		postURL = "https://www.facebook.com/" + postID
	}
	return PublishResult{Success: true, ExternalPostURL: postURL}
}
