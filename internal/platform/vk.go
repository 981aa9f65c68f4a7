package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"citypulse/internal/models"
)

// VKAdapter posts to a community wall. Credentials: access_token (community
// or user token with wall scope) and numeric group_id.
type VKAdapter struct {
	httpClient *http.Client
	baseURL    string
	apiVersion string
}

func NewVKAdapter(httpClient *http.Client, baseURL, apiVersion string) *VKAdapter {
	if baseURL == "" {
		baseURL = "https://api.vk.com"
	}
	if apiVersion == "" {
		apiVersion = "5.199"
	}
	return &VKAdapter{
		httpClient: defaultedClient(httpClient),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiVersion: apiVersion,
	}
}

func (a *VKAdapter) Name() string { return VK }

type vkError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

func (a *VKAdapter) Probe(ctx context.Context, creds Credentials) ProbeResult {
	params := url.Values{}
	params.Set("group_id", creds.Get("group_id"))
	raw, failure := a.call(ctx, creds.Get("access_token"), "groups.getById", params)
	if failure != nil {
		return ProbeResult{Failure: failure}
	}
	var resp struct {
		Response struct {
			Groups []struct {
				Name       string `json:"name"`
				ScreenName string `json:"screen_name"`
			} `json:"groups"`
		} `json:"response"`
	}
	_ = json.Unmarshal(raw, &resp)
	info := ""
	if len(resp.Response.Groups) > 0 {
		info = resp.Response.Groups[0].Name
	}
	return ProbeResult{Success: true, Info: info}
}

func (a *VKAdapter) Publish(ctx context.Context, creds Credentials, content models.PublishContent) PublishResult {
	groupID := creds.Get("group_id")

	params := url.Values{}
	params.Set("owner_id", "-"+groupID)
	params.Set("from_group", "1")
	params.Set("message", RenderCaption(content, 0))
	if content.ImageURL != "" {
		// Without a media upload round-trip VK renders the link as an
		// attachment snippet with the image preview.
		params.Set("attachments", content.ImageURL)
	}

	raw, failure := a.call(ctx, creds.Get("access_token"), "wall.post", params)
	if failure != nil {
		return PublishResult{Failure: failure}
	}
	var resp struct {
		Response struct {
			PostID int64 `json:"post_id"`
		} `json:"response"`
	}
	_ = json.Unmarshal(raw, &resp)
	postURL := ""
	if resp.Response.PostID != 0 {
		postURL = fmt.Sprintf("https://vk.com/wall-%s_%d", groupID, resp.Response.PostID)
	}
	return PublishResult{Success: true, ExternalPostURL: postURL}
}

func (a *VKAdapter) call(ctx context.Context, token, method string, params url.Values) (json.RawMessage, *Failure) {
	params.Set("access_token", token)
	params.Set("v", a.apiVersion)

	fullURL := fmt.Sprintf("%s/method/%s", a.baseURL, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, &Failure{Kind: FailureNetwork, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &Failure{Kind: FailureNetwork, Message: networkFailureMessage(err)}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &Failure{Kind: FailureNetwork, Message: err.Error()}
	}

	// VK returns HTTP 200 even for API errors; the envelope carries the code.
	var envelope struct {
		Error *vkError `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &Failure{Kind: FailureNetwork, Message: fmt.Sprintf("unexpected response (%d)", httpResp.StatusCode)}
	}
	if envelope.Error != nil {
		return nil, classifyVK(*envelope.Error)
	}
	return raw, nil
}

func classifyVK(e vkError) *Failure {
	msg := fmt.Sprintf("vk error %d: %s", e.Code, e.Message)
	switch e.Code {
	case 5, 27, 28: // invalid/expired token variants
		return &Failure{Kind: FailureCredential, Message: msg}
	case 6, 9, 29: // too many requests / flood / rate limit
		return &Failure{Kind: FailureRateLimited, Message: msg}
	case 15, 200, 214: // access denied / wall posting denied
		return &Failure{Kind: FailurePermission, Message: msg}
	case 100, 104: // bad params (bad group id) / not found
		return &Failure{Kind: FailureNotFound, Message: msg}
	default:
		return &Failure{Kind: FailureNetwork, Message: msg}
	}
}
