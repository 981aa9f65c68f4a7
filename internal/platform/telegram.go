package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"citypulse/internal/models"
)

const telegramCaptionLimit = 1024

// TelegramAdapter talks to the Bot API. Credentials: bot_token plus a
// channel_id that is either a numeric chat id or an @username.
type TelegramAdapter struct {
	httpClient *http.Client
	baseURL    string
}

func NewTelegramAdapter(httpClient *http.Client, baseURL string) *TelegramAdapter {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &TelegramAdapter{
		httpClient: defaultedClient(httpClient),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (a *TelegramAdapter) Name() string { return Telegram }

type telegramResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

func (a *TelegramAdapter) Probe(ctx context.Context, creds Credentials) ProbeResult {
	resp, failure := a.call(ctx, creds.Get("bot_token"), "getChat", map[string]any{
		"chat_id": creds.Get("channel_id"),
	})
	if failure != nil {
		return ProbeResult{Failure: failure}
	}
	var chat struct {
		Title    string `json:"title"`
		Username string `json:"username"`
	}
	_ = json.Unmarshal(resp.Result, &chat)
	info := chat.Title
	if chat.Username != "" {
		info = fmt.Sprintf("%s (@%s)", chat.Title, chat.Username)
	}
	return ProbeResult{Success: true, Info: info}
}

func (a *TelegramAdapter) Publish(ctx context.Context, creds Credentials, content models.PublishContent) PublishResult {
	token := creds.Get("bot_token")
	chatID := creds.Get("channel_id")

	method := "sendMessage"
	payload := map[string]any{"chat_id": chatID}
	if content.ImageURL != "" {
		method = "sendPhoto"
		payload["photo"] = content.ImageURL
		payload["caption"] = RenderCaption(content, telegramCaptionLimit)
	} else {
		payload["text"] = RenderCaption(content, 4096)
	}

	resp, failure := a.call(ctx, token, method, payload)
	if failure != nil {
		return PublishResult{Failure: failure}
	}
	var msg struct {
		MessageID int64 `json:"message_id"`
	}
	_ = json.Unmarshal(resp.Result, &msg)
	return PublishResult{
		Success:         true,
		ExternalPostURL: telegramPostURL(chatID, msg.MessageID),
	}
}

func (a *TelegramAdapter) call(ctx context.Context, token, method string, payload map[string]any) (*telegramResponse, *Failure) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Failure{Kind: FailureNetwork, Message: err.Error()}
	}
	url := fmt.Sprintf("%s/bot%s/%s", a.baseURL, token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &Failure{Kind: FailureNetwork, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &Failure{Kind: FailureNetwork, Message: networkFailureMessage(err)}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &Failure{Kind: FailureNetwork, Message: err.Error()}
	}

	var resp telegramResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &Failure{Kind: FailureNetwork, Message: fmt.Sprintf("unexpected response (%d)", httpResp.StatusCode)}
	}
	if !resp.OK {
		return nil, classifyTelegram(resp)
	}
	return &resp, nil
}

func classifyTelegram(resp telegramResponse) *Failure {
	desc := resp.Description
	lower := strings.ToLower(desc)
	switch {
	case resp.ErrorCode == http.StatusTooManyRequests:
		return &Failure{Kind: FailureRateLimited, Message: desc}
	case resp.ErrorCode == http.StatusUnauthorized:
		return &Failure{Kind: FailureCredential, Message: desc}
	case strings.Contains(lower, "chat not found") || strings.Contains(lower, "user not found"):
		return &Failure{Kind: FailureNotFound, Message: desc}
	case resp.ErrorCode == http.StatusForbidden,
		strings.Contains(lower, "not enough rights"),
		strings.Contains(lower, "have no rights"):
		return &Failure{Kind: FailurePermission, Message: desc}
	default:
		return &Failure{Kind: FailureNetwork, Message: fmt.Sprintf("telegram error %d: %s", resp.ErrorCode, desc)}
	}
}

// telegramPostURL builds a t.me permalink. Only public @username channels
// have resolvable links; numeric chat ids yield no permalink.
func telegramPostURL(chatID string, messageID int64) string {
	if messageID == 0 || !strings.HasPrefix(chatID, "@") {
		return ""
	}
	return fmt.Sprintf("https://t.me/%s/%d", strings.TrimPrefix(chatID, "@"), messageID)
}
