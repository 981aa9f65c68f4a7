package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Instagram and Facebook share the Graph API error envelope and transport
// shape; both adapters go through graphCall.

type graphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Subcode int    `json:"error_subcode"`
}

func graphCall(ctx context.Context, client *http.Client, method, fullURL string, form url.Values) (json.RawMessage, *Failure) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, &Failure{Kind: FailureNetwork, Message: err.Error()}
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	httpResp, err := client.Do(req)
	if err != nil {
		return nil, &Failure{Kind: FailureNetwork, Message: networkFailureMessage(err)}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &Failure{Kind: FailureNetwork, Message: err.Error()}
	}

	var envelope struct {
		Error *graphError `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &Failure{Kind: FailureNetwork, Message: fmt.Sprintf("unexpected response (%d)", httpResp.StatusCode)}
	}
	if envelope.Error != nil {
		return nil, classifyGraph(*envelope.Error)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, &Failure{Kind: FailureNetwork, Message: fmt.Sprintf("graph api status %d", httpResp.StatusCode)}
	}
	return raw, nil
}

func classifyGraph(e graphError) *Failure {
	msg := fmt.Sprintf("graph error %d: %s", e.Code, e.Message)
	switch {
	case e.Code == 190: // invalid or expired access token
		return &Failure{Kind: FailureCredential, Message: msg}
	case e.Code == 4 || e.Code == 17 || e.Code == 32 || e.Code == 613:
		return &Failure{Kind: FailureRateLimited, Message: msg}
	case e.Code == 10 || (e.Code >= 200 && e.Code <= 299):
		return &Failure{Kind: FailurePermission, Message: msg}
	case e.Code == 803, e.Code == 100 && e.Subcode == 33:
		return &Failure{Kind: FailureNotFound, Message: msg}
	default:
		return &Failure{Kind: FailureNetwork, Message: msg}
	}
}
