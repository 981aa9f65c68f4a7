package platform

import (
	"context"
	"net/http"
	"strings"

	"citypulse/internal/models"
)

const (
	Telegram  = "telegram"
	Instagram = "instagram"
	VK        = "vk"
	Facebook  = "facebook"
)

// Credentials is the opaque key/value bundle stored per destination.
type Credentials map[string]string

func (c Credentials) Get(key string) string {
	return strings.TrimSpace(c[key])
}

// requiredFields drives both the derived is_configured flag and
// save-with-validation. Field names double as the JSON keys of the stored
// credential bundle.
var requiredFields = map[string][]string{
	Telegram:  {"bot_token", "channel_id"},
	VK:        {"access_token", "group_id"},
	Instagram: {"access_token", "business_account_id"},
	Facebook:  {"page_access_token", "page_id"},
}

// RequiredFields returns the mandatory credential keys for a platform.
// The second return is false for unknown platform names.
func RequiredFields(name string) ([]string, bool) {
	fields, ok := requiredFields[name]
	return fields, ok
}

func Known(name string) bool {
	_, ok := requiredFields[name]
	return ok
}

func Names() []string {
	return []string{Telegram, Instagram, VK, Facebook}
}

// MissingFields reports which mandatory keys are empty in creds.
func MissingFields(name string, creds Credentials) []string {
	fields, ok := requiredFields[name]
	if !ok {
		return nil
	}
	var missing []string
	for _, f := range fields {
		if creds.Get(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// IsConfigured is true iff every mandatory credential field is non-empty.
func IsConfigured(name string, creds Credentials) bool {
	if !Known(name) {
		return false
	}
	return len(MissingFields(name, creds)) == 0
}

// FailureKind classifies a platform-side failure.
type FailureKind string

const (
	FailureCredential  FailureKind = "credential"
	FailurePermission  FailureKind = "permission"
	FailureNotFound    FailureKind = "not_found"
	FailureNetwork     FailureKind = "network"
	FailureRateLimited FailureKind = "rate_limited"

	// FailureInvalidContent marks content the platform cannot accept, such
	// as an imageless Instagram post. Retrying the same payload cannot help.
	FailureInvalidContent FailureKind = "invalid_content"
)

// Failure is a classified platform error carried as a value. Adapters never
// return Go errors for platform-side failures; the dispatcher and tester
// branch on the result instead.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (f *Failure) String() string {
	if f == nil {
		return ""
	}
	return string(f.Kind) + ": " + f.Message
}

type ProbeResult struct {
	Success bool     `json:"success"`
	Info    string   `json:"info,omitempty"`
	Failure *Failure `json:"error,omitempty"`
}

type PublishResult struct {
	Success         bool     `json:"success"`
	ExternalPostURL string   `json:"external_post_url,omitempty"`
	Failure         *Failure `json:"error,omitempty"`
}

// Adapter hides one platform's wire API behind the probe/publish pair.
// Probe performs the cheapest read-only call that proves the credentials are
// accepted; it must not post anything.
type Adapter interface {
	Name() string
	Probe(ctx context.Context, creds Credentials) ProbeResult
	Publish(ctx context.Context, creds Credentials, content models.PublishContent) PublishResult
}

// Registry resolves adapters by platform name. The dispatcher and tester are
// platform-agnostic against it; tests swap in fakes via Register.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

func (r *Registry) Register(a Adapter) {
	if a == nil {
		return
	}
	r.adapters[a.Name()] = a
}

func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

func probeFailure(kind FailureKind, message string) ProbeResult {
	return ProbeResult{Failure: &Failure{Kind: kind, Message: message}}
}

func publishFailure(kind FailureKind, message string) PublishResult {
	return PublishResult{Failure: &Failure{Kind: kind, Message: message}}
}

// networkFailureMessage normalizes transport errors, including context
// deadline expiry, into one failure kind.
func networkFailureMessage(err error) string {
	if err == nil {
		return "network error"
	}
	if err == context.DeadlineExceeded {
		return "request timed out"
	}
	return err.Error()
}

func defaultedClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return http.DefaultClient
}
