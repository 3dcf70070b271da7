// Package backend routes generation requests to the configured model. A
// model with an endpoint URL goes through the generic HTTP client; one
// without goes through the vendor SDK. Both normalize to plain text.
//
// Calls are single-attempt. A failure surfaces immediately so the caller can
// reply to the user instead of sitting in a retry loop.
package backend

import (
	"context"
	"errors"
	"fmt"

	"treebot/pkg/prompt"
	"treebot/pkg/registry"
)

var (
	// ErrUnreachable covers transport failures and timeouts.
	ErrUnreachable = errors.New("backend unreachable")
	// ErrAuth covers rejected credentials (401/403).
	ErrAuth = errors.New("backend rejected credentials")
	// ErrBadResponse covers malformed, empty, or otherwise unusable replies.
	ErrBadResponse = errors.New("backend returned an unusable response")
)

// Prompt carries both payload shapes; the routed client picks the one its
// endpoint expects.
type Prompt struct {
	Messages []prompt.Message
	Flat     string
}

type Generator interface {
	Generate(ctx context.Context, model registry.ModelConfig, p Prompt) (string, error)
}

// Options are the sampling settings shared by both branches.
type Options struct {
	Temperature float64
	MaxTokens   int
}

type Router struct {
	http   *HTTPClient
	vendor *VendorClient
}

func NewRouter(http *HTTPClient, vendor *VendorClient) *Router {
	return &Router{http: http, vendor: vendor}
}

func (r *Router) Generate(ctx context.Context, model registry.ModelConfig, p Prompt) (string, error) {
	if model.Endpoint != "" {
		return r.http.Generate(ctx, model, p)
	}
	return r.vendor.Generate(ctx, model, p)
}

// APIError captures non-2xx responses so callers can map status codes onto
// the error taxonomy while keeping the body available for server-side logs.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.StatusCode, e.Body)
}
