// Package gateway forwards the ledger's user-facing rights endpoints to
// the rights service, so clients only ever talk to the ledger.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	dErrors "grantflow/pkg/domain-errors"
)

// Rights proxies calls to the rights service. Responses pass through
// verbatim, status code included; the ledger adds nothing to them.
type Rights struct {
	base   string
	client *http.Client
}

func NewRights(baseURL string, timeout time.Duration) *Rights {
	return &Rights{
		base:   baseURL,
		client: &http.Client{Timeout: timeout},
	}
}

// Response is a pass-through upstream reply.
type Response struct {
	Status int
	Body   []byte
}

// UserRights forwards GET /user/{id}/rights.
func (g *Rights) UserRights(ctx context.Context, userID string) (*Response, error) {
	return g.forward(ctx, http.MethodGet, fmt.Sprintf("/user/%s/rights", userID), nil)
}

// ResourceAccess forwards GET /resource/{id}/access.
func (g *Rights) ResourceAccess(ctx context.Context, resourceID int64) (*Response, error) {
	return g.forward(ctx, http.MethodGet, fmt.Sprintf("/resource/%d/access", resourceID), nil)
}

// Revoke forwards POST /user/{id}/revoke with the caller's body.
func (g *Rights) Revoke(ctx context.Context, userID string, body []byte) (*Response, error) {
	return g.forward(ctx, http.MethodPost, fmt.Sprintf("/user/%s/revoke", userID), body)
}

func (g *Rights) forward(ctx context.Context, method, path string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.base+path, reader)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build upstream request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "rights service unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read upstream response")
	}
	return &Response{Status: resp.StatusCode, Body: raw}, nil
}
