// Package client holds the HTTP adapters the saga uses to talk to the
// rights service and the request ledger.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	dErrors "grantflow/pkg/domain-errors"
)

// httpClient is the shared plumbing for both adapters: bounded timeouts,
// JSON codecs, and a uniform error taxonomy.
type httpClient struct {
	base    string
	client  *http.Client
	observe func(target string, d time.Duration)
	target  string
}

func newHTTPClient(base, target string, timeout time.Duration, observe func(string, time.Duration)) httpClient {
	return httpClient{
		base:    base,
		client:  &http.Client{Timeout: timeout},
		observe: observe,
		target:  target,
	}
}

// do performs a request and decodes the response into out (when non-nil).
// Transport failures and timeouts map to transient codes so the saga can
// tell them apart from business outcomes; a 404 maps to not_found.
func (c httpClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if c.observe != nil {
		c.observe(c.target, time.Since(start))
	}
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return dErrors.Wrap(err, dErrors.CodeTimeout, fmt.Sprintf("%s call timed out", c.target))
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, fmt.Sprintf("%s unreachable", c.target))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("%s: %s not found", c.target, path))
	case resp.StatusCode >= 500:
		return dErrors.New(dErrors.CodeUnavailable, fmt.Sprintf("%s returned %d", c.target, resp.StatusCode))
	case resp.StatusCode >= 400:
		return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s rejected the call with %d", c.target, resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("failed to decode %s response", c.target))
	}
	return nil
}
