package client

import (
	"context"
	"fmt"
	"time"

	"grantflow/pkg/domain"
)

// LedgerHTTP talks to the request ledger.
type LedgerHTTP struct {
	httpClient
}

// NewLedger creates a request ledger client with a bounded per-call timeout.
func NewLedger(baseURL string, timeout time.Duration, observe func(string, time.Duration)) *LedgerHTTP {
	return &LedgerHTTP{newHTTPClient(baseURL, "ledger", timeout, observe)}
}

type statusPatch struct {
	Status domain.Status `json:"status"`
	Reason string        `json:"reason,omitempty"`
}

// ReportStatus reports the saga's outcome for a request. It is a single
// call: the saga does not retry it locally, redelivery of the whole message
// is the retry mechanism.
func (c *LedgerHTTP) ReportStatus(ctx context.Context, requestID int64, status domain.Status, reason string) error {
	path := fmt.Sprintf("/requests/%d/status", requestID)
	return c.do(ctx, "PATCH", path, statusPatch{Status: status, Reason: reason}, nil)
}
