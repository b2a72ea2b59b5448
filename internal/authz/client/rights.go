package client

import (
	"context"
	"fmt"
	"time"

	"grantflow/internal/authz/models"
)

// RightsHTTP talks to the rights service.
type RightsHTTP struct {
	httpClient
}

// NewRights creates a rights service client with a bounded per-call timeout.
// observe may be nil; when set it receives the latency of every call.
func NewRights(baseURL string, timeout time.Duration, observe func(string, time.Duration)) *RightsHTTP {
	return &RightsHTTP{newHTTPClient(baseURL, "rights", timeout, observe)}
}

// UserRights fetches the user's current rights picture.
func (c *RightsHTTP) UserRights(ctx context.Context, userID string) (*models.UserRights, error) {
	var out models.UserRights
	if err := c.do(ctx, "GET", fmt.Sprintf("/user/%s/rights", userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Group resolves a group's code by id. Returns not_found when the group
// does not exist.
func (c *RightsHTTP) Group(ctx context.Context, groupID int64) (*models.GroupRef, error) {
	var out models.GroupRef
	if err := c.do(ctx, "GET", fmt.Sprintf("/group/%d", groupID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Apply asks the rights service to grant the request's target to the user.
// A not_found here means the apply target is missing, which the saga treats
// as a data inconsistency rather than a rejection.
func (c *RightsHTTP) Apply(ctx context.Context, msg *models.RequestMessage) error {
	var out struct {
		Applied bool `json:"applied"`
	}
	return c.do(ctx, "POST", "/access/apply", msg, &out)
}
