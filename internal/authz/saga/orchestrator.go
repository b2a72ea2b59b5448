// Package saga drives one access request through verification, decision,
// side effect, and outcome report.
package saga

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"grantflow/internal/authz/metrics"
	"grantflow/internal/authz/models"
	"grantflow/internal/authz/policy"
	"grantflow/internal/platform/kafka/consumer"
	"grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
)

// RightsClient is the saga's view of the rights service.
type RightsClient interface {
	UserRights(ctx context.Context, userID string) (*models.UserRights, error)
	Group(ctx context.Context, groupID int64) (*models.GroupRef, error)
	Apply(ctx context.Context, msg *models.RequestMessage) error
}

// LedgerClient reports outcomes back to the request ledger.
type LedgerClient interface {
	ReportStatus(ctx context.Context, requestID int64, status domain.Status, reason string) error
}

// Orchestrator consumes request messages and decides each one. It keeps no
// state between messages; concurrent invocations are independent. All
// durable state lives in the collaborators, which is what makes redelivery
// safe: the apply is idempotent and the status report overwrites.
type Orchestrator struct {
	rights  RightsClient
	ledger  LedgerClient
	policy  policy.Policy
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func New(rights RightsClient, ledger LedgerClient, pol policy.Policy, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		rights: rights,
		ledger: ledger,
		policy: pol,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Handle implements consumer.Handler. A nil return acknowledges the
// message; an error surfaces to the delivery layer for redelivery.
//
// Business rejections (missing target group, conflicting groups) are
// successful completions: they produce a status report and return nil.
// Infrastructure failures on any outbound call return an error.
func (o *Orchestrator) Handle(ctx context.Context, msg *consumer.Message) error {
	start := time.Now()
	defer func() {
		if o.metrics != nil {
			o.metrics.HandleDuration.Observe(time.Since(start).Seconds())
		}
	}()

	var req models.RequestMessage
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		// Malformed payloads can never succeed; ack and move on.
		o.logger.ErrorContext(ctx, "malformed request message",
			"offset", msg.Offset,
			"error", err,
		)
		o.countPoison()
		return nil
	}
	if err := req.Validate(); err != nil {
		o.logger.ErrorContext(ctx, "invalid request message",
			"request_id", req.RequestID,
			"error", err,
		)
		o.countPoison()
		return nil
	}

	return o.process(ctx, &req)
}

// process runs the decision steps for one parsed request.
func (o *Orchestrator) process(ctx context.Context, req *models.RequestMessage) error {
	log := o.logger.With(
		"request_id", req.RequestID,
		"user_id", req.UserID,
		"kind", req.Kind,
		"target_id", req.TargetID,
	)

	rights, err := o.rights.UserRights(ctx, req.UserID)
	if err != nil {
		o.countFailure("fetch_rights")
		return fmt.Errorf("fetch user rights: %w", err)
	}

	candidates := make([]string, 0, len(rights.Groups)+1)
	for _, g := range rights.Groups {
		candidates = append(candidates, g.Code)
	}

	if req.Kind == domain.KindGroup {
		group, err := o.rights.Group(ctx, req.TargetID)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				log.InfoContext(ctx, "rejecting request: target group does not exist")
				return o.reject(ctx, req, domain.ReasonGroupNotFound)
			}
			o.countFailure("resolve_group")
			return fmt.Errorf("resolve target group: %w", err)
		}
		candidates = append(candidates, group.Code)
	}

	// An access request never changes group membership; it is still
	// evaluated against the existing set so the decision is deterministic.
	conflict, err := o.policy.HasConflict(ctx, candidates)
	if err != nil {
		o.countFailure("evaluate_policy")
		return fmt.Errorf("evaluate conflict policy: %w", err)
	}
	if conflict {
		log.InfoContext(ctx, "rejecting request: conflicting groups", "candidates", candidates)
		return o.reject(ctx, req, domain.ReasonConflictingGroups)
	}

	if err := o.rights.Apply(ctx, req); err != nil {
		// A missing apply target is a data inconsistency, not a rejection:
		// the target group passed resolution above (or was never checked for
		// an access request). Surface it so the message is redelivered and
		// the gap becomes visible.
		o.countFailure("apply")
		return fmt.Errorf("apply grant: %w", err)
	}

	if err := o.ledger.ReportStatus(ctx, req.RequestID, domain.StatusApproved, ""); err != nil {
		// The grant is live but the ledger was not told. Redelivery re-runs
		// the saga: apply no-ops and the report gets another chance.
		o.countFailure("report_status")
		return fmt.Errorf("report approval: %w", err)
	}

	if o.metrics != nil {
		o.metrics.Approved.Inc()
	}
	log.InfoContext(ctx, "request approved")
	return nil
}

// reject reports a business rejection. The report itself can still fail on
// infrastructure, in which case the whole message is redelivered and the
// decision is recomputed.
func (o *Orchestrator) reject(ctx context.Context, req *models.RequestMessage, reason string) error {
	if err := o.ledger.ReportStatus(ctx, req.RequestID, domain.StatusRejected, reason); err != nil {
		o.countFailure("report_status")
		return fmt.Errorf("report rejection: %w", err)
	}
	if o.metrics != nil {
		o.metrics.Rejected.WithLabelValues(reason).Inc()
	}
	return nil
}

func (o *Orchestrator) countFailure(step string) {
	if o.metrics != nil {
		o.metrics.Failures.WithLabelValues(step).Inc()
	}
}

func (o *Orchestrator) countPoison() {
	if o.metrics != nil {
		o.metrics.PoisonMessages.Inc()
	}
}
