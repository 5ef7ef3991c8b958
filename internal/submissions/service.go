package submissions

import (
	"context"
	"strings"

	"compass/internal/logger"
	"compass/internal/rules"
	pkgerrors "compass/pkg/errors"
	"compass/pkg/logging"
	"compass/pkg/metrics"
	"compass/pkg/models"
)

type Service interface {
	Submit(ctx context.Context, req CreateSubmissionRequest) (*Submission, error)
	Get(ctx context.Context, id int64) (*Submission, error)
	List(ctx context.Context, status string) ([]Submission, error)
	StartReview(ctx context.Context, id int64) (*Submission, error)
	Approve(ctx context.Context, id int64, notes string) (*Submission, error)
	Reject(ctx context.Context, id int64, notes string) (*Submission, error)
	Delete(ctx context.Context, id int64) error
	GetStats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo   Repository
	audit  *rules.AuditLogger
	events *rules.RuleEventProducer
	cache  *rules.LookupCache
	log    logger.Logger
}

type ServiceOption func(*service)

func WithAuditLogger(audit *rules.AuditLogger) ServiceOption {
	return func(s *service) {
		s.audit = audit
	}
}

func WithRuleEvents(events *rules.RuleEventProducer) ServiceOption {
	return func(s *service) {
		s.events = events
	}
}

// WithLookupCache lets approvals invalidate the rules lookup cache, since a
// promotion writes a rule row outside the rules service.
func WithLookupCache(cache *rules.LookupCache) ServiceOption {
	return func(s *service) {
		s.cache = cache
	}
}

func NewService(repo Repository, log logger.Logger, opts ...ServiceOption) Service {
	s := &service{
		repo: repo,
		log:  log,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *service) Submit(ctx context.Context, req CreateSubmissionRequest) (*Submission, error) {
	if err := ValidateCreateSubmission(req); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrValidation)
	}

	frequency, freqWarn := rules.NormalizeFrequency(req.Frequency)
	verification, verWarn := rules.NormalizeVerification(req.VerificationRequired)
	if freqWarn != nil {
		s.log.WarnwCtx(ctx, freqWarn.Message, "field", freqWarn.Field, "value", freqWarn.Value)
	}
	if verWarn != nil {
		s.log.WarnwCtx(ctx, verWarn.Message, "field", verWarn.Field, "value", verWarn.Value)
	}

	operationType := req.OperationType
	if operationType == "" {
		operationType = OperationParent
	}

	sub := &Submission{
		SubmitterName:        strings.TrimSpace(req.SubmitterName),
		SubmitterEmail:       strings.TrimSpace(req.SubmitterEmail),
		SubmitterRole:        req.SubmitterRole,
		CompanyName:          strings.TrimSpace(req.CompanyName),
		CompanyType:          strings.TrimSpace(req.CompanyType),
		OperationType:        operationType,
		CountryCode:          strings.TrimSpace(req.CountryCode),
		CountryName:          strings.TrimSpace(req.CountryName),
		ComplianceName:       strings.TrimSpace(req.ComplianceName),
		Description:          req.Description,
		Frequency:            frequency,
		VerificationRequired: verification,
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	metrics.SubmissionsTotal.WithLabelValues(StatusPending).Inc()
	s.log.InfowCtx(ctx, "compliance submission received",
		"id", sub.ID,
		"country_code", sub.CountryCode,
		"company_type", sub.CompanyType,
	)

	return sub, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Submission, error) {
	sub, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.handleNotFoundError(err, id)
	}
	return sub, nil
}

func (s *service) List(ctx context.Context, status string) ([]Submission, error) {
	if status != "" && !validStatus(status) {
		return nil, pkgerrors.ErrValidation.WithDetail("message", "unknown status filter")
	}

	subs, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return subs, nil
}

func (s *service) StartReview(ctx context.Context, id int64) (*Submission, error) {
	sub, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.handleNotFoundError(err, id)
	}
	if sub.Status != StatusPending {
		return nil, pkgerrors.ErrConflict.WithDetail("message",
			"only pending submissions can move to under_review").WithDetail("status", sub.Status)
	}

	if err := s.repo.MarkUnderReview(ctx, id, actorFrom(ctx)); err != nil {
		return nil, s.transitionError(err)
	}

	metrics.SubmissionsTotal.WithLabelValues(StatusUnderReview).Inc()
	return s.repo.Get(ctx, id)
}

// Approve flips the submission to approved and copies its compliance fields
// into a new rule in a single transaction. The submission retains provenance
// but is not the live rule source afterwards.
func (s *service) Approve(ctx context.Context, id int64, notes string) (*Submission, error) {
	sub, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.handleNotFoundError(err, id)
	}
	if sub.Status != StatusPending && sub.Status != StatusUnderReview {
		return nil, pkgerrors.ErrConflict.WithDetail("message",
			"submission is not in a reviewable status").WithDetail("status", sub.Status)
	}

	actor := actorFrom(ctx)
	ruleID, err := s.repo.ApproveAndPromote(ctx, sub, notes, actor)
	if err != nil {
		return nil, s.transitionError(err)
	}

	s.cache.Invalidate(ctx)
	metrics.SubmissionsTotal.WithLabelValues(StatusApproved).Inc()

	if s.audit != nil {
		_ = s.audit.LogChange(ctx, rules.AuditLogEntry{
			RuleID:     &ruleID,
			EntityType: rules.AuditEntitySubmission,
			Action:     models.ActionPromote,
			OldValue:   map[string]interface{}{"submission_id": sub.ID, "status": sub.Status},
			NewValue:   map[string]interface{}{"submission_id": sub.ID, "status": StatusApproved, "rule_id": ruleID},
			ChangedBy:  actor,
		})
	}
	if s.events != nil {
		_ = s.events.PublishPromotionEvent(ctx, ruleID, sub.CountryCode, actor, map[string]interface{}{
			"submission_id":   sub.ID,
			"compliance_name": sub.ComplianceName,
		})
	}

	s.log.InfowCtx(ctx, "submission approved and promoted",
		"submission_id", sub.ID,
		"rule_id", ruleID,
	)

	return s.repo.Get(ctx, id)
}

func (s *service) Reject(ctx context.Context, id int64, notes string) (*Submission, error) {
	sub, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.handleNotFoundError(err, id)
	}
	if sub.Status != StatusPending && sub.Status != StatusUnderReview {
		return nil, pkgerrors.ErrConflict.WithDetail("message",
			"submission is not in a reviewable status").WithDetail("status", sub.Status)
	}

	if err := s.repo.Reject(ctx, id, notes, actorFrom(ctx)); err != nil {
		return nil, s.transitionError(err)
	}

	metrics.SubmissionsTotal.WithLabelValues(StatusRejected).Inc()
	return s.repo.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.handleNotFoundError(err, id)
	}
	return nil
}

func (s *service) GetStats(ctx context.Context) (*Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return stats, nil
}

func (s *service) handleNotFoundError(err error, id int64) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "not found") {
		return pkgerrors.ErrNotFound.WithDetail("id", id)
	}
	return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
}

// transitionError distinguishes a lost status race from a plain failure.
func (s *service) transitionError(err error) error {
	if strings.Contains(err.Error(), "not in a reviewable status") {
		return pkgerrors.ErrConflict.WithCause(err)
	}
	return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
}

func validStatus(status string) bool {
	switch status {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func actorFrom(ctx context.Context) string {
	if actor := logging.GetActor(ctx); actor != "" {
		return actor
	}
	return "system"
}
