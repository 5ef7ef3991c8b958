package countries

import (
	"context"
	"strings"

	"compass/internal/constants"
	"compass/internal/logger"
	"compass/internal/rules"
	pkgerrors "compass/pkg/errors"
	"compass/pkg/logging"
	"compass/pkg/models"
)

type Service interface {
	AddCountry(ctx context.Context, req AddCountryRequest) (*Country, error)
	GetCountry(ctx context.Context, code string) (*Country, error)
	ListCountries(ctx context.Context) ([]Country, error)
	GetDesignation(ctx context.Context, code string) (*Designation, error)
}

type service struct {
	repo      Repository
	rulesRepo rules.Repository
	audit     *rules.AuditLogger
	events    *rules.RuleEventProducer
	cache     *rules.LookupCache
	log       logger.Logger
	fallback  bool
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

// WithLookupCache lets country registration invalidate the rules lookup
// cache, since setup rows land in the rule store outside the rules service.
func WithLookupCache(cache *rules.LookupCache) ServiceOption {
	return func(s *service) {
		s.cache = cache
	}
}

func WithFallbackDesignations(enabled bool) ServiceOption {
	return func(s *service) {
		s.fallback = enabled
	}
}

func NewService(repo Repository, rulesRepo rules.Repository, log logger.Logger, opts ...ServiceOption) Service {
	s := &service{
		repo:      repo,
		rulesRepo: rulesRepo,
		log:       log,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// AddCountry registers a country and writes one country-setup sentinel rule
// row per designation label, keeping older rule-store consumers working.
func (s *service) AddCountry(ctx context.Context, req AddCountryRequest) (*Country, error) {
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, pkgerrors.ErrValidation.WithDetail("message", "code and name are required")
	}
	if len(req.CATypes) == 0 && len(req.CSTypes) == 0 {
		return nil, pkgerrors.ErrValidation.WithDetail("message", "at least one CA or CS designation is required")
	}

	country := &Country{
		Code: code,
		Name: name,
	}
	if len(req.CATypes) > 0 {
		primary := strings.TrimSpace(req.CATypes[0])
		country.CAType = &primary
	}
	if len(req.CSTypes) > 0 {
		primary := strings.TrimSpace(req.CSTypes[0])
		country.CSType = &primary
	}

	setupRules := make([]rules.ComplianceRule, 0, len(req.CATypes)+len(req.CSTypes))
	for _, label := range req.CATypes {
		rule, err := buildSetupRule(code, name, label, constants.SentinelCASetup)
		if err != nil {
			return nil, err
		}
		setupRules = append(setupRules, rule)
	}
	for _, label := range req.CSTypes {
		rule, err := buildSetupRule(code, name, label, constants.SentinelCSSetup)
		if err != nil {
			return nil, err
		}
		setupRules = append(setupRules, rule)
	}

	if err := s.repo.Register(ctx, country, setupRules); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.cache.Invalidate(ctx)

	actor := actorFrom(ctx)
	if s.audit != nil {
		_ = s.audit.LogChange(ctx, rules.AuditLogEntry{
			EntityType: rules.AuditEntityCountry,
			Action:     models.ActionCreate,
			NewValue:   country,
			ChangedBy:  actor,
		})
	}
	if s.events != nil {
		_ = s.events.PublishCountryEvent(ctx, code, actor)
	}

	s.log.InfowCtx(ctx, "country registered",
		"code", code,
		"ca_types", len(req.CATypes),
		"cs_types", len(req.CSTypes),
	)

	return country, nil
}

func buildSetupRule(code, name, label, sentinel string) (rules.ComplianceRule, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return rules.ComplianceRule{}, pkgerrors.ErrValidation.WithDetail("message", "designation labels must be non-empty")
	}

	rule := rules.ComplianceRule{
		CountryCode:    code,
		CountryName:    name,
		CompanyType:    label,
		ComplianceName: sentinel,
		Frequency:      rules.FrequencyAnnual,
	}
	switch sentinel {
	case constants.SentinelCASetup:
		rule.CAType = &label
		rule.VerificationRequired = rules.VerificationCA
	case constants.SentinelCSSetup:
		rule.CSType = &label
		rule.VerificationRequired = rules.VerificationCS
	}

	return rule, nil
}

func (s *service) GetCountry(ctx context.Context, code string) (*Country, error) {
	country, err := s.repo.Get(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	if country == nil {
		return nil, pkgerrors.ErrNotFound.WithDetail("code", code)
	}
	return country, nil
}

func (s *service) ListCountries(ctx context.Context) ([]Country, error) {
	countries, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return countries, nil
}

// GetDesignation resolves the CA/CS labels for a country. The registry wins;
// otherwise the lowest-id rule rows are consulted; the static fallback table
// is last and only when enabled.
func (s *service) GetDesignation(ctx context.Context, code string) (*Designation, error) {
	country, err := s.repo.Get(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	if country != nil && (country.CAType != nil || country.CSType != nil) {
		return &Designation{
			CountryCode: code,
			CAType:      country.CAType,
			CSType:      country.CSType,
			Source:      DesignationSourceRegistry,
		}, nil
	}

	caType, csType, err := s.rulesRepo.CountryDesignation(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	if caType != nil || csType != nil {
		return &Designation{
			CountryCode: code,
			CAType:      caType,
			CSType:      csType,
			Source:      DesignationSourceRules,
		}, nil
	}

	if s.fallback {
		if ca, cs, ok := fallbackDesignation(code); ok {
			return &Designation{
				CountryCode: code,
				CAType:      ca,
				CSType:      cs,
				Source:      DesignationSourceFallback,
			}, nil
		}
	}

	return nil, pkgerrors.ErrNotFound.WithDetail("code", code)
}

func actorFrom(ctx context.Context) string {
	if actor := logging.GetActor(ctx); actor != "" {
		return actor
	}
	return "system"
}
