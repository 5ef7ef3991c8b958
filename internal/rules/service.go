package rules

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"compass/internal/constants"
	"compass/internal/logger"
	pkgerrors "compass/pkg/errors"
	"compass/pkg/logging"
	"compass/pkg/metrics"
	"compass/pkg/models"
)

const (
	cacheKeyCountries    = "countries"
	cacheKeyCompanyTypes = "company_types"
	cacheKeyDesignations = "designations"
)

type service struct {
	repo    Repository
	cache   *LookupCache
	audit   *AuditLogger
	events  *RuleEventProducer
	reports ReportRepository
	log     logger.Logger
}

type ServiceOption func(*service)

func WithLookupCache(cache *LookupCache) ServiceOption {
	return func(s *service) {
		s.cache = cache
	}
}

func WithAuditLogger(audit *AuditLogger) ServiceOption {
	return func(s *service) {
		s.audit = audit
	}
}

func WithRuleEvents(events *RuleEventProducer) ServiceOption {
	return func(s *service) {
		s.events = events
	}
}

func WithImportReports(reports ReportRepository) ServiceOption {
	return func(s *service) {
		s.reports = reports
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

func (s *service) CreateRule(ctx context.Context, req CreateRuleRequest) (*ComplianceRule, error) {
	if err := ValidateCreateRule(req); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrValidation)
	}

	rule := ruleFromFields(req.CountryCode, req.CountryName, req.CAType, req.CSType,
		req.CompanyType, req.ComplianceName, req.Description, req.Frequency, req.VerificationRequired)
	s.logNormalization(ctx, req.Frequency, req.VerificationRequired)

	if err := s.repo.CreateRule(ctx, rule); err != nil {
		metrics.RuleOperationsTotal.WithLabelValues("create", "error").Inc()
		if pkgerrors.IsConflict(err) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	metrics.RuleOperationsTotal.WithLabelValues("create", "success").Inc()
	s.afterMutation(ctx, models.ActionCreate, rule, nil)

	return rule, nil
}

func (s *service) GetRule(ctx context.Context, id int64) (*ComplianceRule, error) {
	rule, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return nil, s.handleNotFoundError(err, id)
	}
	return rule, nil
}

// ListRules dispatches on the provided filters. Empty strings mean no
// filter on that dimension.
func (s *service) ListRules(ctx context.Context, countryCode, companyType string) ([]ComplianceRule, error) {
	start := time.Now()

	var (
		rules []ComplianceRule
		err   error
		query string
	)

	switch {
	case countryCode != "" && companyType != "":
		query = "by_country_and_company_type"
		rules, err = s.repo.ListRulesByCountryAndCompanyType(ctx, countryCode, companyType)
	case countryCode != "":
		query = "by_country"
		rules, err = s.repo.ListRulesByCountry(ctx, countryCode)
	case companyType != "":
		query = "by_company_type"
		rules, err = s.repo.ListRulesByCompanyType(ctx, companyType)
	default:
		query = "all"
		rules, err = s.repo.ListRules(ctx)
	}

	metrics.RuleQueryDuration.WithLabelValues(query).Observe(float64(time.Since(start).Milliseconds()))

	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return rules, nil
}

func (s *service) UpdateRule(ctx context.Context, id int64, req UpdateRuleRequest) (*ComplianceRule, error) {
	if err := ValidateUpdateRule(req); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrValidation)
	}

	existing, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return nil, s.handleNotFoundError(err, id)
	}

	oldValue := ruleToMap(existing)

	rule := ruleFromFields(req.CountryCode, req.CountryName, req.CAType, req.CSType,
		req.CompanyType, req.ComplianceName, req.Description, req.Frequency, req.VerificationRequired)
	rule.ID = id
	rule.CreatedAt = existing.CreatedAt
	s.logNormalization(ctx, req.Frequency, req.VerificationRequired)

	if err := s.repo.UpdateRule(ctx, rule); err != nil {
		metrics.RuleOperationsTotal.WithLabelValues("update", "error").Inc()
		return nil, s.handleNotFoundError(err, id)
	}

	metrics.RuleOperationsTotal.WithLabelValues("update", "success").Inc()
	s.afterMutation(ctx, models.ActionUpdate, rule, oldValue)

	return rule, nil
}

func (s *service) DeleteRule(ctx context.Context, id int64) error {
	existing, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return s.handleNotFoundError(err, id)
	}

	if err := s.repo.DeleteRule(ctx, id); err != nil {
		metrics.RuleOperationsTotal.WithLabelValues("delete", "error").Inc()
		return s.handleNotFoundError(err, id)
	}

	metrics.RuleOperationsTotal.WithLabelValues("delete", "success").Inc()
	s.cache.Invalidate(ctx)

	if s.audit != nil {
		_ = s.audit.LogChange(ctx, AuditLogEntry{
			RuleID:     &existing.ID,
			EntityType: AuditEntityRule,
			Action:     models.ActionDelete,
			OldValue:   ruleToMap(existing),
			ChangedBy:  actorFrom(ctx),
		})
	}
	if s.events != nil {
		_ = s.events.PublishRuleEvent(ctx, models.ActionDelete, existing.ID, existing.CountryCode, actorFrom(ctx))
	}

	return nil
}

func (s *service) ListCountries(ctx context.Context) ([]CountryListing, error) {
	var cached []CountryListing
	if s.cache.Get(ctx, cacheKeyCountries, &cached) {
		return cached, nil
	}

	countries, err := s.repo.DistinctCountries(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.cache.Set(ctx, cacheKeyCountries, countries)
	return countries, nil
}

// ListCompanyTypes returns the distinct company types present in the rule
// store, excluding country-setup sentinel rows.
func (s *service) ListCompanyTypes(ctx context.Context) ([]string, error) {
	var cached []string
	if s.cache.Get(ctx, cacheKeyCompanyTypes, &cached) {
		return cached, nil
	}

	rows, err := s.repo.DistinctCompanyTypeRows(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	seen := make(map[string]bool, len(rows))
	types := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.CompanyType == "" || seen[row.CompanyType] {
			continue
		}
		if IsSentinelCompanyType(row.CompanyType, row.CAType, row.CSType) {
			continue
		}
		seen[row.CompanyType] = true
		types = append(types, row.CompanyType)
	}

	s.cache.Set(ctx, cacheKeyCompanyTypes, types)
	return types, nil
}

func (s *service) ListDesignations(ctx context.Context) (*DesignationListing, error) {
	var cached DesignationListing
	if s.cache.Get(ctx, cacheKeyDesignations, &cached) {
		return &cached, nil
	}

	listing, err := s.repo.DistinctDesignations(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.cache.Set(ctx, cacheKeyDesignations, listing)
	return listing, nil
}

// ImportRules parses the uploaded CSV and inserts the surviving rows one at
// a time. Per-row insert failures are collected, not fatal; partial success
// is a valid terminal state.
func (s *service) ImportRules(ctx context.Context, fileName string, file io.Reader) (*ImportResult, error) {
	parsed, err := ParseImport(file)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrValidation)
	}

	result := &ImportResult{
		Errors:   []ImportRowError{},
		Warnings: parsed.Warnings,
	}
	for range parsed.Warnings {
		metrics.ImportRowsTotal.WithLabelValues("dropped").Inc()
	}

	for _, row := range parsed.Rows {
		rule := row.Rule
		if err := s.repo.CreateRule(ctx, &rule); err != nil {
			metrics.ImportRowsTotal.WithLabelValues("error").Inc()
			result.Errors = append(result.Errors, ImportRowError{
				Row:     row.Index,
				Message: importErrorMessage(err),
				Data:    row.Raw,
			})
			continue
		}
		metrics.ImportRowsTotal.WithLabelValues("success").Inc()
		result.Success++
	}

	s.cache.Invalidate(ctx)

	actor := actorFrom(ctx)
	if s.events != nil && result.Success > 0 {
		_ = s.events.PublishImportEvent(ctx, actor, map[string]interface{}{
			"file_name": fileName,
			"success":   result.Success,
			"errors":    len(result.Errors),
		})
	}

	if s.reports != nil {
		report := &ImportReport{
			FileName:     fileName,
			UploadedBy:   actor,
			SuccessCount: result.Success,
			ErrorCount:   len(result.Errors),
			Errors:       result.Errors,
			Warnings:     result.Warnings,
		}
		if err := s.reports.SaveReport(ctx, report); err != nil {
			s.log.WarnwCtx(ctx, "failed to persist import report", "error", err)
		} else {
			result.ReportID = report.ID
		}
	}

	s.log.InfowCtx(ctx, "bulk import completed",
		"file_name", fileName,
		"success", result.Success,
		"errors", len(result.Errors),
		"warnings", len(result.Warnings),
	)

	return result, nil
}

func (s *service) ListImportReports(ctx context.Context, limit int) ([]ImportReport, error) {
	if s.reports == nil {
		return nil, pkgerrors.ErrInternal.WithDetail("message", "import reports not configured")
	}
	if limit <= 0 || limit > constants.MaxLimit {
		limit = constants.DefaultLimit
	}

	reports, err := s.reports.ListReports(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return reports, nil
}

func (s *service) GetImportReport(ctx context.Context, id string) (*ImportReport, error) {
	if s.reports == nil {
		return nil, pkgerrors.ErrInternal.WithDetail("message", "import reports not configured")
	}

	report, err := s.reports.GetReport(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	if report == nil {
		return nil, pkgerrors.ErrNotFound.WithDetail("id", id)
	}
	return report, nil
}

func (s *service) GetAuditLogs(ctx context.Context, ruleID *int64, limit int) ([]AuditLogEntry, error) {
	if s.audit == nil {
		return nil, pkgerrors.ErrInternal.WithDetail("message", "audit logging not enabled")
	}
	if limit <= 0 || limit > constants.MaxLimit {
		limit = constants.DefaultLimit
	}

	entries, err := s.audit.ListEntries(ctx, ruleID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return entries, nil
}

func (s *service) afterMutation(ctx context.Context, action string, rule *ComplianceRule, oldValue map[string]interface{}) {
	s.cache.Invalidate(ctx)

	actor := actorFrom(ctx)
	if s.audit != nil {
		_ = s.audit.LogChange(ctx, AuditLogEntry{
			RuleID:     &rule.ID,
			EntityType: AuditEntityRule,
			Action:     action,
			OldValue:   oldValue,
			NewValue:   ruleToMap(rule),
			ChangedBy:  actor,
		})
	}
	if s.events != nil {
		_ = s.events.PublishRuleEvent(ctx, action, rule.ID, rule.CountryCode, actor)
	}
}

func (s *service) logNormalization(ctx context.Context, rawFrequency, rawVerification string) {
	if _, warn := NormalizeFrequency(rawFrequency); warn != nil {
		s.log.WarnwCtx(ctx, warn.Message, "field", warn.Field, "value", warn.Value)
	}
	if _, warn := NormalizeVerification(rawVerification); warn != nil {
		s.log.WarnwCtx(ctx, warn.Message, "field", warn.Field, "value", warn.Value)
	}
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

func ruleFromFields(countryCode, countryName string, caType, csType *string,
	companyType, name string, description *string, rawFrequency, rawVerification string) *ComplianceRule {

	frequency, _ := NormalizeFrequency(rawFrequency)
	verification, _ := NormalizeVerification(rawVerification)

	return &ComplianceRule{
		CountryCode:          strings.TrimSpace(countryCode),
		CountryName:          strings.TrimSpace(countryName),
		CAType:               trimOptional(caType),
		CSType:               trimOptional(csType),
		CompanyType:          strings.TrimSpace(companyType),
		ComplianceName:       strings.TrimSpace(name),
		Description:          trimOptional(description),
		Frequency:            frequency,
		VerificationRequired: verification,
	}
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func ruleToMap(rule *ComplianceRule) map[string]interface{} {
	data, err := json.Marshal(rule)
	if err != nil {
		return nil
	}
	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return result
}

func importErrorMessage(err error) string {
	var domainErr *pkgerrors.Error
	if errors.As(err, &domainErr) {
		if msg, ok := domainErr.Details["message"].(string); ok {
			return msg
		}
		return domainErr.Message
	}
	return err.Error()
}

func actorFrom(ctx context.Context) string {
	if actor := logging.GetActor(ctx); actor != "" {
		return actor
	}
	return "system"
}
