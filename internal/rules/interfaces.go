package rules

import (
	"context"
	"io"
)

type Service interface {
	CreateRule(ctx context.Context, req CreateRuleRequest) (*ComplianceRule, error)
	GetRule(ctx context.Context, id int64) (*ComplianceRule, error)
	ListRules(ctx context.Context, countryCode, companyType string) ([]ComplianceRule, error)
	UpdateRule(ctx context.Context, id int64, req UpdateRuleRequest) (*ComplianceRule, error)
	DeleteRule(ctx context.Context, id int64) error

	ListCountries(ctx context.Context) ([]CountryListing, error)
	ListCompanyTypes(ctx context.Context) ([]string, error)
	ListDesignations(ctx context.Context) (*DesignationListing, error)

	ImportRules(ctx context.Context, fileName string, file io.Reader) (*ImportResult, error)
	ListImportReports(ctx context.Context, limit int) ([]ImportReport, error)
	GetImportReport(ctx context.Context, id string) (*ImportReport, error)

	GetAuditLogs(ctx context.Context, ruleID *int64, limit int) ([]AuditLogEntry, error)
}
