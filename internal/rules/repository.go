package rules

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	pkgerrors "compass/pkg/errors"
)

type Repository interface {
	CreateRule(ctx context.Context, rule *ComplianceRule) error
	GetRule(ctx context.Context, id int64) (*ComplianceRule, error)
	ListRules(ctx context.Context) ([]ComplianceRule, error)
	ListRulesByCountry(ctx context.Context, countryCode string) ([]ComplianceRule, error)
	ListRulesByCompanyType(ctx context.Context, companyType string) ([]ComplianceRule, error)
	ListRulesByCountryAndCompanyType(ctx context.Context, countryCode, companyType string) ([]ComplianceRule, error)
	UpdateRule(ctx context.Context, rule *ComplianceRule) error
	DeleteRule(ctx context.Context, id int64) error

	DistinctCountries(ctx context.Context) ([]CountryListing, error)
	DistinctCompanyTypeRows(ctx context.Context) ([]CompanyTypeRow, error)
	DistinctDesignations(ctx context.Context) (*DesignationListing, error)
	CountryDesignation(ctx context.Context, countryCode string) (caType, csType *string, err error)
}

// CompanyTypeRow carries enough row context for the sentinel filter applied
// by the service layer.
type CompanyTypeRow struct {
	CompanyType string
	CAType      *string
	CSType      *string
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

const ruleColumns = `id, country_code, country_name, ca_type, cs_type, company_type,
		compliance_name, compliance_description, frequency, verification_required,
		created_at, updated_at`

func (r *PostgresRepository) CreateRule(ctx context.Context, rule *ComplianceRule) error {
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	query := `
		INSERT INTO compliance_rules (country_code, country_name, ca_type, cs_type,
			company_type, compliance_name, compliance_description, frequency,
			verification_required, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		rule.CountryCode, rule.CountryName, rule.CAType, rule.CSType,
		rule.CompanyType, rule.ComplianceName, rule.Description,
		rule.Frequency, rule.VerificationRequired, rule.CreatedAt, rule.UpdatedAt,
	).Scan(&rule.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" {
				return pkgerrors.ErrConflict.WithCause(err).WithDetail("message", fmt.Sprintf("rule %q already exists for %s/%s", rule.ComplianceName, rule.CountryCode, rule.CompanyType))
			}
		}
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique constraint") {
			return pkgerrors.ErrConflict.WithCause(err).WithDetail("message", fmt.Sprintf("rule %q already exists for %s/%s", rule.ComplianceName, rule.CountryCode, rule.CompanyType))
		}
		return fmt.Errorf("failed to create rule: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetRule(ctx context.Context, id int64) (*ComplianceRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM compliance_rules
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	var rule ComplianceRule
	err := scanRule(row, &rule)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rule not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	return &rule, nil
}

func (r *PostgresRepository) ListRules(ctx context.Context) ([]ComplianceRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM compliance_rules
		ORDER BY country_name, company_type, compliance_name
	`
	return r.queryRules(ctx, query)
}

func (r *PostgresRepository) ListRulesByCountry(ctx context.Context, countryCode string) ([]ComplianceRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM compliance_rules
		WHERE country_code = $1
		ORDER BY company_type, compliance_name
	`
	return r.queryRules(ctx, query, countryCode)
}

func (r *PostgresRepository) ListRulesByCompanyType(ctx context.Context, companyType string) ([]ComplianceRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM compliance_rules
		WHERE company_type = $1
		ORDER BY country_name, compliance_name
	`
	return r.queryRules(ctx, query, companyType)
}

func (r *PostgresRepository) ListRulesByCountryAndCompanyType(ctx context.Context, countryCode, companyType string) ([]ComplianceRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM compliance_rules
		WHERE country_code = $1 AND company_type = $2
		ORDER BY compliance_name
	`
	return r.queryRules(ctx, query, countryCode, companyType)
}

func (r *PostgresRepository) UpdateRule(ctx context.Context, rule *ComplianceRule) error {
	rule.UpdatedAt = time.Now()

	query := `
		UPDATE compliance_rules
		SET country_code = $1, country_name = $2, ca_type = $3, cs_type = $4,
			company_type = $5, compliance_name = $6, compliance_description = $7,
			frequency = $8, verification_required = $9, updated_at = $10
		WHERE id = $11
	`

	res, err := r.db.ExecContext(ctx, query,
		rule.CountryCode, rule.CountryName, rule.CAType, rule.CSType,
		rule.CompanyType, rule.ComplianceName, rule.Description,
		rule.Frequency, rule.VerificationRequired, rule.UpdatedAt, rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("rule not found")
	}

	return nil
}

func (r *PostgresRepository) DeleteRule(ctx context.Context, id int64) error {
	query := `DELETE FROM compliance_rules WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("rule not found")
	}

	return nil
}

func (r *PostgresRepository) DistinctCountries(ctx context.Context) ([]CountryListing, error) {
	// DISTINCT ON keeps one name per code; codes are compared case-sensitively.
	query := `
		SELECT DISTINCT ON (country_code) country_code, country_name
		FROM compliance_rules
		ORDER BY country_code, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	defer rows.Close()

	var countries []CountryListing
	for rows.Next() {
		var c CountryListing
		if err := rows.Scan(&c.CountryCode, &c.CountryName); err != nil {
			return nil, fmt.Errorf("failed to scan country: %w", err)
		}
		countries = append(countries, c)
	}

	return countries, rows.Err()
}

func (r *PostgresRepository) DistinctCompanyTypeRows(ctx context.Context) ([]CompanyTypeRow, error) {
	query := `
		SELECT DISTINCT company_type, ca_type, cs_type
		FROM compliance_rules
		ORDER BY company_type
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list company types: %w", err)
	}
	defer rows.Close()

	var result []CompanyTypeRow
	for rows.Next() {
		var row CompanyTypeRow
		if err := rows.Scan(&row.CompanyType, &row.CAType, &row.CSType); err != nil {
			return nil, fmt.Errorf("failed to scan company type: %w", err)
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

func (r *PostgresRepository) DistinctDesignations(ctx context.Context) (*DesignationListing, error) {
	listing := &DesignationListing{}

	caQuery := `SELECT DISTINCT ca_type FROM compliance_rules WHERE ca_type IS NOT NULL ORDER BY ca_type`
	csQuery := `SELECT DISTINCT cs_type FROM compliance_rules WHERE cs_type IS NOT NULL ORDER BY cs_type`

	for _, q := range []struct {
		query string
		dest  *[]string
	}{
		{caQuery, &listing.CATypes},
		{csQuery, &listing.CSTypes},
	} {
		rows, err := r.db.QueryContext(ctx, q.query)
		if err != nil {
			return nil, fmt.Errorf("failed to list designations: %w", err)
		}

		for rows.Next() {
			var label string
			if err := rows.Scan(&label); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan designation: %w", err)
			}
			*q.dest = append(*q.dest, label)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return listing, nil
}

// CountryDesignation returns the first non-null CA and CS labels for a
// country. The lowest-id order makes the lookup deterministic when multiple
// distinct labels exist.
func (r *PostgresRepository) CountryDesignation(ctx context.Context, countryCode string) (*string, *string, error) {
	caQuery := `
		SELECT ca_type FROM compliance_rules
		WHERE country_code = $1 AND ca_type IS NOT NULL
		ORDER BY id LIMIT 1
	`
	csQuery := `
		SELECT cs_type FROM compliance_rules
		WHERE country_code = $1 AND cs_type IS NOT NULL
		ORDER BY id LIMIT 1
	`

	var caType, csType *string

	var ca string
	err := r.db.QueryRowContext(ctx, caQuery, countryCode).Scan(&ca)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("failed to look up CA designation: %w", err)
	}
	if err == nil {
		caType = &ca
	}

	var cs string
	err = r.db.QueryRowContext(ctx, csQuery, countryCode).Scan(&cs)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("failed to look up CS designation: %w", err)
	}
	if err == nil {
		csType = &cs
	}

	return caType, csType, nil
}

func (r *PostgresRepository) queryRules(ctx context.Context, query string, args ...interface{}) ([]ComplianceRule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []ComplianceRule
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		var rule ComplianceRule
		if err := scanRule(rows, &rule); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row rowScanner, rule *ComplianceRule) error {
	return row.Scan(
		&rule.ID, &rule.CountryCode, &rule.CountryName, &rule.CAType, &rule.CSType,
		&rule.CompanyType, &rule.ComplianceName, &rule.Description,
		&rule.Frequency, &rule.VerificationRequired, &rule.CreatedAt, &rule.UpdatedAt,
	)
}
