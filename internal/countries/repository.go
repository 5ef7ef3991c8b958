package countries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"compass/internal/rules"
)

type Repository interface {
	Register(ctx context.Context, country *Country, setupRules []rules.ComplianceRule) error
	Get(ctx context.Context, code string) (*Country, error)
	List(ctx context.Context) ([]Country, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

// Register upserts the country and inserts its setup rule rows in one
// transaction; a failed insert leaves neither a registered country nor
// partial setup rows behind.
func (r *PostgresRepository) Register(ctx context.Context, country *Country, setupRules []rules.ComplianceRule) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	country.UpdatedAt = now

	upsert := `
		INSERT INTO countries (code, name, ca_type, cs_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (code) DO UPDATE
		SET name = EXCLUDED.name,
			ca_type = EXCLUDED.ca_type,
			cs_type = EXCLUDED.cs_type,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := tx.ExecContext(ctx, upsert,
		country.Code, country.Name, country.CAType, country.CSType, now,
	); err != nil {
		return fmt.Errorf("failed to upsert country: %w", err)
	}

	insertRule := `
		INSERT INTO compliance_rules (country_code, country_name, ca_type, cs_type,
			company_type, compliance_name, compliance_description, frequency,
			verification_required, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`
	for _, rule := range setupRules {
		if _, err := tx.ExecContext(ctx, insertRule,
			rule.CountryCode, rule.CountryName, rule.CAType, rule.CSType,
			rule.CompanyType, rule.ComplianceName, rule.Description,
			rule.Frequency, rule.VerificationRequired, now,
		); err != nil {
			return fmt.Errorf("failed to write setup rule for %q: %w", rule.CompanyType, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit country registration: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, code string) (*Country, error) {
	query := `
		SELECT code, name, ca_type, cs_type, created_at, updated_at
		FROM countries
		WHERE code = $1
	`

	var country Country
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&country.Code, &country.Name, &country.CAType, &country.CSType,
		&country.CreatedAt, &country.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get country: %w", err)
	}

	return &country, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Country, error) {
	query := `
		SELECT code, name, ca_type, cs_type, created_at, updated_at
		FROM countries
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	defer rows.Close()

	var result []Country
	for rows.Next() {
		var country Country
		if err := rows.Scan(&country.Code, &country.Name, &country.CAType, &country.CSType,
			&country.CreatedAt, &country.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan country: %w", err)
		}
		result = append(result, country)
	}

	return result, rows.Err()
}
