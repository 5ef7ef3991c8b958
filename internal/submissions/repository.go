package submissions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Repository interface {
	Create(ctx context.Context, sub *Submission) error
	Get(ctx context.Context, id int64) (*Submission, error)
	List(ctx context.Context, status string) ([]Submission, error)
	MarkUnderReview(ctx context.Context, id int64, reviewedBy string) error
	Reject(ctx context.Context, id int64, notes, reviewedBy string) error
	ApproveAndPromote(ctx context.Context, sub *Submission, notes, reviewedBy string) (int64, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*Stats, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

const submissionColumns = `id, submitter_name, submitter_email, submitter_role, company_name,
		company_type, operation_type, country_code, country_name, compliance_name,
		compliance_description, frequency, verification_required, status, review_notes,
		reviewed_by, promoted_rule_id, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, sub *Submission) error {
	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	sub.Status = StatusPending

	query := `
		INSERT INTO compliance_submissions (submitter_name, submitter_email, submitter_role,
			company_name, company_type, operation_type, country_code, country_name,
			compliance_name, compliance_description, frequency, verification_required,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		sub.SubmitterName, sub.SubmitterEmail, sub.SubmitterRole,
		sub.CompanyName, sub.CompanyType, sub.OperationType,
		sub.CountryCode, sub.CountryName, sub.ComplianceName, sub.Description,
		sub.Frequency, sub.VerificationRequired, sub.Status, sub.CreatedAt, sub.UpdatedAt,
	).Scan(&sub.ID)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM compliance_submissions
		WHERE id = $1
	`

	var sub Submission
	err := scanSubmission(r.db.QueryRowContext(ctx, query, id), &sub)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("submission not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return &sub, nil
}

func (r *PostgresRepository) List(ctx context.Context, status string) ([]Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM compliance_submissions
	`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		var sub Submission
		if err := scanSubmission(rows, &sub); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

func (r *PostgresRepository) MarkUnderReview(ctx context.Context, id int64, reviewedBy string) error {
	query := `
		UPDATE compliance_submissions
		SET status = $1, reviewed_by = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`

	res, err := r.db.ExecContext(ctx, query, StatusUnderReview, reviewedBy, time.Now(), id, StatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark submission under review: %w", err)
	}

	return requireTransition(res)
}

func (r *PostgresRepository) Reject(ctx context.Context, id int64, notes, reviewedBy string) error {
	query := `
		UPDATE compliance_submissions
		SET status = $1, review_notes = $2, reviewed_by = $3, updated_at = $4
		WHERE id = $5 AND status IN ($6, $7)
	`

	res, err := r.db.ExecContext(ctx, query,
		StatusRejected, nullable(notes), reviewedBy, time.Now(), id, StatusPending, StatusUnderReview)
	if err != nil {
		return fmt.Errorf("failed to reject submission: %w", err)
	}

	return requireTransition(res)
}

// ApproveAndPromote copies the submission's compliance fields into a new
// rule row and flips the submission to approved in one transaction. Both
// writes succeed or neither does; on failure the submission keeps its prior
// status. The new rule's id is recorded on the submission for provenance.
func (r *PostgresRepository) ApproveAndPromote(ctx context.Context, sub *Submission, notes, reviewedBy string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()

	insertRule := `
		INSERT INTO compliance_rules (country_code, country_name, company_type,
			compliance_name, compliance_description, frequency, verification_required,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id
	`

	var ruleID int64
	err = tx.QueryRowContext(ctx, insertRule,
		sub.CountryCode, sub.CountryName, sub.CompanyType,
		sub.ComplianceName, sub.Description, sub.Frequency, sub.VerificationRequired, now,
	).Scan(&ruleID)
	if err != nil {
		return 0, fmt.Errorf("failed to promote submission into rule store: %w", err)
	}

	updateSubmission := `
		UPDATE compliance_submissions
		SET status = $1, review_notes = $2, reviewed_by = $3, promoted_rule_id = $4, updated_at = $5
		WHERE id = $6 AND status IN ($7, $8)
	`

	res, err := tx.ExecContext(ctx, updateSubmission,
		StatusApproved, nullable(notes), reviewedBy, ruleID, now,
		sub.ID, StatusPending, StatusUnderReview)
	if err != nil {
		return 0, fmt.Errorf("failed to approve submission: %w", err)
	}
	if err := requireTransition(res); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit approval: %w", err)
	}

	return ruleID, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM compliance_submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("submission not found")
	}

	return nil
}

func (r *PostgresRepository) Stats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT status, COUNT(*)
		FROM compliance_submissions
		GROUP BY status
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate submission stats: %w", err)
	}
	defer rows.Close()

	stats := &Stats{}
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan submission stats: %w", err)
		}

		stats.Total += count
		switch status {
		case StatusPending:
			stats.Pending = count
		case StatusUnderReview:
			stats.UnderReview = count
		case StatusApproved:
			stats.Approved = count
		case StatusRejected:
			stats.Rejected = count
		}
	}

	return stats, rows.Err()
}

// requireTransition maps a zero-row update to an error: the submission is
// either gone or already in a terminal status.
func requireTransition(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("submission not found or not in a reviewable status")
	}
	return nil
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row rowScanner, sub *Submission) error {
	return row.Scan(
		&sub.ID, &sub.SubmitterName, &sub.SubmitterEmail, &sub.SubmitterRole,
		&sub.CompanyName, &sub.CompanyType, &sub.OperationType,
		&sub.CountryCode, &sub.CountryName, &sub.ComplianceName, &sub.Description,
		&sub.Frequency, &sub.VerificationRequired, &sub.Status, &sub.ReviewNotes,
		&sub.ReviewedBy, &sub.PromotedRuleID, &sub.CreatedAt, &sub.UpdatedAt,
	)
}
