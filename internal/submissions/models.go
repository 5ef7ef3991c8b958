package submissions

import "time"

// Submission statuses. pending may move to under_review, approved or
// rejected; under_review may move to approved or rejected. Nothing moves
// back to pending.
const (
	StatusPending     = "pending"
	StatusUnderReview = "under_review"
	StatusApproved    = "approved"
	StatusRejected    = "rejected"
)

// Operation types describe which arm of the submitter's business the
// proposed obligation applies to.
const (
	OperationParent        = "parent"
	OperationSubsidiary    = "subsidiary"
	OperationInternational = "international"
)

// Submission is a proposed compliance obligation awaiting admin review.
type Submission struct {
	ID                   int64     `json:"id" db:"id"`
	SubmitterName        string    `json:"submitter_name" db:"submitter_name"`
	SubmitterEmail       string    `json:"submitter_email" db:"submitter_email"`
	SubmitterRole        *string   `json:"submitter_role,omitempty" db:"submitter_role"`
	CompanyName          string    `json:"company_name" db:"company_name"`
	CompanyType          string    `json:"company_type" db:"company_type"`
	OperationType        string    `json:"operation_type" db:"operation_type"`
	CountryCode          string    `json:"country_code" db:"country_code"`
	CountryName          string    `json:"country_name" db:"country_name"`
	ComplianceName       string    `json:"compliance_name" db:"compliance_name"`
	Description          *string   `json:"compliance_description,omitempty" db:"compliance_description"`
	Frequency            string    `json:"frequency" db:"frequency"`
	VerificationRequired string    `json:"verification_required" db:"verification_required"`
	Status               string    `json:"status" db:"status"`
	ReviewNotes          *string   `json:"review_notes,omitempty" db:"review_notes"`
	ReviewedBy           *string   `json:"reviewed_by,omitempty" db:"reviewed_by"`
	PromotedRuleID       *int64    `json:"promoted_rule_id,omitempty" db:"promoted_rule_id"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

type CreateSubmissionRequest struct {
	SubmitterName        string  `json:"submitter_name" binding:"required"`
	SubmitterEmail       string  `json:"submitter_email" binding:"required"`
	SubmitterRole        *string `json:"submitter_role"`
	CompanyName          string  `json:"company_name" binding:"required"`
	CompanyType          string  `json:"company_type" binding:"required"`
	OperationType        string  `json:"operation_type"`
	CountryCode          string  `json:"country_code" binding:"required"`
	CountryName          string  `json:"country_name" binding:"required"`
	ComplianceName       string  `json:"compliance_name" binding:"required"`
	Description          *string `json:"compliance_description"`
	Frequency            string  `json:"frequency"`
	VerificationRequired string  `json:"verification_required"`
}

type ReviewRequest struct {
	Notes string `json:"notes"`
}

// Stats aggregates submission counts by status.
type Stats struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	UnderReview int `json:"under_review"`
	Approved    int `json:"approved"`
	Rejected    int `json:"rejected"`
}
