package rules

import "time"

// Frequency is how often an obligation recurs.
const (
	FrequencyFirstYear = "first-year"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
	FrequencyAnnual    = "annual"
)

// Verification names which professional role must sign off an obligation.
const (
	VerificationCA   = "CA"
	VerificationCS   = "CS"
	VerificationBoth = "both"
)

// ComplianceRule is one regulatory obligation applicable to a
// (country, company type) pair.
type ComplianceRule struct {
	ID                   int64     `json:"id" db:"id"`
	CountryCode          string    `json:"country_code" db:"country_code"`
	CountryName          string    `json:"country_name" db:"country_name"`
	CAType               *string   `json:"ca_type,omitempty" db:"ca_type"`
	CSType               *string   `json:"cs_type,omitempty" db:"cs_type"`
	CompanyType          string    `json:"company_type" db:"company_type"`
	ComplianceName       string    `json:"compliance_name" db:"compliance_name"`
	Description          *string   `json:"compliance_description,omitempty" db:"compliance_description"`
	Frequency            string    `json:"frequency" db:"frequency"`
	VerificationRequired string    `json:"verification_required" db:"verification_required"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

type CreateRuleRequest struct {
	CountryCode          string  `json:"country_code" binding:"required"`
	CountryName          string  `json:"country_name" binding:"required"`
	CAType               *string `json:"ca_type"`
	CSType               *string `json:"cs_type"`
	CompanyType          string  `json:"company_type" binding:"required"`
	ComplianceName       string  `json:"compliance_name" binding:"required"`
	Description          *string `json:"compliance_description"`
	Frequency            string  `json:"frequency"`
	VerificationRequired string  `json:"verification_required"`
}

// UpdateRuleRequest overwrites every field of an existing rule; there are no
// partial-patch semantics.
type UpdateRuleRequest struct {
	CountryCode          string  `json:"country_code" binding:"required"`
	CountryName          string  `json:"country_name" binding:"required"`
	CAType               *string `json:"ca_type"`
	CSType               *string `json:"cs_type"`
	CompanyType          string  `json:"company_type" binding:"required"`
	ComplianceName       string  `json:"compliance_name" binding:"required"`
	Description          *string `json:"compliance_description"`
	Frequency            string  `json:"frequency"`
	VerificationRequired string  `json:"verification_required"`
}

// CountryListing is the projection used to populate country dropdowns.
type CountryListing struct {
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name"`
}

// DesignationListing is the deduplicated set of professional-designation
// labels present in the rule store.
type DesignationListing struct {
	CATypes []string `json:"ca_types"`
	CSTypes []string `json:"cs_types"`
}
