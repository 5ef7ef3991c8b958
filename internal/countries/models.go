package countries

import "time"

// Country is a first-class jurisdiction record. The rule store's
// country-setup sentinel rows remain the compatibility path for older
// consumers; this table is the authoritative source going forward.
type Country struct {
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	CAType    *string   `json:"ca_type,omitempty" db:"ca_type"`
	CSType    *string   `json:"cs_type,omitempty" db:"cs_type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type AddCountryRequest struct {
	Code    string   `json:"code" binding:"required"`
	Name    string   `json:"name" binding:"required"`
	CATypes []string `json:"ca_types"`
	CSTypes []string `json:"cs_types"`
}

// Designation is the per-country answer to "which professional roles
// verify obligations here".
type Designation struct {
	CountryCode string  `json:"country_code"`
	CAType      *string `json:"ca_type"`
	CSType      *string `json:"cs_type"`
	Source      string  `json:"source"`
}

const (
	DesignationSourceRegistry = "registry"
	DesignationSourceRules    = "rules"
	DesignationSourceFallback = "fallback"
)
