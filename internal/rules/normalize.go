package rules

import (
	"fmt"
	"strings"
)

// NormalizationWarning records a value that could not be mapped onto one of
// the fixed enumerations and was defaulted instead of rejected.
type NormalizationWarning struct {
	Row     int    `json:"row,omitempty"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	Applied string `json:"applied"`
	Message string `json:"message"`
}

// NormalizeFrequency maps free-text recurrence onto the fixed enumeration.
// Unrecognized input defaults to annual.
func NormalizeFrequency(raw string) (string, *NormalizationWarning) {
	v := strings.ToLower(strings.TrimSpace(raw))

	switch {
	case v == FrequencyFirstYear || v == "first year" || v == "firstyear" || v == "first-year only":
		return FrequencyFirstYear, nil
	case v == FrequencyMonthly:
		return FrequencyMonthly, nil
	case v == FrequencyQuarterly:
		return FrequencyQuarterly, nil
	case v == FrequencyAnnual || v == "annually" || v == "yearly":
		return FrequencyAnnual, nil
	case v == "":
		return FrequencyAnnual, nil
	}

	return FrequencyAnnual, &NormalizationWarning{
		Field:   "frequency",
		Value:   raw,
		Applied: FrequencyAnnual,
		Message: fmt.Sprintf("unrecognized frequency %q, defaulted to %q", raw, FrequencyAnnual),
	}
}

var caSynonyms = []string{
	"chartered accountant",
	"accountant",
	"auditor",
	"cpa",
	"tax advisor",
	"tax adviser",
	"tax consultant",
	"ca",
}

var csSynonyms = []string{
	"company secretary",
	"secretary",
	"legal",
	"lawyer",
	"governance",
	"compliance officer",
	"cs",
}

// NormalizeVerification maps a free-text verification-role description onto
// {CA, CS, both} by case-insensitive substring matching. Mentions of both
// synonym sets, or an explicit "both", map to both; anything unrecognized
// defaults to both.
func NormalizeVerification(raw string) (string, *NormalizationWarning) {
	v := strings.ToLower(strings.TrimSpace(raw))

	if v == "" || v == "both" || strings.Contains(v, "both") {
		return VerificationBoth, nil
	}

	mentionsCA := containsAny(v, caSynonyms)
	mentionsCS := containsAny(v, csSynonyms)

	switch {
	case mentionsCA && mentionsCS:
		return VerificationBoth, nil
	case mentionsCA:
		return VerificationCA, nil
	case mentionsCS:
		return VerificationCS, nil
	}

	return VerificationBoth, &NormalizationWarning{
		Field:   "verification_required",
		Value:   raw,
		Applied: VerificationBoth,
		Message: fmt.Sprintf("unrecognized verification role %q, defaulted to %q", raw, VerificationBoth),
	}
}

func containsAny(v string, terms []string) bool {
	for _, term := range terms {
		if len(term) <= 2 {
			// Short tokens like "ca" match whole words only, otherwise
			// "american" would count as a CA mention.
			for _, word := range strings.FieldsFunc(v, func(r rune) bool {
				return r == ' ' || r == ',' || r == '/' || r == '&' || r == '(' || r == ')'
			}) {
				if word == term {
					return true
				}
			}
			continue
		}
		if strings.Contains(v, term) {
			return true
		}
	}
	return false
}

// IsSentinelCompanyType reports whether a company-type string belongs to a
// country-setup row rather than a real obligation. Sentinel rows must not
// surface in company-type listings shown to end users.
func IsSentinelCompanyType(companyType string, caType, csType *string) bool {
	v := strings.ToLower(companyType)
	if strings.Contains(v, "setup") || strings.Contains(v, "ca type") || strings.Contains(v, "cs type") {
		return true
	}
	if caType != nil && companyType == *caType {
		return true
	}
	if csType != nil && companyType == *csType {
		return true
	}
	return false
}
