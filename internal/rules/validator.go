package rules

import (
	"fmt"
	"strings"
)

const maxCountryCodeLength = 8

func ValidateCreateRule(req CreateRuleRequest) error {
	return validateRuleFields(req.CountryCode, req.CountryName, req.CompanyType, req.ComplianceName)
}

func ValidateUpdateRule(req UpdateRuleRequest) error {
	return validateRuleFields(req.CountryCode, req.CountryName, req.CompanyType, req.ComplianceName)
}

func validateRuleFields(countryCode, countryName, companyType, complianceName string) error {
	if strings.TrimSpace(countryCode) == "" {
		return fmt.Errorf("country_code is required")
	}
	if len(strings.TrimSpace(countryCode)) > maxCountryCodeLength {
		return fmt.Errorf("country_code must be at most %d characters", maxCountryCodeLength)
	}
	if strings.TrimSpace(countryName) == "" {
		return fmt.Errorf("country_name is required")
	}
	if strings.TrimSpace(companyType) == "" {
		return fmt.Errorf("company_type is required")
	}
	if strings.TrimSpace(complianceName) == "" {
		return fmt.Errorf("compliance_name is required")
	}
	return nil
}
