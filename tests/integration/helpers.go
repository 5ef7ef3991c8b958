package integration

import (
	"compass/internal/config"
	"compass/internal/logger"
	"compass/internal/rules"
	"compass/internal/submissions"
)

const containerStartupTimeout = 60

func createTestLogger() logger.Logger {
	return logger.NopLogger()
}

func createTestCircuitBreakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled: true,
	}
}

func createTestRuleRequest(countryCode, countryName, companyType, complianceName string) rules.CreateRuleRequest {
	return rules.CreateRuleRequest{
		CountryCode:          countryCode,
		CountryName:          countryName,
		CompanyType:          companyType,
		ComplianceName:       complianceName,
		Frequency:            rules.FrequencyAnnual,
		VerificationRequired: rules.VerificationBoth,
	}
}

func createTestSubmissionRequest(countryCode, countryName, companyType, complianceName string) submissions.CreateSubmissionRequest {
	return submissions.CreateSubmissionRequest{
		SubmitterName:        "Priya Nair",
		SubmitterEmail:       "priya.nair@example.com",
		CompanyName:          "Acme Holdings",
		CompanyType:          companyType,
		OperationType:        submissions.OperationParent,
		CountryCode:          countryCode,
		CountryName:          countryName,
		ComplianceName:       complianceName,
		Frequency:            rules.FrequencyMonthly,
		VerificationRequired: rules.VerificationCS,
	}
}

func strPtr(s string) *string {
	return &s
}
