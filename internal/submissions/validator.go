package submissions

import (
	"fmt"
	"strings"
)

var operationTypes = map[string]bool{
	OperationParent:        true,
	OperationSubsidiary:    true,
	OperationInternational: true,
}

func ValidateCreateSubmission(req CreateSubmissionRequest) error {
	required := []struct {
		name  string
		value string
	}{
		{"submitter_name", req.SubmitterName},
		{"submitter_email", req.SubmitterEmail},
		{"company_name", req.CompanyName},
		{"company_type", req.CompanyType},
		{"country_code", req.CountryCode},
		{"country_name", req.CountryName},
		{"compliance_name", req.ComplianceName},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s is required", field.name)
		}
	}

	if !strings.Contains(req.SubmitterEmail, "@") {
		return fmt.Errorf("submitter_email must be a valid email address")
	}

	if req.OperationType != "" && !operationTypes[req.OperationType] {
		return fmt.Errorf("operation_type must be one of parent, subsidiary, international")
	}

	return nil
}
