package submissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRequest() CreateSubmissionRequest {
	return CreateSubmissionRequest{
		SubmitterName:  "Asha Mehta",
		SubmitterEmail: "asha@example.com",
		CompanyName:    "Acme Ventures",
		CompanyType:    "Private Limited",
		CountryCode:    "IN",
		CountryName:    "India",
		ComplianceName: "Board Meeting Minutes",
	}
}

func TestValidateCreateSubmission(t *testing.T) {
	assert.NoError(t, ValidateCreateSubmission(validRequest()))
}

func TestValidateCreateSubmissionRequiredFields(t *testing.T) {
	mutations := []func(*CreateSubmissionRequest){
		func(r *CreateSubmissionRequest) { r.SubmitterName = "" },
		func(r *CreateSubmissionRequest) { r.SubmitterEmail = " " },
		func(r *CreateSubmissionRequest) { r.CompanyName = "" },
		func(r *CreateSubmissionRequest) { r.CompanyType = "" },
		func(r *CreateSubmissionRequest) { r.CountryCode = "" },
		func(r *CreateSubmissionRequest) { r.CountryName = "" },
		func(r *CreateSubmissionRequest) { r.ComplianceName = "" },
	}

	for _, mutate := range mutations {
		req := validRequest()
		mutate(&req)
		assert.Error(t, ValidateCreateSubmission(req))
	}
}

func TestValidateCreateSubmissionEmail(t *testing.T) {
	req := validRequest()
	req.SubmitterEmail = "not-an-email"
	assert.Error(t, ValidateCreateSubmission(req))
}

func TestValidateCreateSubmissionOperationType(t *testing.T) {
	for _, op := range []string{OperationParent, OperationSubsidiary, OperationInternational, ""} {
		req := validRequest()
		req.OperationType = op
		assert.NoError(t, ValidateCreateSubmission(req))
	}

	req := validRequest()
	req.OperationType = "franchise"
	assert.Error(t, ValidateCreateSubmission(req))
}
