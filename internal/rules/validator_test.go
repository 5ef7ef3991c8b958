package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCreateRule(t *testing.T) {
	valid := CreateRuleRequest{
		CountryCode:    "IN",
		CountryName:    "India",
		CompanyType:    "Private Limited",
		ComplianceName: "Annual Return Filing",
	}
	assert.NoError(t, ValidateCreateRule(valid))

	missingCode := valid
	missingCode.CountryCode = "  "
	assert.Error(t, ValidateCreateRule(missingCode))

	longCode := valid
	longCode.CountryCode = "TOOLONGCODE"
	assert.Error(t, ValidateCreateRule(longCode))

	missingName := valid
	missingName.ComplianceName = ""
	assert.Error(t, ValidateCreateRule(missingName))
}
