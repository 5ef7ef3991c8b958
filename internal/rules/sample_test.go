package rules

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleCSVParsesCleanly(t *testing.T) {
	fileName, content := SampleCSV()
	assert.Equal(t, "compliance_rules_sample.csv", fileName)

	parsed, err := ParseImport(bytes.NewReader(content))
	require.NoError(t, err)

	// The template must import without drops or warnings.
	assert.NotEmpty(t, parsed.Rows)
	assert.Empty(t, parsed.Warnings)

	for _, row := range parsed.Rows {
		assert.NotEmpty(t, row.Rule.CountryCode)
		assert.NotEmpty(t, row.Rule.ComplianceName)
		assert.Contains(t, []string{FrequencyFirstYear, FrequencyMonthly, FrequencyQuarterly, FrequencyAnnual}, row.Rule.Frequency)
		assert.Contains(t, []string{VerificationCA, VerificationCS, VerificationBoth}, row.Rule.VerificationRequired)
	}
}
