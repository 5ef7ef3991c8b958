package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFrequency(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantWarn bool
	}{
		{"exact annual", "annual", FrequencyAnnual, false},
		{"exact monthly", "monthly", FrequencyMonthly, false},
		{"exact quarterly", "quarterly", FrequencyQuarterly, false},
		{"first-year", "first-year", FrequencyFirstYear, false},
		{"first year spaced", "First Year", FrequencyFirstYear, false},
		{"yearly synonym", "Yearly", FrequencyAnnual, false},
		{"annually synonym", "annually", FrequencyAnnual, false},
		{"case insensitive", "MONTHLY", FrequencyMonthly, false},
		{"empty defaults silently", "", FrequencyAnnual, false},
		{"unrecognized defaults with warning", "Biannual", FrequencyAnnual, true},
		{"garbage defaults with warning", "whenever", FrequencyAnnual, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warn := NormalizeFrequency(tt.input)
			assert.Equal(t, tt.expected, got)
			if tt.wantWarn {
				require.NotNil(t, warn)
				assert.Equal(t, "frequency", warn.Field)
				assert.Equal(t, tt.input, warn.Value)
				assert.Equal(t, tt.expected, warn.Applied)
			} else {
				assert.Nil(t, warn)
			}
		})
	}
}

func TestNormalizeVerification(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantWarn bool
	}{
		{"chartered accountant maps to CA", "Chartered Accountant", VerificationCA, false},
		{"company secretary maps to CS", "Company Secretary", VerificationCS, false},
		{"cpa maps to CA", "CPA required", VerificationCA, false},
		{"auditor maps to CA", "external auditor", VerificationCA, false},
		{"tax advisor maps to CA", "Tax Advisor", VerificationCA, false},
		{"legal maps to CS", "legal counsel", VerificationCS, false},
		{"lawyer maps to CS", "company lawyer", VerificationCS, false},
		{"governance maps to CS", "governance officer", VerificationCS, false},
		{"explicit both", "both", VerificationBoth, false},
		{"both synonym sets map to both", "Tax advisor and legal advisor", VerificationBoth, false},
		{"ca and cs shorthand", "CA and CS", VerificationBoth, false},
		{"bare ca shorthand", "CA", VerificationCA, false},
		{"bare cs shorthand", "CS", VerificationCS, false},
		{"empty defaults silently", "", VerificationBoth, false},
		{"unrecognized defaults with warning", "notary public", VerificationBoth, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warn := NormalizeVerification(tt.input)
			assert.Equal(t, tt.expected, got)
			if tt.wantWarn {
				require.NotNil(t, warn)
				assert.Equal(t, "verification_required", warn.Field)
			} else {
				assert.Nil(t, warn)
			}
		})
	}
}

func TestNormalizeVerificationShortTokensMatchWholeWords(t *testing.T) {
	// "ca" must not match inside "scale" or "candidate".
	got, warn := NormalizeVerification("escalation candidate")
	assert.Equal(t, VerificationBoth, got)
	assert.NotNil(t, warn)
}

func TestIsSentinelCompanyType(t *testing.T) {
	ca := "CPA"
	cs := "CS"

	tests := []struct {
		name        string
		companyType string
		caType      *string
		csType      *string
		expected    bool
	}{
		{"setup marker", "Country Setup - CA Type", &ca, nil, true},
		{"lowercase setup marker", "country setup", nil, nil, true},
		{"ca type marker", "CA Type", &ca, nil, true},
		{"cs type marker", "cs type row", nil, &cs, true},
		{"matches own ca label", "CPA", &ca, nil, true},
		{"matches own cs label", "CS", nil, &cs, true},
		{"regular company type", "Private Limited", &ca, &cs, false},
		{"llc", "LLC", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsSentinelCompanyType(tt.companyType, tt.caType, tt.csType))
		})
	}
}
