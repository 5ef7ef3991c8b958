package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compass/internal/constants"
	"compass/internal/countries"
	"compass/internal/rules"
	"compass/internal/submissions"
)

// Exercises the full path from a user proposal to a queryable rule:
// register the country, submit an obligation, review and approve it, then
// query the rule store the way the public endpoints do.
func TestWorkflow_SubmissionToQueryableRule(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)
	ctx := context.Background()

	rulesRepo := rules.NewRepository(infra.PostgresDB)
	audit := rules.NewAuditLogger(infra.PostgresDB)

	rulesSvc := rules.NewService(rulesRepo, createTestLogger(), rules.WithAuditLogger(audit))
	countriesSvc := countries.NewService(countries.NewRepository(infra.PostgresDB), rulesRepo,
		createTestLogger(), countries.WithAuditLogger(audit))
	subsSvc := submissions.NewService(submissions.NewRepository(infra.PostgresDB), createTestLogger(),
		submissions.WithAuditLogger(audit))

	_, err := countriesSvc.AddCountry(ctx, countries.AddCountryRequest{
		Code:    "IN",
		Name:    "India",
		CATypes: []string{"Chartered Accountant"},
		CSTypes: []string{"Company Secretary"},
	})
	require.NoError(t, err)

	req := createTestSubmissionRequest("IN", "India", "Private Limited", "Board Meeting Minutes")
	req.Frequency = "Monthly"
	req.VerificationRequired = "Company Secretary"

	sub, err := subsSvc.Submit(ctx, req)
	require.NoError(t, err)

	_, err = subsSvc.StartReview(ctx, sub.ID)
	require.NoError(t, err)

	approved, err := subsSvc.Approve(ctx, sub.ID, "verified against MCA guidance")
	require.NoError(t, err)
	require.NotNil(t, approved.PromotedRuleID)

	// the promoted rule shows up in targeted queries
	matches, err := rulesSvc.ListRules(ctx, "IN", "Private Limited")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Board Meeting Minutes", matches[0].ComplianceName)
	assert.Equal(t, rules.FrequencyMonthly, matches[0].Frequency)
	assert.Equal(t, rules.VerificationCS, matches[0].VerificationRequired)
	assert.Equal(t, *approved.PromotedRuleID, matches[0].ID)

	// sentinel setup rows never leak into the company-type lookup
	types, err := rulesSvc.ListCompanyTypes(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Private Limited"}, types)

	// the designation lookup resolves from the registry
	designation, err := countriesSvc.GetDesignation(ctx, "IN")
	require.NoError(t, err)
	assert.Equal(t, countries.DesignationSourceRegistry, designation.Source)

	// promotion leaves an audit trail against the new rule
	logs, err := rulesSvc.GetAuditLogs(ctx, approved.PromotedRuleID, constants.DefaultLimit)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	assert.Equal(t, "promote", logs[0].Action)
}
