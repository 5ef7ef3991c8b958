package integration

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compass/internal/constants"
	"compass/internal/rules"
	pkgerrors "compass/pkg/errors"
	"compass/pkg/logging"
)

func TestRulesService_CreateRule_NormalizesInput(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	svc := rules.NewService(rules.NewRepository(infra.PostgresDB), createTestLogger())
	ctx := context.Background()

	req := rules.CreateRuleRequest{
		CountryCode:          "  in ",
		CountryName:          " India ",
		CompanyType:          "Private Limited",
		ComplianceName:       "GST Return",
		Frequency:            "Yearly",
		VerificationRequired: "Chartered Accountant",
	}

	rule, err := svc.CreateRule(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "IN", rule.CountryCode)
	assert.Equal(t, "India", rule.CountryName)
	assert.Equal(t, rules.FrequencyAnnual, rule.Frequency)
	assert.Equal(t, rules.VerificationCA, rule.VerificationRequired)
}

func TestRulesService_CreateRule_ValidationError(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	svc := rules.NewService(rules.NewRepository(infra.PostgresDB), createTestLogger())

	req := rules.CreateRuleRequest{
		CountryCode:    "IN",
		CountryName:    "India",
		CompanyType:    "   ",
		ComplianceName: "GST Return",
	}

	_, err := svc.CreateRule(context.Background(), req)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestRulesService_ListRules_Filters(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	svc := rules.NewService(rules.NewRepository(infra.PostgresDB), createTestLogger())
	ctx := context.Background()

	_, err := svc.CreateRule(ctx, createTestRuleRequest("IN", "India", "Private Limited", "Annual Return Filing"))
	require.NoError(t, err)
	_, err = svc.CreateRule(ctx, createTestRuleRequest("IN", "India", "LLP", "Statement of Accounts"))
	require.NoError(t, err)
	_, err = svc.CreateRule(ctx, createTestRuleRequest("US", "United States", "LLC", "Franchise Tax Report"))
	require.NoError(t, err)

	all, err := svc.ListRules(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byCountry, err := svc.ListRules(ctx, "IN", "")
	require.NoError(t, err)
	assert.Len(t, byCountry, 2)

	byType, err := svc.ListRules(ctx, "", "LLP")
	require.NoError(t, err)
	assert.Len(t, byType, 1)

	byBoth, err := svc.ListRules(ctx, "IN", "Private Limited")
	require.NoError(t, err)
	require.Len(t, byBoth, 1)
	assert.Equal(t, "Annual Return Filing", byBoth[0].ComplianceName)
}

func TestRulesService_UpdateAndDelete(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := rules.NewRepository(infra.PostgresDB)
	svc := rules.NewService(repo, createTestLogger(),
		rules.WithAuditLogger(rules.NewAuditLogger(infra.PostgresDB)))
	ctx := context.Background()

	rule, err := svc.CreateRule(ctx, createTestRuleRequest("IN", "India", "Private Limited", "Annual Return Filing"))
	require.NoError(t, err)

	updated, err := svc.UpdateRule(ctx, rule.ID, rules.UpdateRuleRequest{
		CountryCode:          "IN",
		CountryName:          "India",
		CompanyType:          "Private Limited",
		ComplianceName:       "Annual Return Filing (MGT-7)",
		Frequency:            "Quarterly",
		VerificationRequired: "CS",
	})
	require.NoError(t, err)
	assert.Equal(t, "Annual Return Filing (MGT-7)", updated.ComplianceName)
	assert.Equal(t, rules.FrequencyQuarterly, updated.Frequency)

	require.NoError(t, svc.DeleteRule(ctx, rule.ID))

	_, err = svc.GetRule(ctx, rule.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))

	logs, err := svc.GetAuditLogs(ctx, &rule.ID, constants.DefaultLimit)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	// newest first
	assert.Equal(t, "delete", logs[0].Action)
	assert.Equal(t, "update", logs[1].Action)
	assert.Equal(t, "create", logs[2].Action)
}

func TestRulesService_AuditAttributionFromContext(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	svc := rules.NewService(rules.NewRepository(infra.PostgresDB), createTestLogger(),
		rules.WithAuditLogger(rules.NewAuditLogger(infra.PostgresDB)))
	ctx := logging.WithActor(context.Background(), "admin@example.com")

	rule, err := svc.CreateRule(ctx, createTestRuleRequest("IN", "India", "Private Limited", "Annual Return Filing"))
	require.NoError(t, err)

	logs, err := svc.GetAuditLogs(ctx, &rule.ID, constants.DefaultLimit)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "admin@example.com", logs[0].ChangedBy)

	// without an identity in the context the change is attributed to system
	require.NoError(t, svc.DeleteRule(context.Background(), rule.ID))
	logs, err = svc.GetAuditLogs(ctx, &rule.ID, constants.DefaultLimit)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "system", logs[0].ChangedBy)
}

func TestRulesService_ListCompanyTypes_FiltersSentinelRows(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	svc := rules.NewService(rules.NewRepository(infra.PostgresDB), createTestLogger())
	ctx := context.Background()

	_, err := svc.CreateRule(ctx, createTestRuleRequest("IN", "India", "Private Limited", "Annual Return Filing"))
	require.NoError(t, err)
	_, err = svc.CreateRule(ctx, createTestRuleRequest("IN", "India", "LLP", "Statement of Accounts"))
	require.NoError(t, err)

	// setup rows written by the add-country flow carry the designation
	// label as their company type
	setupReq := createTestRuleRequest("DE", "Germany", "Wirtschaftsprüfer", constants.SentinelCASetup)
	setupReq.CAType = strPtr("Wirtschaftsprüfer")
	_, err = svc.CreateRule(ctx, setupReq)
	require.NoError(t, err)

	types, err := svc.ListCompanyTypes(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Private Limited", "LLP"}, types)
}

func TestRulesService_Lookups_UseRedisCache(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, true)

	repo := rules.NewRepository(infra.PostgresDB)
	cache := rules.NewLookupCache(infra.RedisClient, createTestCircuitBreakerConfig(), 300)
	svc := rules.NewService(repo, createTestLogger(), rules.WithLookupCache(cache))
	ctx := context.Background()

	_, err := svc.CreateRule(ctx, createTestRuleRequest("IN", "India", "Private Limited", "Annual Return Filing"))
	require.NoError(t, err)

	countries, err := svc.ListCountries(ctx)
	require.NoError(t, err)
	require.Len(t, countries, 1)

	keys, err := infra.RedisClient.Keys(ctx, constants.CacheKeyPrefixLookup+"*").Result()
	require.NoError(t, err)
	assert.Contains(t, keys, constants.CacheKeyPrefixLookup+"countries")

	// served from cache on the second call
	cached, err := svc.ListCountries(ctx)
	require.NoError(t, err)
	assert.Equal(t, countries, cached)

	// a mutation invalidates every lookup key
	_, err = svc.CreateRule(ctx, createTestRuleRequest("SG", "Singapore", "Private Limited", "Annual General Meeting"))
	require.NoError(t, err)

	keys, err = infra.RedisClient.Keys(ctx, constants.CacheKeyPrefixLookup+"*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)

	refreshed, err := svc.ListCountries(ctx)
	require.NoError(t, err)
	assert.Len(t, refreshed, 2)
}

func TestRulesService_ImportRules(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, true, false)

	repo := rules.NewRepository(infra.PostgresDB)
	reports := rules.NewReportRepository(infra.MongoDB)
	svc := rules.NewService(repo, createTestLogger(), rules.WithImportReports(reports))
	ctx := context.Background()

	csv := strings.Join([]string{
		"Country Code,Country Name,CA Type,CS Type,Company Type,Compliance Name,Compliance Description,Frequency,Verification Required",
		"IN,India,Chartered Accountant,Company Secretary,Private Limited,Annual Return Filing,File MGT-7,Annual,Both",
		"US,United States,CPA,,LLC,Franchise Tax Report,,Yearly,CA",
		",India,,,LLP,Orphan Row,,Monthly,CS",
		"TOOLONGCODE,Nowhere,,,LLP,Oversized Code,,Monthly,CS",
	}, "\n")

	result, err := svc.ImportRules(ctx, "rules.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Row)
	require.NotEmpty(t, result.Warnings)
	assert.NotEmpty(t, result.ReportID)

	stored, err := svc.ListRules(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	report, err := svc.GetImportReport(ctx, result.ReportID)
	require.NoError(t, err)
	assert.Equal(t, "rules.csv", report.FileName)
	assert.Equal(t, 2, report.SuccessCount)
	assert.Equal(t, 1, report.ErrorCount)

	list, err := svc.ListImportReports(ctx, constants.DefaultLimit)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, report.ID, list[0].ID)
}

func TestRulesService_ImportRules_SampleRoundTrip(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	svc := rules.NewService(rules.NewRepository(infra.PostgresDB), createTestLogger())
	ctx := context.Background()

	fileName, content := rules.SampleCSV()
	result, err := svc.ImportRules(ctx, fileName, bytes.NewReader(content))
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 7, result.Success)
}
