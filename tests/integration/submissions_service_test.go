package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compass/internal/rules"
	"compass/internal/submissions"
	pkgerrors "compass/pkg/errors"
)

func TestSubmissionsService_Submit(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	svc := submissions.NewService(submissions.NewRepository(infra.PostgresDB), createTestLogger())
	ctx := context.Background()

	req := createTestSubmissionRequest("IN", "India", "Private Limited", "Board Meeting Minutes")
	req.Frequency = "Bimonthly"
	req.VerificationRequired = "Company Secretary"
	req.OperationType = ""

	sub, err := svc.Submit(ctx, req)
	require.NoError(t, err)
	assert.NotZero(t, sub.ID)
	assert.Equal(t, submissions.StatusPending, sub.Status)
	assert.Equal(t, submissions.OperationParent, sub.OperationType)
	// unknown frequency defaults, designation phrase maps to CS
	assert.Equal(t, rules.FrequencyAnnual, sub.Frequency)
	assert.Equal(t, rules.VerificationCS, sub.VerificationRequired)
}

func TestSubmissionsService_Submit_ValidationError(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	svc := submissions.NewService(submissions.NewRepository(infra.PostgresDB), createTestLogger())

	req := createTestSubmissionRequest("IN", "India", "Private Limited", "Board Meeting Minutes")
	req.SubmitterEmail = "not-an-email"

	_, err := svc.Submit(context.Background(), req)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestSubmissionsService_ApproveAndPromote(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	rulesRepo := rules.NewRepository(infra.PostgresDB)
	svc := submissions.NewService(submissions.NewRepository(infra.PostgresDB), createTestLogger(),
		submissions.WithAuditLogger(rules.NewAuditLogger(infra.PostgresDB)))
	ctx := context.Background()

	sub, err := svc.Submit(ctx, createTestSubmissionRequest("IN", "India", "Private Limited", "Board Meeting Minutes"))
	require.NoError(t, err)

	reviewed, err := svc.StartReview(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, submissions.StatusUnderReview, reviewed.Status)

	approved, err := svc.Approve(ctx, sub.ID, "looks correct")
	require.NoError(t, err)
	assert.Equal(t, submissions.StatusApproved, approved.Status)
	require.NotNil(t, approved.PromotedRuleID)
	require.NotNil(t, approved.ReviewNotes)
	assert.Equal(t, "looks correct", *approved.ReviewNotes)

	// the promoted rule carries the submission's compliance fields
	rule, err := rulesRepo.GetRule(ctx, *approved.PromotedRuleID)
	require.NoError(t, err)
	assert.Equal(t, "IN", rule.CountryCode)
	assert.Equal(t, "Private Limited", rule.CompanyType)
	assert.Equal(t, "Board Meeting Minutes", rule.ComplianceName)
	assert.Equal(t, rules.FrequencyMonthly, rule.Frequency)
	assert.Equal(t, rules.VerificationCS, rule.VerificationRequired)

	// approving twice loses the status race
	_, err = svc.Approve(ctx, sub.ID, "again")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestSubmissionsService_ApproveInvalidatesLookupCache(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, true)

	rulesRepo := rules.NewRepository(infra.PostgresDB)
	cache := rules.NewLookupCache(infra.RedisClient, createTestCircuitBreakerConfig(), 300)
	rulesSvc := rules.NewService(rulesRepo, createTestLogger(), rules.WithLookupCache(cache))
	subsSvc := submissions.NewService(submissions.NewRepository(infra.PostgresDB), createTestLogger(),
		submissions.WithLookupCache(cache))
	ctx := context.Background()

	_, err := rulesSvc.CreateRule(ctx, rules.CreateRuleRequest{
		CountryCode:          "IN",
		CountryName:          "India",
		CompanyType:          "LLP",
		ComplianceName:       "Statement of Accounts",
		Frequency:            rules.FrequencyAnnual,
		VerificationRequired: rules.VerificationBoth,
	})
	require.NoError(t, err)

	// warm the lookup cache
	countries, err := rulesSvc.ListCountries(ctx)
	require.NoError(t, err)
	require.Len(t, countries, 1)

	sub, err := subsSvc.Submit(ctx, createTestSubmissionRequest("SG", "Singapore", "Private Limited", "Annual General Meeting"))
	require.NoError(t, err)
	_, err = subsSvc.Approve(ctx, sub.ID, "")
	require.NoError(t, err)

	// the promoted rule's country is visible without waiting out the TTL
	refreshed, err := rulesSvc.ListCountries(ctx)
	require.NoError(t, err)
	assert.Len(t, refreshed, 2)
}

func TestSubmissionsService_Reject_CreatesNoRule(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	rulesRepo := rules.NewRepository(infra.PostgresDB)
	svc := submissions.NewService(submissions.NewRepository(infra.PostgresDB), createTestLogger())
	ctx := context.Background()

	sub, err := svc.Submit(ctx, createTestSubmissionRequest("IN", "India", "Private Limited", "Board Meeting Minutes"))
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, sub.ID, "duplicate of an existing obligation")
	require.NoError(t, err)
	assert.Equal(t, submissions.StatusRejected, rejected.Status)
	assert.Nil(t, rejected.PromotedRuleID)

	all, err := rulesRepo.ListRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	// rejected submissions are terminal
	_, err = svc.StartReview(ctx, sub.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))

	_, err = svc.Approve(ctx, sub.ID, "")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestSubmissionsService_ListAndStats(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	svc := submissions.NewService(submissions.NewRepository(infra.PostgresDB), createTestLogger())
	ctx := context.Background()

	first, err := svc.Submit(ctx, createTestSubmissionRequest("IN", "India", "Private Limited", "Board Meeting Minutes"))
	require.NoError(t, err)
	second, err := svc.Submit(ctx, createTestSubmissionRequest("US", "United States", "LLC", "Franchise Tax Report"))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, createTestSubmissionRequest("SG", "Singapore", "Private Limited", "Annual General Meeting"))
	require.NoError(t, err)

	_, err = svc.Approve(ctx, first.ID, "")
	require.NoError(t, err)
	_, err = svc.Reject(ctx, second.ID, "out of scope")
	require.NoError(t, err)

	pending, err := svc.List(ctx, submissions.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.List(ctx, "bogus")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Approved)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 0, stats.UnderReview)
}

func TestSubmissionsService_Delete(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	svc := submissions.NewService(submissions.NewRepository(infra.PostgresDB), createTestLogger())
	ctx := context.Background()

	sub, err := svc.Submit(ctx, createTestSubmissionRequest("IN", "India", "Private Limited", "Board Meeting Minutes"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, sub.ID))

	_, err = svc.Get(ctx, sub.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))

	err = svc.Delete(ctx, sub.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}
