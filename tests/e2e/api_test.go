package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compass/internal/countries"
	"compass/internal/rules"
	"compass/internal/submissions"
)

const (
	complianceServiceURL = "http://localhost:8080"
)

func TestComplianceServiceHealth(t *testing.T) {
	url := fmt.Sprintf("%s/health", complianceServiceURL)
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&health)
	require.NoError(t, err)
	assert.NotNil(t, health["status"])
}

func TestComplianceRulesCRUD(t *testing.T) {
	createReq := rules.CreateRuleRequest{
		CountryCode:          "IN",
		CountryName:          "India",
		CAType:               stringPtr("Chartered Accountant"),
		CSType:               stringPtr("Company Secretary"),
		CompanyType:          "Private Limited",
		ComplianceName:       "Annual Return Filing",
		Frequency:            "annual",
		VerificationRequired: "both",
	}

	created := createRule(t, createReq)
	defer deleteRule(t, created.ID)

	rule := getRule(t, created.ID)
	assert.Equal(t, createReq.CountryCode, rule.CountryCode)
	assert.Equal(t, createReq.CompanyType, rule.CompanyType)
	assert.Equal(t, createReq.ComplianceName, rule.ComplianceName)

	list := listRules(t, "IN", "Private Limited")
	found := false
	for _, r := range list {
		if r.ID == created.ID {
			found = true
			break
		}
	}
	assert.True(t, found, "created rule should be in the filtered list")

	updateReq := rules.UpdateRuleRequest{
		CountryCode:          "IN",
		CountryName:          "India",
		CompanyType:          "Private Limited",
		ComplianceName:       "Annual Return Filing (MGT-7)",
		Frequency:            "quarterly",
		VerificationRequired: "CS",
	}
	updated := updateRule(t, created.ID, updateReq)
	assert.Equal(t, "Annual Return Filing (MGT-7)", updated.ComplianceName)
	assert.Equal(t, "quarterly", updated.Frequency)
	assert.Equal(t, "CS", updated.VerificationRequired)
}

func TestComplianceRuleValidationErrors(t *testing.T) {
	resp := createRuleWithError(t, rules.CreateRuleRequest{
		CountryCode: "IN",
		CountryName: "India",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	getResp, err := http.Get(fmt.Sprintf("%s/api/v1/rules/not-a-number", complianceServiceURL))
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, getResp.StatusCode)

	missing, err := http.Get(fmt.Sprintf("%s/api/v1/rules/999999999", complianceServiceURL))
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestLookupEndpoints(t *testing.T) {
	created := createRule(t, rules.CreateRuleRequest{
		CountryCode:          "SG",
		CountryName:          "Singapore",
		CAType:               stringPtr("Chartered Accountant (Singapore)"),
		CompanyType:          "Private Limited",
		ComplianceName:       "Annual General Meeting",
		Frequency:            "annual",
		VerificationRequired: "CA",
	})
	defer deleteRule(t, created.ID)

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/rules/countries", complianceServiceURL))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var countryList []rules.CountryListing
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&countryList))
	found := false
	for _, c := range countryList {
		if c.CountryCode == "SG" {
			found = true
			break
		}
	}
	assert.True(t, found, "SG should appear in the country lookup")

	typesResp, err := http.Get(fmt.Sprintf("%s/api/v1/rules/company-types", complianceServiceURL))
	require.NoError(t, err)
	defer typesResp.Body.Close()
	require.Equal(t, http.StatusOK, typesResp.StatusCode)

	var types []string
	require.NoError(t, json.NewDecoder(typesResp.Body).Decode(&types))
	assert.Contains(t, types, "Private Limited")

	desigResp, err := http.Get(fmt.Sprintf("%s/api/v1/rules/designations", complianceServiceURL))
	require.NoError(t, err)
	defer desigResp.Body.Close()
	require.Equal(t, http.StatusOK, desigResp.StatusCode)

	var designations rules.DesignationListing
	require.NoError(t, json.NewDecoder(desigResp.Body).Decode(&designations))
	assert.Contains(t, designations.CATypes, "Chartered Accountant (Singapore)")
}

func TestBulkImport(t *testing.T) {
	csv := strings.Join([]string{
		"Country Code,Country Name,CA Type,CS Type,Company Type,Compliance Name,Compliance Description,Frequency,Verification Required",
		"NZ,New Zealand,Chartered Accountant,,Limited Company,Annual Return,,Annual,CA",
	}, "\n")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "rules.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp, err := http.Post(
		fmt.Sprintf("%s/api/v1/rules/import", complianceServiceURL),
		writer.FormDataContentType(),
		&buf,
	)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result rules.ImportResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 1, result.Success)
	assert.Empty(t, result.Errors)

	imported := listRules(t, "NZ", "")
	require.Len(t, imported, 1)
	defer deleteRule(t, imported[0].ID)
	assert.Equal(t, "Annual Return", imported[0].ComplianceName)
}

func TestSampleDownload(t *testing.T) {
	resp, err := http.Get(fmt.Sprintf("%s/api/v1/rules/import/sample", complianceServiceURL))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
}

func TestSubmissionWorkflow(t *testing.T) {
	createReq := submissions.CreateSubmissionRequest{
		SubmitterName:        "Priya Nair",
		SubmitterEmail:       "priya.nair@example.com",
		CompanyName:          "Acme Holdings",
		CompanyType:          "Private Limited",
		OperationType:        "parent",
		CountryCode:          "IN",
		CountryName:          "India",
		ComplianceName:       "Board Meeting Minutes",
		Frequency:            "monthly",
		VerificationRequired: "CS",
	}

	sub := createSubmission(t, createReq)
	defer deleteSubmission(t, sub.ID)
	assert.Equal(t, submissions.StatusPending, sub.Status)

	reviewed := postSubmissionAction(t, sub.ID, "review", "")
	assert.Equal(t, submissions.StatusUnderReview, reviewed.Status)

	approved := postSubmissionAction(t, sub.ID, "approve", "verified")
	assert.Equal(t, submissions.StatusApproved, approved.Status)
	require.NotNil(t, approved.PromotedRuleID)
	defer deleteRule(t, *approved.PromotedRuleID)

	rule := getRule(t, *approved.PromotedRuleID)
	assert.Equal(t, "Board Meeting Minutes", rule.ComplianceName)
	assert.Equal(t, "monthly", rule.Frequency)

	statsResp, err := http.Get(fmt.Sprintf("%s/api/v1/submissions/stats", complianceServiceURL))
	require.NoError(t, err)
	defer statsResp.Body.Close()
	require.Equal(t, http.StatusOK, statsResp.StatusCode)

	var stats submissions.Stats
	require.NoError(t, json.NewDecoder(statsResp.Body).Decode(&stats))
	assert.GreaterOrEqual(t, stats.Approved, 1)
}

func TestAuditAttribution(t *testing.T) {
	body, err := json.Marshal(rules.CreateRuleRequest{
		CountryCode:          "IN",
		CountryName:          "India",
		CompanyType:          "LLP",
		ComplianceName:       "Statement of Accounts",
		Frequency:            "annual",
		VerificationRequired: "both",
	})
	require.NoError(t, err)

	httpReq, err := http.NewRequest(
		"POST",
		fmt.Sprintf("%s/api/v1/rules", complianceServiceURL),
		bytes.NewBuffer(body),
	)
	require.NoError(t, err)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-User-Email", "auditor@example.com")

	client := &http.Client{}
	resp, err := client.Do(httpReq)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var rule rules.ComplianceRule
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rule))
	defer deleteRule(t, rule.ID)

	logsResp, err := http.Get(fmt.Sprintf("%s/api/v1/audit/logs?rule_id=%d", complianceServiceURL, rule.ID))
	require.NoError(t, err)
	defer logsResp.Body.Close()
	require.Equal(t, http.StatusOK, logsResp.StatusCode)

	var entries []rules.AuditLogEntry
	require.NoError(t, json.NewDecoder(logsResp.Body).Decode(&entries))
	require.NotEmpty(t, entries)
	assert.Equal(t, "auditor@example.com", entries[0].ChangedBy)
}

func TestBulkImportRawBody(t *testing.T) {
	csv := strings.Join([]string{
		"Country Code,Country Name,CA Type,CS Type,Company Type,Compliance Name,Compliance Description,Frequency,Verification Required",
		"FI,Finland,KHT Auditor,,Limited Company,Annual Accounts,,Annual,CA",
	}, "\n")

	resp, err := http.Post(
		fmt.Sprintf("%s/api/v1/rules/import", complianceServiceURL),
		"text/csv",
		strings.NewReader(csv),
	)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result rules.ImportResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 1, result.Success)
	assert.Empty(t, result.Errors)

	imported := listRules(t, "FI", "")
	require.Len(t, imported, 1)
	defer deleteRule(t, imported[0].ID)
	assert.Equal(t, "Annual Accounts", imported[0].ComplianceName)
}

func TestCountryRegistration(t *testing.T) {
	body, err := json.Marshal(countries.AddCountryRequest{
		Code:    "AU",
		Name:    "Australia",
		CATypes: []string{"Chartered Accountant (ANZ)"},
		CSTypes: []string{"Company Secretary"},
	})
	require.NoError(t, err)

	resp, err := http.Post(
		fmt.Sprintf("%s/api/v1/countries", complianceServiceURL),
		"application/json",
		bytes.NewBuffer(body),
	)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var country countries.Country
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&country))
	assert.Equal(t, "AU", country.Code)

	desigResp, err := http.Get(fmt.Sprintf("%s/api/v1/countries/AU/designation", complianceServiceURL))
	require.NoError(t, err)
	defer desigResp.Body.Close()
	require.Equal(t, http.StatusOK, desigResp.StatusCode)

	var designation countries.Designation
	require.NoError(t, json.NewDecoder(desigResp.Body).Decode(&designation))
	require.NotNil(t, designation.CAType)
	assert.Equal(t, "Chartered Accountant (ANZ)", *designation.CAType)

	setupRules := listRules(t, "AU", "")
	for _, r := range setupRules {
		deleteRule(t, r.ID)
	}
}

func createRule(t *testing.T, req rules.CreateRuleRequest) rules.ComplianceRule {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(
		fmt.Sprintf("%s/api/v1/rules", complianceServiceURL),
		"application/json",
		bytes.NewBuffer(body),
	)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var rule rules.ComplianceRule
	err = json.NewDecoder(resp.Body).Decode(&rule)
	require.NoError(t, err)

	return rule
}

func createRuleWithError(t *testing.T, req rules.CreateRuleRequest) *http.Response {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(
		fmt.Sprintf("%s/api/v1/rules", complianceServiceURL),
		"application/json",
		bytes.NewBuffer(body),
	)
	require.NoError(t, err)

	return resp
}

func getRule(t *testing.T, id int64) rules.ComplianceRule {
	t.Helper()

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/rules/%d", complianceServiceURL, id))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rule rules.ComplianceRule
	err = json.NewDecoder(resp.Body).Decode(&rule)
	require.NoError(t, err)

	return rule
}

func listRules(t *testing.T, countryCode, companyType string) []rules.ComplianceRule {
	t.Helper()

	url := fmt.Sprintf("%s/api/v1/rules", complianceServiceURL)
	sep := "?"
	if countryCode != "" {
		url += sep + "country_code=" + countryCode
		sep = "&"
	}
	if companyType != "" {
		url += sep + "company_type=" + strings.ReplaceAll(companyType, " ", "%20")
	}

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []rules.ComplianceRule
	err = json.NewDecoder(resp.Body).Decode(&list)
	require.NoError(t, err)

	return list
}

func updateRule(t *testing.T, id int64, req rules.UpdateRuleRequest) rules.ComplianceRule {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	httpReq, err := http.NewRequest(
		"PUT",
		fmt.Sprintf("%s/api/v1/rules/%d", complianceServiceURL, id),
		bytes.NewBuffer(body),
	)
	require.NoError(t, err)
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(httpReq)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rule rules.ComplianceRule
	err = json.NewDecoder(resp.Body).Decode(&rule)
	require.NoError(t, err)

	return rule
}

func deleteRule(t *testing.T, id int64) {
	t.Helper()

	httpReq, err := http.NewRequest(
		"DELETE",
		fmt.Sprintf("%s/api/v1/rules/%d", complianceServiceURL, id),
		nil,
	)
	require.NoError(t, err)

	client := &http.Client{}
	resp, err := client.Do(httpReq)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func createSubmission(t *testing.T, req submissions.CreateSubmissionRequest) submissions.Submission {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(
		fmt.Sprintf("%s/api/v1/submissions", complianceServiceURL),
		"application/json",
		bytes.NewBuffer(body),
	)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var sub submissions.Submission
	err = json.NewDecoder(resp.Body).Decode(&sub)
	require.NoError(t, err)

	return sub
}

func postSubmissionAction(t *testing.T, id int64, action, notes string) submissions.Submission {
	t.Helper()

	var body *bytes.Buffer
	if notes != "" {
		payload, err := json.Marshal(submissions.ReviewRequest{Notes: notes})
		require.NoError(t, err)
		body = bytes.NewBuffer(payload)
	} else {
		body = bytes.NewBuffer(nil)
	}

	resp, err := http.Post(
		fmt.Sprintf("%s/api/v1/submissions/%d/%s", complianceServiceURL, id, action),
		"application/json",
		body,
	)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sub submissions.Submission
	err = json.NewDecoder(resp.Body).Decode(&sub)
	require.NoError(t, err)

	return sub
}

func deleteSubmission(t *testing.T, id int64) {
	t.Helper()

	httpReq, err := http.NewRequest(
		"DELETE",
		fmt.Sprintf("%s/api/v1/submissions/%d", complianceServiceURL, id),
		nil,
	)
	require.NoError(t, err)

	client := &http.Client{}
	resp, err := client.Do(httpReq)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func stringPtr(s string) *string {
	return &s
}
