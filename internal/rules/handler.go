package rules

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"compass/internal/constants"
	"compass/internal/logger"
	"compass/pkg/errors"
)

type Handler struct {
	Service Service
	Logger  logger.Logger
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		Service: service,
		Logger:  log,
	}
}

func (h *Handler) HandleError(c *gin.Context, err error) {
	h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	response := errors.ToErrorResponse(err)

	c.JSON(status, response)
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		rules := v1.Group("/rules")
		{
			rules.GET("", h.ListRules)
			rules.POST("", h.CreateRule)
			rules.GET("/countries", h.ListCountries)
			rules.GET("/company-types", h.ListCompanyTypes)
			rules.GET("/designations", h.ListDesignations)
			rules.POST("/import", h.ImportRules)
			rules.GET("/import/sample", h.DownloadSample)
			rules.GET("/import/reports", h.ListImportReports)
			rules.GET("/import/reports/:id", h.GetImportReport)
			rules.GET("/:id", h.GetRule)
			rules.PUT("/:id", h.UpdateRule)
			rules.DELETE("/:id", h.DeleteRule)
		}

		audit := v1.Group("/audit")
		{
			audit.GET("/logs", h.GetAuditLogs)
		}
	}
}

// ListRules godoc
// @Summary      List compliance rules
// @Description  List compliance rules, optionally filtered by country code and/or company type
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        country_code  query     string  false  "Country code filter"
// @Param        company_type  query     string  false  "Company type filter"
// @Success      200  {array}    ComplianceRule
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /rules [get]
func (h *Handler) ListRules(c *gin.Context) {
	countryCode := c.Query("country_code")
	companyType := c.Query("company_type")

	rules, err := h.Service.ListRules(c.Request.Context(), countryCode, companyType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if rules == nil {
		rules = []ComplianceRule{}
	}
	c.JSON(http.StatusOK, rules)
}

// CreateRule godoc
// @Summary      Create a compliance rule
// @Description  Create a new compliance rule; frequency and verification_required are normalized to the fixed enumerations
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        rule  body       CreateRuleRequest  true  "Rule data"
// @Success      201   {object}   ComplianceRule
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      409   {object}  errors.ErrorResponse
// @Failure      500   {object}  errors.ErrorResponse
// @Router       /rules [post]
func (h *Handler) CreateRule(c *gin.Context) {
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	rule, err := h.Service.CreateRule(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rule)
}

// GetRule godoc
// @Summary      Get a compliance rule by ID
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        id   path      int  true  "Rule ID"
// @Success      200  {object}   ComplianceRule
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /rules/{id} [get]
func (h *Handler) GetRule(c *gin.Context) {
	id, ok := h.ruleID(c)
	if !ok {
		return
	}

	rule, err := h.Service.GetRule(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

// UpdateRule godoc
// @Summary      Update a compliance rule
// @Description  Full-field overwrite of an existing rule by ID
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Rule ID"
// @Param        rule  body       UpdateRuleRequest  true  "Updated rule data"
// @Success      200   {object}   ComplianceRule
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      404   {object}  errors.ErrorResponse
// @Failure      500   {object}  errors.ErrorResponse
// @Router       /rules/{id} [put]
func (h *Handler) UpdateRule(c *gin.Context) {
	id, ok := h.ruleID(c)
	if !ok {
		return
	}

	var req UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	rule, err := h.Service.UpdateRule(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

// DeleteRule godoc
// @Summary      Delete a compliance rule
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        id   path      int  true  "Rule ID"
// @Success      204  "No Content"
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /rules/{id} [delete]
func (h *Handler) DeleteRule(c *gin.Context) {
	id, ok := h.ruleID(c)
	if !ok {
		return
	}

	if err := h.Service.DeleteRule(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListCountries godoc
// @Summary      List countries present in the rule store
// @Description  Distinct country codes and display names, one entry per code
// @Tags         lookups
// @Produce      json
// @Success      200  {array}    CountryListing
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /rules/countries [get]
func (h *Handler) ListCountries(c *gin.Context) {
	countries, err := h.Service.ListCountries(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if countries == nil {
		countries = []CountryListing{}
	}
	c.JSON(http.StatusOK, countries)
}

// ListCompanyTypes godoc
// @Summary      List company types present in the rule store
// @Description  Distinct company types, excluding country-setup sentinel rows
// @Tags         lookups
// @Produce      json
// @Success      200  {array}    string
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /rules/company-types [get]
func (h *Handler) ListCompanyTypes(c *gin.Context) {
	types, err := h.Service.ListCompanyTypes(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if types == nil {
		types = []string{}
	}
	c.JSON(http.StatusOK, types)
}

// ListDesignations godoc
// @Summary      List professional-designation labels
// @Description  Distinct CA and CS designation labels present in the rule store
// @Tags         lookups
// @Produce      json
// @Success      200  {object}   DesignationListing
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /rules/designations [get]
func (h *Handler) ListDesignations(c *gin.Context) {
	listing, err := h.Service.ListDesignations(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// ImportRules godoc
// @Summary      Bulk-import compliance rules from CSV
// @Description  Parses the uploaded CSV with tolerant header matching; per-row failures are collected, not fatal
// @Tags         rules
// @Accept       multipart/form-data
// @Accept       text/csv
// @Produce      json
// @Param        file  formData  file  false  "CSV file (alternatively POST the CSV as a raw text/csv body)"
// @Success      200   {object}   ImportResult
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      500   {object}  errors.ErrorResponse
// @Router       /rules/import [post]
func (h *Handler) ImportRules(c *gin.Context) {
	fileName, file, err := importUpload(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	result, err := h.Service.ImportRules(c.Request.Context(), fileName, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// importUpload accepts either a multipart "file" field or a raw text/csv
// request body.
func importUpload(c *gin.Context) (string, io.ReadCloser, error) {
	if strings.HasPrefix(c.ContentType(), "text/csv") {
		if c.Request.ContentLength > constants.MaxImportFileBytes {
			return "", nil, errors.ErrValidation.WithDetail("message",
				fmt.Sprintf("file exceeds %d bytes", constants.MaxImportFileBytes))
		}
		return "upload.csv", http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxImportFileBytes), nil
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", nil, errors.ErrValidation.WithCause(err).WithDetail("message",
			"multipart field 'file' or a text/csv body is required")
	}
	if fileHeader.Size > constants.MaxImportFileBytes {
		return "", nil, errors.ErrValidation.WithDetail("message",
			fmt.Sprintf("file exceeds %d bytes", constants.MaxImportFileBytes))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", nil, errors.ErrInternal.WithCause(err)
	}
	return fileHeader.Filename, file, nil
}

// DownloadSample godoc
// @Summary      Download the import template CSV
// @Tags         rules
// @Produce      text/csv
// @Success      200  {string}  string  "CSV content"
// @Router       /rules/import/sample [get]
func (h *Handler) DownloadSample(c *gin.Context) {
	fileName, content := SampleCSV()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "text/csv", content)
}

// ListImportReports godoc
// @Summary      List recent bulk-import reports
// @Tags         rules
// @Produce      json
// @Param        limit  query     int  false  "Maximum reports to return"
// @Success      200  {array}    ImportReport
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /rules/import/reports [get]
func (h *Handler) ListImportReports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	reports, err := h.Service.ListImportReports(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if reports == nil {
		reports = []ImportReport{}
	}
	c.JSON(http.StatusOK, reports)
}

// GetImportReport godoc
// @Summary      Get one bulk-import report
// @Tags         rules
// @Produce      json
// @Param        id   path      string  true  "Report ID"
// @Success      200  {object}   ImportReport
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /rules/import/reports/{id} [get]
func (h *Handler) GetImportReport(c *gin.Context) {
	report, err := h.Service.GetImportReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetAuditLogs godoc
// @Summary      List rule audit log entries
// @Tags         audit
// @Produce      json
// @Param        rule_id  query     int  false  "Scope to one rule"
// @Param        limit    query     int  false  "Maximum entries to return"
// @Success      200  {array}    AuditLogEntry
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /audit/logs [get]
func (h *Handler) GetAuditLogs(c *gin.Context) {
	var ruleID *int64
	if raw := c.Query("rule_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errors.ToErrorResponse(
				errors.ErrValidation.WithDetail("message", "rule_id must be numeric")))
			return
		}
		ruleID = &id
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.Service.GetAuditLogs(c.Request.Context(), ruleID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if entries == nil {
		entries = []AuditLogEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) ruleID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(
			errors.ErrValidation.WithDetail("message", "rule id must be numeric")))
		return 0, false
	}
	return id, true
}
