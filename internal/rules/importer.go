package rules

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ImportRowError records one row that failed to insert. The original row
// data is carried so the admin can fix and re-upload just the failures.
type ImportRowError struct {
	Row     int               `json:"row"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
}

type ImportResult struct {
	Success  int                    `json:"success"`
	Errors   []ImportRowError       `json:"errors"`
	Warnings []NormalizationWarning `json:"warnings"`
	ReportID string                 `json:"report_id,omitempty"`
}

// ImportRow is one parsed CSV row ready for insertion. Index is the
// 1-based data row number (header excluded), used in error reporting.
type ImportRow struct {
	Index int
	Rule  ComplianceRule
	Raw   map[string]string
}

type ParsedImport struct {
	Rows     []ImportRow
	Warnings []NormalizationWarning
}

type importField string

const (
	fieldCountryCode  importField = "country_code"
	fieldCountryName  importField = "country_name"
	fieldCAType       importField = "ca_type"
	fieldCSType       importField = "cs_type"
	fieldCompanyType  importField = "company_type"
	fieldName         importField = "compliance_name"
	fieldDescription  importField = "compliance_description"
	fieldFrequency    importField = "frequency"
	fieldVerification importField = "verification_required"
)

// headerAliases maps each field to its accepted header spellings, in
// priority order. Truncated forms are included because exported sheets
// routinely clip column titles.
var headerAliases = []struct {
	field   importField
	aliases []string
}{
	{fieldCountryCode, []string{"country code", "country co"}},
	{fieldCountryName, []string{"country name", "country na"}},
	{fieldCAType, []string{"ca type", "ca typ"}},
	{fieldCSType, []string{"cs type", "cs typ"}},
	{fieldCompanyType, []string{"company type", "company ty"}},
	{fieldName, []string{"compliance name", "compliance na", "name"}},
	{fieldDescription, []string{"compliance description", "compliance desc", "description"}},
	{fieldFrequency, []string{"frequency", "freq"}},
	{fieldVerification, []string{"verification required", "verification req", "verification"}},
}

// ParseImport reads a CSV stream and maps it to rule records using tolerant
// header matching and value normalization. Rows missing country code,
// country name, or compliance name are dropped with a warning, never a hard
// error.
func ParseImport(r io.Reader) (*ParsedImport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	columns := mapHeader(header)
	if _, ok := columnFor(columns, fieldCountryCode); !ok {
		return nil, fmt.Errorf("no recognizable 'Country Code' column in header")
	}
	if _, ok := columnFor(columns, fieldName); !ok {
		return nil, fmt.Errorf("no recognizable 'Compliance Name' column in header")
	}

	parsed := &ParsedImport{}

	rowIndex := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowIndex++
		if err != nil {
			parsed.Warnings = append(parsed.Warnings, NormalizationWarning{
				Row:     rowIndex,
				Field:   "row",
				Message: fmt.Sprintf("row dropped: %v", err),
			})
			continue
		}

		raw := make(map[string]string, len(columns))
		for col, field := range columns {
			if col < len(record) {
				raw[string(field)] = strings.TrimSpace(record[col])
			}
		}

		countryCode := raw[string(fieldCountryCode)]
		countryName := raw[string(fieldCountryName)]
		name := raw[string(fieldName)]
		if countryCode == "" || countryName == "" || name == "" {
			parsed.Warnings = append(parsed.Warnings, NormalizationWarning{
				Row:     rowIndex,
				Field:   "row",
				Message: "row dropped: country code, country name and compliance name are required",
			})
			continue
		}

		frequency, warn := NormalizeFrequency(raw[string(fieldFrequency)])
		if warn != nil {
			warn.Row = rowIndex
			parsed.Warnings = append(parsed.Warnings, *warn)
		}

		verification, warn := NormalizeVerification(raw[string(fieldVerification)])
		if warn != nil {
			warn.Row = rowIndex
			parsed.Warnings = append(parsed.Warnings, *warn)
		}

		rule := ComplianceRule{
			CountryCode:          countryCode,
			CountryName:          countryName,
			CAType:               optional(raw[string(fieldCAType)]),
			CSType:               optional(raw[string(fieldCSType)]),
			CompanyType:          raw[string(fieldCompanyType)],
			ComplianceName:       name,
			Description:          optional(raw[string(fieldDescription)]),
			Frequency:            frequency,
			VerificationRequired: verification,
		}

		parsed.Rows = append(parsed.Rows, ImportRow{
			Index: rowIndex,
			Rule:  rule,
			Raw:   raw,
		})
	}

	return parsed, nil
}

// mapHeader resolves each CSV column to a field. The first column matching a
// field wins; later duplicates are ignored.
func mapHeader(header []string) map[int]importField {
	columns := make(map[int]importField)
	claimed := make(map[importField]bool)

	for col, title := range header {
		normalized := normalizeHeader(title)
		if normalized == "" {
			continue
		}
		for _, candidate := range headerAliases {
			if claimed[candidate.field] {
				continue
			}
			if headerMatches(normalized, candidate.aliases) {
				columns[col] = candidate.field
				claimed[candidate.field] = true
				break
			}
		}
	}

	return columns
}

func headerMatches(header string, aliases []string) bool {
	for _, alias := range aliases {
		if header == alias || strings.HasPrefix(header, alias) {
			return true
		}
	}
	return false
}

func normalizeHeader(title string) string {
	normalized := strings.ToLower(strings.TrimSpace(title))
	normalized = strings.Join(strings.Fields(normalized), " ")
	return normalized
}

func columnFor(columns map[int]importField, field importField) (int, bool) {
	for col, f := range columns {
		if f == field {
			return col, true
		}
	}
	return 0, false
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
