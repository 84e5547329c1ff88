package validation

import (
	"fmt"
	"strconv"
	"strings"

	"lending-import-backend/internal/services/schema"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type Issue struct {
	RowIndex int      `json:"row_index"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Resolve returns the row's value for a canonical field: first through the
// accepted mappings, then through the fixed raw-header alias list. The
// result is trimmed; a missing column resolves to "".
func Resolve(row map[string]string, mappings []schema.FieldMapping, field string) string {
	for _, m := range mappings {
		if m.CanonicalField == field {
			if v := strings.TrimSpace(row[m.SourceColumn]); v != "" {
				return v
			}
		}
	}
	for _, alias := range schema.Aliases[field] {
		for header, value := range row {
			if strings.EqualFold(strings.TrimSpace(header), alias) {
				if v := strings.TrimSpace(value); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

// columnPresent reports whether the dataset carries any column for the
// canonical field, mapped or alias-named, regardless of the row's value.
func columnPresent(row map[string]string, mappings []schema.FieldMapping, field string) bool {
	for _, m := range mappings {
		if m.CanonicalField == field {
			return true
		}
	}
	for _, alias := range schema.Aliases[field] {
		for header := range row {
			if strings.EqualFold(strings.TrimSpace(header), alias) {
				return true
			}
		}
	}
	return false
}

// ValidateRow checks one mapped row against the presence and range rules
// for the detected import kind and returns every issue found. Errors block
// a row from being classified ready; warnings do not.
func ValidateRow(rowIndex int, row map[string]string, mappings []schema.FieldMapping, kind schema.ImportKind) []Issue {
	var issues []Issue

	// On mixed imports partial schemas are expected, so a required field
	// whose column is absent altogether is not an error there. Pure
	// customer or loan imports stay strict.
	require := func(field, message string) {
		if Resolve(row, mappings, field) != "" {
			return
		}
		if kind == schema.KindMixed && !columnPresent(row, mappings, field) {
			return
		}
		issues = append(issues, Issue{RowIndex: rowIndex, Field: field, Message: message, Severity: SeverityError})
	}

	if kind == schema.KindCustomers || kind == schema.KindMixed {
		require(schema.FieldFullName, "full name is required")
		require(schema.FieldPhone, "phone is required")
		require(schema.FieldNationalID, "national ID is required")
	}

	if kind == schema.KindLoans || kind == schema.KindMixed {
		if raw := Resolve(row, mappings, schema.FieldAmount); raw == "" {
			if kind != schema.KindMixed || columnPresent(row, mappings, schema.FieldAmount) {
				issues = append(issues, Issue{RowIndex: rowIndex, Field: schema.FieldAmount, Message: "loan amount is required", Severity: SeverityError})
			}
		} else if amount, err := ParseAmount(raw); err != nil || amount <= 0 {
			issues = append(issues, Issue{RowIndex: rowIndex, Field: schema.FieldAmount, Message: fmt.Sprintf("invalid loan amount %q", raw), Severity: SeverityError})
		}

		if raw := Resolve(row, mappings, schema.FieldDurationMonths); raw == "" {
			if kind != schema.KindMixed || columnPresent(row, mappings, schema.FieldDurationMonths) {
				issues = append(issues, Issue{RowIndex: rowIndex, Field: schema.FieldDurationMonths, Message: "duration in months is required", Severity: SeverityError})
			}
		} else if months, err := strconv.Atoi(raw); err != nil || months <= 0 {
			issues = append(issues, Issue{RowIndex: rowIndex, Field: schema.FieldDurationMonths, Message: fmt.Sprintf("invalid duration %q, expected a positive whole number of months", raw), Severity: SeverityError})
		}

		// Out-of-range rates are substitutable with a default later, so
		// this is a warning rather than an error.
		if raw := Resolve(row, mappings, schema.FieldInterestRate); raw != "" {
			rate, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
			if err != nil || rate < 0 || rate > 100 {
				issues = append(issues, Issue{RowIndex: rowIndex, Field: schema.FieldInterestRate, Message: fmt.Sprintf("interest rate %q outside 0-100", raw), Severity: SeverityWarning})
			}
		}
	}

	return issues
}

// ParseAmount parses a monetary amount, tolerating thousands separators.
func ParseAmount(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	return strconv.ParseFloat(cleaned, 64)
}

// HasUsableIdentity reports whether the row carries anything the matcher
// or a manual reviewer could work with: a name, phone, national ID or
// amount. Rows with none of these are beyond recovery.
func HasUsableIdentity(row map[string]string, mappings []schema.FieldMapping) bool {
	for _, field := range []string{schema.FieldFullName, schema.FieldCustomerName, schema.FieldPhone, schema.FieldNationalID, schema.FieldAmount} {
		if Resolve(row, mappings, field) != "" {
			return true
		}
	}
	return false
}
