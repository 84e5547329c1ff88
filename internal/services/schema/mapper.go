package schema

import (
	"log"
	"regexp"
	"strings"
)

// FieldMapping binds one source column to one canonical field.
type FieldMapping struct {
	SourceColumn   string  `json:"source_column"`
	CanonicalField string  `json:"canonical_field"`
	Confidence     float64 `json:"confidence"`
	Rationale      string  `json:"rationale"`
}

// RuleConfidence is the fixed confidence assigned to pattern-table matches.
const RuleConfidence = 0.8

type ImportKind string

const (
	KindCustomers ImportKind = "customers"
	KindLoans     ImportKind = "loans"
	KindMixed     ImportKind = "mixed"
)

type headerRule struct {
	re    *regexp.Regexp
	field string
}

// Ordered pattern table; the first matching rule wins per header.
// Patterns run against the lower-cased trimmed header.
var headerRules = []headerRule{
	{regexp.MustCompile(`customer.?id|client.?id|borrower.?id`), FieldCustomerID},
	{regexp.MustCompile(`full.?name|applicant.?name`), FieldFullName},
	{regexp.MustCompile(`customer.?name|borrower.?name|client.?name`), FieldCustomerName},
	{regexp.MustCompile(`^name$`), FieldFullName},
	{regexp.MustCompile(`phone|mobile|msisdn|cell|contact.?(number|no)?$`), FieldPhone},
	{regexp.MustCompile(`nrc|national.?id|id.?number|identity`), FieldNationalID},
	{regexp.MustCompile(`e.?mail`), FieldEmail},
	{regexp.MustCompile(`address|residence`), FieldAddress},
	{regexp.MustCompile(`employment.?status|emp.?status`), FieldEmploymentStatus},
	{regexp.MustCompile(`monthly.?income|income|salary`), FieldMonthlyIncome},
	{regexp.MustCompile(`employer|company|workplace`), FieldEmployer},
	{regexp.MustCompile(`job.?title|occupation|position`), FieldJobTitle},
	{regexp.MustCompile(`loan.?type|product`), FieldLoanType},
	{regexp.MustCompile(`loan.?amount|amount|principal`), FieldAmount},
	{regexp.MustCompile(`interest|rate`), FieldInterestRate},
	{regexp.MustCompile(`duration|tenure|term`), FieldDurationMonths},
	{regexp.MustCompile(`disbursement|start.?date`), FieldDisbursementDate},
	{regexp.MustCompile(`collateral`), FieldCollateralIncluded},
}

// InferMappings maps raw column headers to canonical fields using the
// pattern table. Unmatched headers produce no mapping; a header is never
// mapped twice.
func InferMappings(headers []string) []FieldMapping {
	var mappings []FieldMapping
	seen := make(map[string]bool)

	for _, header := range headers {
		if header == "" || seen[header] {
			continue
		}
		normalized := strings.ToLower(strings.TrimSpace(header))
		for _, rule := range headerRules {
			if rule.re.MatchString(normalized) {
				mappings = append(mappings, FieldMapping{
					SourceColumn:   header,
					CanonicalField: rule.field,
					Confidence:     RuleConfidence,
					Rationale:      "header pattern " + rule.re.String(),
				})
				seen[header] = true
				break
			}
		}
	}
	return mappings
}

// FilterProposals validates advisory mappings before they join the
// rule-based set. Proposals outside the canonical allowlist, or for a
// source column that already has an accepted mapping, are dropped.
func FilterProposals(accepted []FieldMapping, proposals []FieldMapping) []FieldMapping {
	mapped := make(map[string]bool, len(accepted))
	for _, m := range accepted {
		mapped[m.SourceColumn] = true
	}

	var kept []FieldMapping
	for _, p := range proposals {
		if !IsCanonical(p.CanonicalField) {
			log.Printf("schema: dropping advisory mapping %q -> %q: not a canonical field", p.SourceColumn, p.CanonicalField)
			continue
		}
		if mapped[p.SourceColumn] {
			log.Printf("schema: dropping advisory mapping %q -> %q: column already mapped", p.SourceColumn, p.CanonicalField)
			continue
		}
		if p.Confidence < 0 {
			p.Confidence = 0
		}
		if p.Confidence > 1 {
			p.Confidence = 1
		}
		mapped[p.SourceColumn] = true
		kept = append(kept, p)
	}
	return kept
}

// DetectKind determines the import kind from the mapped canonical fields.
// Name/phone/ID-like headers imply customers, amount/rate/duration-like
// headers imply loans, both imply mixed. A dataset with neither is treated
// as customers.
func DetectKind(mappings []FieldMapping) ImportKind {
	customerish := false
	loanish := false
	for _, m := range mappings {
		switch m.CanonicalField {
		case FieldFullName, FieldPhone, FieldNationalID:
			customerish = true
		case FieldAmount, FieldInterestRate, FieldDurationMonths, FieldLoanType:
			loanish = true
		}
	}
	switch {
	case customerish && loanish:
		return KindMixed
	case loanish:
		return KindLoans
	default:
		return KindCustomers
	}
}
