package importer

import (
	"lending-import-backend/internal/services/classify"
	"lending-import-backend/internal/services/matching"
	"lending-import-backend/internal/services/schema"
	"lending-import-backend/internal/services/validation"
)

// Dataset is the decoded tabular input handed over by the upload handler:
// ordered headers plus one header->value map per row.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// IdentityFromRow pulls the matcher's identity attributes out of a raw
// row. Loan-style rows carry the owner under customerName rather than
// fullName.
func IdentityFromRow(row map[string]string, mappings []schema.FieldMapping) matching.Identity {
	name := validation.Resolve(row, mappings, schema.FieldFullName)
	if name == "" {
		name = validation.Resolve(row, mappings, schema.FieldCustomerName)
	}
	return matching.Identity{
		FullName:   name,
		Phone:      validation.Resolve(row, mappings, schema.FieldPhone),
		NationalID: validation.Resolve(row, mappings, schema.FieldNationalID),
		Email:      validation.Resolve(row, mappings, schema.FieldEmail),
	}
}

// DecideRow runs the full per-row pipeline: validate, match against the
// pool, classify. It is a pure function of its inputs, so rows can be
// decided concurrently and re-decided after a cancelled batch.
func DecideRow(rowIndex int, row map[string]string, mappings []schema.FieldMapping, kind schema.ImportKind, index *matching.PoolIndex) classify.Decision {
	issues := validation.ValidateRow(rowIndex, row, mappings, kind)
	match := index.Match(IdentityFromRow(row, mappings))
	usable := validation.HasUsableIdentity(row, mappings)
	return classify.Classify(rowIndex, issues, match, usable)
}
