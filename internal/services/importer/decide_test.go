package importer

import (
	"testing"

	"github.com/google/uuid"

	"lending-import-backend/internal/services/classify"
	"lending-import-backend/internal/services/matching"
	"lending-import-backend/internal/services/schema"
)

var exampleHeaders = []string{"Full Name", "Phone", "NRC", "Loan Amount"}

func exampleRow() map[string]string {
	return map[string]string{
		"Full Name":   "Jane Mwale",
		"Phone":       "0971234567",
		"NRC":         "123456/78/1",
		"Loan Amount": "5000",
	}
}

func TestDecideRow_NewCustomerAgainstEmptyPool(t *testing.T) {
	mappings := schema.InferMappings(exampleHeaders)
	kind := schema.DetectKind(mappings)
	if kind != schema.KindMixed {
		t.Fatalf("kind = %q, want mixed", kind)
	}

	d := DecideRow(0, exampleRow(), mappings, kind, matching.NewPoolIndex(nil))

	if len(d.Issues) != 0 {
		t.Errorf("expected zero issues, got %+v", d.Issues)
	}
	if len(d.Candidates) != 0 {
		t.Errorf("expected no match candidates, got %+v", d.Candidates)
	}
	if d.Status != classify.StatusReady || d.Action != classify.ActionCreate {
		t.Errorf("got %q/%q, want ready/create", d.Status, d.Action)
	}
}

func TestDecideRow_HardPhoneMatchLinks(t *testing.T) {
	mappings := schema.InferMappings(exampleHeaders)
	existing := matching.PoolRecord{ID: uuid.New(), FullName: "Jane Mwale", Phone: "+260971234567"}
	index := matching.NewPoolIndex([]matching.PoolRecord{existing})

	d := DecideRow(0, exampleRow(), mappings, schema.KindMixed, index)

	if d.Status != classify.StatusReady || d.Action != classify.ActionLink {
		t.Fatalf("got %q/%q, want ready/link", d.Status, d.Action)
	}
	if len(d.Candidates) != 1 || d.Candidates[0].CandidateID != existing.ID {
		t.Errorf("expected the existing customer as candidate, got %+v", d.Candidates)
	}
	if d.Candidates[0].Confidence != matching.PhoneConfidence {
		t.Errorf("confidence = %v, want %v", d.Candidates[0].Confidence, matching.PhoneConfidence)
	}
}

func TestDecideRow_PartialRowNeedsReviewNotSkip(t *testing.T) {
	mappings := schema.InferMappings(exampleHeaders)
	row := map[string]string{
		"Full Name":   "Jane Mwale",
		"Phone":       "",
		"NRC":         "",
		"Loan Amount": "5000",
	}

	d := DecideRow(7, row, mappings, schema.KindMixed, matching.NewPoolIndex(nil))

	if d.Status != classify.StatusNeedsReview {
		t.Errorf("status = %q, want needs_review (name and amount are recoverable)", d.Status)
	}
	if d.Action != classify.ActionCreate {
		t.Errorf("action = %q, want create", d.Action)
	}

	errors := 0
	for _, issue := range d.Issues {
		if issue.Severity == "error" {
			errors++
		}
	}
	if errors != 2 {
		t.Errorf("expected 2 errors, got %d: %+v", errors, d.Issues)
	}
}

func TestDecideRow_TwoSimilarNamesForceReview(t *testing.T) {
	mappings := schema.InferMappings([]string{"Full Name"})
	index := matching.NewPoolIndex([]matching.PoolRecord{
		{ID: uuid.New(), FullName: "John Banda"},
		{ID: uuid.New(), FullName: "John Bandaa"},
	})

	d := DecideRow(0, map[string]string{"Full Name": "John Banda"}, mappings, schema.KindCustomers, index)

	if d.Status != classify.StatusNeedsReview {
		t.Errorf("status = %q, want needs_review on ambiguous names", d.Status)
	}
	if len(d.Candidates) != 0 {
		t.Errorf("ambiguous result must return no single candidate, got %+v", d.Candidates)
	}
	if !d.Ambiguous {
		t.Error("decision should be flagged ambiguous")
	}
}

func TestIdentityFromRow_FallsBackToCustomerName(t *testing.T) {
	mappings := schema.InferMappings([]string{"Customer Name", "Loan Amount"})
	id := IdentityFromRow(map[string]string{"Customer Name": "Peter Phiri", "Loan Amount": "100"}, mappings)
	if id.FullName != "Peter Phiri" {
		t.Errorf("FullName = %q, want the customerName value", id.FullName)
	}
}
