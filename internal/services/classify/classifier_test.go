package classify

import (
	"testing"

	"github.com/google/uuid"

	"lending-import-backend/internal/services/matching"
	"lending-import-backend/internal/services/validation"
)

func errIssue(field string) validation.Issue {
	return validation.Issue{Field: field, Message: field + " is required", Severity: validation.SeverityError}
}

func hardResult() matching.Result {
	return matching.Result{
		Candidates: []matching.Candidate{{CandidateID: uuid.New(), Confidence: matching.PhoneConfidence, Tier: matching.TierHard}},
		Hint:       matching.HintLink,
	}
}

func softResult() matching.Result {
	return matching.Result{
		Candidates: []matching.Candidate{{CandidateID: uuid.New(), Confidence: matching.SoftConfidence, Tier: matching.TierSoft}},
		Hint:       matching.HintReview,
	}
}

func TestClassify_CleanRowNoMatch(t *testing.T) {
	d := Classify(0, nil, matching.Result{Hint: matching.HintCreateNew}, true)
	if d.Status != StatusReady || d.Action != ActionCreate {
		t.Errorf("got %q/%q, want ready/create", d.Status, d.Action)
	}
}

func TestClassify_CleanRowHardMatchLinks(t *testing.T) {
	d := Classify(0, nil, hardResult(), true)
	if d.Status != StatusReady || d.Action != ActionLink {
		t.Errorf("got %q/%q, want ready/link", d.Status, d.Action)
	}
}

func TestClassify_ErrorsWithoutUsableDataIsInvalidSkip(t *testing.T) {
	issues := []validation.Issue{errIssue("fullName"), errIssue("phone")}
	d := Classify(0, issues, matching.Result{Hint: matching.HintCreateNew}, false)
	if d.Status != StatusInvalid {
		t.Fatalf("status = %q, want invalid", d.Status)
	}
	if d.Action != ActionSkip {
		t.Errorf("invalid rows must skip, got %q", d.Action)
	}
}

func TestClassify_ErrorsWithUsableDataNeedsReview(t *testing.T) {
	issues := []validation.Issue{errIssue("phone"), errIssue("nationalId")}
	d := Classify(0, issues, matching.Result{Hint: matching.HintCreateNew}, true)
	if d.Status != StatusNeedsReview {
		t.Errorf("status = %q, want needs_review (recoverable row)", d.Status)
	}
	if d.Action != ActionCreate {
		t.Errorf("action = %q, want create", d.Action)
	}
}

func TestClassify_SoftOnlyMatchNeedsReview(t *testing.T) {
	d := Classify(0, nil, softResult(), true)
	if d.Status != StatusNeedsReview {
		t.Errorf("status = %q, want needs_review", d.Status)
	}
	if d.Action == ActionLink {
		t.Error("soft match alone must never produce a link action")
	}
}

func TestClassify_AmbiguousMatchNeedsReview(t *testing.T) {
	d := Classify(0, nil, matching.Result{Ambiguous: true, Hint: matching.HintReview}, true)
	if d.Status != StatusNeedsReview || d.Action != ActionCreate {
		t.Errorf("got %q/%q, want needs_review/create", d.Status, d.Action)
	}
}

func TestClassify_WarningsAloneStayReady(t *testing.T) {
	issues := []validation.Issue{{Field: "interestRate", Severity: validation.SeverityWarning}}
	d := Classify(0, issues, matching.Result{Hint: matching.HintCreateNew}, true)
	if d.Status != StatusReady {
		t.Errorf("status = %q, warnings must not block ready", d.Status)
	}
}

// Invariants: invalid implies skip, link implies an unambiguous hard candidate.
func TestClassify_Invariants(t *testing.T) {
	results := []matching.Result{
		{Hint: matching.HintCreateNew},
		hardResult(),
		softResult(),
		{Ambiguous: true, Hint: matching.HintReview},
	}
	issueSets := [][]validation.Issue{nil, {errIssue("phone")}}

	for _, res := range results {
		for _, issues := range issueSets {
			for _, usable := range []bool{true, false} {
				d := Classify(0, issues, res, usable)
				if d.Status == StatusInvalid && d.Action != ActionSkip {
					t.Errorf("invalid row got action %q", d.Action)
				}
				if d.Action == ActionSkip && d.Status != StatusInvalid {
					t.Errorf("skip action on status %q", d.Status)
				}
				if d.Action == ActionLink {
					if _, ok := res.HardCandidate(); !ok || res.Ambiguous {
						t.Errorf("link action without an unambiguous hard candidate: %+v", res)
					}
				}
			}
		}
	}
}
