package matching

import (
	"testing"

	"github.com/google/uuid"
)

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"jane mwale", "jane mwala"},
		{"john banda", "jon banda"},
		{"", "abc"},
		{"kitten", "sitting"},
	}
	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])
		if ab != ba {
			t.Errorf("Similarity(%q,%q)=%v but Similarity(%q,%q)=%v", p[0], p[1], ab, p[1], p[0], ba)
		}
	}
}

func TestSimilarity_Identity(t *testing.T) {
	for _, s := range []string{"", "a", "jane mwale", "日本語"} {
		if got := Similarity(s, s); got != 1.0 {
			t.Errorf("Similarity(%q,%q) = %v, want 1.0", s, s, got)
		}
	}
}

func TestSimilarity_EmptyVsEmpty(t *testing.T) {
	if got := Similarity("", ""); got != 1.0 {
		t.Errorf("Similarity of two empty strings = %v, want 1.0", got)
	}
}

func pool(records ...PoolRecord) *PoolIndex {
	return NewPoolIndex(records)
}

func TestMatch_EmptyPool(t *testing.T) {
	res := pool().Match(Identity{FullName: "Jane Mwale", Phone: "0971234567"})
	if len(res.Candidates) != 0 || res.Ambiguous {
		t.Errorf("expected empty result against empty pool, got %+v", res)
	}
	if res.Hint != HintCreateNew {
		t.Errorf("hint = %q, want %q", res.Hint, HintCreateNew)
	}
}

func TestMatch_HardPhoneMatchAcrossFormats(t *testing.T) {
	existing := PoolRecord{ID: uuid.New(), FullName: "Jane Mwale", Phone: "+260971234567"}
	res := pool(existing).Match(Identity{FullName: "Jane Mwale", Phone: "0971234567"})

	cand, ok := res.HardCandidate()
	if !ok {
		t.Fatalf("expected a hard candidate, got %+v", res)
	}
	if cand.CandidateID != existing.ID {
		t.Errorf("candidate = %s, want %s", cand.CandidateID, existing.ID)
	}
	if cand.Confidence != PhoneConfidence {
		t.Errorf("confidence = %v, want %v", cand.Confidence, PhoneConfidence)
	}
	if res.Hint != HintLink {
		t.Errorf("hint = %q, want %q", res.Hint, HintLink)
	}
}

func TestMatch_HardNationalIDAndEmail(t *testing.T) {
	existing := PoolRecord{ID: uuid.New(), FullName: "Peter Phiri", NationalID: "123456/78/1", Email: "Peter@Example.com"}
	ix := pool(existing)

	if res := ix.Match(Identity{NationalID: " 123456/78/1 "}); len(res.Candidates) != 1 || res.Candidates[0].Confidence != NationalIDConfidence {
		t.Errorf("national ID match failed: %+v", res)
	}
	if res := ix.Match(Identity{Email: "peter@example.com"}); len(res.Candidates) != 1 || res.Candidates[0].Confidence != EmailConfidence {
		t.Errorf("email match failed: %+v", res)
	}
}

func TestMatch_ConflictingHardFieldsAreAmbiguous(t *testing.T) {
	a := PoolRecord{ID: uuid.New(), FullName: "Jane Mwale", Phone: "0971234567"}
	b := PoolRecord{ID: uuid.New(), FullName: "Someone Else", NationalID: "123456/78/1"}

	res := pool(a, b).Match(Identity{Phone: "0971234567", NationalID: "123456/78/1"})
	if !res.Ambiguous {
		t.Fatalf("expected ambiguous result, got %+v", res)
	}
	if len(res.Candidates) != 0 {
		t.Errorf("ambiguous result must carry no candidates, got %+v", res.Candidates)
	}
	if res.Hint != HintReview {
		t.Errorf("hint = %q, want %q", res.Hint, HintReview)
	}
}

func TestMatch_SameCustomerOnMultipleFields(t *testing.T) {
	existing := PoolRecord{ID: uuid.New(), FullName: "Jane Mwale", Phone: "0971234567", Email: "jane@example.com"}
	res := pool(existing).Match(Identity{Phone: "+260971234567", Email: "JANE@example.com"})

	cand, ok := res.HardCandidate()
	if !ok || res.Ambiguous {
		t.Fatalf("expected one unambiguous hard candidate, got %+v", res)
	}
	if len(cand.MatchedFields) != 2 {
		t.Errorf("matched fields = %v, want phone and email", cand.MatchedFields)
	}
	if cand.Confidence != PhoneConfidence {
		t.Errorf("confidence = %v, want the phone tier %v", cand.Confidence, PhoneConfidence)
	}
}

func TestMatch_SingleSoftCandidateNeedsReview(t *testing.T) {
	existing := PoolRecord{ID: uuid.New(), FullName: "Jane Mwale"}
	res := pool(existing).Match(Identity{FullName: "Jane Mwala"})

	if len(res.Candidates) != 1 {
		t.Fatalf("expected one soft candidate, got %+v", res)
	}
	cand := res.Candidates[0]
	if cand.Tier != TierSoft || cand.Confidence != SoftConfidence {
		t.Errorf("candidate = %+v, want soft tier at %v", cand, SoftConfidence)
	}
	if res.Hint != HintReview {
		t.Errorf("soft matches must hint review, got %q", res.Hint)
	}
}

func TestMatch_MultipleSoftCandidatesAreAmbiguous(t *testing.T) {
	a := PoolRecord{ID: uuid.New(), FullName: "John Banda"}
	b := PoolRecord{ID: uuid.New(), FullName: "John Bandah"}

	res := pool(a, b).Match(Identity{FullName: "John Banda"})
	if !res.Ambiguous || len(res.Candidates) != 0 {
		t.Errorf("two close names must yield an ambiguous empty result, got %+v", res)
	}
	if res.Hint != HintReview {
		t.Errorf("hint = %q, want %q", res.Hint, HintReview)
	}
}

func TestMatch_DistantNameCreatesNew(t *testing.T) {
	existing := PoolRecord{ID: uuid.New(), FullName: "Completely Different"}
	res := pool(existing).Match(Identity{FullName: "Jane Mwale"})

	if len(res.Candidates) != 0 || res.Ambiguous {
		t.Errorf("expected no match, got %+v", res)
	}
	if res.Hint != HintCreateNew {
		t.Errorf("hint = %q, want %q", res.Hint, HintCreateNew)
	}
}
