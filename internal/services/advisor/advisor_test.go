package advisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"lending-import-backend/internal/services/matching"
	"lending-import-backend/internal/services/schema"
)

type failingSuggester struct{}

func (failingSuggester) SuggestMappings(context.Context, []string, []map[string]string) ([]schema.FieldMapping, error) {
	return nil, errors.New("upstream timeout")
}

func (failingSuggester) SuggestMatches(context.Context, []map[string]string, []matching.PoolRecord) ([]matching.Candidate, error) {
	return nil, errors.New("upstream timeout")
}

func TestConsultMappings_SwallowsFailures(t *testing.T) {
	got := ConsultMappings(context.Background(), failingSuggester{}, time.Second, []string{"Full Name"}, nil, nil)
	if got != nil {
		t.Errorf("expected nil on advisory failure, got %+v", got)
	}
}

func TestConsultMappings_NilSuggester(t *testing.T) {
	if got := ConsultMappings(context.Background(), nil, time.Second, []string{"Full Name"}, nil, nil); got != nil {
		t.Errorf("expected nil for absent suggester, got %+v", got)
	}
}

func TestConsultMappings_FiltersNonCanonical(t *testing.T) {
	s := proposalSuggester{proposals: []schema.FieldMapping{
		{SourceColumn: "Col A", CanonicalField: "madeUpField", Confidence: 0.9},
		{SourceColumn: "Col B", CanonicalField: schema.FieldEmail, Confidence: 0.9},
	}}
	got := ConsultMappings(context.Background(), s, time.Second, []string{"Col A", "Col B"}, nil, nil)
	if len(got) != 1 || got[0].CanonicalField != schema.FieldEmail {
		t.Errorf("expected only the canonical proposal to survive, got %+v", got)
	}
}

type proposalSuggester struct {
	proposals []schema.FieldMapping
}

func (p proposalSuggester) SuggestMappings(context.Context, []string, []map[string]string) ([]schema.FieldMapping, error) {
	return p.proposals, nil
}

func (proposalSuggester) SuggestMatches(context.Context, []map[string]string, []matching.PoolRecord) ([]matching.Candidate, error) {
	return nil, nil
}

func TestClampCandidates(t *testing.T) {
	known := matching.PoolRecord{ID: uuid.New(), FullName: "Jane Mwale"}
	proposals := []matching.Candidate{
		{CandidateID: known.ID, Confidence: 0.99, Tier: matching.TierHard},
		{CandidateID: uuid.New(), Confidence: 0.9, Tier: matching.TierSoft}, // not in pool
	}

	kept := ClampCandidates(proposals, []matching.PoolRecord{known})
	if len(kept) != 1 {
		t.Fatalf("expected 1 surviving candidate, got %d", len(kept))
	}
	if kept[0].Tier != matching.TierSoft {
		t.Error("advisory candidates must be clamped to the soft tier")
	}
	if kept[0].Confidence > matching.SoftConfidence {
		t.Errorf("confidence = %v, must not exceed %v", kept[0].Confidence, matching.SoftConfidence)
	}
}

func TestRuleBased_MatchesMapperOutput(t *testing.T) {
	headers := []string{"Full Name", "Phone"}
	got, err := RuleBased{}.SuggestMappings(context.Background(), headers, nil)
	if err != nil {
		t.Fatalf("rule-based suggester must not fail: %v", err)
	}
	want := schema.InferMappings(headers)
	if len(got) != len(want) {
		t.Errorf("rule-based suggestions diverge from the mapper: %+v vs %+v", got, want)
	}
}
