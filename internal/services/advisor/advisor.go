// Package advisor models the optional, non-deterministic suggestion layer
// as a pluggable capability. The pipeline works identically with it
// absent, failing or slow; advisory output only ever adds suggestions
// inside the same contract the rule-based components enforce.
package advisor

import (
	"context"
	"log"
	"time"

	"lending-import-backend/internal/services/matching"
	"lending-import-backend/internal/services/schema"
)

type Suggester interface {
	SuggestMappings(ctx context.Context, headers []string, sampleRows []map[string]string) ([]schema.FieldMapping, error)
	SuggestMatches(ctx context.Context, rows []map[string]string, pool []matching.PoolRecord) ([]matching.Candidate, error)
}

// RuleBased is the always-available Suggester. It delegates to the same
// deterministic pattern table the mapper uses, so consulting it can never
// fail or disagree with the core.
type RuleBased struct{}

func (RuleBased) SuggestMappings(_ context.Context, headers []string, _ []map[string]string) ([]schema.FieldMapping, error) {
	return schema.InferMappings(headers), nil
}

func (RuleBased) SuggestMatches(_ context.Context, _ []map[string]string, _ []matching.PoolRecord) ([]matching.Candidate, error) {
	// Deterministic matching already runs in the pipeline proper; the
	// rule-based advisor has nothing extra to add.
	return nil, nil
}

// ConsultMappings asks the suggester for extra mappings under a deadline.
// Any error or timeout is logged and swallowed: advisory absence is never
// a user-visible failure. Accepted proposals have already passed the
// canonical allowlist and duplicate-column filter.
func ConsultMappings(ctx context.Context, s Suggester, timeout time.Duration, headers []string, sampleRows []map[string]string, accepted []schema.FieldMapping) []schema.FieldMapping {
	if s == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	proposals, err := s.SuggestMappings(ctx, headers, sampleRows)
	if err != nil {
		log.Printf("advisor: mapping suggestions unavailable, continuing with rules only: %v", err)
		return nil
	}
	return schema.FilterProposals(accepted, proposals)
}

// ClampCandidates sanitizes advisory match suggestions: the tier is forced
// to soft (advice alone never auto-links), confidence is capped below the
// hard tier, and candidates must point at a real pool customer.
func ClampCandidates(proposals []matching.Candidate, pool []matching.PoolRecord) []matching.Candidate {
	known := make(map[string]bool, len(pool))
	for _, rec := range pool {
		known[rec.ID.String()] = true
	}

	var kept []matching.Candidate
	for _, c := range proposals {
		if !known[c.CandidateID.String()] {
			log.Printf("advisor: dropping match suggestion for unknown customer %s", c.CandidateID)
			continue
		}
		c.Tier = matching.TierSoft
		if c.Confidence > matching.SoftConfidence {
			c.Confidence = matching.SoftConfidence
		}
		if c.Confidence < 0 {
			c.Confidence = 0
		}
		kept = append(kept, c)
	}
	return kept
}
