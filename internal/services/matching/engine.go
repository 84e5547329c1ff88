package matching

import (
	"log"

	"github.com/google/uuid"
)

type Tier string

const (
	TierHard Tier = "hard"
	TierSoft Tier = "soft"
)

// Hint tells the classifier what the match outcome supports.
type Hint string

const (
	HintLink      Hint = "link"
	HintReview    Hint = "review"
	HintCreateNew Hint = "create_new"
)

// Fixed confidences per tier. Only hard-tier equality may drive an
// automatic link; soft name similarity always goes through review.
const (
	PhoneConfidence      = 0.95
	NationalIDConfidence = 0.95
	EmailConfidence      = 0.90
	SoftConfidence       = 0.75
	SoftThreshold        = 0.8
)

// Identity carries the raw identity attributes of one import row.
type Identity struct {
	FullName   string
	Phone      string
	NationalID string
	Email      string
}

func (id Identity) empty() bool {
	return id.FullName == "" && id.Phone == "" && id.NationalID == "" && id.Email == ""
}

// PoolRecord is the read-only view of an existing customer the matcher
// compares against.
type PoolRecord struct {
	ID         uuid.UUID
	FullName   string
	Phone      string
	NationalID string
	Email      string
}

type Candidate struct {
	CandidateID   uuid.UUID `json:"candidate_id"`
	DisplayName   string    `json:"display_name"`
	Confidence    float64   `json:"confidence"`
	MatchedFields []string  `json:"matched_fields"`
	Tier          Tier      `json:"tier"`
}

type Result struct {
	Candidates []Candidate `json:"candidates"`
	Ambiguous  bool        `json:"ambiguous"`
	Hint       Hint        `json:"hint"`
}

// PoolIndex holds the tenant's customer pool keyed by normalized identity
// values for O(1) hard-match probes. It is read-only after construction
// and safe to share across row workers.
type PoolIndex struct {
	records      []PoolRecord
	byPhone      map[string][]PoolRecord
	byNationalID map[string][]PoolRecord
	byEmail      map[string][]PoolRecord
}

func NewPoolIndex(pool []PoolRecord) *PoolIndex {
	ix := &PoolIndex{
		records:      pool,
		byPhone:      make(map[string][]PoolRecord),
		byNationalID: make(map[string][]PoolRecord),
		byEmail:      make(map[string][]PoolRecord),
	}
	for _, rec := range pool {
		if p := NormalizePhone(rec.Phone); p != "" {
			ix.byPhone[p] = append(ix.byPhone[p], rec)
		}
		if n := NormalizeNationalID(rec.NationalID); n != "" {
			ix.byNationalID[n] = append(ix.byNationalID[n], rec)
		}
		if e := NormalizeEmail(rec.Email); e != "" {
			ix.byEmail[e] = append(ix.byEmail[e], rec)
		}
	}
	return ix
}

func (ix *PoolIndex) Size() int {
	return len(ix.records)
}

// Records exposes the indexed pool for callers that need the raw list.
func (ix *PoolIndex) Records() []PoolRecord {
	return ix.records
}

// Match runs the two-tier cascade for one identity: exact equality on
// phone, national ID then email, falling back to name similarity when no
// hard candidate exists. Distinct customers reached through hard fields
// make the identity ambiguous and force review.
func (ix *PoolIndex) Match(id Identity) Result {
	if id.empty() || len(ix.records) == 0 {
		return Result{Hint: HintCreateNew}
	}

	type hardHit struct {
		rec        PoolRecord
		field      string
		confidence float64
	}
	var hits []hardHit
	distinct := make(map[uuid.UUID]bool)

	probe := func(index map[string][]PoolRecord, key, field string, confidence float64) {
		if key == "" {
			return
		}
		for _, rec := range index[key] {
			hits = append(hits, hardHit{rec: rec, field: field, confidence: confidence})
			distinct[rec.ID] = true
		}
	}

	probe(ix.byPhone, NormalizePhone(id.Phone), "phone", PhoneConfidence)
	probe(ix.byNationalID, NormalizeNationalID(id.NationalID), "nationalId", NationalIDConfidence)
	probe(ix.byEmail, NormalizeEmail(id.Email), "email", EmailConfidence)

	if len(distinct) > 1 {
		log.Printf("matching: ambiguous identity, %d distinct customers share hard identifiers", len(distinct))
		return Result{Ambiguous: true, Hint: HintReview}
	}
	if len(hits) > 0 {
		// All hits point at the same customer. Keep the highest-priority
		// field's confidence and report every matched field.
		cand := Candidate{
			CandidateID: hits[0].rec.ID,
			DisplayName: hits[0].rec.FullName,
			Confidence:  hits[0].confidence,
			Tier:        TierHard,
		}
		seen := make(map[string]bool)
		for _, h := range hits {
			if !seen[h.field] {
				cand.MatchedFields = append(cand.MatchedFields, h.field)
				seen[h.field] = true
			}
		}
		return Result{Candidates: []Candidate{cand}, Hint: HintLink}
	}

	return ix.softMatch(id)
}

// softMatch compares normalized full names across the whole pool. A single
// survivor above the threshold becomes a soft candidate; several survivors
// are ambiguous and yield no candidate at all.
func (ix *PoolIndex) softMatch(id Identity) Result {
	name := NormalizeName(id.FullName)
	if name == "" {
		return Result{Hint: HintCreateNew}
	}

	var survivors []PoolRecord
	for _, rec := range ix.records {
		if Similarity(name, NormalizeName(rec.FullName)) > SoftThreshold {
			survivors = append(survivors, rec)
		}
	}

	switch len(survivors) {
	case 0:
		return Result{Hint: HintCreateNew}
	case 1:
		return Result{
			Candidates: []Candidate{{
				CandidateID:   survivors[0].ID,
				DisplayName:   survivors[0].FullName,
				Confidence:    SoftConfidence,
				MatchedFields: []string{"fullName"},
				Tier:          TierSoft,
			}},
			Hint: HintReview,
		}
	default:
		log.Printf("matching: %d pool customers within name-similarity threshold of %q, needs review", len(survivors), id.FullName)
		return Result{Ambiguous: true, Hint: HintReview}
	}
}

// HardCandidate returns the result's hard-tier candidate, if any.
func (r Result) HardCandidate() (Candidate, bool) {
	for _, c := range r.Candidates {
		if c.Tier == TierHard {
			return c, true
		}
	}
	return Candidate{}, false
}
