package classify

import (
	"lending-import-backend/internal/services/matching"
	"lending-import-backend/internal/services/validation"
)

type RowStatus string

const (
	StatusReady       RowStatus = "ready"
	StatusNeedsReview RowStatus = "needs_review"
	StatusInvalid     RowStatus = "invalid"
)

type RowAction string

const (
	ActionCreate RowAction = "create"
	ActionLink   RowAction = "link"
	ActionSkip   RowAction = "skip"
)

// Decision is the per-row outcome of the import pipeline.
type Decision struct {
	RowIndex   int                  `json:"row_index"`
	Status     RowStatus            `json:"status"`
	Action     RowAction            `json:"action"`
	Issues     []validation.Issue   `json:"issues"`
	Candidates []matching.Candidate `json:"candidates"`
	Ambiguous  bool                 `json:"ambiguous"`
}

// Classify combines the validator's issues and the matcher's result into
// one decision. Recoverability comes before rejection: a row with errors
// but some usable identity data is flagged for review, not dropped.
func Classify(rowIndex int, issues []validation.Issue, match matching.Result, hasUsableData bool) Decision {
	d := Decision{
		RowIndex:   rowIndex,
		Issues:     issues,
		Candidates: match.Candidates,
		Ambiguous:  match.Ambiguous,
	}

	hasError := false
	for _, issue := range issues {
		if issue.Severity == validation.SeverityError {
			hasError = true
			break
		}
	}

	_, hasHard := match.HardCandidate()
	softOnly := !hasHard && len(match.Candidates) > 0

	switch {
	case hasError && !hasUsableData:
		d.Status = StatusInvalid
	case hasError || match.Ambiguous || softOnly:
		d.Status = StatusNeedsReview
	default:
		d.Status = StatusReady
	}

	switch {
	case d.Status == StatusInvalid:
		d.Action = ActionSkip
	case hasHard && !match.Ambiguous:
		d.Action = ActionLink
	default:
		d.Action = ActionCreate
	}

	return d
}
