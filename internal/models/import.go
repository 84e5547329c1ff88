package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	BatchProcessing = "processing"
	BatchCompleted  = "completed"
	BatchFailed     = "failed"
)

type ImportBatch struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Filename         string
	Kind             string // customers | loans | mixed
	Mappings         datatypes.JSON
	AdvisoryHints    datatypes.JSON
	TotalRows        int
	ProcessedCount   int
	ReadyCount       int
	NeedsReviewCount int
	InvalidCount     int
	Status           string
	StartedAt        time.Time
	CompletedAt      *time.Time
	CreatedAt        time.Time
}

// ImportRow stores one source row together with the decision derived for it.
// The decision never exists in the store apart from its raw row.
type ImportRow struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	BatchID           uuid.UUID `gorm:"index"`
	RowIndex          int
	RawRow            datatypes.JSON
	Status            string `gorm:"index"` // ready | needs_review | invalid
	Action            string // create | link | skip
	Issues            datatypes.JSON
	MatchCandidates   datatypes.JSON
	CommittedRecordID *uuid.UUID
	CreatedAt         time.Time
}
