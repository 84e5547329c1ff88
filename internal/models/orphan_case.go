package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OrphanCase resolutions. Anything other than unresolved is terminal.
const (
	ResolutionUnresolved = "unresolved"
	ResolutionLinked     = "linked"
	ResolutionCreated    = "created"
	ResolutionSkipped    = "skipped"
)

type OrphanCase struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	LoanID             uuid.UUID `gorm:"uniqueIndex"`
	RawIdentityFields  datatypes.JSON
	SuggestedMatch     datatypes.JSON
	Resolution         string `gorm:"index"`
	ResolvedCustomerID *uuid.UUID
	CreatedAt          time.Time
	ResolvedAt         *time.Time
}

func (c *OrphanCase) Terminal() bool {
	return c.Resolution != "" && c.Resolution != ResolutionUnresolved
}
