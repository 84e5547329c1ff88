package models

import (
	"time"

	"github.com/google/uuid"
)

// Loan mapping statuses. Orphan detection scans on requires_mapping only,
// so resolved loans are never re-surfaced.
const (
	LoanRequiresMapping = "requires_mapping"
	LoanLinked          = "linked"
	LoanSkipped         = "skipped"
)

type Loan struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID         *uuid.UUID `gorm:"index"`
	CustomerName       string     // raw name as imported
	Amount             float64    `gorm:"index"`
	InterestRate       float64
	DurationMonths     int
	LoanType           string
	DisbursementDate   *time.Time
	CollateralIncluded bool
	Status             string `gorm:"index"`
	CreatedAt          time.Time
}
