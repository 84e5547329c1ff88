package models

import (
	"time"

	"github.com/google/uuid"
)

type MatchAuditLog struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	LoanID           uuid.UUID `gorm:"index"`
	Action           string
	PreviousCustomer *uuid.UUID
	NewCustomer      *uuid.UUID
	PerformedBy      string
	Reason           string
	CreatedAt        time.Time
}
