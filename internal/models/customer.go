package models

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName         string    `gorm:"index"`
	Phone            string    `gorm:"index"`
	NationalID       string    `gorm:"column:national_id;uniqueIndex"`
	Email            string
	Address          string
	EmploymentStatus string
	MonthlyIncome    float64
	Employer         string
	JobTitle         string
	CreatedAt        time.Time
}
