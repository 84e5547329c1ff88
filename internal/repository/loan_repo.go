package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lending-import-backend/internal/models"
)

type LoanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

func (r *LoanRepository) DB() *gorm.DB {
	return r.db
}

func (r *LoanRepository) GetByID(id uuid.UUID) (*models.Loan, error) {
	var loan models.Loan
	if err := r.db.First(&loan, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

// FindRequiresMapping lists the loans the orphan scan feeds on. Resolved
// loans carry a different status, which keeps re-scans idempotent.
func (r *LoanRepository) FindRequiresMapping() ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.
		Where("status = ?", models.LoanRequiresMapping).
		Order("created_at ASC").
		Find(&loans).Error
	return loans, err
}

// CreateIdempotent inserts a loan under its caller-chosen ID; replaying
// the same insert is a no-op.
func (r *LoanRepository) CreateIdempotent(loan *models.Loan) error {
	if loan.CreatedAt.IsZero() {
		loan.CreatedAt = time.Now()
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(loan).Error
}

// LinkToCustomer sets the loan's owner and marks it linked. The update is
// absolute, so retries land on the same end state.
func (r *LoanRepository) LinkToCustomer(loanID, customerID uuid.UUID) error {
	return r.db.Model(&models.Loan{}).
		Where("id = ?", loanID).
		Updates(map[string]interface{}{
			"customer_id": customerID,
			"status":      models.LoanLinked,
		}).Error
}

// MarkStatus sets the loan's mapping status without touching ownership.
func (r *LoanRepository) MarkStatus(loanID uuid.UUID, status string) error {
	return r.db.Model(&models.Loan{}).
		Where("id = ?", loanID).
		Update("status", status).Error
}
