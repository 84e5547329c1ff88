package reconciliation

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"lending-import-backend/internal/models"
	"lending-import-backend/internal/repository"
	"lending-import-backend/internal/services/importer"
	"lending-import-backend/internal/services/matching"
)

// gormStore backs the workflow with the shared Postgres store.
type gormStore struct {
	db        *gorm.DB
	customers *repository.CustomerRepository
	loans     *repository.LoanRepository
}

func NewStore(customers *repository.CustomerRepository, loans *repository.LoanRepository) Store {
	return &gormStore{
		db:        customers.DB(),
		customers: customers,
		loans:     loans,
	}
}

func (s *gormStore) ListCustomers() ([]matching.PoolRecord, error) {
	customers, err := s.customers.GetAll()
	if err != nil {
		return nil, err
	}
	return importer.PoolRecords(customers), nil
}

func (s *gormStore) LoansRequiringMapping() ([]models.Loan, error) {
	return s.loans.FindRequiresMapping()
}

// EnsureCase creates the case for a loan unless one already exists, in
// which case the stored one wins, terminal or not.
func (s *gormStore) EnsureCase(c *models.OrphanCase) (*models.OrphanCase, error) {
	var stored models.OrphanCase
	err := s.db.Where("loan_id = ?", c.LoanID).Attrs(*c).FirstOrCreate(&stored).Error
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *gormStore) UnresolvedCases() ([]models.OrphanCase, error) {
	var cases []models.OrphanCase
	err := s.db.
		Where("resolution = ?", models.ResolutionUnresolved).
		Order("created_at ASC").
		Find(&cases).Error
	return cases, err
}

func (s *gormStore) GetCase(id uuid.UUID) (*models.OrphanCase, error) {
	var c models.OrphanCase
	if err := s.db.First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *gormStore) SaveCase(c *models.OrphanCase) error {
	return s.db.Save(c).Error
}

func (s *gormStore) LinkLoanToCustomer(loanID, customerID uuid.UUID) error {
	return s.loans.LinkToCustomer(loanID, customerID)
}

func (s *gormStore) CreateCustomer(fields map[string]string) (uuid.UUID, error) {
	customer := models.Customer{
		FullName:   fields["fullName"],
		Phone:      fields["phone"],
		NationalID: fields["nationalId"],
		Email:      fields["email"],
		Address:    fields["address"],
	}
	stored, err := s.customers.CreateIdempotent(&customer)
	if err != nil {
		return uuid.Nil, err
	}
	return stored.ID, nil
}

func (s *gormStore) MarkOrphanResolved(loanID uuid.UUID, resolution string) error {
	// Linked loans already carry their status from LinkLoanToCustomer;
	// a skip is the only resolution that changes it here.
	if resolution == models.ResolutionSkipped {
		return s.loans.MarkStatus(loanID, models.LoanSkipped)
	}
	return nil
}

func (s *gormStore) AppendAudit(entry *models.MatchAuditLog) error {
	return s.db.Create(entry).Error
}
