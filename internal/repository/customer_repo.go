package repository

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lending-import-backend/internal/models"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Expose DB if needed
func (r *CustomerRepository) DB() *gorm.DB {
	return r.db
}

// GetAll returns the tenant's full customer pool for matching.
func (r *CustomerRepository) GetAll() ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.Find(&customers).Error
	return customers, err
}

func (r *CustomerRepository) GetByID(id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) FindByNationalID(nationalID string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, "national_id = ?", nationalID).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// Search is used for the manual-match side panel: name substring plus
// exact phone or national ID.
func (r *CustomerRepository) Search(query string, limit int) ([]models.Customer, error) {
	var customers []models.Customer
	if limit <= 0 {
		limit = 20
	}
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	err := r.db.
		Where("LOWER(full_name) LIKE ? OR phone = ? OR national_id = ?", like, query, query).
		Limit(limit).
		Find(&customers).Error
	return customers, err
}

// CreateIdempotent inserts a customer, keyed on national ID when one is
// present. Retrying the same create returns the already-stored customer
// rather than a duplicate.
func (r *CustomerRepository) CreateIdempotent(c *models.Customer) (*models.Customer, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	if c.NationalID != "" {
		res := r.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "national_id"}},
			DoNothing: true,
		}).Create(c)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return r.FindByNationalID(c.NationalID)
		}
		return c, nil
	}

	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}
