package reconciliation

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"lending-import-backend/internal/models"
	"lending-import-backend/internal/services/matching"
)

// Store is the persistence surface the workflow needs. The mutating calls
// are idempotent under retry: replaying one produces the same end state,
// never a duplicate.
type Store interface {
	ListCustomers() ([]matching.PoolRecord, error)
	LoansRequiringMapping() ([]models.Loan, error)

	EnsureCase(c *models.OrphanCase) (*models.OrphanCase, error)
	UnresolvedCases() ([]models.OrphanCase, error)
	GetCase(id uuid.UUID) (*models.OrphanCase, error)
	SaveCase(c *models.OrphanCase) error

	LinkLoanToCustomer(loanID, customerID uuid.UUID) error
	CreateCustomer(fields map[string]string) (uuid.UUID, error)
	MarkOrphanResolved(loanID uuid.UUID, resolution string) error

	AppendAudit(entry *models.MatchAuditLog) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// RawIdentity is what gets captured from the loan record into the case,
// and what a created customer is built from.
type RawIdentity struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	NationalID string `json:"nationalId"`
	Email      string `json:"email"`
}

// Scan detects orphaned loans and refreshes suggestions for every case
// still unresolved. Detection keys off the loan's own mapping status, so
// re-running after partial commits never re-surfaces resolved cases. The
// pool may have grown since import, which is the point of re-matching.
func (s *Service) Scan() ([]models.OrphanCase, error) {
	loans, err := s.store.LoansRequiringMapping()
	if err != nil {
		return nil, err
	}
	pool, err := s.store.ListCustomers()
	if err != nil {
		return nil, err
	}
	index := matching.NewPoolIndex(pool)

	var pending []models.OrphanCase
	for _, loan := range loans {
		identity := RawIdentity{FullName: loan.CustomerName}
		identityJSON, _ := json.Marshal(identity)

		c, err := s.store.EnsureCase(&models.OrphanCase{
			ID:                uuid.New(),
			LoanID:            loan.ID,
			RawIdentityFields: identityJSON,
			Resolution:        models.ResolutionUnresolved,
			CreatedAt:         time.Now(),
		})
		if err != nil {
			return nil, err
		}
		if c.Terminal() {
			continue
		}

		result := index.Match(identityFromCase(c))
		if len(result.Candidates) > 0 {
			suggestion, _ := json.Marshal(result.Candidates[0])
			c.SuggestedMatch = suggestion
		} else {
			c.SuggestedMatch = nil
		}
		if err := s.store.SaveCase(c); err != nil {
			return nil, err
		}
		pending = append(pending, *c)
	}
	return pending, nil
}

func identityFromCase(c *models.OrphanCase) matching.Identity {
	var raw RawIdentity
	_ = json.Unmarshal(c.RawIdentityFields, &raw)
	return matching.Identity{
		FullName:   raw.FullName,
		Phone:      raw.Phone,
		NationalID: raw.NationalID,
		Email:      raw.Email,
	}
}

// Pending lists the unresolved cases awaiting an operator.
func (s *Service) Pending() ([]models.OrphanCase, error) {
	return s.store.UnresolvedCases()
}

// DecisionKind is the operator's choice for one case.
type DecisionKind string

const (
	DecideConfirm DecisionKind = "confirm" // accept the suggested match
	DecideManual  DecisionKind = "manual"  // link a customer found by search
	DecideCreate  DecisionKind = "create"  // new customer from the raw fields
	DecideSkip    DecisionKind = "skip"
)

type Decision struct {
	CaseID      uuid.UUID         `json:"case_id"`
	Kind        DecisionKind      `json:"kind"`
	CustomerID  *uuid.UUID        `json:"customer_id,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
	PerformedBy string            `json:"performed_by"`
}

// Resolve applies one operator decision. Resolved cases are terminal:
// resolving one again returns it unchanged.
func (s *Service) Resolve(d Decision) (*models.OrphanCase, error) {
	c, err := s.store.GetCase(d.CaseID)
	if err != nil {
		return nil, err
	}
	if c.Terminal() {
		return c, nil
	}

	var (
		resolution string
		customerID *uuid.UUID
	)

	switch d.Kind {
	case DecideConfirm:
		var suggested matching.Candidate
		if len(c.SuggestedMatch) == 0 || json.Unmarshal(c.SuggestedMatch, &suggested) != nil {
			return nil, fmt.Errorf("case %s has no suggested match to confirm", d.CaseID)
		}
		id := suggested.CandidateID
		customerID = &id
		resolution = models.ResolutionLinked

	case DecideManual:
		if d.CustomerID == nil {
			return nil, fmt.Errorf("manual decision for case %s needs a customer id", d.CaseID)
		}
		customerID = d.CustomerID
		resolution = models.ResolutionLinked

	case DecideCreate:
		fields := d.Fields
		if len(fields) == 0 {
			var raw RawIdentity
			_ = json.Unmarshal(c.RawIdentityFields, &raw)
			fields = map[string]string{
				"fullName":   raw.FullName,
				"phone":      raw.Phone,
				"nationalId": raw.NationalID,
				"email":      raw.Email,
			}
		}
		id, err := s.store.CreateCustomer(fields)
		if err != nil {
			return nil, err
		}
		customerID = &id
		resolution = models.ResolutionCreated

	case DecideSkip:
		resolution = models.ResolutionSkipped

	default:
		return nil, fmt.Errorf("unknown decision kind %q", d.Kind)
	}

	if customerID != nil {
		if err := s.store.LinkLoanToCustomer(c.LoanID, *customerID); err != nil {
			return nil, err
		}
	}
	if err := s.store.MarkOrphanResolved(c.LoanID, resolution); err != nil {
		return nil, err
	}

	now := time.Now()
	c.Resolution = resolution
	c.ResolvedCustomerID = customerID
	c.ResolvedAt = &now
	if err := s.store.SaveCase(c); err != nil {
		return nil, err
	}

	if err := s.store.AppendAudit(&models.MatchAuditLog{
		ID:          uuid.New(),
		LoanID:      c.LoanID,
		Action:      "orphan_" + resolution,
		NewCustomer: customerID,
		PerformedBy: d.PerformedBy,
		Reason:      string(d.Kind),
		CreatedAt:   time.Now(),
	}); err != nil {
		log.Printf("reconciliation: audit write failed for loan %s: %v", c.LoanID, err)
	}
	return c, nil
}

type CaseFailure struct {
	CaseID uuid.UUID `json:"case_id"`
	Error  string    `json:"error"`
}

type BulkResult struct {
	Resolved int           `json:"resolved"`
	Failures []CaseFailure `json:"failures"`
}

// Commit applies a batch of decisions one case at a time. A failure is
// captured per case and never rolls back or blocks the others.
func (s *Service) Commit(decisions []Decision) BulkResult {
	var result BulkResult
	for _, d := range decisions {
		if _, err := s.Resolve(d); err != nil {
			result.Failures = append(result.Failures, CaseFailure{CaseID: d.CaseID, Error: err.Error()})
			continue
		}
		result.Resolved++
	}
	return result
}
