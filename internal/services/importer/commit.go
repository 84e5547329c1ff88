package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"lending-import-backend/internal/models"
	"lending-import-backend/internal/services/classify"
	"lending-import-backend/internal/services/matching"
	"lending-import-backend/internal/services/schema"
	"lending-import-backend/internal/services/validation"
)

type RowFailure struct {
	RowID    uuid.UUID `json:"row_id"`
	RowIndex int       `json:"row_index"`
	Error    string    `json:"error"`
}

type CommitResult struct {
	CustomersCreated int          `json:"customers_created"`
	LoansCreated     int          `json:"loans_created"`
	Linked           int          `json:"linked"`
	RequiresMapping  int          `json:"requires_mapping"`
	Failures         []RowFailure `json:"failures"`
}

// CommitBatch persists every ready row of the batch. Rows flagged
// needs_review are excluded; they go through ConfirmRow one by one. A
// failing row is captured in the result and never aborts the rest.
func (s *Service) CommitBatch(ctx context.Context, batchID uuid.UUID) (CommitResult, error) {
	var result CommitResult

	batch, err := s.GetBatch(batchID)
	if err != nil {
		return result, err
	}

	var mappings []schema.FieldMapping
	if err := json.Unmarshal(batch.Mappings, &mappings); err != nil {
		return result, fmt.Errorf("batch %s has no usable mappings: %w", batchID, err)
	}

	var rows []models.ImportRow
	if err := s.db.
		Where("batch_id = ? AND status = ? AND committed_record_id IS NULL", batchID, string(classify.StatusReady)).
		Order("row_index ASC").
		Find(&rows).Error; err != nil {
		return result, err
	}

	for i := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.commitRow(batch, mappings, &rows[i], nil, &result); err != nil {
			result.Failures = append(result.Failures, RowFailure{
				RowID:    rows[i].ID,
				RowIndex: rows[i].RowIndex,
				Error:    err.Error(),
			})
		}
	}
	return result, nil
}

// ConfirmRow is the manual gate for needs_review rows: an operator either
// accepts the row as decided or overrides the target customer. Confirming
// an already-committed row is a no-op.
func (s *Service) ConfirmRow(ctx context.Context, rowID uuid.UUID, overrideCustomer *uuid.UUID, performedBy string) (*models.ImportRow, error) {
	var row models.ImportRow
	if err := s.db.First(&row, "id = ?", rowID).Error; err != nil {
		return nil, err
	}
	if row.CommittedRecordID != nil {
		return &row, nil
	}
	if row.Status == string(classify.StatusInvalid) {
		return nil, fmt.Errorf("row %d is invalid and cannot be committed", row.RowIndex)
	}

	batch, err := s.GetBatch(row.BatchID)
	if err != nil {
		return nil, err
	}
	var mappings []schema.FieldMapping
	if err := json.Unmarshal(batch.Mappings, &mappings); err != nil {
		return nil, err
	}

	var result CommitResult
	if err := s.commitRow(batch, mappings, &row, overrideCustomer, &result); err != nil {
		return nil, err
	}
	if overrideCustomer != nil {
		s.db.Create(&models.MatchAuditLog{
			ID:          uuid.New(),
			LoanID:      row.ID,
			Action:      "manual_confirm",
			NewCustomer: overrideCustomer,
			PerformedBy: performedBy,
			Reason:      "operator override on needs_review row",
			CreatedAt:   time.Now(),
		})
	}
	return &row, nil
}

func (s *Service) commitRow(batch *models.ImportBatch, mappings []schema.FieldMapping, row *models.ImportRow, overrideCustomer *uuid.UUID, result *CommitResult) error {
	var raw map[string]string
	if err := json.Unmarshal(row.RawRow, &raw); err != nil {
		return fmt.Errorf("corrupt raw row: %w", err)
	}

	linkTarget, err := s.resolveLinkTarget(row, overrideCustomer)
	if err != nil {
		return err
	}

	kind := schema.ImportKind(batch.Kind)
	var committed uuid.UUID

	switch kind {
	case schema.KindCustomers:
		id, created, err := s.commitCustomer(raw, mappings, linkTarget)
		if err != nil {
			return err
		}
		if created {
			result.CustomersCreated++
		} else {
			result.Linked++
		}
		committed = id

	case schema.KindLoans:
		id, err := s.commitLoan(raw, mappings, row, linkTarget, result)
		if err != nil {
			return err
		}
		committed = id

	case schema.KindMixed:
		customerID, created, err := s.commitCustomer(raw, mappings, linkTarget)
		if err != nil {
			return err
		}
		if created {
			result.CustomersCreated++
		} else {
			result.Linked++
		}
		committed = customerID
		if validation.Resolve(raw, mappings, schema.FieldAmount) != "" {
			if loanID, err := s.commitLoan(raw, mappings, row, &customerID, result); err != nil {
				return err
			} else {
				committed = loanID
			}
		}

	default:
		return fmt.Errorf("batch %s has unknown kind %q", batch.ID, batch.Kind)
	}

	row.CommittedRecordID = &committed
	return s.db.Model(&models.ImportRow{}).
		Where("id = ?", row.ID).
		Update("committed_record_id", committed).Error
}

// resolveLinkTarget picks the customer a link-action row points at: the
// operator's override when present, otherwise the row's hard candidate.
func (s *Service) resolveLinkTarget(row *models.ImportRow, overrideCustomer *uuid.UUID) (*uuid.UUID, error) {
	if overrideCustomer != nil {
		if _, err := s.customers.GetByID(*overrideCustomer); err != nil {
			return nil, fmt.Errorf("override customer %s not found: %w", overrideCustomer, err)
		}
		return overrideCustomer, nil
	}
	if row.Action != string(classify.ActionLink) {
		return nil, nil
	}

	var candidates []matching.Candidate
	if err := json.Unmarshal(row.MatchCandidates, &candidates); err != nil {
		return nil, fmt.Errorf("corrupt match candidates: %w", err)
	}
	for _, c := range candidates {
		if c.Tier == matching.TierHard {
			id := c.CandidateID
			return &id, nil
		}
	}
	return nil, fmt.Errorf("row %d has action link but no hard-tier candidate", row.RowIndex)
}

// commitCustomer links to an existing customer when a target is known,
// otherwise creates one idempotently keyed on national ID.
func (s *Service) commitCustomer(raw map[string]string, mappings []schema.FieldMapping, linkTarget *uuid.UUID) (uuid.UUID, bool, error) {
	if linkTarget != nil {
		return *linkTarget, false, nil
	}
	customer := buildCustomer(raw, mappings)
	stored, err := s.customers.CreateIdempotent(&customer)
	if err != nil {
		return uuid.Nil, false, err
	}
	return stored.ID, true, nil
}

// commitLoan inserts the loan under the row's own ID, which makes a retry
// of the same commit a no-op. Loans without a resolvable owner are stored
// as requires_mapping and picked up by the reconciliation scan.
func (s *Service) commitLoan(raw map[string]string, mappings []schema.FieldMapping, row *models.ImportRow, customerID *uuid.UUID, result *CommitResult) (uuid.UUID, error) {
	loan := buildLoan(raw, mappings)
	loan.ID = row.ID

	if customerID == nil {
		if ref := validation.Resolve(raw, mappings, schema.FieldCustomerID); ref != "" {
			if id, err := uuid.Parse(ref); err == nil {
				if _, err := s.customers.GetByID(id); err == nil {
					customerID = &id
				}
			}
		}
	}

	if customerID != nil {
		loan.CustomerID = customerID
		loan.Status = models.LoanLinked
		result.Linked++
	} else {
		loan.Status = models.LoanRequiresMapping
		result.RequiresMapping++
	}

	if err := s.loans.CreateIdempotent(&loan); err != nil {
		return uuid.Nil, err
	}
	result.LoansCreated++
	return loan.ID, nil
}

func buildCustomer(raw map[string]string, mappings []schema.FieldMapping) models.Customer {
	resolve := func(field string) string { return validation.Resolve(raw, mappings, field) }

	income, _ := validation.ParseAmount(resolve(schema.FieldMonthlyIncome))
	return models.Customer{
		FullName:         resolve(schema.FieldFullName),
		Phone:            resolve(schema.FieldPhone),
		NationalID:       resolve(schema.FieldNationalID),
		Email:            resolve(schema.FieldEmail),
		Address:          resolve(schema.FieldAddress),
		EmploymentStatus: resolve(schema.FieldEmploymentStatus),
		MonthlyIncome:    income,
		Employer:         resolve(schema.FieldEmployer),
		JobTitle:         resolve(schema.FieldJobTitle),
	}
}

func buildLoan(raw map[string]string, mappings []schema.FieldMapping) models.Loan {
	resolve := func(field string) string { return validation.Resolve(raw, mappings, field) }

	amount, _ := validation.ParseAmount(resolve(schema.FieldAmount))
	months, _ := strconv.Atoi(resolve(schema.FieldDurationMonths))

	rate, err := strconv.ParseFloat(strings.TrimSuffix(resolve(schema.FieldInterestRate), "%"), 64)
	if err != nil || rate < 0 || rate > 100 {
		rate = 0 // substituted with the product default downstream
	}

	name := resolve(schema.FieldCustomerName)
	if name == "" {
		name = resolve(schema.FieldFullName)
	}

	loan := models.Loan{
		CustomerName:   name,
		Amount:         amount,
		InterestRate:   rate,
		DurationMonths: months,
		LoanType:       resolve(schema.FieldLoanType),
	}

	if v := resolve(schema.FieldDisbursementDate); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			loan.DisbursementDate = &t
		} else if t, err := time.Parse("02-01-2006", v); err == nil {
			loan.DisbursementDate = &t
		}
	}

	switch strings.ToLower(resolve(schema.FieldCollateralIncluded)) {
	case "yes", "true", "y", "1":
		loan.CollateralIncluded = true
	}
	return loan
}
