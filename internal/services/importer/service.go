package importer

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"lending-import-backend/internal/models"
	"lending-import-backend/internal/repository"
	"lending-import-backend/internal/services/advisor"
	"lending-import-backend/internal/services/classify"
	"lending-import-backend/internal/services/matching"
	"lending-import-backend/internal/services/schema"
)

const (
	defaultMaxConcurrent = 8
	advisoryTimeout      = 5 * time.Second
	progressEvery        = 100
	sampleRowCount       = 5
)

type Service struct {
	customers     *repository.CustomerRepository
	loans         *repository.LoanRepository
	suggester     advisor.Suggester
	db            *gorm.DB
	maxConcurrent int
}

func NewService(
	customers *repository.CustomerRepository,
	loans *repository.LoanRepository,
	suggester advisor.Suggester,
	maxConcurrent int,
) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &Service{
		customers:     customers,
		loans:         loans,
		suggester:     suggester,
		db:            customers.DB(),
		maxConcurrent: maxConcurrent,
	}
}

// CreateBatch creates a new ImportBatch in DB
func (s *Service) CreateBatch(filename string) *models.ImportBatch {
	batch := &models.ImportBatch{
		ID:        uuid.New(),
		Filename:  filename,
		Status:    models.BatchProcessing,
		StartedAt: time.Now(),
		CreatedAt: time.Now(),
	}
	s.db.Create(batch)
	return batch
}

func (s *Service) GetBatch(batchID uuid.UUID) (*models.ImportBatch, error) {
	var batch models.ImportBatch
	if err := s.db.First(&batch, "id = ?", batchID).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// RunBatch maps the dataset's headers, then validates, matches and
// classifies every row on a bounded worker pool. Each decided row is
// persisted together with its raw source row; cancelling mid-batch leaves
// already-persisted rows intact and the batch resumable.
func (s *Service) RunBatch(ctx context.Context, batchID uuid.UUID, ds Dataset) error {
	mappings := schema.InferMappings(ds.Headers)
	mappings = append(mappings, advisor.ConsultMappings(ctx, s.suggester, advisoryTimeout, ds.Headers, sampleRows(ds), mappings)...)
	kind := schema.DetectKind(mappings)

	mappingsJSON, _ := json.Marshal(mappings)
	if err := s.db.Model(&models.ImportBatch{}).
		Where("id = ?", batchID).
		Updates(map[string]interface{}{
			"kind":       string(kind),
			"mappings":   mappingsJSON,
			"total_rows": len(ds.Rows),
		}).Error; err != nil {
		return err
	}

	// The customer pool being unreachable is the one fatal condition, as
	// opposed to per-row data problems.
	pool, err := s.customers.GetAll()
	if err != nil {
		s.markBatchFailed(batchID)
		return err
	}
	index := matching.NewPoolIndex(PoolRecords(pool))

	var processed int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for i, row := range ds.Rows {
		i, row := i, row
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			decision := DecideRow(i, row, mappings, kind, index)
			if err := s.persistRow(batchID, row, decision); err != nil {
				return err
			}
			if n := atomic.AddInt64(&processed, 1); n%progressEvery == 0 {
				s.updateProgress(batchID, int(n))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Printf("importer: batch %s interrupted after %d rows: %v", batchID, atomic.LoadInt64(&processed), err)
		s.markBatchFailed(batchID)
		return err
	}

	s.attachAdvisoryHints(batchID, ds, index.Records())

	return s.finalizeBatch(batchID, len(ds.Rows))
}

func sampleRows(ds Dataset) []map[string]string {
	if len(ds.Rows) <= sampleRowCount {
		return ds.Rows
	}
	return ds.Rows[:sampleRowCount]
}

// PoolRecords converts stored customers into the matcher's read-only view.
func PoolRecords(customers []models.Customer) []matching.PoolRecord {
	records := make([]matching.PoolRecord, 0, len(customers))
	for _, c := range customers {
		records = append(records, matching.PoolRecord{
			ID:         c.ID,
			FullName:   c.FullName,
			Phone:      c.Phone,
			NationalID: c.NationalID,
			Email:      c.Email,
		})
	}
	return records
}

func (s *Service) persistRow(batchID uuid.UUID, row map[string]string, decision classify.Decision) error {
	rawJSON, _ := json.Marshal(row)
	issuesJSON, _ := json.Marshal(decision.Issues)
	candidatesJSON, _ := json.Marshal(decision.Candidates)

	record := &models.ImportRow{
		ID:              uuid.New(),
		BatchID:         batchID,
		RowIndex:        decision.RowIndex,
		RawRow:          rawJSON,
		Status:          string(decision.Status),
		Action:          string(decision.Action),
		Issues:          issuesJSON,
		MatchCandidates: candidatesJSON,
		CreatedAt:       time.Now(),
	}
	return s.db.Create(record).Error
}

// attachAdvisoryHints asks the optional suggester for match hints over
// the batch and stores the clamped survivors for the review panel. Any
// failure is logged and ignored; rule-based decisions stand on their own.
func (s *Service) attachAdvisoryHints(batchID uuid.UUID, ds Dataset, pool []matching.PoolRecord) {
	if s.suggester == nil || len(pool) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), advisoryTimeout)
	defer cancel()

	proposals, err := s.suggester.SuggestMatches(ctx, sampleRows(ds), pool)
	if err != nil {
		log.Printf("importer: match suggestions unavailable for batch %s: %v", batchID, err)
		return
	}
	clamped := advisor.ClampCandidates(proposals, pool)
	if len(clamped) == 0 {
		return
	}

	hintsJSON, _ := json.Marshal(clamped)
	s.db.Model(&models.ImportBatch{}).
		Where("id = ?", batchID).
		Update("advisory_hints", hintsJSON)
}

func (s *Service) updateProgress(batchID uuid.UUID, count int) {
	s.db.Model(&models.ImportBatch{}).
		Where("id = ?", batchID).
		Update("processed_count", count)
}

func (s *Service) markBatchFailed(batchID uuid.UUID) {
	s.db.Model(&models.ImportBatch{}).
		Where("id = ?", batchID).
		Update("status", models.BatchFailed)
}

type statRow struct {
	Status string
	Count  int64
}

func (s *Service) finalizeBatch(batchID uuid.UUID, total int) error {
	var rows []statRow
	if err := s.db.Model(&models.ImportRow{}).
		Where("batch_id = ?", batchID).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return err
	}

	counts := map[string]int64{}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}

	now := time.Now()
	return s.db.Model(&models.ImportBatch{}).
		Where("id = ?", batchID).
		Updates(map[string]interface{}{
			"processed_count":    total,
			"total_rows":         total,
			"ready_count":        counts[string(classify.StatusReady)],
			"needs_review_count": counts[string(classify.StatusNeedsReview)],
			"invalid_count":      counts[string(classify.StatusInvalid)],
			"status":             models.BatchCompleted,
			"completed_at":       now,
		}).Error
}

// ListRows pages through a batch's decided rows, cursor keyed on row id.
func (s *Service) ListRows(batchID uuid.UUID, status, cursor string, limit int) ([]models.ImportRow, string, bool) {
	var rows []models.ImportRow

	query := s.db.
		Where("batch_id = ?", batchID).
		Order("id ASC").
		Limit(limit + 1)

	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	if cursor != "" {
		query = query.Where("id > ?", cursor)
	}

	query.Find(&rows)

	hasMore := false
	var nextCursor string
	if len(rows) > limit {
		hasMore = true
		nextCursor = rows[limit-1].ID.String()
		rows = rows[:limit]
	}
	return rows, nextCursor, hasMore
}
