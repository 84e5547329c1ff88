package handler

import (
	"context"
	"encoding/csv"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lending-import-backend/internal/repository"
	"lending-import-backend/internal/services/importer"
)

type ImportHandler struct {
	service   *importer.Service
	customers *repository.CustomerRepository
}

func NewImportHandler(s *importer.Service, customers *repository.CustomerRepository) *ImportHandler {
	return &ImportHandler{service: s, customers: customers}
}

// Upload handles CSV uploads, creates a batch, and processes in background
func (h *ImportHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	log.Println("Received file:", header.Filename, "size:", header.Size)

	dataset, err := readDataset(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	batch := h.service.CreateBatch(header.Filename)

	go func() {
		if err := h.service.RunBatch(context.Background(), batch.ID, dataset); err != nil {
			log.Printf("import batch %s failed: %v", batch.ID, err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"batch_id": batch.ID.String(),
		"status":   "processing",
	})
}

// readDataset decodes the uploaded file into headers plus header->value
// maps, sniffing comma vs tab and tolerating ragged rows.
func readDataset(file io.ReadSeeker) (importer.Dataset, error) {
	var ds importer.Dataset

	sample := make([]byte, 1024)
	n, _ := file.Read(sample)
	file.Seek(0, io.SeekStart)

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	if strings.Contains(string(sample[:n]), "\t") && !strings.Contains(string(sample[:n]), ",") {
		reader.Comma = '\t'
	}

	headers, err := reader.Read()
	if err != nil {
		return ds, err
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}
	ds.Headers = headers

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		if strings.Join(record, "") == "" {
			continue
		}

		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

func (h *ImportHandler) GetBatchProgress(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}
	batch, err := h.service.GetBatch(batchID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"processed_count":    batch.ProcessedCount,
		"total":              batch.TotalRows,
		"kind":               batch.Kind,
		"status":             batch.Status,
		"ready_count":        batch.ReadyCount,
		"needs_review_count": batch.NeedsReviewCount,
		"invalid_count":      batch.InvalidCount,
	})
}

func (h *ImportHandler) ListRows(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	status := c.Query("status")
	cursor := c.Query("cursor")
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	rows, nextCursor, hasMore := h.service.ListRows(batchID, status, cursor, limit)
	c.JSON(http.StatusOK, gin.H{
		"items":       rows,
		"next_cursor": nextCursor,
		"has_more":    hasMore,
	})
}

// CommitBatch persists the batch's ready rows; needs_review rows stay
// behind the manual gate.
func (h *ImportHandler) CommitBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	result, err := h.service.CommitBatch(c.Request.Context(), batchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "commit completed", "result": result})
}

func (h *ImportHandler) ConfirmRow(c *gin.Context) {
	rowID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid row ID"})
		return
	}

	var payload struct {
		CustomerID  string `json:"customer_id"`
		PerformedBy string `json:"performed_by"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var override *uuid.UUID
	if payload.CustomerID != "" {
		id, err := uuid.Parse(payload.CustomerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer ID"})
			return
		}
		override = &id
	}

	row, err := h.service.ConfirmRow(c.Request.Context(), rowID, override, payload.PerformedBy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "row confirmed", "row": row})
}

func (h *ImportHandler) SearchCustomers(c *gin.Context) {
	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query required"})
		return
	}
	customers, err := h.customers.Search(query, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": customers})
}
