package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	service "lending-import-backend/internal/services/reconciliation"
)

type ReconciliationHandler struct {
	service *service.Service
}

func NewReconciliationHandler(s *service.Service) *ReconciliationHandler {
	return &ReconciliationHandler{service: s}
}

// Scan detects orphaned loans and refreshes their suggested matches.
func (h *ReconciliationHandler) Scan(c *gin.Context) {
	cases, err := h.service.Scan()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": cases, "count": len(cases)})
}

func (h *ReconciliationHandler) Pending(c *gin.Context) {
	cases, err := h.service.Pending()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": cases})
}

type resolvePayload struct {
	Kind        string            `json:"kind"` // confirm | manual | create | skip
	CustomerID  string            `json:"customer_id"`
	Fields      map[string]string `json:"fields"`
	PerformedBy string            `json:"performed_by"`
}

func (p resolvePayload) decision(caseID uuid.UUID) (service.Decision, error) {
	d := service.Decision{
		CaseID:      caseID,
		Kind:        service.DecisionKind(p.Kind),
		Fields:      p.Fields,
		PerformedBy: p.PerformedBy,
	}
	if p.CustomerID != "" {
		id, err := uuid.Parse(p.CustomerID)
		if err != nil {
			return d, err
		}
		d.CustomerID = &id
	}
	return d, nil
}

func (h *ReconciliationHandler) Resolve(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case ID"})
		return
	}

	var payload resolvePayload
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	decision, err := payload.decision(caseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer ID"})
		return
	}

	resolved, err := h.service.Resolve(decision)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "case resolved", "case": resolved})
}

// Bulk applies a list of decisions, reporting per-case failures without
// blocking the rest.
func (h *ReconciliationHandler) Bulk(c *gin.Context) {
	var payload []struct {
		CaseID string `json:"case_id"`
		resolvePayload
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var decisions []service.Decision
	for _, item := range payload {
		caseID, err := uuid.Parse(item.CaseID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case ID " + item.CaseID})
			return
		}
		d, err := item.decision(caseID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer ID in case " + item.CaseID})
			return
		}
		decisions = append(decisions, d)
	}

	result := h.service.Commit(decisions)
	c.JSON(http.StatusOK, result)
}
