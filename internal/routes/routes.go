package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lending-import-backend/internal/config"
	handler "lending-import-backend/internal/handlers"
	"lending-import-backend/internal/repository"
	"lending-import-backend/internal/services/advisor"
	"lending-import-backend/internal/services/importer"
	reconciliation "lending-import-backend/internal/services/reconciliation"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, suggester advisor.Suggester) {
	customerRepo := repository.NewCustomerRepository(db)
	loanRepo := repository.NewLoanRepository(db)

	importService := importer.NewService(customerRepo, loanRepo, suggester, config.MaxConcurrent())
	reconService := reconciliation.NewService(reconciliation.NewStore(customerRepo, loanRepo))

	importHandler := handler.NewImportHandler(importService, customerRepo)
	reconHandler := handler.NewReconciliationHandler(reconService)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Import batch routes
	imp := api.Group("/import")
	imp.POST("/upload", importHandler.Upload)
	imp.GET("/:batchId", importHandler.GetBatchProgress)
	imp.GET("/:batchId/rows", importHandler.ListRows)
	imp.POST("/:batchId/commit", importHandler.CommitBatch)
	imp.POST("/rows/:id/confirm", importHandler.ConfirmRow)

	// Manual customer search for the review side panel
	api.GET("/customers/search", importHandler.SearchCustomers)

	// Orphan reconciliation routes
	recon := api.Group("/reconciliation")
	recon.POST("/scan", reconHandler.Scan)
	recon.GET("/pending", reconHandler.Pending)
	recon.POST("/:id/resolve", reconHandler.Resolve)
	recon.POST("/bulk", reconHandler.Bulk)
}
