package main

import (
	"log"
	"os"
	"time"

	"lending-import-backend/internal/config"
	"lending-import-backend/internal/models"
	"lending-import-backend/internal/routes"
	"lending-import-backend/internal/services/advisor"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	db := config.InitDB()

	db.AutoMigrate(
		&models.Customer{},
		&models.Loan{},
		&models.ImportBatch{},
		&models.ImportRow{},
		&models.OrphanCase{},
		&models.MatchAuditLog{},
	)

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// The rule-based suggester always succeeds; an enriched one can be
	// swapped in here without touching the pipeline.
	routes.RegisterRoutes(r, db, advisor.RuleBased{})

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	r.Run(addr)
}
