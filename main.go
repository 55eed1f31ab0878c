package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/h21s/table-tracker/config"
	"github.com/h21s/table-tracker/database"
	"github.com/h21s/table-tracker/live"
	"github.com/h21s/table-tracker/middlewares"
	"github.com/h21s/table-tracker/models"
	"github.com/h21s/table-tracker/router"
	"github.com/h21s/table-tracker/services"
	"github.com/h21s/table-tracker/utils"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InitLogger()

	// Initialize DB
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	utils.InitDB(db)

	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	if err := database.SeedDefaultUsers(db); err != nil {
		utils.ErrorLogger.Printf("Failed to seed default users: %v", err)
	}

	// Set gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Core services: timer engine + ledger
	sessionStore := services.NewGormSessionStore(db)
	manager := services.NewTableManager(config.SnookerTables, config.PoolTables,
		config.AvailableRates, sessionStore)
	manager.SetTickCallback(func(gameType string, tables map[int]models.TableView) {
		live.BroadcastTableTick(gameType, tables)
	})
	manager.Start()
	defer manager.Stop()

	ledger := services.NewCustomerLedger(db)

	// Setup rate limiter (50 requests per second per IP)
	rateLimiter := middlewares.NewRateLimiter(50, 1)

	r := router.SetupRouter(db, manager, ledger)
	r.Use(rateLimiter.RateLimit())

	// Run server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}
