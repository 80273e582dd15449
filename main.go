package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shopcore/shopcore/auth"
	"github.com/shopcore/shopcore/inventory"
	"github.com/shopcore/shopcore/middleware"
	"github.com/shopcore/shopcore/models"
	"github.com/shopcore/shopcore/routes"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()

	logger := initLogger()
	defer func() { _ = logger.Sync() }()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		zap.S().Fatal("JWT_SECRET must be set")
	}
	tokens := auth.NewTokenService([]byte(secret))

	// Init DB
	db := initDatabase()

	// Auto-migrate all tables
	if err := db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		zap.S().Fatalf("automigrate failed: %v", err)
	}

	// Provision the admin role and bootstrap account; safe to re-run
	if err := auth.EnsureAdmin(db, os.Getenv("ADMIN_PASSWORD")); err != nil {
		zap.S().Fatalf("admin bootstrap failed: %v", err)
	}

	ledger := inventory.NewLedger()

	// Gin setup
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup routes
	routes.SetupRoutes(r, db, tokens, ledger)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	zap.S().Infow("server starting", "port", port)
	if err := r.Run(":" + port); err != nil {
		zap.S().Fatalf("failed to start server: %v", err)
	}
}

// initLogger builds the process-wide zap logger.
func initLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stdout"}

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	return logger
}

// initDatabase sets up the GORM DB connection.
func initDatabase() *gorm.DB {
	config := &gorm.Config{TranslateError: true}

	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		db, err := gorm.Open(postgres.Open(databaseURL), config)
		if err != nil {
			zap.S().Fatalf("db connection failed: %v", err)
		}
		return db
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port,
	)

	db, err := gorm.Open(postgres.Open(dsn), config)
	if err != nil {
		zap.S().Fatalf("db connection failed: %v", err)
	}
	return db
}
