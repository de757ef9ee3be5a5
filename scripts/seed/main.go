package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	database "github.com/FACorreiaa/go-travel-planner/app/db"
	appLogger "github.com/FACorreiaa/go-travel-planner/app/logger"
	"github.com/FACorreiaa/go-travel-planner/config"
)

const (
	defaultAdminEmail    = "admin@mumbaitravel.com"
	defaultAdminName     = "Admin"
	defaultAdminPassword = "admin123"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := appLogger.New(cfg.Mode, os.Stdout)

	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create database config: %v", err)
	}
	if err = database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	pool, err := database.Init(ctx, dbConfig.ConnectionURL, logger)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	if _, err = database.SeedCatalog(ctx, pool, database.DefaultCatalog, logger); err != nil {
		logger.Error("Failed to seed POI catalog", slog.Any("error", err))
		os.Exit(1)
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = defaultAdminPassword
		logger.Warn("SEED_ADMIN_PASSWORD not set, using the default admin password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash admin password", slog.Any("error", err))
		os.Exit(1)
	}
	if _, err = database.SeedAdmin(ctx, pool, defaultAdminEmail, defaultAdminName, string(hash), logger); err != nil {
		logger.Error("Failed to seed admin", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("Seeding complete")
}
