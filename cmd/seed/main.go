package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/chirp-app/chirp/internal/db"
	"github.com/chirp-app/chirp/internal/models"
	"github.com/chirp-app/chirp/internal/seed"
	"github.com/chirp-app/chirp/pkg/config"
	"github.com/chirp-app/chirp/pkg/logging"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: seed <cheeps.csv>")
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting Chirp seed import", zap.String("file", os.Args[1]))

	f, err := os.Open(os.Args[1])
	if err != nil {
		logger.Fatal("Failed to open seed file", zap.Error(err))
	}
	defer f.Close()

	records, err := seed.Parse(f)
	if err != nil {
		logger.Fatal("Failed to parse seed file", zap.Error(err))
	}

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.AutoMigrate(&models.Author{}, &models.Cheep{}, &models.Follow{}); err != nil {
		logger.Fatal("Failed to migrate schema", zap.Error(err))
	}

	repo := db.NewRepository(database.DB)
	importer := seed.NewImporter(db.NewCheepRepository(repo))

	n, err := importer.Import(context.Background(), records)
	if err != nil {
		logger.Fatal("Import failed", zap.Int("imported", n), zap.Error(err))
	}

	logger.Info("Import finished", zap.Int("imported", n))
}
