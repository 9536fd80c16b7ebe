package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"cheflow-backend/internal/repositories"
	"cheflow-backend/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Sweeps every contract missing a delivery or checklist link and
// re-offers it to records sharing its number. Safe to run while the
// server is up: filled slots are never overwritten.
func main() {
	fmt.Println("========================================")
	fmt.Println("   Repair Cross-Entity Links")
	fmt.Println("========================================")
	fmt.Println()

	godotenv.Load()

	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPassword := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "cheflow_db")

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		dbUser, dbPassword, dbHost, dbPort, dbName)

	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	linker := services.NewLinkerService(
		repositories.NewContractRepository(pool),
		repositories.NewDeliveryRepository(pool),
		repositories.NewChecklistRepository(pool),
		logger,
	)

	result, err := linker.RepairAll(context.Background())
	if err != nil {
		log.Fatalf("Repair failed: %v\n", err)
	}

	fmt.Println()
	fmt.Printf("Contracts swept:   %d\n", len(result.Reports))
	fmt.Printf("Contracts linked:  %d\n", result.Repaired)
	fmt.Println()
	fmt.Println("Done.")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
