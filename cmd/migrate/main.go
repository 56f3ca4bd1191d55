package main

import (
	"context"
	"log"

	"receipt-backend/internal/shared/config"
	"receipt-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	if cfg.StoreDSN == "" {
		log.Fatal("migrate: no store credentials found (STORE_CREDENTIALS_FILE or DATABASE_URL)")
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.StoreDSN, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		log.Fatalf("migrate: connect: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, database); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("migrations applied")
}
