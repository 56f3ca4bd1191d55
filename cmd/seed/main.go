package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"receipt-backend/internal/shared/config"
	"receipt-backend/internal/shared/storage/db"
)

type seedProduct struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type seedBrand struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Products []seedProduct `json:"products"`
}

// Seeds the brand catalog from a JSON file (default cmd/seed/catalog.json).
func main() {
	cfg := config.Load()
	if cfg.StoreDSN == "" {
		log.Fatal("seed: no store credentials found (STORE_CREDENTIALS_FILE or DATABASE_URL)")
	}

	path := "cmd/seed/catalog.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("seed: read %s: %v", path, err)
	}
	var brands []seedBrand
	if err := json.Unmarshal(raw, &brands); err != nil {
		log.Fatalf("seed: parse %s: %v", path, err)
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.StoreDSN, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		log.Fatalf("seed: connect: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, database); err != nil {
		log.Fatalf("seed: migrate: %v", err)
	}

	for position, brand := range brands {
		const brandQuery = `
INSERT INTO brands (id, name, position)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, position = EXCLUDED.position`
		if _, err := database.ExecContext(ctx, brandQuery, brand.ID, brand.Name, position); err != nil {
			log.Fatalf("seed: brand %s: %v", brand.ID, err)
		}

		for productPosition, product := range brand.Products {
			const productQuery = `
INSERT INTO products (id, brand_id, name, price, position)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price, position = EXCLUDED.position`
			if _, err := database.ExecContext(ctx, productQuery, product.ID, brand.ID, product.Name, product.Price, productPosition); err != nil {
				log.Fatalf("seed: product %s: %v", product.ID, err)
			}
		}
	}

	log.Printf("seeded %d brands", len(brands))
}
