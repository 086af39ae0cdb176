//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"trailer-sales-engine/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS customers (
	id                  BIGSERIAL PRIMARY KEY,
	dealer_id           BIGINT NOT NULL,
	name                TEXT NOT NULL DEFAULT '',
	email               TEXT NOT NULL DEFAULT '',
	status              TEXT NOT NULL DEFAULT 'new',
	financing_type      TEXT NOT NULL DEFAULT 'unknown',
	application_status  TEXT NOT NULL DEFAULT 'none',
	last_activity_at    TIMESTAMPTZ,
	status_changed_at   TIMESTAMPTZ,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	lead_score          INTEGER CHECK (lead_score BETWEEN 0 AND 100),
	temperature         TEXT,
	priority            TEXT,
	days_in_stage       INTEGER,
	score_calculated_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_customers_dealer ON customers (dealer_id);
CREATE INDEX IF NOT EXISTS idx_customers_temperature ON customers (temperature, lead_score DESC);

CREATE TABLE IF NOT EXISTS inventory (
	id             BIGSERIAL PRIMARY KEY,
	dealer_id      BIGINT NOT NULL,
	stock_number   TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	cost_raw       TEXT NOT NULL DEFAULT '',
	cost           NUMERIC(12, 2),
	listed_price   NUMERIC(12, 2) NOT NULL DEFAULT 0,
	selling_price  NUMERIC(12, 2),
	pricing_status TEXT NOT NULL,
	pricing_policy TEXT NOT NULL,
	price_in_range BOOLEAN NOT NULL DEFAULT FALSE,
	batch_id       TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT uq_inventory_dealer_stock UNIQUE (dealer_id, stock_number),
	CONSTRAINT chk_selling_price CHECK (
		(pricing_status = 'PRICED' AND selling_price IS NOT NULL) OR
		(pricing_status = 'ASK_FOR_PRICING' AND selling_price IS NULL)
	)
);

CREATE INDEX IF NOT EXISTS idx_inventory_batch ON inventory (batch_id);
`

func main() {
	fmt.Println("=== Database Initialization Script ===")
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}
	databaseURL := cfg.DatabaseURL()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Create the database from the server's default 'postgres' database first.
	postgresURL := strings.Replace(databaseURL, "/"+cfg.DBName, "/postgres", 1)
	fmt.Println("📡 Connecting to PostgreSQL server...")

	adminConn, err := pgx.Connect(ctx, postgresURL)
	if err != nil {
		fmt.Printf("❌ Failed to connect to PostgreSQL: %v\n", err)
		os.Exit(1)
	}

	var exists bool
	err = adminConn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DBName).Scan(&exists)
	if err != nil {
		fmt.Printf("❌ Failed to check database existence: %v\n", err)
		adminConn.Close(ctx)
		os.Exit(1)
	}

	if !exists {
		fmt.Printf("📦 Creating '%s' database...\n", cfg.DBName)
		if _, err := adminConn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{cfg.DBName}.Sanitize()); err != nil {
			fmt.Printf("❌ Failed to create database: %v\n", err)
			adminConn.Close(ctx)
			os.Exit(1)
		}
	} else {
		fmt.Printf("✅ Database '%s' already exists\n", cfg.DBName)
	}
	adminConn.Close(ctx)

	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	fmt.Println("🚀 Applying schema...")
	if _, err := conn.Exec(ctx, schema); err != nil {
		fmt.Printf("❌ Failed to apply schema: %v\n", err)
		os.Exit(1)
	}

	for _, table := range []string{"customers", "inventory"} {
		var count int
		if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			fmt.Printf("⚠️  Warning: Could not count %s: %v\n", table, err)
			continue
		}
		fmt.Printf("   📋 %s: %d rows\n", table, count)
	}

	fmt.Println()
	fmt.Println("🎉 Database initialization completed successfully!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Test the connections: go run scripts/test_connection.go")
	fmt.Println("  2. Start the API: go run ./cmd/server")
}
