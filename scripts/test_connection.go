//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"trailer-sales-engine/internal/config"
	"trailer-sales-engine/internal/services/cache"
	"trailer-sales-engine/internal/services/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("🔍 Testing backend connections...")
	fmt.Println()

	fmt.Println("1️⃣  Checking Environment Variables:")
	for _, name := range []string{"AWS_REGION", "S3_BUCKET", "DATABASE_URL", "REDIS_ADDR", "SES_SENDER_EMAIL", "LEAD_ALERT_EMAIL", "SENTRY_DSN"} {
		checkEnvVar(name)
	}
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	fmt.Println("2️⃣  Testing Database Connection:")
	testDatabaseConnection(ctx, cfg)
	fmt.Println()

	fmt.Println("3️⃣  Testing Redis Connection:")
	testRedisConnection(ctx, cfg)
	fmt.Println()

	fmt.Println("✅ Connection tests complete!")
}

func checkEnvVar(name string) {
	value := os.Getenv(name)
	if value == "" {
		fmt.Printf("   ❌ %s: NOT SET\n", name)
		return
	}
	masked := value
	if len(value) > 8 && (name == "DATABASE_URL" || name == "SENTRY_DSN") {
		masked = value[:8] + "..." + value[len(value)-4:]
	}
	fmt.Printf("   ✅ %s: %s\n", name, masked)
}

func testDatabaseConnection(ctx context.Context, cfg *config.Config) {
	if !cfg.HasDatabase() {
		fmt.Println("   ⏭️  No database configured, skipping")
		return
	}

	db, err := database.New(ctx, cfg)
	if err != nil {
		fmt.Printf("   ❌ Database connection failed: %v\n", err)
		return
	}
	defer db.Close()

	fmt.Println("   ✅ Database connection successful!")

	var tableCount int
	err = db.QueryRow(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name IN ('customers', 'inventory')
	`).Scan(&tableCount)
	if err == nil {
		fmt.Printf("   📊 Tables found: %d/2 (customers, inventory)\n", tableCount)
	}
}

func testRedisConnection(ctx context.Context, cfg *config.Config) {
	if cfg.RedisAddr == "" {
		fmt.Println("   ⏭️  REDIS_ADDR not set, the API will use the in-memory cache")
		return
	}

	redisCache, err := cache.NewRedisCache(ctx, cfg)
	if err != nil {
		fmt.Printf("   ❌ Redis connection failed: %v\n", err)
		return
	}
	defer redisCache.Close()

	fmt.Printf("   ✅ Redis at %s is reachable\n", cfg.RedisAddr)
}
