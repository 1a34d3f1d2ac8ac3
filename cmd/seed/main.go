// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"recaudo/internal/core/id"
	"recaudo/internal/domain/auth"
	"recaudo/internal/infrastructure/storage/postgres"
	"recaudo/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalw("failed to run migrations", "error", err)
	}

	adminID, err := seedAdminUser(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log, adminID); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@recaudo.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var existingID id.ID
	err := pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now()

	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, name, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, 'Administrador', $4, true, $5, $5)
	`, userID, adminEmail, string(passwordHash), auth.RoleAdmin, now)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created", "email", adminEmail, "user_id", userID)
	return userID, nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger, adminID id.ID) error {
	log.Info("seeding demo data...")
	now := time.Now()

	// 1. Service plans
	plans := []struct {
		name   string
		amount string
		mbps   int
	}{
		{"Básico 10M", "15.00", 10},
		{"Hogar 30M", "25.00", 30},
		{"Premium 60M", "40.00", 60},
		{"Empresarial 100M", "80.00", 100},
	}

	for _, p := range plans {
		var exists bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM plans WHERE name = $1)`, p.name,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check plan %q: %w", p.name, err)
		}
		if exists {
			continue
		}
		_, err := pool.Exec(ctx, `
			INSERT INTO plans (id, name, amount, mbps, state, created_at, creator_id)
			VALUES ($1, $2, $3, $4, 'Activo', $5, $6)
		`, id.New(), p.name, p.amount, p.mbps, now, adminID)
		if err != nil {
			log.Warnw("failed to seed plan", "name", p.name, "error", err)
		}
	}

	// 2. Coverage sectors
	sectors := []string{"Centro", "Norte", "Sur", "Zona Industrial"}
	for _, name := range sectors {
		var exists bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM sectors WHERE name = $1)`, name,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check sector %q: %w", name, err)
		}
		if exists {
			continue
		}
		_, err := pool.Exec(ctx, `
			INSERT INTO sectors (id, name, state, created_at, creator_id)
			VALUES ($1, $2, 'Activo', $3, $4)
		`, id.New(), name, now, adminID)
		if err != nil {
			log.Warnw("failed to seed sector", "name", name, "error", err)
		}
	}

	// 3. Operator user for the front desk
	operatorEmail := "operador@recaudo.local"
	var exists bool
	if err := pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, operatorEmail,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check operator: %w", err)
	}
	if !exists {
		hash, err := bcrypt.GenerateFromPassword([]byte("Operador123!"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash operator password: %w", err)
		}
		_, err = pool.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, name, role, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, 'Operador', $4, true, $5, $5)
		`, id.New(), operatorEmail, string(hash), auth.RoleOperator, now)
		if err != nil {
			log.Warnw("failed to seed operator user", "error", err)
		}
	}

	log.Info("demo data seeded successfully")
	return nil
}
