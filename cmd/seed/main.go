// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"fintrack/backend/internal/config"
	"fintrack/backend/internal/db"
	"fintrack/backend/internal/security"
	userdomain "fintrack/backend/internal/user/domain"
	userrepo "fintrack/backend/internal/user/repository"
)

const (
	devUserEmail  = "dev@example.com"
	devPassword   = "Password123"
	adminEmail    = "admin@example.com"
	adminPassword = "AdminPassword123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(database)
	hasher := security.NewHasher(cfg.BcryptCost)

	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if existing != nil {
		log.Printf("seed: %s already exists, nothing to do", devUserEmail)
		return
	}

	seedUser(ctx, users, hasher, devUserEmail, devPassword, userdomain.RoleUser, "Dev", "User")
	seedUser(ctx, users, hasher, adminEmail, adminPassword, userdomain.RoleAdmin, "Dev", "Admin")
	log.Printf("seed: created %s and %s", devUserEmail, adminEmail)
}

func seedUser(ctx context.Context, users *userrepo.PostgresRepository, hasher *security.Hasher, email, password string, role userdomain.Role, first, last string) {
	hash, err := hasher.Hash([]byte(password))
	if err != nil {
		log.Fatalf("seed: hash: %v", err)
	}
	now := time.Now().UTC()
	u := &userdomain.User{
		ID:           uuid.New().String(),
		FirstName:    first,
		LastName:     last,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, u); err != nil {
		log.Fatalf("seed: create %s: %v", email, err)
	}
}
