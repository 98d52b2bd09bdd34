// worker periodically deletes expired and revoked sessions. The auth service
// itself only sweeps on demand, so retention is driven from here.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"fintrack/backend/internal/config"
	"fintrack/backend/internal/db"
)

func main() {
	interval := flag.Duration("interval", time.Hour, "How often to sweep expired sessions")
	flag.Parse()

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("session sweeper running every %s", *interval)
	sweep(ctx, database)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("session sweeper stopped")
			return
		case <-ticker.C:
			sweep(ctx, database)
		}
	}
}

func sweep(ctx context.Context, database *sqlx.DB) {
	res, err := database.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < now() OR revoked_at IS NOT NULL`)
	if err != nil {
		log.Printf("sweep: %v", err)
		return
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		log.Printf("sweep: removed %d sessions", n)
	}
}
