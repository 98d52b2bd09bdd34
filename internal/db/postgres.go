package db

import (
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a Postgres connection pool using the given DSN and verifies it
// with a ping. Caller must call Close when done.
func Open(dsn string) (*sqlx.DB, error) {
	dbx, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return dbx, nil
}
