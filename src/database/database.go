package database

import (
	"database/sql"
	"fmt"

	"github.com/username/jamtax/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

const schema = `
	CREATE TABLE IF NOT EXISTS evaluations (
		id TEXT PRIMARY KEY,
		label TEXT,
		input_json TEXT NOT NULL,
		report_json TEXT NOT NULL,
		recommended_structure TEXT NOT NULL,
		recommended_net_usd TEXT NOT NULL,
		input_hash TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_evaluations_created_at ON evaluations(created_at);
	CREATE INDEX IF NOT EXISTS idx_evaluations_input_hash ON evaluations(input_hash);
	`

// Open opens the SQLite database at databasePath and ensures the schema exists.
func Open(databasePath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", databasePath, err)
	}
	if databasePath == ":memory:" {
		// Every new connection to :memory: is a fresh, empty database.
		db.SetMaxOpenConns(1)
	}

	logger.L.Info("Ensuring database schema", "databasePath", databasePath)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	logger.L.Info("Database tables ensured/created.")
	return db, nil
}

// InitDB opens the database and stores it in DB.
func InitDB(databasePath string) error {
	db, err := Open(databasePath)
	if err != nil {
		logger.L.Error("Database initialization failed", "path", databasePath, "error", err)
		return err
	}
	DB = db
	return nil
}
