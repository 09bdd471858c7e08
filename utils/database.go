package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// InitDB opens the bot database and ensures the schema exists.
func InitDB(dbPath string) (*sqlx.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	infractionsSchema := `CREATE TABLE IF NOT EXISTS infractions (
	          id INTEGER PRIMARY KEY AUTOINCREMENT,
	          type TEXT NOT NULL,
	          guild_id TEXT NOT NULL,
	          user_id TEXT NOT NULL,
	          user_name TEXT NOT NULL DEFAULT '',
	          actor_id TEXT NOT NULL,
	          reason TEXT NOT NULL,
	          inserted_at INTEGER NOT NULL,
	          expires_at INTEGER,
	          active INTEGER NOT NULL DEFAULT 0,
	          hidden INTEGER NOT NULL DEFAULT 0
	      );`
	if _, err := db.Exec(infractionsSchema); err != nil {
		return nil, fmt.Errorf("failed to create infractions table: %w", err)
	}

	watchlistSchema := `CREATE TABLE IF NOT EXISTS watched_users (
	          user_id TEXT NOT NULL,
	          guild_id TEXT NOT NULL,
	          actor_id TEXT NOT NULL,
	          reason TEXT NOT NULL,
	          inserted_at INTEGER NOT NULL,
	          PRIMARY KEY (guild_id, user_id)
	      );`
	if _, err := db.Exec(watchlistSchema); err != nil {
		return nil, fmt.Errorf("failed to create watched_users table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_infractions_user ON infractions (guild_id, user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_infractions_active ON infractions (active, expires_at)`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
	}

	return db, nil
}
