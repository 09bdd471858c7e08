// Package watchlist is the sqlx-backed watch-list store.
package watchlist

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"moderation-bot/model"
)

// Store persists watch-list entries in SQLite.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Add inserts a watch entry.
func (s *Store) Add(entry model.WatchedUser) error {
	query := `INSERT INTO watched_users (user_id, guild_id, actor_id, reason, inserted_at)
			  VALUES (:user_id, :guild_id, :actor_id, :reason, :inserted_at)`
	if _, err := s.db.NamedExec(query, entry); err != nil {
		return fmt.Errorf("failed to insert watch entry for user %s: %w", entry.UserID, err)
	}
	return nil
}

// Remove deletes a watch entry.
func (s *Store) Remove(guildID, userID string) error {
	if _, err := s.db.Exec("DELETE FROM watched_users WHERE guild_id = ? AND user_id = ?", guildID, userID); err != nil {
		return fmt.Errorf("failed to remove watch entry for user %s: %w", userID, err)
	}
	return nil
}

// List returns every watch entry.
func (s *Store) List() ([]model.WatchedUser, error) {
	var entries []model.WatchedUser
	if err := s.db.Select(&entries, "SELECT * FROM watched_users ORDER BY inserted_at ASC"); err != nil {
		return nil, fmt.Errorf("failed to list watched users: %w", err)
	}
	return entries, nil
}
