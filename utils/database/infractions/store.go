// Package infractions is the sqlx-backed infraction store.
package infractions

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"moderation-bot/model"
)

// Store persists infraction records in SQLite.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Insert adds a new infraction record and returns its id.
func (s *Store) Insert(inf *model.Infraction) (int64, error) {
	query := `INSERT INTO infractions (type, guild_id, user_id, user_name, actor_id, reason, inserted_at, expires_at, active, hidden)
			  VALUES (:type, :guild_id, :user_id, :user_name, :actor_id, :reason, :inserted_at, :expires_at, :active, :hidden)`

	result, err := s.db.NamedExec(query, inf)
	if err != nil {
		return 0, fmt.Errorf("failed to insert infraction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// GetByID retrieves a single infraction by its primary key.
func (s *Store) GetByID(id int64) (*model.Infraction, error) {
	var inf model.Infraction
	err := s.db.Get(&inf, "SELECT * FROM infractions WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get infraction %d: %w", id, err)
	}
	return &inf, nil
}

// GetActiveByUserAndType returns the user's active infraction of the given
// type, or nil when there is none.
func (s *Store) GetActiveByUserAndType(guildID, userID, infractionType string) (*model.Infraction, error) {
	var inf model.Infraction
	err := s.db.Get(&inf,
		"SELECT * FROM infractions WHERE guild_id = ? AND user_id = ? AND type = ? AND active = 1 ORDER BY id DESC LIMIT 1",
		guildID, userID, infractionType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active infraction for user %s: %w", userID, err)
	}
	return &inf, nil
}

// SetInactive marks an infraction inactive. Records are never deleted.
func (s *Store) SetInactive(id int64) error {
	result, err := s.db.Exec("UPDATE infractions SET active = 0 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to deactivate infraction %d: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for infraction %d: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("no infraction found with id %d", id)
	}
	return nil
}

// ListActiveWithExpiry returns every active infraction that carries an
// expiry timestamp. Used to rebuild the expiry schedule at startup.
func (s *Store) ListActiveWithExpiry() ([]model.Infraction, error) {
	var infs []model.Infraction
	err := s.db.Select(&infs, "SELECT * FROM infractions WHERE active = 1 AND expires_at IS NOT NULL ORDER BY expires_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list active infractions: %w", err)
	}
	return infs, nil
}

// ListByUser returns a user's full infraction history in a guild, newest
// first.
func (s *Store) ListByUser(guildID, userID string) ([]model.Infraction, error) {
	var infs []model.Infraction
	err := s.db.Select(&infs, "SELECT * FROM infractions WHERE guild_id = ? AND user_id = ? ORDER BY id DESC", guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list infractions for user %s: %w", userID, err)
	}
	return infs, nil
}
