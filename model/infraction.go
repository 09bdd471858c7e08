package model

import (
	"fmt"
	"time"
)

// Infraction types. Mute, ban and superstar stay active until they expire or
// are pardoned; kick, warning and note are recorded as already-inactive
// one-shot entries.
const (
	InfractionMute      = "mute"
	InfractionKick      = "kick"
	InfractionBan       = "ban"
	InfractionSuperstar = "superstar"
	InfractionWarning   = "warning"
	InfractionNote      = "note"
)

// Infraction represents a single moderation record in the database.
// The database table will be named 'infractions'.
type Infraction struct {
	ID         int64  `db:"id"` // Primary Key, Auto-increment
	Type       string `db:"type"`
	GuildID    string `db:"guild_id"`
	UserID     string `db:"user_id"`
	UserName   string `db:"user_name"`
	ActorID    string `db:"actor_id"`
	Reason     string `db:"reason"`
	InsertedAt int64  `db:"inserted_at"`
	ExpiresAt  *int64 `db:"expires_at"`
	Active     bool   `db:"active"`
	Hidden     bool   `db:"hidden"`
}

// KnownInfractionType reports whether t names one of the supported types.
func KnownInfractionType(t string) bool {
	switch t {
	case InfractionMute, InfractionKick, InfractionBan, InfractionSuperstar,
		InfractionWarning, InfractionNote:
		return true
	}
	return false
}

// ExclusiveInfractionType reports whether at most one active infraction of
// type t may exist per user at a time.
func ExclusiveInfractionType(t string) bool {
	switch t {
	case InfractionMute, InfractionBan, InfractionSuperstar:
		return true
	}
	return false
}

// InstantInfractionType reports whether t describes a one-shot action with no
// ongoing state to undo.
func InstantInfractionType(t string) bool {
	switch t {
	case InfractionKick, InfractionWarning, InfractionNote:
		return true
	}
	return false
}

// InfractionHiddenFromUser reports whether the target user is never notified
// of this infraction type. Notes are internal staff records.
func InfractionHiddenFromUser(t string) bool {
	return t == InfractionNote
}

// Expiry returns the expiry time of the infraction, if it has one.
func (i *Infraction) Expiry() (time.Time, bool) {
	if i.ExpiresAt == nil {
		return time.Time{}, false
	}
	return time.Unix(*i.ExpiresAt, 0), true
}

// TaskID is the scheduler key used for this infraction's expiry task.
func (i *Infraction) TaskID() string {
	return fmt.Sprintf("infraction:%d", i.ID)
}
