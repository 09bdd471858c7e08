package model

// WatchedUser represents a single watch-list entry in the database.
// Messages by watched users are relayed to the staff watch channel.
type WatchedUser struct {
	UserID     string `db:"user_id"`
	GuildID    string `db:"guild_id"`
	ActorID    string `db:"actor_id"`
	Reason     string `db:"reason"`
	InsertedAt int64  `db:"inserted_at"`
}
