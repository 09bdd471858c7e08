package model

// ServerConfig defines the moderation settings for a single guild.
type ServerConfig struct {
	Name                  string   `json:"name"`
	GuildID               string   `json:"guild_id"`
	Enable                bool     `json:"enable"`
	AdminRoleIDs          []string `json:"admin_role_ids"`
	ModeratorRoleIDs      []string `json:"moderator_role_ids"`
	MutedRoleID           string   `json:"muted_role_id"`
	UnmoderatedChannelIDs []string `json:"unmoderated_channel_ids"`
}

// ChannelModerated reports whether antispam should inspect messages in the
// given channel of this guild.
func (sc ServerConfig) ChannelModerated(channelID string) bool {
	for _, id := range sc.UnmoderatedChannelIDs {
		if id == channelID {
			return false
		}
	}
	return true
}

// Config stores the application configuration.
type Config struct {
	BotToken         string
	LogChannelID     string
	WatchChannelID   string
	ArchiveURL       string
	MetricsAddr      string
	DBPath           string
	DeveloperUserIDs []string
	ServerConfigs    map[string]ServerConfig
	AntiSpam         AntiSpamConfig
}
