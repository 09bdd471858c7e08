package commands

import (
	"github.com/bwmarrin/discordgo"

	"moderation-bot/commands/defs"
	"moderation-bot/model"
)

// GenerateCommands returns the slash commands registered for a guild.
func GenerateCommands(serverCfg *model.ServerConfig) []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Mute,
		defs.Ban,
		defs.Kick,
		defs.Superstar,
		defs.Warn,
		defs.Note,
		defs.Pardon,
		defs.Infractions,
		defs.Watch,
		defs.Unwatch,
		defs.Watched,
		defs.Status,
	}
}
