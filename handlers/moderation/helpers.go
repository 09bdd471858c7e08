package moderation

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/utils"
)

// gate checks that the invoker holds a staff role in the guild. On failure
// it answers the interaction with an ephemeral refusal and returns false.
func gate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) bool {
	serverCfg, ok := b.Config.ServerConfigs[i.GuildID]
	if !ok {
		log.Printf("Could not find server config for guild: %s", i.GuildID)
		utils.SendErrorResponse(s, i, "This server is not configured.")
		return false
	}
	if i.Member == nil {
		utils.SendErrorResponse(s, i, "This command can only be used in a server.")
		return false
	}

	level := utils.CheckPermission(i.Member.Roles, i.Member.User.ID,
		serverCfg.AdminRoleIDs, serverCfg.ModeratorRoleIDs, b.Config.DeveloperUserIDs)
	if !utils.IsStaff(level) {
		utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
		return false
	}
	return true
}

// optionMap indexes the interaction's options by name.
func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}
