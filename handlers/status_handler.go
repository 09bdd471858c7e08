package handlers

import (
	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/tasks"
	"moderation-bot/utils"
)

// HandleStatusCommand answers /status with the same embed the periodic
// reporter posts to the log channel.
func HandleStatusCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	serverCfg, ok := b.Config.ServerConfigs[i.GuildID]
	if !ok || i.Member == nil {
		utils.SendErrorResponse(s, i, "This command can only be used in a configured server.")
		return
	}
	level := utils.CheckPermission(i.Member.Roles, i.Member.User.ID,
		serverCfg.AdminRoleIDs, serverCfg.ModeratorRoleIDs, b.Config.DeveloperUserIDs)
	if !utils.IsStaff(level) {
		utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
		return
	}

	utils.SendEmbedResponse(s, i, tasks.BuildStatusEmbed(b))
}
