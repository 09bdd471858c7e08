package moderation

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/utils"
)

// HandleHistoryCommand shows a member's infraction history to staff.
func HandleHistoryCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !gate(s, i, b) {
		return
	}

	targetUser := optionMap(i)["user"].UserValue(s)
	if targetUser == nil {
		utils.SendErrorResponse(s, i, "Could not resolve the target user.")
		return
	}

	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	infs, err := b.Infractions.History(i.GuildID, targetUser.ID)
	if err != nil {
		log.Printf("Error fetching infraction history for user %s: %v", targetUser.ID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to fetch the infraction history.")
		return
	}

	utils.SendFollowUpEmbed(s, i.Interaction, historyEmbed(targetUser, infs))
}
