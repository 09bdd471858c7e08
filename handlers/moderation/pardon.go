package moderation

import (
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/utils"
)

// HandlePardonCommand lifts an active infraction by id.
func HandlePardonCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !gate(s, i, b) {
		return
	}

	opts := optionMap(i)
	id := opts["id"].IntValue()
	reason := opts["reason"].StringValue()

	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	summary, err := b.Infractions.Pardon(id, i.Member.User.ID, reason)
	if err != nil {
		log.Printf("Error pardoning infraction %d: %v", id, err)
		utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("Failed to pardon infraction #%d.", id))
		return
	}
	if summary.AlreadyDone {
		utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("Infraction #%d is already inactive.", id))
		return
	}

	msg := fmt.Sprintf("✅ Pardoned %s #%d for <@%s>.", summary.Type, summary.InfractionID, summary.UserID)
	if len(summary.Notes) > 0 {
		msg += "\n⚠️ " + strings.Join(summary.Notes, "\n⚠️ ")
	}
	utils.SendFollowUp(s, i.Interaction, msg)
}
