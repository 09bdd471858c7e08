// Package moderation implements the sanction slash-command handlers on top
// of the infraction lifecycle manager.
package moderation

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/infractions"
	"moderation-bot/model"
	"moderation-bot/utils"
)

// commandTypes maps a sanction command name to the infraction type it
// records.
var commandTypes = map[string]string{
	"mute":      model.InfractionMute,
	"ban":       model.InfractionBan,
	"kick":      model.InfractionKick,
	"superstar": model.InfractionSuperstar,
	"warn":      model.InfractionWarning,
	"note":      model.InfractionNote,
}

// HandleApplyCommand serves mute/ban/kick/superstar/warn/note. The command
// name selects the infraction type.
func HandleApplyCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	name := i.ApplicationCommandData().Name
	infractionType, ok := commandTypes[name]
	if !ok {
		log.Printf("No infraction type for command %q", name)
		return
	}
	if !gate(s, i, b) {
		return
	}

	opts := optionMap(i)
	targetUser := opts["user"].UserValue(s)
	if targetUser == nil {
		utils.SendErrorResponse(s, i, "Could not resolve the target user.")
		return
	}

	reason := ""
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	} else if opt, ok := opts["text"]; ok { // /note
		reason = opt.StringValue()
	}

	var duration time.Duration
	if opt, ok := opts["duration"]; ok {
		parsed, err := utils.ParseDuration(opt.StringValue())
		if err != nil || parsed <= 0 {
			utils.SendErrorResponse(s, i, fmt.Sprintf("Invalid duration %q. Use forms like 30m, 2h or 3d.", opt.StringValue()))
			return
		}
		duration = parsed
	}

	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	inf, err := b.Infractions.Apply(infractions.ApplyRequest{
		GuildID:  i.GuildID,
		User:     targetUser,
		ActorID:  i.Member.User.ID,
		Type:     infractionType,
		Reason:   reason,
		Duration: duration,
		Hidden:   infractionType == model.InfractionNote,
	})
	if errors.Is(err, infractions.ErrActiveInfractionExists) {
		utils.SendFollowUpError(s, i.Interaction,
			fmt.Sprintf("%s already has an active %s. Pardon it first.", targetUser.Username, infractionType))
		return
	}
	if err != nil {
		log.Printf("Error applying %s to user %s: %v", infractionType, targetUser.ID, err)
		utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("Failed to apply the %s.", infractionType))
		return
	}

	utils.SendFollowUpEmbed(s, i.Interaction, appliedEmbed(inf, targetUser))
}
