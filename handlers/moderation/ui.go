package moderation

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
)

func appliedEmbed(inf *model.Infraction, targetUser *discordgo.User) *discordgo.MessageEmbed {
	expiresLine := "never"
	if expiry, ok := inf.Expiry(); ok {
		expiresLine = fmt.Sprintf("<t:%d:R>", expiry.Unix())
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Infraction #%d recorded", inf.ID),
		Color: 15105570, // Orange
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Type", Value: inf.Type, Inline: true},
			{Name: "User", Value: fmt.Sprintf("%s (<@%s>)", targetUser.Username, targetUser.ID), Inline: true},
			{Name: "Expires", Value: expiresLine, Inline: true},
			{Name: "Reason", Value: inf.Reason},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

const historyLimit = 15

func historyEmbed(targetUser *discordgo.User, infs []model.Infraction) *discordgo.MessageEmbed {
	if len(infs) == 0 {
		return &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("Infractions for %s", targetUser.Username),
			Description: "No infractions on record.",
			Color:       3066993, // Green
		}
	}

	var lines []string
	for idx, inf := range infs {
		if idx == historyLimit {
			lines = append(lines, fmt.Sprintf("… and %d more", len(infs)-historyLimit))
			break
		}
		state := "inactive"
		if inf.Active {
			state = "active"
		}
		line := fmt.Sprintf("`#%d` **%s** (%s) <t:%d:d> by <@%s> — %s",
			inf.ID, inf.Type, state, inf.InsertedAt, inf.ActorID, inf.Reason)
		if inf.Hidden {
			line += " 🔒"
		}
		lines = append(lines, line)
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Infractions for %s (%d)", targetUser.Username, len(infs)),
		Description: strings.Join(lines, "\n"),
		Color:       15105570, // Orange
	}
}
