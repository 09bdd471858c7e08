package rules

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
)

// Duplicates fires when a member repeats the exact same non-empty content too
// often inside the interval. Messages with different content never extend the
// violation, even from the same author.
func Duplicates(trigger *discordgo.Message, window []*discordgo.Message, cfg model.RuleConfig) *Violation {
	if trigger.Author == nil || trigger.Content == "" {
		return nil
	}

	var relevant []*discordgo.Message
	for _, msg := range window {
		if msg.Author == nil {
			continue
		}
		if msg.Author.ID == trigger.Author.ID &&
			msg.Content == trigger.Content &&
			withinInterval(trigger, msg, cfg.Interval) {
			relevant = append(relevant, msg)
		}
	}

	if len(relevant) <= cfg.Max {
		return nil
	}
	reason := fmt.Sprintf("sent %d duplicated messages in %ds (limit %d)", len(relevant), cfg.Interval, cfg.Max)
	return newViolation("duplicates", reason, relevant)
}
