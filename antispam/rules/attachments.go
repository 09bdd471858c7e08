package rules

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
)

// Attachments fires when a member uploads too many attachments inside the
// interval.
func Attachments(trigger *discordgo.Message, window []*discordgo.Message, cfg model.RuleConfig) *Violation {
	relevant := authorRecent(trigger, window, cfg.Interval)

	total := 0
	for _, msg := range relevant {
		total += len(msg.Attachments)
	}

	if total <= cfg.Max {
		return nil
	}
	reason := fmt.Sprintf("sent %d attachments in %ds (limit %d)", total, cfg.Interval, cfg.Max)
	return newViolation("attachments", reason, relevant)
}
