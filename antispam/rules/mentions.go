package rules

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
)

// Mentions fires when a member mentions too many users inside the interval.
// Mentions of bot accounts are not counted.
func Mentions(trigger *discordgo.Message, window []*discordgo.Message, cfg model.RuleConfig) *Violation {
	relevant := authorRecent(trigger, window, cfg.Interval)

	total := 0
	for _, msg := range relevant {
		for _, user := range msg.Mentions {
			if user != nil && !user.Bot {
				total++
			}
		}
	}

	if total <= cfg.Max {
		return nil
	}
	reason := fmt.Sprintf("sent %d mentions in %ds (limit %d)", total, cfg.Interval, cfg.Max)
	return newViolation("mentions", reason, relevant)
}

// RoleMentions fires when a member mentions too many roles inside the
// interval.
func RoleMentions(trigger *discordgo.Message, window []*discordgo.Message, cfg model.RuleConfig) *Violation {
	relevant := authorRecent(trigger, window, cfg.Interval)

	total := 0
	for _, msg := range relevant {
		total += len(msg.MentionRoles)
	}

	if total <= cfg.Max {
		return nil
	}
	reason := fmt.Sprintf("sent %d role mentions in %ds (limit %d)", total, cfg.Interval, cfg.Max)
	return newViolation("role_mentions", reason, relevant)
}
