package rules

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
)

// Burst fires when a single member sends too many messages inside the
// interval.
func Burst(trigger *discordgo.Message, window []*discordgo.Message, cfg model.RuleConfig) *Violation {
	relevant := authorRecent(trigger, window, cfg.Interval)
	if len(relevant) <= cfg.Max {
		return nil
	}
	reason := fmt.Sprintf("sent %d messages in %ds (limit %d)", len(relevant), cfg.Interval, cfg.Max)
	return newViolation("burst", reason, relevant)
}

// BurstShared fires when a channel is flooded regardless of who is sending.
// Every author contributing to the window is held responsible.
func BurstShared(trigger *discordgo.Message, window []*discordgo.Message, cfg model.RuleConfig) *Violation {
	relevant := sharedRecent(trigger, window, cfg.Interval)
	if len(relevant) <= cfg.Max {
		return nil
	}
	reason := fmt.Sprintf("sent %d messages in %ds (limit %d)", len(relevant), cfg.Interval, cfg.Max)
	return newViolation("burst_shared", reason, relevant)
}
