package rules

import (
	"fmt"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
)

// Chars fires when a member sends too many characters inside the interval,
// counted as unicode code points across all of their recent messages.
func Chars(trigger *discordgo.Message, window []*discordgo.Message, cfg model.RuleConfig) *Violation {
	relevant := authorRecent(trigger, window, cfg.Interval)

	total := 0
	for _, msg := range relevant {
		total += utf8.RuneCountInString(msg.Content)
	}

	if total <= cfg.Max {
		return nil
	}
	reason := fmt.Sprintf("sent %d characters in %ds (limit %d)", total, cfg.Interval, cfg.Max)
	return newViolation("chars", reason, relevant)
}
