package rules

import (
	"fmt"
	"regexp"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
)

var urlRE = regexp.MustCompile(`https?://\S+`)

// Links fires when a member posts too many URLs inside the interval.
func Links(trigger *discordgo.Message, window []*discordgo.Message, cfg model.RuleConfig) *Violation {
	relevant := authorRecent(trigger, window, cfg.Interval)

	total := 0
	for _, msg := range relevant {
		total += len(urlRE.FindAllString(msg.Content, -1))
	}

	if total <= cfg.Max {
		return nil
	}
	reason := fmt.Sprintf("sent %d links in %ds (limit %d)", total, cfg.Interval, cfg.Max)
	return newViolation("links", reason, relevant)
}
