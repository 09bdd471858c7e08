package rules

import (
	"fmt"
	"regexp"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
)

var newlineRunRE = regexp.MustCompile(`\n+`)

// Newlines fires either when a member sends too many newlines in total inside
// the interval, or when any single recent message contains too long a run of
// consecutive newlines. The total check takes precedence in the reported
// reason.
func Newlines(trigger *discordgo.Message, window []*discordgo.Message, cfg model.RuleConfig) *Violation {
	relevant := authorRecent(trigger, window, cfg.Interval)

	total := 0
	longestRun := 0
	for _, msg := range relevant {
		for _, run := range newlineRunRE.FindAllString(msg.Content, -1) {
			total += len(run)
			if len(run) > longestRun {
				longestRun = len(run)
			}
		}
	}

	switch {
	case total > cfg.Max:
		reason := fmt.Sprintf("sent %d newlines in %ds (limit %d)", total, cfg.Interval, cfg.Max)
		return newViolation("newlines", reason, relevant)
	case cfg.MaxConsecutive > 0 && longestRun > cfg.MaxConsecutive:
		reason := fmt.Sprintf("sent %d consecutive newlines in a single message (limit %d)", longestRun, cfg.MaxConsecutive)
		return newViolation("newlines", reason, relevant)
	}
	return nil
}
