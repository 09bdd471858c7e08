package rules

import (
	"fmt"
	"regexp"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
)

// customEmojiRE matches server emoji of the form <:name:id> and the animated
// variant <a:name:id>.
var customEmojiRE = regexp.MustCompile(`<a?:\w+:\d+>`)

// unicodeEmojiRE covers the common emoji codepoint blocks. It does not try to
// be exhaustive; spam runs are long enough that missing the odd exotic glyph
// does not matter.
var unicodeEmojiRE = regexp.MustCompile(`[\x{1F300}-\x{1FAFF}\x{2600}-\x{27BF}\x{FE0F}\x{1F1E6}-\x{1F1FF}]`)

// Emojis fires when a member posts too many emoji inside the interval,
// counting both custom server emoji and unicode emoji.
func Emojis(trigger *discordgo.Message, window []*discordgo.Message, cfg model.RuleConfig) *Violation {
	relevant := authorRecent(trigger, window, cfg.Interval)

	total := 0
	for _, msg := range relevant {
		total += len(customEmojiRE.FindAllString(msg.Content, -1))
		total += len(unicodeEmojiRE.FindAllString(msg.Content, -1))
	}

	if total <= cfg.Max {
		return nil
	}
	reason := fmt.Sprintf("sent %d emojis in %ds (limit %d)", total, cfg.Interval, cfg.Max)
	return newViolation("discord_emojis", reason, relevant)
}
