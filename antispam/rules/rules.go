// Package rules contains the antispam detection rules. Every rule is a pure
// function of the triggering message, the recent message window for its
// channel, and its configured thresholds; rules keep no state between
// invocations and may be evaluated in any order relative to each other.
package rules

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
)

// Violation is the result of a single rule firing. Members and Messages hold
// exactly the authors and messages that contributed to the overflow, keyed by
// id so that merging violations across rules never duplicates an entry.
type Violation struct {
	Rule     string
	Reason   string
	Members  map[string]*discordgo.User
	Messages map[string]*discordgo.Message
}

// Apply evaluates one detection rule against a message and the recent window
// of its channel. It returns nil when the rule does not fire.
type Apply func(trigger *discordgo.Message, window []*discordgo.Message, cfg model.RuleConfig) *Violation

// withinInterval reports whether msg falls inside the lookback interval of
// the trigger. The boundary is exclusive: a message aged exactly the interval
// is out of range.
func withinInterval(trigger, msg *discordgo.Message, seconds int) bool {
	age := trigger.Timestamp.Sub(msg.Timestamp)
	return age < time.Duration(seconds)*time.Second
}

// authorRecent returns the window entries written by the trigger's author
// inside the rule interval. Used by the single-author rules.
func authorRecent(trigger *discordgo.Message, window []*discordgo.Message, seconds int) []*discordgo.Message {
	var relevant []*discordgo.Message
	for _, msg := range window {
		if msg.Author == nil || trigger.Author == nil {
			continue
		}
		if msg.Author.ID == trigger.Author.ID && withinInterval(trigger, msg, seconds) {
			relevant = append(relevant, msg)
		}
	}
	return relevant
}

// sharedRecent returns every window entry inside the rule interval regardless
// of author. Used by the shared rules.
func sharedRecent(trigger *discordgo.Message, window []*discordgo.Message, seconds int) []*discordgo.Message {
	var relevant []*discordgo.Message
	for _, msg := range window {
		if withinInterval(trigger, msg, seconds) {
			relevant = append(relevant, msg)
		}
	}
	return relevant
}

func newViolation(rule, reason string, contributors []*discordgo.Message) *Violation {
	v := &Violation{
		Rule:     rule,
		Reason:   reason,
		Members:  make(map[string]*discordgo.User),
		Messages: make(map[string]*discordgo.Message),
	}
	for _, msg := range contributors {
		v.Messages[msg.ID] = msg
		if msg.Author != nil {
			v.Members[msg.Author.ID] = msg.Author
		}
	}
	return v
}
