package antispam

import (
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"moderation-bot/antispam/rules"
)

// detectionContext accumulates the violations of one channel across a short
// flush window, so that a spam wave hitting several rules at once produces a
// single clean-up pass, one log post, and at most one sanction per member.
type detectionContext struct {
	channelID string
	guildID   string
	batchID   string
	createdAt time.Time
	members   map[string]*discordgo.User
	messages  map[string]*discordgo.Message
	ruleNames map[string]struct{}
	punished  map[string]struct{}
	timer     *time.Timer
}

func newDetectionContext(channelID, guildID string) *detectionContext {
	return &detectionContext{
		channelID: channelID,
		guildID:   guildID,
		batchID:   uuid.NewString(),
		createdAt: time.Now(),
		members:   make(map[string]*discordgo.User),
		messages:  make(map[string]*discordgo.Message),
		ruleNames: make(map[string]struct{}),
		punished:  make(map[string]struct{}),
	}
}

// merge unions a violation into the context. Maps keyed by id make the merge
// naturally deduplicating: a member or message flagged by two rules appears
// once.
func (dc *detectionContext) merge(v *rules.Violation) {
	dc.ruleNames[v.Rule] = struct{}{}
	for id, user := range v.Members {
		dc.members[id] = user
	}
	for id, msg := range v.Messages {
		dc.messages[id] = msg
	}
}

// unpunishedMembers returns the members not yet sanctioned in this context
// and marks them as handled.
func (dc *detectionContext) unpunishedMembers() []*discordgo.User {
	var out []*discordgo.User
	for id, user := range dc.members {
		if _, done := dc.punished[id]; done {
			continue
		}
		dc.punished[id] = struct{}{}
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// messageIDs returns the accumulated message ids, oldest first.
func (dc *detectionContext) messageIDs() []string {
	msgs := make([]*discordgo.Message, 0, len(dc.messages))
	for _, m := range dc.messages {
		msgs = append(msgs, m)
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Timestamp.Before(msgs[j].Timestamp) })

	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	return ids
}

// sortedRuleNames returns the triggered rule names in a stable order for
// reporting.
func (dc *detectionContext) sortedRuleNames() []string {
	names := make([]string, 0, len(dc.ruleNames))
	for name := range dc.ruleNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
