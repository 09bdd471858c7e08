// Package antispam implements the sliding-window abuse detection engine. A
// coordinator feeds every incoming message through the configured rules,
// aggregates the violations per channel, and drives one clean-up pass per
// detection batch: bulk message removal, an archive upload, a mod-log post,
// and at most one sanction per offending member.
package antispam

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/antispam/rules"
	"moderation-bot/infractions"
	"moderation-bot/model"
	"moderation-bot/utils"
)

// Gateway is the slice of the chat gateway the coordinator needs. A
// *discordgo.Session satisfies it.
type Gateway interface {
	ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Punisher issues the automatic sanction for members flagged by detection.
// Implemented by infractions.Manager.
type Punisher interface {
	AutoMute(guildID string, user *discordgo.User, reason string) error
}

type enabledRule struct {
	name  string
	apply rules.Apply
	cfg   model.RuleConfig
}

// AntiSpam is the detection coordinator. All methods are safe for concurrent
// use from the gateway's event goroutines; a nil *AntiSpam ignores every
// event, which is how the subsystem stays off after a failed config
// validation.
type AntiSpam struct {
	gateway      Gateway
	punisher     Punisher
	servers      map[string]model.ServerConfig
	selfID       string
	logChannelID string
	archiveURL   string
	windows      *Windows
	flushDelay   time.Duration
	enabled      []enabledRule

	mu       sync.Mutex
	contexts map[string]*detectionContext
}

// New builds a coordinator from a validated configuration. Rules run in
// registry order restricted to the names present in cfg.Rules.
func New(gateway Gateway, punisher Punisher, cfg model.AntiSpamConfig, servers map[string]model.ServerConfig, selfID, logChannelID, archiveURL string) *AntiSpam {
	var enabled []enabledRule
	for _, entry := range rules.All() {
		rc, ok := cfg.Rules[entry.Name]
		if !ok {
			continue
		}
		enabled = append(enabled, enabledRule{name: entry.Name, apply: entry.Apply, cfg: rc})
	}

	maxAge := time.Duration(cfg.MaxInterval()) * time.Second
	if maxAge <= 0 {
		maxAge = time.Minute
	}

	flushDelay := time.Duration(cfg.FlushDelaySeconds) * time.Second
	if flushDelay <= 0 {
		flushDelay = 10 * time.Second
	}

	return &AntiSpam{
		gateway:      gateway,
		punisher:     punisher,
		servers:      servers,
		selfID:       selfID,
		logChannelID: logChannelID,
		archiveURL:   archiveURL,
		windows:      NewWindows(cfg.CacheChannels, cfg.CacheMessages, maxAge),
		flushDelay:   flushDelay,
		enabled:      enabled,
		contexts:     make(map[string]*detectionContext),
	}
}

// OnMessage feeds a new message through detection.
func (a *AntiSpam) OnMessage(m *discordgo.Message) {
	if a == nil || !a.moderated(m) {
		return
	}
	window := a.windows.Append(m)
	a.detect(m, window)
}

// OnMessageEdit re-runs detection with the edited content replacing the
// cached copy, so editing spam into a previously clean message is caught.
func (a *AntiSpam) OnMessageEdit(m *discordgo.Message) {
	if a == nil || !a.moderated(m) {
		return
	}
	window := a.windows.Replace(m)
	if window == nil {
		return
	}
	a.detect(m, window)
}

// DropMessage removes a deleted message from its channel's window so it no
// longer counts toward thresholds.
func (a *AntiSpam) DropMessage(channelID, messageID string) {
	if a == nil {
		return
	}
	a.windows.Remove(channelID, messageID)
}

// WindowChannels returns the number of channels with a cached window.
func (a *AntiSpam) WindowChannels() int {
	if a == nil {
		return 0
	}
	return a.windows.Len()
}

func (a *AntiSpam) moderated(m *discordgo.Message) bool {
	if m == nil || m.Author == nil || m.Author.Bot || m.Author.ID == a.selfID {
		return false
	}
	if m.GuildID == "" { // direct message
		return false
	}
	sc, ok := a.servers[m.GuildID]
	if !ok || !sc.Enable {
		return false
	}
	return sc.ChannelModerated(m.ChannelID)
}

func (a *AntiSpam) detect(m *discordgo.Message, window []*discordgo.Message) {
	var violations []*rules.Violation
	for _, r := range a.enabled {
		v := a.evaluate(r, m, window)
		if v == nil {
			continue
		}
		violations = append(violations, v)
		violationsTotal.WithLabelValues(r.name).Inc()
		log.Printf("[AntiSpam] Rule %s fired in channel %s: %s", r.name, m.ChannelID, v.Reason)
	}
	if len(violations) == 0 {
		return
	}

	a.mu.Lock()
	dc, ok := a.contexts[m.ChannelID]
	if !ok {
		dc = newDetectionContext(m.ChannelID, m.GuildID)
		channelID := m.ChannelID
		dc.timer = time.AfterFunc(a.flushDelay, func() { a.Flush(channelID) })
		a.contexts[m.ChannelID] = dc
	}
	for _, v := range violations {
		dc.merge(v)
	}
	targets := dc.unpunishedMembers()
	reason := fmt.Sprintf("antispam: %s", strings.Join(dc.sortedRuleNames(), ", "))
	guildID := dc.guildID
	a.mu.Unlock()

	for _, user := range targets {
		err := a.punisher.AutoMute(guildID, user, reason)
		if errors.Is(err, infractions.ErrActiveInfractionExists) {
			// Already sanctioned, most likely by an earlier batch. Fine.
			continue
		}
		if err != nil {
			log.Printf("[AntiSpam] Failed to mute user %s: %v", user.ID, err)
		}
	}
}

// evaluate runs one rule, converting a panic into "no violation" so a broken
// rule cannot suppress detection by the others.
func (a *AntiSpam) evaluate(r enabledRule, m *discordgo.Message, window []*discordgo.Message) (v *rules.Violation) {
	defer func() {
		if rec := recover(); rec != nil {
			rulePanicsTotal.WithLabelValues(r.name).Inc()
			log.Printf("[AntiSpam] Rule %s panicked: %v", r.name, rec)
			v = nil
		}
	}()
	return r.apply(m, window, r.cfg)
}

// Flush completes the detection pass for one channel: the accumulated
// messages are removed, archived and reported, and the context is discarded.
// Flushing a channel without a pending context is a no-op.
func (a *AntiSpam) Flush(channelID string) {
	a.mu.Lock()
	dc, ok := a.contexts[channelID]
	if ok {
		delete(a.contexts, channelID)
		dc.timer.Stop()
	}
	a.mu.Unlock()
	if !ok {
		return
	}

	flushesTotal.Inc()
	deleted := a.deleteMessages(dc)
	messagesDeletedTotal.Add(float64(deleted))

	if a.archiveURL != "" {
		msgs := make([]*discordgo.Message, 0, len(dc.messages))
		for _, m := range dc.messages {
			msgs = append(msgs, m)
		}
		go func() {
			if err := utils.UploadDeletedMessages(a.archiveURL, dc.batchID, msgs); err != nil {
				log.Printf("[AntiSpam] Failed to upload batch %s: %v", dc.batchID, err)
			}
		}()
	}

	a.postSummary(dc, deleted)
}

// FlushAll force-completes every pending detection pass. Used at shutdown.
func (a *AntiSpam) FlushAll() {
	if a == nil {
		return
	}
	a.mu.Lock()
	channels := make([]string, 0, len(a.contexts))
	for id := range a.contexts {
		channels = append(channels, id)
	}
	a.mu.Unlock()

	for _, id := range channels {
		a.Flush(id)
	}
}

// deleteMessages removes the context's messages in bulk, falling back to
// one-by-one deletion when a chunk is rejected. Individual failures are
// logged and skipped; the pass always continues.
func (a *AntiSpam) deleteMessages(dc *detectionContext) int {
	ids := dc.messageIDs()
	deleted := 0

	for start := 0; start < len(ids); start += 100 {
		end := start + 100
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		if err := a.gateway.ChannelMessagesBulkDelete(dc.channelID, chunk); err != nil {
			log.Printf("[AntiSpam] Bulk delete failed in channel %s, falling back to single deletes: %v", dc.channelID, err)
			for _, id := range chunk {
				if err := a.gateway.ChannelMessageDelete(dc.channelID, id); err != nil {
					log.Printf("[AntiSpam] Failed to delete message %s: %v", id, err)
					continue
				}
				deleted++
			}
		} else {
			deleted += len(chunk)
		}
	}

	for _, id := range ids {
		a.windows.Remove(dc.channelID, id)
	}
	return deleted
}

func (a *AntiSpam) postSummary(dc *detectionContext, deleted int) {
	if a.logChannelID == "" {
		return
	}

	memberList := make([]string, 0, len(dc.members))
	for id := range dc.members {
		memberList = append(memberList, "<@"+id+">")
	}

	embed := &discordgo.MessageEmbed{
		Title: "AntiSpam Detection",
		Color: 15158332, // Red
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Channel", Value: "<#" + dc.channelID + ">", Inline: true},
			{Name: "Rules", Value: strings.Join(dc.sortedRuleNames(), ", "), Inline: true},
			{Name: "Members", Value: strings.Join(memberList, " ")},
			{Name: "Deleted Messages", Value: fmt.Sprintf("%d of %d", deleted, len(dc.messages)), Inline: true},
			{Name: "Batch", Value: dc.batchID, Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if _, err := a.gateway.ChannelMessageSendEmbed(a.logChannelID, embed); err != nil {
		log.Printf("[AntiSpam] Failed to post detection summary for batch %s: %v", dc.batchID, err)
	}
}
