package antispam

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-bot/antispam/rules"
	"moderation-bot/infractions"
	"moderation-bot/model"
)

type fakeGateway struct {
	mu         sync.Mutex
	bulkErr    error
	singleErrs map[string]error
	deleted    []string
	embeds     []string // channel ids embeds were sent to
}

func (f *fakeGateway) ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bulkErr != nil {
		return f.bulkErr
	}
	f.deleted = append(f.deleted, messages...)
	return nil
}

func (f *fakeGateway) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.singleErrs[messageID]; ok {
		return err
	}
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeGateway) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeds = append(f.embeds, channelID)
	return &discordgo.Message{ID: "sent"}, nil
}

func (f *fakeGateway) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type fakePunisher struct {
	mu    sync.Mutex
	err   error
	muted []string
}

func (f *fakePunisher) AutoMute(guildID string, user *discordgo.User, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muted = append(f.muted, user.ID)
	return f.err
}

func (f *fakePunisher) mutedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.muted...)
}

func testConfig(ruleCfg map[string]model.RuleConfig) model.AntiSpamConfig {
	return model.AntiSpamConfig{
		Enabled:           true,
		CacheChannels:     16,
		CacheMessages:     200,
		FlushDelaySeconds: 300, // flushed explicitly by the tests
		Punishment:        model.PunishmentConfig{Type: model.InfractionMute, DurationSeconds: 600},
		Rules:             ruleCfg,
	}
}

func testServers() map[string]model.ServerConfig {
	return map[string]model.ServerConfig{
		"g1": {GuildID: "g1", Enable: true, UnmoderatedChannelIDs: []string{"quiet-chan"}},
	}
}

func newTestAntiSpam(ruleCfg map[string]model.RuleConfig) (*AntiSpam, *fakeGateway, *fakePunisher) {
	gateway := &fakeGateway{singleErrs: make(map[string]error)}
	punisher := &fakePunisher{}
	a := New(gateway, punisher, testConfig(ruleCfg), testServers(), "bot-self", "log-chan", "")
	return a, gateway, punisher
}

func guildMsg(id, userID, channelID, content string, at time.Time) *discordgo.Message {
	return &discordgo.Message{
		ID:        id,
		GuildID:   "g1",
		ChannelID: channelID,
		Author:    &discordgo.User{ID: userID, Username: "user-" + userID},
		Content:   content,
		Timestamp: at,
	}
}

// Two rules flagging the same author in one pass must still punish exactly
// once, and the flushed delete set must carry no duplicate ids.
func TestAggregationPunishesOnce(t *testing.T) {
	a, gateway, punisher := newTestAntiSpam(map[string]model.RuleConfig{
		"burst":      {Interval: 10, Max: 2},
		"duplicates": {Interval: 10, Max: 2},
	})

	base := time.Now()
	for i := 0; i < 4; i++ {
		a.OnMessage(guildMsg(fmt.Sprintf("m%d", i), "u1", "chan-1", "spam", base.Add(time.Duration(i)*time.Second)))
	}

	require.Equal(t, []string{"u1"}, punisher.mutedIDs())

	a.Flush("chan-1")
	deleted := gateway.deletedIDs()
	seen := make(map[string]bool)
	for _, id := range deleted {
		assert.False(t, seen[id], "duplicate delete of %s", id)
		seen[id] = true
	}
	assert.Len(t, deleted, 4)
	assert.Contains(t, gateway.embeds, "log-chan")
}

func TestBurstScenario(t *testing.T) {
	a, gateway, punisher := newTestAntiSpam(map[string]model.RuleConfig{
		"burst": {Interval: 10, Max: 7},
	})

	base := time.Now()
	for i := 0; i < 7; i++ {
		a.OnMessage(guildMsg(fmt.Sprintf("m%d", i), "u1", "chan-1", "hello", base.Add(time.Duration(i)*time.Second)))
	}
	assert.Empty(t, punisher.mutedIDs())

	a.OnMessage(guildMsg("m7", "u1", "chan-1", "hello", base.Add(7*time.Second)))
	assert.Equal(t, []string{"u1"}, punisher.mutedIDs())

	a.Flush("chan-1")
	assert.Len(t, gateway.deletedIDs(), 8)
}

func TestIgnoresBotsAndUnmoderated(t *testing.T) {
	a, _, punisher := newTestAntiSpam(map[string]model.RuleConfig{
		"burst": {Interval: 10, Max: 0},
	})

	base := time.Now()

	bot := guildMsg("m0", "b1", "chan-1", "x", base)
	bot.Author.Bot = true
	a.OnMessage(bot)

	self := guildMsg("m1", "bot-self", "chan-1", "x", base)
	a.OnMessage(self)

	dm := guildMsg("m2", "u1", "chan-1", "x", base)
	dm.GuildID = ""
	a.OnMessage(dm)

	a.OnMessage(guildMsg("m3", "u1", "quiet-chan", "x", base))

	unknown := guildMsg("m4", "u1", "chan-1", "x", base)
	unknown.GuildID = "g-unknown"
	a.OnMessage(unknown)

	assert.Empty(t, punisher.mutedIDs())

	// A nil coordinator (disabled subsystem) ignores everything.
	var off *AntiSpam
	off.OnMessage(guildMsg("m5", "u1", "chan-1", "x", base))
	off.FlushAll()
}

func TestConflictIsSuccess(t *testing.T) {
	a, _, punisher := newTestAntiSpam(map[string]model.RuleConfig{
		"burst": {Interval: 10, Max: 1},
	})
	punisher.err = fmt.Errorf("wrapped: %w", infractions.ErrActiveInfractionExists)

	base := time.Now()
	a.OnMessage(guildMsg("m0", "u1", "chan-1", "x", base))
	a.OnMessage(guildMsg("m1", "u1", "chan-1", "x", base.Add(time.Second)))

	// The conflict is swallowed; the member is not retried within the
	// context either.
	a.OnMessage(guildMsg("m2", "u1", "chan-1", "x", base.Add(2*time.Second)))
	assert.Equal(t, []string{"u1"}, punisher.mutedIDs())
}

// One panicking rule must not suppress detection by the rest.
func TestPanickingRuleIsolated(t *testing.T) {
	a, _, punisher := newTestAntiSpam(map[string]model.RuleConfig{
		"burst": {Interval: 10, Max: 1},
	})
	a.enabled = append([]enabledRule{{
		name: "boom",
		apply: func(trigger *discordgo.Message, window []*discordgo.Message, cfg model.RuleConfig) *rules.Violation {
			panic("rule bug")
		},
	}}, a.enabled...)

	base := time.Now()
	a.OnMessage(guildMsg("m0", "u1", "chan-1", "x", base))
	a.OnMessage(guildMsg("m1", "u1", "chan-1", "x", base.Add(time.Second)))

	assert.Equal(t, []string{"u1"}, punisher.mutedIDs())
}

func TestBulkDeleteFallsBackToSingles(t *testing.T) {
	a, gateway, _ := newTestAntiSpam(map[string]model.RuleConfig{
		"burst": {Interval: 10, Max: 1},
	})
	gateway.bulkErr = errors.New("messages too old")
	gateway.singleErrs["m1"] = errors.New("already deleted")

	base := time.Now()
	a.OnMessage(guildMsg("m0", "u1", "chan-1", "x", base))
	a.OnMessage(guildMsg("m1", "u1", "chan-1", "x", base.Add(time.Second)))
	a.Flush("chan-1")

	// m1's failure is skipped, m0 still goes.
	assert.Equal(t, []string{"m0"}, gateway.deletedIDs())
}

func TestFlushWithoutContextIsNoop(t *testing.T) {
	a, gateway, _ := newTestAntiSpam(map[string]model.RuleConfig{
		"burst": {Interval: 10, Max: 5},
	})
	a.Flush("chan-1")
	assert.Empty(t, gateway.deletedIDs())
	assert.Empty(t, gateway.embeds)
}

func TestOnMessageEditReruns(t *testing.T) {
	a, _, punisher := newTestAntiSpam(map[string]model.RuleConfig{
		"chars": {Interval: 10, Max: 20},
	})

	base := time.Now()
	a.OnMessage(guildMsg("m0", "u1", "chan-1", "short", base))
	assert.Empty(t, punisher.mutedIDs())

	edited := guildMsg("m0", "u1", "chan-1", "now this message is well over the character limit", time.Time{})
	a.OnMessageEdit(edited)
	assert.Equal(t, []string{"u1"}, punisher.mutedIDs())
}

func TestDistinctChannelsGetDistinctContexts(t *testing.T) {
	a, gateway, punisher := newTestAntiSpam(map[string]model.RuleConfig{
		"burst": {Interval: 10, Max: 1},
	})

	base := time.Now()
	a.OnMessage(guildMsg("a0", "u1", "chan-1", "x", base))
	a.OnMessage(guildMsg("a1", "u1", "chan-1", "x", base.Add(time.Second)))
	a.OnMessage(guildMsg("b0", "u2", "chan-2", "x", base))
	a.OnMessage(guildMsg("b1", "u2", "chan-2", "x", base.Add(time.Second)))

	assert.ElementsMatch(t, []string{"u1", "u2"}, punisher.mutedIDs())

	a.Flush("chan-1")
	assert.ElementsMatch(t, []string{"a0", "a1"}, gateway.deletedIDs())
	a.Flush("chan-2")
	assert.ElementsMatch(t, []string{"a0", "a1", "b0", "b1"}, gateway.deletedIDs())
}

func TestWindowPrunesOldEntries(t *testing.T) {
	w := NewWindows(4, 100, 10*time.Second)

	base := time.Now()
	w.Append(guildMsg("m0", "u1", "chan-1", "x", base.Add(-15*time.Second)))
	w.Append(guildMsg("m1", "u1", "chan-1", "x", base.Add(-5*time.Second)))
	window := w.Append(guildMsg("m2", "u1", "chan-1", "x", base))

	require.Len(t, window, 2)
	assert.Equal(t, "m1", window[0].ID)
	assert.Equal(t, "m2", window[1].ID)
}

func TestWindowCapsLength(t *testing.T) {
	w := NewWindows(4, 3, time.Minute)

	base := time.Now()
	var window []*discordgo.Message
	for i := 0; i < 5; i++ {
		window = w.Append(guildMsg(fmt.Sprintf("m%d", i), "u1", "chan-1", "x", base.Add(time.Duration(i)*time.Second)))
	}
	require.Len(t, window, 3)
	assert.Equal(t, "m2", window[0].ID)
}
