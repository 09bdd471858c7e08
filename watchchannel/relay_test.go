package watchchannel

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-bot/model"
)

type fakeGateway struct {
	mu       sync.Mutex
	sendErrs map[string]error // keyed by content
	posts    []string         // "header:<user>" or "msg:<content>"
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sendErrs: make(map[string]error)}
}

func (f *fakeGateway) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.sendErrs[content]; ok {
		return nil, err
	}
	f.posts = append(f.posts, "msg:"+content)
	return &discordgo.Message{ID: "sent"}, nil
}

func (f *fakeGateway) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, "header:"+embed.Fields[0].Value)
	return &discordgo.Message{ID: "sent"}, nil
}

func (f *fakeGateway) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.posts...)
}

type fakeWatchStore struct {
	mu      sync.Mutex
	entries map[string]model.WatchedUser
	addErr  error
}

func newFakeWatchStore() *fakeWatchStore {
	return &fakeWatchStore{entries: make(map[string]model.WatchedUser)}
}

func (f *fakeWatchStore) Add(entry model.WatchedUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.entries[entry.GuildID+":"+entry.UserID] = entry
	return nil
}

func (f *fakeWatchStore) Remove(guildID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, guildID+":"+userID)
	return nil
}

func (f *fakeWatchStore) List() ([]model.WatchedUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.WatchedUser, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e)
	}
	return out, nil
}

func watchedMsg(id, userID, channelID, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        id,
		GuildID:   "g1",
		ChannelID: channelID,
		Author:    &discordgo.User{ID: userID, Username: "user-" + userID},
		Content:   content,
	}
}

func startRelay(t *testing.T) (*Relay, *fakeGateway, *fakeWatchStore) {
	t.Helper()
	gateway := newFakeGateway()
	store := newFakeWatchStore()
	r := New(gateway, store, "staff-chan")
	require.NoError(t, r.Start())
	t.Cleanup(r.Stop)
	return r, gateway, store
}

func waitForPosts(t *testing.T, gateway *fakeGateway, n int) []string {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(gateway.snapshot()) >= n
	}, time.Second, 5*time.Millisecond)
	return gateway.snapshot()
}

func TestRelayGroupsConsecutiveMessages(t *testing.T) {
	r, gateway, _ := startRelay(t)
	require.NoError(t, r.Watch(model.WatchedUser{GuildID: "g1", UserID: "u1", ActorID: "mod1", Reason: "suspicious"}))
	require.NoError(t, r.Watch(model.WatchedUser{GuildID: "g1", UserID: "u2", ActorID: "mod1", Reason: "suspicious"}))

	r.Enqueue(watchedMsg("m0", "u1", "chan-1", "one"))
	r.Enqueue(watchedMsg("m1", "u1", "chan-1", "two"))
	r.Enqueue(watchedMsg("m2", "u2", "chan-1", "three"))
	r.Enqueue(watchedMsg("m3", "u1", "chan-1", "four"))

	posts := waitForPosts(t, gateway, 7)
	assert.Equal(t, []string{
		"header:user-u1 (<@u1>)",
		"msg:one",
		"msg:two",
		"header:user-u2 (<@u2>)",
		"msg:three",
		"header:user-u1 (<@u1>)",
		"msg:four",
	}, posts)
}

func TestRelayNewHeaderOnChannelChange(t *testing.T) {
	r, gateway, _ := startRelay(t)
	require.NoError(t, r.Watch(model.WatchedUser{GuildID: "g1", UserID: "u1", ActorID: "mod1", Reason: "x"}))

	r.Enqueue(watchedMsg("m0", "u1", "chan-1", "one"))
	r.Enqueue(watchedMsg("m1", "u1", "chan-2", "two"))

	posts := waitForPosts(t, gateway, 4)
	assert.Equal(t, "header:user-u1 (<@u1>)", posts[0])
	assert.Equal(t, "msg:one", posts[1])
	assert.Equal(t, "header:user-u1 (<@u1>)", posts[2])
	assert.Equal(t, "msg:two", posts[3])
}

func TestRelaySurvivesSendFailure(t *testing.T) {
	r, gateway, _ := startRelay(t)
	require.NoError(t, r.Watch(model.WatchedUser{GuildID: "g1", UserID: "u1", ActorID: "mod1", Reason: "x"}))
	gateway.sendErrs["two"] = errors.New("channel deleted")

	r.Enqueue(watchedMsg("m0", "u1", "chan-1", "one"))
	r.Enqueue(watchedMsg("m1", "u1", "chan-1", "two"))
	r.Enqueue(watchedMsg("m2", "u1", "chan-1", "three"))

	posts := waitForPosts(t, gateway, 3)
	assert.Contains(t, posts, "msg:one")
	assert.Contains(t, posts, "msg:three")
	assert.NotContains(t, posts, "msg:two")
}

func TestRelayIgnoresUnwatchedAuthors(t *testing.T) {
	r, gateway, _ := startRelay(t)
	require.NoError(t, r.Watch(model.WatchedUser{GuildID: "g1", UserID: "u1", ActorID: "mod1", Reason: "x"}))

	r.Enqueue(watchedMsg("m0", "u2", "chan-1", "ignored"))
	r.Enqueue(watchedMsg("m1", "u1", "chan-1", "relayed"))

	posts := waitForPosts(t, gateway, 2)
	assert.NotContains(t, posts, "msg:ignored")
	assert.Contains(t, posts, "msg:relayed")
	assert.Equal(t, 0, r.QueueDepth())
}

func TestWatchUnwatch(t *testing.T) {
	r, _, store := startRelay(t)

	entry := model.WatchedUser{GuildID: "g1", UserID: "u1", ActorID: "mod1", Reason: "x", InsertedAt: time.Now().Unix()}
	require.NoError(t, r.Watch(entry))
	assert.True(t, r.Watched("g1", "u1"))
	assert.Error(t, r.Watch(entry)) // duplicate

	require.NoError(t, r.Unwatch("g1", "u1"))
	assert.False(t, r.Watched("g1", "u1"))
	assert.Error(t, r.Unwatch("g1", "u1")) // unknown

	entries, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWatchPersistFailureRollsBack(t *testing.T) {
	r, _, store := startRelay(t)
	store.addErr = errors.New("disk full")

	err := r.Watch(model.WatchedUser{GuildID: "g1", UserID: "u1", ActorID: "mod1", Reason: "x"})
	require.Error(t, err)
	assert.False(t, r.Watched("g1", "u1"))
}

func TestStartLoadsPersistedWatchList(t *testing.T) {
	gateway := newFakeGateway()
	store := newFakeWatchStore()
	require.NoError(t, store.Add(model.WatchedUser{GuildID: "g1", UserID: "u1", ActorID: "mod1", Reason: "x"}))

	r := New(gateway, store, "staff-chan")
	require.NoError(t, r.Start())
	defer r.Stop()

	assert.True(t, r.Watched("g1", "u1"))
	assert.Len(t, r.List(), 1)
}
