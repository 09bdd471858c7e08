// Package watchchannel relays messages written by watched users into a
// staff-only channel. Messages are queued off the gateway event path and
// drained by a single consumer, which groups consecutive messages from the
// same author and source channel under one header post to keep the staff
// channel readable.
package watchchannel

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
)

// Gateway is the slice of the chat gateway the relay needs. A
// *discordgo.Session satisfies it.
type Gateway interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Store persists the watch list across restarts.
type Store interface {
	Add(entry model.WatchedUser) error
	Remove(guildID, userID string) error
	List() ([]model.WatchedUser, error)
}

const queueSize = 256

// Relay watches the message stream for watched users and forwards their
// messages. Enqueue never blocks the caller: when the queue is full the
// message is dropped and logged rather than stalling gateway dispatch.
type Relay struct {
	gateway       Gateway
	store         Store
	destChannelID string

	queue chan *discordgo.Message
	done  chan struct{}
	wg    sync.WaitGroup

	mu      sync.RWMutex
	watched map[string]model.WatchedUser // keyed by guildID:userID

	// consumer-only grouping state
	lastAuthorID  string
	lastChannelID string
}

func New(gateway Gateway, store Store, destChannelID string) *Relay {
	return &Relay{
		gateway:       gateway,
		store:         store,
		destChannelID: destChannelID,
		queue:         make(chan *discordgo.Message, queueSize),
		done:          make(chan struct{}),
		watched:       make(map[string]model.WatchedUser),
	}
}

// Start loads the watch list from the store and launches the consumer.
func (r *Relay) Start() error {
	entries, err := r.store.List()
	if err != nil {
		return fmt.Errorf("failed to load watch list: %w", err)
	}

	r.mu.Lock()
	for _, e := range entries {
		r.watched[watchKey(e.GuildID, e.UserID)] = e
	}
	r.mu.Unlock()
	log.Printf("[WatchChannel] Loaded %d watched users", len(entries))

	r.wg.Add(1)
	go r.consume()
	return nil
}

// Stop drains no further; queued messages not yet relayed are dropped.
func (r *Relay) Stop() {
	close(r.done)
	r.wg.Wait()
	log.Println("[WatchChannel] Relay stopped")
}

// Watch adds a user to the watch list and persists the entry.
func (r *Relay) Watch(entry model.WatchedUser) error {
	r.mu.Lock()
	key := watchKey(entry.GuildID, entry.UserID)
	if _, ok := r.watched[key]; ok {
		r.mu.Unlock()
		return fmt.Errorf("user %s is already watched", entry.UserID)
	}
	r.watched[key] = entry
	r.mu.Unlock()

	if err := r.store.Add(entry); err != nil {
		r.mu.Lock()
		delete(r.watched, key)
		r.mu.Unlock()
		return fmt.Errorf("failed to persist watch entry: %w", err)
	}
	return nil
}

// Unwatch removes a user from the watch list.
func (r *Relay) Unwatch(guildID, userID string) error {
	r.mu.Lock()
	key := watchKey(guildID, userID)
	_, ok := r.watched[key]
	delete(r.watched, key)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("user %s is not watched", userID)
	}
	return r.store.Remove(guildID, userID)
}

// Watched reports whether the author is on the watch list.
func (r *Relay) Watched(guildID, userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.watched[watchKey(guildID, userID)]
	return ok
}

// List returns the current watch list.
func (r *Relay) List() []model.WatchedUser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.WatchedUser, 0, len(r.watched))
	for _, e := range r.watched {
		out = append(out, e)
	}
	return out
}

// QueueDepth returns the number of messages waiting to be relayed.
func (r *Relay) QueueDepth() int {
	return len(r.queue)
}

// Enqueue queues a message for relay when its author is watched. Never
// blocks; a full queue drops the message with a log line.
func (r *Relay) Enqueue(m *discordgo.Message) {
	if m == nil || m.Author == nil || !r.Watched(m.GuildID, m.Author.ID) {
		return
	}
	select {
	case r.queue <- m:
	default:
		log.Printf("[WatchChannel] Queue full, dropping message %s from user %s", m.ID, m.Author.ID)
	}
}

func (r *Relay) consume() {
	defer r.wg.Done()
	for {
		select {
		case m := <-r.queue:
			r.relay(m)
		case <-r.done:
			return
		}
	}
}

// relay forwards one message. A new (author, source channel) pair gets a
// header embed first; consecutive messages from the same pair ride under the
// existing header. A failed send is logged and the consumer moves on, so one
// bad message never wedges the queue.
func (r *Relay) relay(m *discordgo.Message) {
	if m.Author.ID != r.lastAuthorID || m.ChannelID != r.lastChannelID {
		header := &discordgo.MessageEmbed{
			Title: "Watched user activity",
			Color: 15105570, // Orange
			Fields: []*discordgo.MessageEmbedField{
				{Name: "User", Value: fmt.Sprintf("%s (<@%s>)", m.Author.Username, m.Author.ID), Inline: true},
				{Name: "Channel", Value: "<#" + m.ChannelID + ">", Inline: true},
			},
			Timestamp: time.Now().Format(time.RFC3339),
		}
		if _, err := r.gateway.ChannelMessageSendEmbed(r.destChannelID, header); err != nil {
			log.Printf("[WatchChannel] Failed to send header for user %s: %v", m.Author.ID, err)
		}
		r.lastAuthorID = m.Author.ID
		r.lastChannelID = m.ChannelID
	}

	if _, err := r.gateway.ChannelMessageSend(r.destChannelID, renderContent(m)); err != nil {
		log.Printf("[WatchChannel] Failed to relay message %s: %v", m.ID, err)
	}
}

func renderContent(m *discordgo.Message) string {
	content := m.Content
	if content == "" {
		content = "(no text content)"
	}
	if len(m.Attachments) > 0 {
		urls := make([]string, 0, len(m.Attachments))
		for _, a := range m.Attachments {
			urls = append(urls, a.URL)
		}
		content += "\n" + strings.Join(urls, "\n")
	}
	return content
}

func watchKey(guildID, userID string) string {
	return guildID + ":" + userID
}
