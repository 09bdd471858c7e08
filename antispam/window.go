package antispam

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Windows keeps the recent message window for each moderated channel. The
// backing cache is bounded both in channel count and in per-channel entry
// age, so a quiet channel's window expires on its own and the cache never
// outgrows the configured limits. Entries older than the largest configured
// rule interval are pruned on every append since no rule can reach them.
type Windows struct {
	mu     sync.Mutex
	cache  *expirable.LRU[string, []*discordgo.Message]
	maxAge time.Duration
	maxLen int
}

// NewWindows creates a window cache holding up to channels entries of up to
// maxLen messages each, expiring untouched channels after maxAge.
func NewWindows(channels, maxLen int, maxAge time.Duration) *Windows {
	return &Windows{
		cache:  expirable.NewLRU[string, []*discordgo.Message](channels, nil, maxAge),
		maxAge: maxAge,
		maxLen: maxLen,
	}
}

// Append adds m to its channel's window and returns the pruned window,
// newest message last.
func (w *Windows) Append(m *discordgo.Message) []*discordgo.Message {
	w.mu.Lock()
	defer w.mu.Unlock()

	window, _ := w.cache.Get(m.ChannelID)
	window = append(window, m)
	window = w.prune(window, m.Timestamp)
	w.cache.Add(m.ChannelID, window)
	return window
}

// Replace swaps the cached copy of m for the given (edited) version and
// returns the channel's window. When the message is no longer cached the
// window is returned unchanged.
func (w *Windows) Replace(m *discordgo.Message) []*discordgo.Message {
	w.mu.Lock()
	defer w.mu.Unlock()

	window, ok := w.cache.Get(m.ChannelID)
	if !ok {
		return nil
	}
	for i, cached := range window {
		if cached.ID == m.ID {
			// Edits carry the original send timestamp; keep it so the
			// message's window position is unchanged.
			if m.Timestamp.IsZero() {
				m.Timestamp = cached.Timestamp
			}
			window[i] = m
			break
		}
	}
	w.cache.Add(m.ChannelID, window)
	return window
}

// Remove drops a deleted message from its channel's window.
func (w *Windows) Remove(channelID, messageID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	window, ok := w.cache.Get(channelID)
	if !ok {
		return
	}
	for i, cached := range window {
		if cached.ID == messageID {
			window = append(window[:i], window[i+1:]...)
			break
		}
	}
	w.cache.Add(channelID, window)
}

// Len returns the number of channels currently cached.
func (w *Windows) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cache.Len()
}

func (w *Windows) prune(window []*discordgo.Message, newest time.Time) []*discordgo.Message {
	cut := 0
	for cut < len(window) && newest.Sub(window[cut].Timestamp) >= w.maxAge {
		cut++
	}
	window = window[cut:]
	if len(window) > w.maxLen {
		window = window[len(window)-w.maxLen:]
	}
	return window
}
