package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hashicorp/go-retryablehttp"
)

type archivedMessage struct {
	ID          string `json:"id"`
	ChannelID   string `json:"channel_id"`
	AuthorID    string `json:"author_id"`
	AuthorName  string `json:"author_name"`
	Content     string `json:"content"`
	Timestamp   int64  `json:"timestamp"`
	Attachments int    `json:"attachments"`
}

type archivePayload struct {
	BatchID    string            `json:"batch_id"`
	UploadedAt int64             `json:"uploaded_at"`
	Messages   []archivedMessage `json:"messages"`
}

// UploadDeletedMessages posts the deleted-message batch to the archive
// endpoint as a single JSON artifact. Transient failures are retried with
// backoff; the caller treats the upload as fire-and-forget either way.
func UploadDeletedMessages(archiveURL, batchID string, msgs []*discordgo.Message) error {
	payload := archivePayload{
		BatchID:    batchID,
		UploadedAt: time.Now().Unix(),
		Messages:   make([]archivedMessage, 0, len(msgs)),
	}
	for _, m := range msgs {
		am := archivedMessage{
			ID:          m.ID,
			ChannelID:   m.ChannelID,
			Content:     m.Content,
			Timestamp:   m.Timestamp.Unix(),
			Attachments: len(m.Attachments),
		}
		if m.Author != nil {
			am.AuthorID = m.Author.ID
			am.AuthorName = m.Author.Username
		}
		payload.Messages = append(payload.Messages, am)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal archive payload: %w", err)
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil
	client.HTTPClient = GlobalHTTPClient

	resp, err := client.Post(archiveURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to upload archive batch %s: %w", batchID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("archive endpoint rejected batch %s: %s", batchID, resp.Status)
	}
	return nil
}
