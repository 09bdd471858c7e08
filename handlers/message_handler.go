package handlers

import (
	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
)

func handleMessageCreate(b *bot.Bot, m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil {
		return
	}
	b.AntiSpam.OnMessage(m.Message)
	if b.Relay != nil {
		b.Relay.Enqueue(m.Message)
	}
}

func handleMessageUpdate(b *bot.Bot, m *discordgo.MessageUpdate) {
	if m.Message == nil {
		return
	}
	b.AntiSpam.OnMessageEdit(m.Message)
}

func handleMessageDelete(b *bot.Bot, m *discordgo.MessageDelete) {
	if m.Message == nil {
		return
	}
	// Keep the window honest: a message deleted by anyone else should not
	// count toward thresholds anymore.
	if b.AntiSpam != nil {
		b.AntiSpam.DropMessage(m.ChannelID, m.ID)
	}
}
