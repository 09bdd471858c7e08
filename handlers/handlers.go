// Package handlers wires gateway events to the moderation services and
// dispatches slash commands.
package handlers

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/handlers/moderation"
	"moderation-bot/handlers/watch"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	handlers := map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"pardon": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderation.HandlePardonCommand(s, i, b)
		},
		"infractions": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderation.HandleHistoryCommand(s, i, b)
		},
		"watch": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			watch.HandleWatchCommand(s, i, b)
		},
		"unwatch": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			watch.HandleUnwatchCommand(s, i, b)
		},
		"watched": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			watch.HandleWatchedCommand(s, i, b)
		},
		"status": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleStatusCommand(s, i, b)
		},
	}

	// The sanction commands share one handler; the command name selects the
	// infraction type.
	for _, name := range []string{"mute", "ban", "kick", "superstar", "warn", "note"} {
		handlers[name] = func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderation.HandleApplyCommand(s, i, b)
		}
	}
	return handlers
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
				h(s, i)
			}
		}
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		handleMessageCreate(b, m)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageUpdate) {
		handleMessageUpdate(b, m)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageDelete) {
		handleMessageDelete(b, m)
	})
}
