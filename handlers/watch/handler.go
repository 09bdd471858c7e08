// Package watch implements the watch-list slash-command handlers.
package watch

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/model"
	"moderation-bot/utils"
)

func gate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) bool {
	serverCfg, ok := b.Config.ServerConfigs[i.GuildID]
	if !ok {
		utils.SendErrorResponse(s, i, "This server is not configured.")
		return false
	}
	if i.Member == nil {
		utils.SendErrorResponse(s, i, "This command can only be used in a server.")
		return false
	}
	level := utils.CheckPermission(i.Member.Roles, i.Member.User.ID,
		serverCfg.AdminRoleIDs, serverCfg.ModeratorRoleIDs, b.Config.DeveloperUserIDs)
	if !utils.IsStaff(level) {
		utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
		return false
	}
	if b.Relay == nil {
		utils.SendErrorResponse(s, i, "The watch relay is not enabled on this bot.")
		return false
	}
	return true
}

func targetUser(s *discordgo.Session, i *discordgo.InteractionCreate) (*discordgo.User, string) {
	var user *discordgo.User
	reason := ""
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			user = opt.UserValue(s)
		case "reason":
			reason = opt.StringValue()
		}
	}
	return user, reason
}

// HandleWatchCommand adds a member to the watch list.
func HandleWatchCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !gate(s, i, b) {
		return
	}
	user, reason := targetUser(s, i)
	if user == nil {
		utils.SendErrorResponse(s, i, "Could not resolve the target user.")
		return
	}

	err := b.Relay.Watch(model.WatchedUser{
		UserID:     user.ID,
		GuildID:    i.GuildID,
		ActorID:    i.Member.User.ID,
		Reason:     reason,
		InsertedAt: time.Now().Unix(),
	})
	if err != nil {
		utils.SendErrorResponse(s, i, fmt.Sprintf("Failed to watch user: %v", err))
		return
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("Now watching <@%s>. New messages will be relayed to the watch channel.", user.ID))
}

// HandleUnwatchCommand removes a member from the watch list.
func HandleUnwatchCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !gate(s, i, b) {
		return
	}
	user, _ := targetUser(s, i)
	if user == nil {
		utils.SendErrorResponse(s, i, "Could not resolve the target user.")
		return
	}
	if err := b.Relay.Unwatch(i.GuildID, user.ID); err != nil {
		utils.SendErrorResponse(s, i, fmt.Sprintf("Failed to unwatch user: %v", err))
		return
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("Stopped watching <@%s>.", user.ID))
}

// HandleWatchedCommand lists the watch-list entries of the current guild.
func HandleWatchedCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !gate(s, i, b) {
		return
	}

	entries := b.Relay.List()
	var lines []string
	for _, e := range entries {
		if e.GuildID != i.GuildID {
			continue
		}
		line := fmt.Sprintf("<@%s> — watched since <t:%d:d> by <@%s>", e.UserID, e.InsertedAt, e.ActorID)
		if e.Reason != "" {
			line += ": " + e.Reason
		}
		lines = append(lines, line)
	}
	sort.Strings(lines)

	if len(lines) == 0 {
		utils.SendSimpleResponse(s, i, "No users are being watched in this server.")
		return
	}
	utils.SendEmbedResponse(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Watched users (%d)", len(lines)),
		Description: strings.Join(lines, "\n"),
		Color:       3447003, // Blue
	})
}
