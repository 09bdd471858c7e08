package utils

import (
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

type LogLevel string

const (
	Info  LogLevel = "INFO"
	Warn  LogLevel = "WARN"
	Error LogLevel = "ERROR"
)

func getColor(level LogLevel) int {
	switch level {
	case Info:
		return 3066993 // Green
	case Warn:
		return 15105570 // Orange
	case Error:
		return 15158332 // Red
	default:
		return 3447003 // Blue
	}
}

// ModLogEmbed builds the standard mod-log embed used across the bot.
func ModLogEmbed(level LogLevel, module, operation, extraInfo string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: string(level) + " Log",
		Color: getColor(level),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Module", Value: module},
			{Name: "Operation", Value: operation},
			{Name: "Details", Value: extraInfo},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// sendLog posts a mod-log embed to the given channel. Posting is
// fire-and-forget: failures go to the process log and are never propagated.
func sendLog(s *discordgo.Session, channelID string, level LogLevel, module, operation, extraInfo string) {
	if channelID == "" {
		return
	}
	if _, err := s.ChannelMessageSendEmbed(channelID, ModLogEmbed(level, module, operation, extraInfo)); err != nil {
		log.Printf("Failed to send %s log to channel %s: %v", level, channelID, err)
	}
}

func LogInfo(s *discordgo.Session, channelID, module, operation, extraInfo string) {
	sendLog(s, channelID, Info, module, operation, extraInfo)
}

func LogWarn(s *discordgo.Session, channelID, module, operation, extraInfo string) {
	sendLog(s, channelID, Warn, module, operation, extraInfo)
}

func LogError(s *discordgo.Session, channelID, module, operation, extraInfo string) {
	sendLog(s, channelID, Error, module, operation, extraInfo)
}
