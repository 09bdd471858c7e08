// Package tasks holds the periodic background jobs of the bot.
package tasks

import (
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/carlmjohnson/versioninfo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"moderation-bot/model"
)

// BotProvider defines the methods the status reporter needs from the Bot.
type BotProvider interface {
	GetConfig() *model.Config
	GetSession() *discordgo.Session
	SchedulerDepth() int
	AntiSpamChannels() int
	RelayQueueDepth() int
}

const statusInterval = 6 * time.Hour

// StartStatusReporter posts a status embed to the mod-log channel on a fixed
// interval until done is closed.
func StartStatusReporter(b BotProvider, done <-chan struct{}) {
	channelID := b.GetConfig().LogChannelID
	if channelID == "" {
		log.Println("[Status] No log channel configured, status reporter disabled")
		return
	}

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := b.GetSession().ChannelMessageSendEmbed(channelID, BuildStatusEmbed(b)); err != nil {
				log.Printf("[Status] Failed to post status report: %v", err)
			}
		case <-done:
			return
		}
	}
}

// BuildStatusEmbed assembles the status embed shared by the periodic
// reporter and the /status command.
func BuildStatusEmbed(b BotProvider) *discordgo.MessageEmbed {
	s := b.GetSession()

	cpuPercent := 0.0
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		cpuPercent = percents[0]
	}
	memLine := "unavailable"
	if vm, err := mem.VirtualMemory(); err == nil {
		memLine = fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024)
	}
	hostLine := "unavailable"
	if info, err := host.Info(); err == nil {
		hostLine = fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
	}

	return &discordgo.MessageEmbed{
		Title: "Bot Status",
		Color: 0x5865F2, // Discord Blurple
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Version", Value: versioninfo.Short(), Inline: true},
			{Name: "Go", Value: runtime.Version(), Inline: true},
			{Name: "Host", Value: hostLine, Inline: true},
			{Name: "CPU", Value: fmt.Sprintf("%.1f%%", cpuPercent), Inline: true},
			{Name: "Memory", Value: memLine, Inline: true},
			{Name: "Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "Gateway Latency", Value: s.HeartbeatLatency().String(), Inline: true},
			{Name: "Pending Expiries", Value: fmt.Sprintf("%d", b.SchedulerDepth()), Inline: true},
			{Name: "Cached Channels", Value: fmt.Sprintf("%d", b.AntiSpamChannels()), Inline: true},
			{Name: "Relay Queue", Value: fmt.Sprintf("%d", b.RelayQueueDepth()), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
