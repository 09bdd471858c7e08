package bot

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"moderation-bot/antispam"
	"moderation-bot/antispam/rules"
	"moderation-bot/infractions"
	"moderation-bot/tasks"
	"moderation-bot/utils"
	infdb "moderation-bot/utils/database/infractions"
	watchdb "moderation-bot/utils/database/watchlist"
	"moderation-bot/watchchannel"
)

func (b *Bot) Run() {
	if err := b.Session.Open(); err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}
	selfID := b.Session.State.User.ID

	b.wireServices(selfID)

	log.Println("Registering commands for enabled guilds...")
	b.RegisteredCommands = make([]*discordgo.ApplicationCommand, 0)
	for _, serverCfg := range b.Config.ServerConfigs {
		if serverCfg.Enable {
			b.RefreshCommands(serverCfg.GuildID)
		}
	}

	// Restore the expiry schedule from the store; in-memory timers do not
	// survive a restart.
	if n, err := b.Infractions.RescheduleActive(); err != nil {
		log.Printf("Error rescheduling active infractions: %v", err)
		utils.LogError(b.Session, b.Config.LogChannelID, "Infractions", "Reschedule", err.Error())
	} else if n > 0 {
		log.Printf("Re-armed %d infraction expiry tasks", n)
	}

	go tasks.StartStatusReporter(b, b.done)

	if b.Config.MetricsAddr != "" {
		go b.serveMetrics()
	}

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	utils.LogInfo(b.Session, b.Config.LogChannelID, "System", "Startup", "Bot has started successfully.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}

// wireServices builds the moderation services once the session identity is
// known. An antispam config that fails validation disables the subsystem but
// not the bot; the failure is announced in the mod log.
func (b *Bot) wireServices(selfID string) {
	b.Infractions = infractions.NewManager(
		infdb.New(b.DB),
		b.Session,
		b.Scheduler,
		b.Config.ServerConfigs,
		b.Config.LogChannelID,
		selfID,
		b.Config.AntiSpam.Punishment,
	)

	if errs := b.Config.AntiSpam.Validate(rules.Known); len(errs) > 0 {
		for _, err := range errs {
			log.Printf("AntiSpam config error: %v", err)
		}
		utils.LogError(b.Session, b.Config.LogChannelID, "AntiSpam", "ConfigValidation",
			fmt.Sprintf("AntiSpam disabled: %d config error(s), see process log", len(errs)))
	} else if b.Config.AntiSpam.Enabled {
		b.AntiSpam = antispam.New(
			b.Session,
			b.Infractions,
			b.Config.AntiSpam,
			b.Config.ServerConfigs,
			selfID,
			b.Config.LogChannelID,
			b.Config.ArchiveURL,
		)
	} else {
		log.Println("AntiSpam is disabled by configuration.")
	}

	if b.Config.WatchChannelID != "" {
		b.Relay = watchchannel.New(b.Session, watchdb.New(b.DB), b.Config.WatchChannelID)
		if err := b.Relay.Start(); err != nil {
			log.Printf("Error starting watch relay: %v", err)
			utils.LogError(b.Session, b.Config.LogChannelID, "WatchChannel", "Startup", err.Error())
			b.Relay = nil
		}
	}
}

func (b *Bot) serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Printf("Serving metrics on %s", b.Config.MetricsAddr)
	if err := http.ListenAndServe(b.Config.MetricsAddr, mux); err != nil {
		log.Printf("Metrics listener stopped: %v", err)
	}
}
