package bot

import (
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"

	"moderation-bot/antispam"
	"moderation-bot/commands"
	"moderation-bot/infractions"
	"moderation-bot/model"
	"moderation-bot/scheduler"
	"moderation-bot/watchchannel"
)

// Bot bundles the gateway session, the persistence handle and the moderation
// services. The services are wired in Run once the session is open and the
// bot's own identity is known.
type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	Config             *model.Config
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	DB                 *sqlx.DB

	Scheduler   *scheduler.Scheduler
	Infractions *infractions.Manager
	AntiSpam    *antispam.AntiSpam
	Relay       *watchchannel.Relay

	done chan struct{}
}

func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	dg.StateEnabled = false

	return &Bot{
		Session:   dg,
		Config:    cfg,
		DB:        db,
		Scheduler: scheduler.New("infractions"),
		done:      make(chan struct{}),
	}, nil
}

func (b *Bot) GetConfig() *model.Config {
	return b.Config
}

func (b *Bot) GetDB() *sqlx.DB {
	return b.DB
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

// SchedulerDepth returns the number of pending expiry tasks.
func (b *Bot) SchedulerDepth() int {
	return b.Scheduler.Len()
}

// AntiSpamChannels returns the number of channels with a cached message
// window.
func (b *Bot) AntiSpamChannels() int {
	return b.AntiSpam.WindowChannels()
}

// RelayQueueDepth returns the number of messages waiting in the watch relay.
func (b *Bot) RelayQueueDepth() int {
	if b.Relay == nil {
		return 0
	}
	return b.Relay.QueueDepth()
}

// Done is closed when the bot begins shutting down.
func (b *Bot) Done() <-chan struct{} {
	return b.done
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	close(b.done) // Signal all goroutines to stop

	if b.Relay != nil {
		b.Relay.Stop()
	}
	b.AntiSpam.FlushAll()
	b.Scheduler.Stop()
	b.Session.Close()
}

// RefreshCommands bulk-overwrites the slash commands of one guild.
func (b *Bot) RefreshCommands(guildID string) {
	serverCfg, ok := b.Config.ServerConfigs[guildID]
	if !ok {
		log.Printf("Could not find server config for guild: %s", guildID)
		return
	}

	cmds := commands.GenerateCommands(&serverCfg)
	log.Printf("Registering %d commands for guild %s...", len(cmds), serverCfg.GuildID)
	registeredCmds, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, serverCfg.GuildID, cmds)
	if err != nil {
		log.Printf("cannot update commands for guild '%s': %v", serverCfg.GuildID, err)
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registeredCmds...)
}
