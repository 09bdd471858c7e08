// Package infractions implements the moderation sanction lifecycle: applying
// a sanction against a user, reversing it on expiry or pardon, and keeping
// the scheduled expiries in step with the persistence store across restarts.
package infractions

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
	"moderation-bot/scheduler"
	"moderation-bot/utils"
)

// ErrActiveInfractionExists is returned by Apply when the user already has an
// active infraction of a mutually-exclusive type. The existing record is
// never overwritten.
var ErrActiveInfractionExists = errors.New("user already has an active infraction of this type")

// Store is the persistence backend for infraction records. It is the sole
// source of truth for infraction state; the in-memory expiry schedule is
// re-derived from it on startup.
type Store interface {
	Insert(inf *model.Infraction) (int64, error)
	GetByID(id int64) (*model.Infraction, error)
	GetActiveByUserAndType(guildID, userID, infractionType string) (*model.Infraction, error)
	SetInactive(id int64) error
	ListActiveWithExpiry() ([]model.Infraction, error)
	ListByUser(guildID, userID string) ([]model.Infraction, error)
}

// Gateway is the slice of the chat gateway the manager needs. A
// *discordgo.Session satisfies it.
type Gateway interface {
	GuildMemberTimeout(guildID, userID string, until *time.Time, options ...discordgo.RequestOption) error
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
	GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error
	GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error
	GuildMemberNickname(guildID, userID, nickname string, options ...discordgo.RequestOption) error
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ApplyRequest describes one sanction to record and carry out.
type ApplyRequest struct {
	GuildID  string
	User     *discordgo.User
	ActorID  string
	Type     string
	Reason   string
	Duration time.Duration // zero means no automatic expiry
	Hidden   bool
}

// LogSummary reports what a deactivation actually did. Notes carry the
// non-fatal hiccups (a failed unban, an undeliverable DM) so the caller can
// surface them without treating them as errors.
type LogSummary struct {
	InfractionID int64
	Type         string
	UserID       string
	Audit        string // "expired" or "pardoned"
	AlreadyDone  bool
	Notes        []string
}

// superstarNick is the nickname forced onto superstarred members.
const superstarNick = "superstar"

// Manager owns the infraction lifecycle. Apply/Deactivate for the same user
// are serialized through a user-keyed mutex because the duplicate-active
// check and the following insert are separate store calls.
type Manager struct {
	store        Store
	gateway      Gateway
	sched        *scheduler.Scheduler
	locks        *utils.KeyedMutex
	servers      map[string]model.ServerConfig
	logChannelID string
	selfID       string
	autoMute     model.PunishmentConfig
}

func NewManager(store Store, gateway Gateway, sched *scheduler.Scheduler, servers map[string]model.ServerConfig, logChannelID, selfID string, autoMute model.PunishmentConfig) *Manager {
	return &Manager{
		store:        store,
		gateway:      gateway,
		sched:        sched,
		locks:        utils.NewKeyedMutex(),
		servers:      servers,
		logChannelID: logChannelID,
		selfID:       selfID,
		autoMute:     autoMute,
	}
}

// Apply records the sanction, carries out the matching gateway action, arms
// the expiry task and notifies the user. For mutually-exclusive types an
// existing active record of the same type yields ErrActiveInfractionExists.
// A gateway action failure after the insert deactivates the fresh record
// again and surfaces the error, so the store never claims an effect that was
// not applied.
func (m *Manager) Apply(req ApplyRequest) (*model.Infraction, error) {
	if req.User == nil {
		return nil, fmt.Errorf("apply: missing target user")
	}
	if !model.KnownInfractionType(req.Type) {
		return nil, fmt.Errorf("apply: unknown infraction type %q", req.Type)
	}
	if req.Duration > 0 && model.InstantInfractionType(req.Type) {
		return nil, fmt.Errorf("apply: infraction type %q cannot carry a duration", req.Type)
	}

	key := req.GuildID + ":" + req.User.ID
	m.locks.Lock(key)
	defer m.locks.Unlock(key)

	if model.ExclusiveInfractionType(req.Type) {
		existing, err := m.store.GetActiveByUserAndType(req.GuildID, req.User.ID, req.Type)
		if err != nil {
			return nil, fmt.Errorf("apply: failed to check active infractions: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: %s #%d", ErrActiveInfractionExists, req.Type, existing.ID)
		}
	}

	now := time.Now()
	inf := &model.Infraction{
		Type:       req.Type,
		GuildID:    req.GuildID,
		UserID:     req.User.ID,
		UserName:   req.User.Username,
		ActorID:    req.ActorID,
		Reason:     req.Reason,
		InsertedAt: now.Unix(),
		Active:     !model.InstantInfractionType(req.Type),
		Hidden:     req.Hidden,
	}
	if req.Duration > 0 {
		expires := now.Add(req.Duration).Unix()
		inf.ExpiresAt = &expires
	}

	id, err := m.store.Insert(inf)
	if err != nil {
		return nil, fmt.Errorf("apply: failed to insert infraction: %w", err)
	}
	inf.ID = id

	if err := m.applyAction(inf); err != nil {
		if derr := m.store.SetInactive(id); derr != nil {
			log.Printf("[Infractions] Failed to roll back infraction %d after gateway error: %v", id, derr)
		}
		return nil, fmt.Errorf("apply: gateway action failed for infraction %d: %w", id, err)
	}

	if !model.InfractionHiddenFromUser(req.Type) {
		m.notifyApplied(inf)
	}

	if expiry, ok := inf.Expiry(); ok {
		infID := inf.ID
		m.sched.Schedule(inf.TaskID(), expiry, func() { m.expire(infID) })
	}

	appliedTotal.WithLabelValues(inf.Type).Inc()
	m.modLog(utils.Info, "Apply", fmt.Sprintf("%s #%d for <@%s> by <@%s>: %s", inf.Type, inf.ID, inf.UserID, inf.ActorID, inf.Reason))
	return inf, nil
}

// AutoMute applies the antispam punishment with the bot as actor. Satisfies
// antispam.Punisher.
func (m *Manager) AutoMute(guildID string, user *discordgo.User, reason string) error {
	_, err := m.Apply(ApplyRequest{
		GuildID:  guildID,
		User:     user,
		ActorID:  m.selfID,
		Type:     model.InfractionMute,
		Reason:   reason,
		Duration: time.Duration(m.autoMute.DurationSeconds) * time.Second,
	})
	return err
}

// Deactivate ends an active infraction: the gateway effect is reversed, the
// record is marked inactive and any pending expiry task is canceled. Calling
// it on an already-inactive infraction is an idempotent no-op. Only a store
// write failure is returned as an error; gateway hiccups while undoing the
// effect are recorded in the summary and the deactivation proceeds.
func (m *Manager) Deactivate(inf *model.Infraction, audit string) (*LogSummary, error) {
	if inf == nil {
		return nil, fmt.Errorf("deactivate: missing infraction")
	}

	key := inf.GuildID + ":" + inf.UserID
	m.locks.Lock(key)
	defer m.locks.Unlock(key)

	summary := &LogSummary{InfractionID: inf.ID, Type: inf.Type, UserID: inf.UserID, Audit: audit}

	current, err := m.store.GetByID(inf.ID)
	if err != nil {
		return nil, fmt.Errorf("deactivate: failed to load infraction %d: %w", inf.ID, err)
	}
	if !current.Active {
		summary.AlreadyDone = true
		return summary, nil
	}

	if err := m.undoAction(current); err != nil {
		note := fmt.Sprintf("failed to undo %s effect: %v", current.Type, err)
		summary.Notes = append(summary.Notes, note)
		log.Printf("[Infractions] Infraction %d: %s", current.ID, note)
	}

	if err := m.store.SetInactive(current.ID); err != nil {
		return nil, fmt.Errorf("deactivate: failed to mark infraction %d inactive: %w", current.ID, err)
	}
	m.sched.Cancel(current.TaskID())

	deactivatedTotal.WithLabelValues(current.Type, audit).Inc()
	detail := fmt.Sprintf("%s #%d for <@%s> (%s)", current.Type, current.ID, current.UserID, audit)
	if len(summary.Notes) > 0 {
		detail += "\n" + strings.Join(summary.Notes, "\n")
	}
	m.modLog(utils.Info, "Deactivate", detail)
	return summary, nil
}

// Pardon manually ends an infraction by id and tells the user.
func (m *Manager) Pardon(id int64, actorID, reason string) (*LogSummary, error) {
	inf, err := m.store.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("pardon: failed to load infraction %d: %w", id, err)
	}

	summary, err := m.Deactivate(inf, "pardoned")
	if err != nil {
		return nil, err
	}
	if summary.AlreadyDone {
		return summary, nil
	}

	if !model.InfractionHiddenFromUser(inf.Type) {
		embed := utils.ModLogEmbed(utils.Info, "Moderation", "Pardon",
			fmt.Sprintf("Your %s has been lifted. Reason: %s", inf.Type, reason))
		m.notify(inf.UserID, embed)
	}
	m.modLog(utils.Info, "Pardon", fmt.Sprintf("%s #%d for <@%s> pardoned by <@%s>: %s", inf.Type, inf.ID, inf.UserID, actorID, reason))
	return summary, nil
}

// History returns every infraction recorded against a user in a guild.
func (m *Manager) History(guildID, userID string) ([]model.Infraction, error) {
	return m.store.ListByUser(guildID, userID)
}

// expire is the scheduled-task callback for natural expiry. Store failures
// are reported to the mod log and retried by the next RescheduleActive pass;
// they are never silently dropped.
func (m *Manager) expire(id int64) {
	inf, err := m.store.GetByID(id)
	if err != nil {
		log.Printf("[Infractions] Expiry: failed to load infraction %d: %v", id, err)
		m.modLog(utils.Error, "Expire", fmt.Sprintf("Failed to load infraction #%d for expiry: %v", id, err))
		return
	}
	if _, err := m.Deactivate(inf, "expired"); err != nil {
		log.Printf("[Infractions] Expiry: failed to deactivate infraction %d: %v", id, err)
		m.modLog(utils.Error, "Expire", fmt.Sprintf("Failed to expire infraction #%d: %v", id, err))
	}
}

// RescheduleActive re-arms expiry tasks for every active infraction with an
// expiry timestamp. In-memory schedule state does not survive a restart;
// this pass, run at startup, restores it from the store at the original
// timestamps. Overdue infractions expire immediately.
func (m *Manager) RescheduleActive() (int, error) {
	active, err := m.store.ListActiveWithExpiry()
	if err != nil {
		return 0, fmt.Errorf("failed to list active infractions: %w", err)
	}

	for _, inf := range active {
		expiry, ok := inf.Expiry()
		if !ok {
			continue
		}
		infID := inf.ID
		m.sched.Schedule(inf.TaskID(), expiry, func() { m.expire(infID) })
	}
	log.Printf("[Infractions] Rescheduled %d expiry tasks", len(active))
	return len(active), nil
}

func (m *Manager) applyAction(inf *model.Infraction) error {
	switch inf.Type {
	case model.InfractionMute:
		until, hasExpiry := inf.Expiry()
		if hasExpiry {
			if err := m.gateway.GuildMemberTimeout(inf.GuildID, inf.UserID, &until); err != nil {
				return err
			}
		}
		if roleID := m.mutedRole(inf.GuildID); roleID != "" {
			if err := m.gateway.GuildMemberRoleAdd(inf.GuildID, inf.UserID, roleID); err != nil {
				return err
			}
		} else if !hasExpiry {
			return fmt.Errorf("permanent mute needs a configured muted role in guild %s", inf.GuildID)
		}
		return nil
	case model.InfractionBan:
		return m.gateway.GuildBanCreateWithReason(inf.GuildID, inf.UserID, inf.Reason, 0)
	case model.InfractionKick:
		return m.gateway.GuildMemberDeleteWithReason(inf.GuildID, inf.UserID, inf.Reason)
	case model.InfractionSuperstar:
		return m.gateway.GuildMemberNickname(inf.GuildID, inf.UserID, superstarNick)
	case model.InfractionWarning, model.InfractionNote:
		return nil // record-only
	}
	return fmt.Errorf("no gateway action for infraction type %q", inf.Type)
}

func (m *Manager) undoAction(inf *model.Infraction) error {
	switch inf.Type {
	case model.InfractionMute:
		if err := m.gateway.GuildMemberTimeout(inf.GuildID, inf.UserID, nil); err != nil {
			return err
		}
		if roleID := m.mutedRole(inf.GuildID); roleID != "" {
			return m.gateway.GuildMemberRoleRemove(inf.GuildID, inf.UserID, roleID)
		}
		return nil
	case model.InfractionBan:
		return m.gateway.GuildBanDelete(inf.GuildID, inf.UserID)
	case model.InfractionSuperstar:
		return m.gateway.GuildMemberNickname(inf.GuildID, inf.UserID, "")
	}
	return nil // instantaneous types have nothing to undo
}

func (m *Manager) mutedRole(guildID string) string {
	sc, ok := m.servers[guildID]
	if !ok {
		return ""
	}
	return sc.MutedRoleID
}

// notifyApplied DMs the sanctioned user. Best effort: an undeliverable DM is
// logged and the infraction stands.
func (m *Manager) notifyApplied(inf *model.Infraction) {
	detail := fmt.Sprintf("You received a %s. Reason: %s", inf.Type, inf.Reason)
	if expiry, ok := inf.Expiry(); ok {
		detail += fmt.Sprintf("\nExpires: %s", expiry.UTC().Format(time.RFC1123))
	}
	m.notify(inf.UserID, utils.ModLogEmbed(utils.Warn, "Moderation", "Infraction", detail))
}

func (m *Manager) notify(userID string, embed *discordgo.MessageEmbed) {
	channel, err := m.gateway.UserChannelCreate(userID)
	if err != nil {
		log.Printf("[Infractions] Could not open DM channel with user %s: %v", userID, err)
		return
	}
	if _, err := m.gateway.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
		log.Printf("[Infractions] Could not DM user %s: %v", userID, err)
	}
}

func (m *Manager) modLog(level utils.LogLevel, operation, detail string) {
	if m.logChannelID == "" {
		return
	}
	if _, err := m.gateway.ChannelMessageSendEmbed(m.logChannelID, utils.ModLogEmbed(level, "Infractions", operation, detail)); err != nil {
		log.Printf("[Infractions] Failed to post mod log (%s): %v", operation, err)
	}
}
