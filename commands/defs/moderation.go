package defs

import "github.com/bwmarrin/discordgo"

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    true,
	}
}

func reasonOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: "Reason recorded with the infraction",
		Required:    true,
	}
}

func durationOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "duration",
		Description: description,
		Required:    false,
	}
}

var Mute = &discordgo.ApplicationCommand{
	Name:        "mute",
	Description: "Mute a member",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to mute"),
		reasonOption(),
		durationOption("Mute duration, e.g. 30m, 2h, 3d (omit for permanent)"),
	},
}

var Ban = &discordgo.ApplicationCommand{
	Name:        "ban",
	Description: "Ban a member",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to ban"),
		reasonOption(),
		durationOption("Ban duration, e.g. 7d (omit for permanent)"),
	},
}

var Kick = &discordgo.ApplicationCommand{
	Name:        "kick",
	Description: "Kick a member",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to kick"),
		reasonOption(),
	},
}

var Superstar = &discordgo.ApplicationCommand{
	Name:        "superstar",
	Description: "Force a nickname on a member until pardoned or expired",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to superstar"),
		reasonOption(),
		durationOption("Duration, e.g. 2h, 1d (omit for permanent)"),
	},
}

var Warn = &discordgo.ApplicationCommand{
	Name:        "warn",
	Description: "Warn a member",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to warn"),
		reasonOption(),
	},
}

var Note = &discordgo.ApplicationCommand{
	Name:        "note",
	Description: "Record a staff-only note about a member",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member the note is about"),
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "text",
			Description: "The note",
			Required:    true,
		},
	},
}

var Pardon = &discordgo.ApplicationCommand{
	Name:        "pardon",
	Description: "Lift an active infraction by id",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "id",
			Description: "Infraction id to pardon",
			Required:    true,
		},
		reasonOption(),
	},
}

var Infractions = &discordgo.ApplicationCommand{
	Name:        "infractions",
	Description: "Show a member's infraction history",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to look up"),
	},
}
