package defs

import "github.com/bwmarrin/discordgo"

var Watch = &discordgo.ApplicationCommand{
	Name:        "watch",
	Description: "Relay a member's messages to the staff watch channel",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to watch"),
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Why this member is being watched",
			Required:    false,
		},
	},
}

var Unwatch = &discordgo.ApplicationCommand{
	Name:        "unwatch",
	Description: "Stop watching a member",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to stop watching"),
	},
}

var Watched = &discordgo.ApplicationCommand{
	Name:        "watched",
	Description: "List the members currently on the watch list",
}
