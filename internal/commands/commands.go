package commands

import (
	"go-warden/internal/config"
	"go-warden/internal/duration"

	"github.com/bwmarrin/discordgo"
)

var (
	adminPermissions int64 = discordgo.PermissionAdministrator
	minModlogLimit         = 1.0
)

// GetAllCommands returns all application commands. The create categories
// become the choices of /channel create, valued by their index.
func GetAllCommands(cfg *config.Config) []*discordgo.ApplicationCommand {
	categoryChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(cfg.Guild.CreateCategories))
	for idx, cat := range cfg.Guild.CreateCategories {
		categoryChoices = append(categoryChoices, &discordgo.ApplicationCommandOptionChoice{
			Name:  cat.Name,
			Value: idx,
		})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "channel",
			Description: "Manage channels",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "create",
					Description: "Create a channel in your chosen category",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "name",
							Description: "The name of your channel",
							Type:        discordgo.ApplicationCommandOptionString,
							Required:    true,
							MaxLength:   100,
						},
						{
							Name:        "category",
							Description: "Which category it belongs to",
							Type:        discordgo.ApplicationCommandOptionInteger,
							Required:    true,
							Choices:     categoryChoices,
						},
					},
				},
				{
					Name:        "archive",
					Description: "Archive a channel (Administrator only)",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "channel",
							Description: "The channel you want to archive",
							Type:        discordgo.ApplicationCommandOptionChannel,
							Required:    true,
							ChannelTypes: []discordgo.ChannelType{
								discordgo.ChannelTypeGuildText,
								discordgo.ChannelTypeGuildVoice,
								discordgo.ChannelTypeGuildStageVoice,
								discordgo.ChannelTypeGuildForum,
							},
						},
					},
				},
			},
		},
		{
			Name:        "imprison",
			Description: "Imprison a user for a given amount of time",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "user",
					Description: "The user you wish to imprison",
					Type:        discordgo.ApplicationCommandOptionUser,
					Required:    true,
				},
				{
					Name:        "duration",
					Description: duration.Usage,
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
				},
			},
		},
		{
			Name:                     "modlog",
			Description:              "Show recent moderation actions (Administrator only)",
			DefaultMemberPermissions: &adminPermissions,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "limit",
					Description: "How many entries to show (default 10, max 25)",
					Type:        discordgo.ApplicationCommandOptionInteger,
					MinValue:    &minModlogLimit,
					MaxValue:    maxModlogLimit,
				},
				{
					Name:        "user",
					Description: "Only show actions against this user",
					Type:        discordgo.ApplicationCommandOptionUser,
				},
			},
		},
		{
			Name:        "ping",
			Description: "Check bot latency",
		},
		{
			Name:                     "stats",
			Description:              "Show host, runtime and moderation statistics",
			DefaultMemberPermissions: &adminPermissions,
		},
	}
}
