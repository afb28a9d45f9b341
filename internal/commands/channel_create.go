package commands

import (
	"fmt"

	"go-warden/internal/database"
	"go-warden/internal/logging"

	"github.com/bwmarrin/discordgo"
)

// creatorPermissions are granted to whoever creates a channel.
const creatorPermissions = discordgo.PermissionManageChannels | discordgo.PermissionManageRoles

// handleChannelCreate handles /channel create
func (h *Handler) handleChannelCreate(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := subcommandOptions(i.ApplicationCommandData())

	name := optionString(opts, "name")
	if name == "" {
		return fmt.Errorf("no channel name given")
	}
	idx := int(optionInt(opts, "category"))
	if idx < 0 || idx >= len(h.cfg.Guild.CreateCategories) {
		return fmt.Errorf("unknown category choice %d", idx)
	}
	choice := h.cfg.Guild.CreateCategories[idx]

	_, actor, err := h.invoker(s, i)
	if err != nil {
		return err
	}

	category, err := lookupChannel(s, choice.ID)
	if err != nil {
		return fmt.Errorf("category %s: %w", choice.Name, err)
	}

	created, err := s.GuildChannelCreateComplex(i.GuildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             category.ID,
		PermissionOverwrites: creatorOverwrites(category.PermissionOverwrites, actor.ID),
	}, discordgo.WithAuditLogReason(invocationReason("channel create", actor)))
	if err != nil {
		h.record(database.KindCreate, actor.ID, "", "failed", err.Error())
		return fmt.Errorf("failed to create channel: %w", err)
	}

	logging.Info("[CREATE] %s (%s) created #%s in %s", actor.Name, actor.ID, created.Name, category.Name)
	h.record(database.KindCreate, actor.ID, created.ID, "created", category.Name)
	h.announce("Channel Created", actor.ID, created.Mention(), "In "+category.Name)

	return newReplier(s, i.Interaction).embed(
		fmt.Sprintf("Created channel %s in %s successfully!", created.Mention(), category.Name), false)
}

// creatorOverwrites copies the category's overwrites and lets the creator
// manage the new channel.
func creatorOverwrites(inherited []*discordgo.PermissionOverwrite, userID string) []*discordgo.PermissionOverwrite {
	out := make([]*discordgo.PermissionOverwrite, 0, len(inherited)+1)
	for _, ow := range inherited {
		if ow.Type == discordgo.PermissionOverwriteTypeMember && ow.ID == userID {
			continue
		}
		cp := *ow
		out = append(out, &cp)
	}
	return append(out, &discordgo.PermissionOverwrite{
		ID:    userID,
		Type:  discordgo.PermissionOverwriteTypeMember,
		Allow: creatorPermissions,
	})
}

func lookupChannel(s *discordgo.Session, channelID string) (*discordgo.Channel, error) {
	ch, err := s.State.Channel(channelID)
	if err != nil {
		ch, err = s.Channel(channelID)
		if err != nil {
			return nil, fmt.Errorf("failed to get channel %s: %w", channelID, err)
		}
	}
	return ch, nil
}

func subcommandOptions(data discordgo.ApplicationCommandInteractionData) []*discordgo.ApplicationCommandInteractionDataOption {
	if len(data.Options) > 0 && data.Options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		return data.Options[0].Options
	}
	return data.Options
}

func findOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range opts {
		if opt.Name == name {
			return opt
		}
	}
	return nil
}

func optionString(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt := findOption(opts, name); opt != nil {
		return opt.StringValue()
	}
	return ""
}

func optionInt(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	if opt := findOption(opts, name); opt != nil {
		return opt.IntValue()
	}
	return -1
}
