package bot

import (
	"context"
	"fmt"

	"go-warden/internal/logging"
	"go-warden/internal/workflow"

	"github.com/bwmarrin/discordgo"
)

// BuildPools turns the configured archive categories into capacity pools,
// counting the channels currently parented to each. Pool order follows
// categoryIDs.
func BuildPools(channels []*discordgo.Channel, categoryIDs []string, capacity int) ([]workflow.CapacityPool, error) {
	categories := make(map[string]*discordgo.Channel, len(categoryIDs))
	occupancy := make(map[string]int, len(categoryIDs))
	for _, ch := range channels {
		if ch == nil {
			continue
		}
		if ch.Type == discordgo.ChannelTypeGuildCategory {
			categories[ch.ID] = ch
			continue
		}
		if ch.ParentID != "" {
			occupancy[ch.ParentID]++
		}
	}

	pools := make([]workflow.CapacityPool, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		cat, ok := categories[id]
		if !ok {
			return nil, fmt.Errorf("archive category %s not found in guild", id)
		}
		pools = append(pools, workflow.CapacityPool{
			ID:        cat.ID,
			Name:      cat.Name,
			Occupancy: occupancy[cat.ID],
			Capacity:  capacity,
		})
	}
	return pools, nil
}

// GuildChannels lists the guild's channels from state, falling back to REST.
func GuildChannels(s *discordgo.Session, guildID string) ([]*discordgo.Channel, error) {
	if g, err := s.State.Guild(guildID); err == nil && len(g.Channels) > 0 {
		return g.Channels, nil
	}
	channels, err := s.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("fetch channels for guild %s: %w", guildID, err)
	}
	return channels, nil
}

// ArchivePools snapshots the archive categories of a live guild.
func ArchivePools(s *discordgo.Session, guildID string, categoryIDs []string, capacity int) ([]workflow.CapacityPool, error) {
	channels, err := GuildChannels(s, guildID)
	if err != nil {
		return nil, err
	}
	return BuildPools(channels, categoryIDs, capacity)
}

// ChannelEditor is the slice of *discordgo.Session used to move channels.
type ChannelEditor interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelEdit(channelID string, data *discordgo.ChannelEdit, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// ChannelMover reparents a channel under an archive category and syncs
// its permissions with the category.
type ChannelMover struct {
	editor ChannelEditor
	state  *discordgo.State
}

func NewChannelMover(editor ChannelEditor, state *discordgo.State) *ChannelMover {
	return &ChannelMover{editor: editor, state: state}
}

func (m *ChannelMover) MoveResource(ctx context.Context, res workflow.Resource, pool workflow.CapacityPool, requester workflow.Actor) error {
	category, err := m.category(ctx, pool.ID)
	if err != nil {
		return err
	}

	edit := &discordgo.ChannelEdit{
		ParentID:             category.ID,
		PermissionOverwrites: category.PermissionOverwrites,
	}
	if edit.PermissionOverwrites == nil {
		edit.PermissionOverwrites = []*discordgo.PermissionOverwrite{}
	}

	_, err = m.editor.ChannelEdit(res.ID, edit,
		discordgo.WithContext(ctx),
		discordgo.WithAuditLogReason(ArchiveAuditReason(requester)),
	)
	if err != nil {
		return fmt.Errorf("edit channel %s: %w", res.ID, err)
	}

	logging.Info("[ARCHIVE] Moved #%s (%s) into %s (%s)", res.Name, res.ID, category.Name, category.ID)
	return nil
}

func (m *ChannelMover) category(ctx context.Context, id string) (*discordgo.Channel, error) {
	if m.state != nil {
		if ch, err := m.state.Channel(id); err == nil {
			return ch, nil
		}
	}
	ch, err := m.editor.Channel(id, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch archive category %s: %w", id, err)
	}
	return ch, nil
}

func ArchiveAuditReason(requester workflow.Actor) string {
	return fmt.Sprintf("Invocation of '/channel archive' by %s (%s)", requester.Name, requester.ID)
}

// MemberActor describes a guild member for the authority checks. Rank is
// the highest position among the member's roles. Ownership or any role
// carrying Administrator, @everyone included, makes an administrator.
func MemberActor(guild *discordgo.Guild, member *discordgo.Member, moderatorRoleID string) workflow.Actor {
	a := workflow.Actor{}
	if member == nil {
		return a
	}
	if member.User != nil {
		a.ID = member.User.ID
		a.Name = member.User.Username
	}
	if member.Nick != "" {
		a.Name = member.Nick
	}
	if guild == nil {
		return a
	}

	if guild.OwnerID != "" && guild.OwnerID == a.ID {
		a.Administrator = true
	}

	held := make(map[string]bool, len(member.Roles)+1)
	held[guild.ID] = true
	for _, id := range member.Roles {
		held[id] = true
	}

	for _, role := range guild.Roles {
		if role == nil || !held[role.ID] {
			continue
		}
		if role.ID != guild.ID && role.Position > a.Rank {
			a.Rank = role.Position
		}
		if role.Permissions&discordgo.PermissionAdministrator != 0 {
			a.Administrator = true
		}
	}

	if moderatorRoleID != "" && held[moderatorRoleID] && moderatorRoleID != guild.ID {
		a.Moderator = true
	}
	return a
}
