package commands

import (
	"fmt"

	"go-warden/internal/bot"
	"go-warden/internal/workflow"

	"github.com/bwmarrin/discordgo"
)

// interactionUser returns whoever triggered the interaction.
func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func lookupGuild(s *discordgo.Session, guildID string) (*discordgo.Guild, error) {
	guild, err := s.State.Guild(guildID)
	if err != nil || len(guild.Roles) == 0 {
		guild, err = s.Guild(guildID)
		if err != nil {
			return nil, fmt.Errorf("failed to get guild: %w", err)
		}
	}
	return guild, nil
}

func lookupMember(s *discordgo.Session, guildID, userID string) (*discordgo.Member, error) {
	member, err := s.State.Member(guildID, userID)
	if err != nil {
		member, err = s.GuildMember(guildID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get member %s: %w", userID, err)
		}
	}
	return member, nil
}

// invoker describes the member running the command.
func (h *Handler) invoker(s *discordgo.Session, i *discordgo.InteractionCreate) (*discordgo.Guild, workflow.Actor, error) {
	guild, err := lookupGuild(s, i.GuildID)
	if err != nil {
		return nil, workflow.Actor{}, err
	}
	if i.Member == nil {
		return nil, workflow.Actor{}, fmt.Errorf("command used outside a guild")
	}
	return guild, bot.MemberActor(guild, i.Member, h.cfg.Guild.ModeratorRoleID), nil
}

// memberActor looks a member up and describes it for the authority checks.
func (h *Handler) memberActor(s *discordgo.Session, guild *discordgo.Guild, userID string) (workflow.Actor, error) {
	member, err := lookupMember(s, guild.ID, userID)
	if err != nil {
		return workflow.Actor{}, err
	}
	if member.User == nil {
		member.User = &discordgo.User{ID: userID}
	}
	return bot.MemberActor(guild, member, h.cfg.Guild.ModeratorRoleID), nil
}

func invocationReason(command string, actor workflow.Actor) string {
	return fmt.Sprintf("Invocation of '/%s' by %s (%s)", command, actor.Name, actor.ID)
}
