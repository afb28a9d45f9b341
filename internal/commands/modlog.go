package commands

import (
	"fmt"
	"strings"
	"time"

	"go-warden/internal/database"
	"go-warden/internal/notifier"
	"go-warden/internal/workflow"

	"github.com/bwmarrin/discordgo"
)

const (
	defaultModlogLimit = 10
	maxModlogLimit     = 25
)

// handleModlog handles /modlog
func (h *Handler) handleModlog(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	_, actor, err := h.invoker(s, i)
	if err != nil {
		return err
	}
	reply := newReplier(s, i.Interaction)
	if !workflow.IsAdministrator(actor) {
		return reply.text("You are not an administrator.", true)
	}
	if h.db == nil {
		return fmt.Errorf("action log is not available")
	}

	opts := i.ApplicationCommandData().Options
	limit := clampLimit(optionInt(opts, "limit"))

	var actions []*database.ModerationAction
	title := "Recent Moderation Actions"
	if userOpt := findOption(opts, "user"); userOpt != nil {
		targetID := userOpt.UserValue(nil).ID
		actions, err = h.db.ActionsForTarget(i.GuildID, targetID)
		if len(actions) > limit {
			actions = actions[:limit]
		}
		title = "Moderation Actions for " + targetID
	} else {
		actions, err = h.db.RecentActions(i.GuildID, limit)
	}
	if err != nil {
		return fmt.Errorf("failed to read action log: %w", err)
	}

	return reply.send("", []*discordgo.MessageEmbed{{
		Title:       title,
		Description: formatActions(actions),
		Color:       notifier.ColorInfo,
		Timestamp:   time.Now().Format(time.RFC3339),
	}}, true)
}

func clampLimit(n int64) int {
	switch {
	case n <= 0:
		return defaultModlogLimit
	case n > maxModlogLimit:
		return maxModlogLimit
	}
	return int(n)
}

// formatActions renders one line per action, newest first.
func formatActions(actions []*database.ModerationAction) string {
	if len(actions) == 0 {
		return "No moderation actions recorded."
	}

	var b strings.Builder
	for _, a := range actions {
		fmt.Fprintf(&b, "<t:%d:f> **%s** `%s` by <@%s>", a.CreatedAt, a.Kind, a.Outcome, a.ActorID)
		if a.TargetID != "" {
			fmt.Fprintf(&b, " on %s", actionTarget(a))
		}
		if a.Detail != "" {
			fmt.Fprintf(&b, ": %s", a.Detail)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func actionTarget(a *database.ModerationAction) string {
	if a.Kind == database.KindSanction {
		return userMention(a.TargetID)
	}
	return channelMention(a.TargetID)
}
