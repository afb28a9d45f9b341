package commands

import (
	"fmt"

	"go-warden/internal/database"
	"go-warden/internal/duration"
	"go-warden/internal/logging"
	"go-warden/internal/workflow"

	"github.com/bwmarrin/discordgo"
)

// handleImprison handles /imprison. Target and bot members are only looked
// up once the invoker has passed the moderator check.
func (h *Handler) handleImprison(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := i.ApplicationCommandData().Options
	userOpt := findOption(opts, "user")
	if userOpt == nil {
		return fmt.Errorf("no user given")
	}
	targetUser := userOpt.UserValue(nil)
	rawDuration := optionString(opts, "duration")

	guild, actor, err := h.invoker(s, i)
	if err != nil {
		return err
	}

	req := workflow.SanctionRequest{
		Actor:    actor,
		Duration: rawDuration,
		Reason:   invocationReason("imprison", actor),
	}
	if workflow.IsModerator(actor) {
		if req.Target, err = h.memberActor(s, guild, targetUser.ID); err != nil {
			return err
		}
		if req.Bot, err = h.memberActor(s, guild, s.State.User.ID); err != nil {
			return err
		}
	}

	ctx, cancel := h.invocationContext()
	defer cancel()

	result, err := h.sanctioner.Sanction(ctx, req)
	if err != nil {
		h.record(database.KindSanction, actor.ID, targetUser.ID, "failed", err.Error())
		return err
	}

	detail := rawDuration
	if result.Outcome == workflow.OutcomeApplied {
		detail = fmt.Sprintf("%s (until %s)", result.Duration, result.Expiry.UTC().Format("2006-01-02 15:04 MST"))
		h.announce("Member Imprisoned", actor.ID, userMention(targetUser.ID), detail)
	}
	h.record(database.KindSanction, actor.ID, targetUser.ID, result.Outcome.String(), detail)
	logging.Info("[IMPRISON] %s (%s) imprison %s for %q: %s", actor.Name, actor.ID, targetUser.ID, rawDuration, result.Outcome)

	text, ephemeral := sanctionReply(result, targetUser.ID)
	return newReplier(s, i.Interaction).text(text, ephemeral)
}

func sanctionReply(result workflow.SanctionResult, targetID string) (text string, ephemeral bool) {
	switch result.Outcome {
	case workflow.OutcomeUnauthorized:
		return "You are neither a moderator nor an administrator.", true
	case workflow.OutcomeTargetProtected:
		return "I cannot imprison this user because a) they are an administrator or b) they are higher than me in the role hierarchy.", true
	case workflow.OutcomeInvalidDuration:
		return "Invalid duration string. " + duration.Usage, true
	case workflow.OutcomeApplied:
		return fmt.Sprintf("Successfully imprisoned %s, they will be released <t:%d:R>", userMention(targetID), result.Expiry.Unix()), false
	}
	return fmt.Sprintf("Unexpected outcome %s.", result.Outcome), true
}

func userMention(id string) string {
	return "<@" + id + ">"
}
