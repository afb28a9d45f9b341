package commands

import (
	"fmt"

	"go-warden/internal/bot"
	"go-warden/internal/database"
	"go-warden/internal/logging"
	"go-warden/internal/workflow"

	"github.com/bwmarrin/discordgo"
)

// handleChannelArchive handles /channel archive. The initial response is
// the confirmation prompt, so everything after it goes out as followups
// and errors are reported here rather than through respondError.
func (h *Handler) handleChannelArchive(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := subcommandOptions(i.ApplicationCommandData())
	opt := findOption(opts, "channel")
	if opt == nil {
		return fmt.Errorf("no channel given")
	}
	target := opt.ChannelValue(s)
	if target == nil {
		return fmt.Errorf("unknown channel")
	}

	_, actor, err := h.invoker(s, i)
	if err != nil {
		return err
	}

	// unauthorized callers get no inventory work done for them
	var pools []workflow.CapacityPool
	if workflow.IsAdministrator(actor) {
		pools, err = bot.ArchivePools(s, i.GuildID, h.cfg.Guild.ArchiveCategories, h.cfg.Moderation.ArchiveCapacity)
		if err != nil {
			return err
		}
	}

	reply := newReplier(s, i.Interaction)
	archiver := workflow.NewArchiver(
		newButtonConfirmer(reply, h.prompts),
		bot.NewChannelMover(s, s.State),
		workflow.WithConfirmTimeout(h.cfg.ConfirmTimeout()),
	)

	ctx, cancel := h.invocationContext()
	defer cancel()

	res := workflow.Resource{ID: target.ID, Name: target.Name, Mention: channelMention(target.ID)}
	result, err := archiver.Archive(ctx, workflow.ArchiveRequest{
		Resource:  res,
		Pools:     pools,
		Requester: actor,
	})
	if err != nil {
		logging.Error("[ARCHIVE] %s (%s) failed to archive #%s: %v", actor.Name, actor.ID, target.Name, err)
		h.record(database.KindArchive, actor.ID, target.ID, "failed", err.Error())
		if !reply.responded {
			return err
		}
		return reply.text(fmt.Sprintf("❌ Error: %s", err.Error()), true)
	}

	detail := ""
	if result.Outcome == workflow.OutcomeMoved {
		detail = result.Pool.Name
		h.announce("Channel Archived", actor.ID, res.Mention, "Into "+result.Pool.Name)
	}
	h.record(database.KindArchive, actor.ID, target.ID, result.Outcome.String(), detail)
	logging.Info("[ARCHIVE] %s (%s) archive #%s: %s", actor.Name, actor.ID, target.Name, result.Outcome)

	text, ephemeral, asEmbed := archiveReply(result, res)
	if asEmbed {
		return reply.embed(text, ephemeral)
	}
	return reply.text(text, ephemeral)
}

// archiveReply renders an archive outcome for the operator.
func archiveReply(result workflow.ArchiveResult, res workflow.Resource) (text string, ephemeral, asEmbed bool) {
	switch result.Outcome {
	case workflow.OutcomeUnauthorized:
		return "You are not an administrator.", true, false
	case workflow.OutcomeExhausted:
		return "We have run out of archive space.", false, true
	case workflow.OutcomeDeclined:
		return "Action aborted.", false, false
	case workflow.OutcomeTimedOut:
		return "Timed out, cancelling.", false, false
	case workflow.OutcomeMoved:
		return fmt.Sprintf("Archived %s successfully!", res.Mention), false, true
	}
	return fmt.Sprintf("Unexpected outcome %s.", result.Outcome), true, false
}

func channelMention(id string) string {
	return "<#" + id + ">"
}
