package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-warden/internal/bot"
	"go-warden/internal/config"
	"go-warden/internal/database"
	"go-warden/internal/logging"
	"go-warden/internal/metrics"
	"go-warden/internal/notifier"
	"go-warden/internal/workflow"

	"github.com/bwmarrin/discordgo"
)

// Deps are the collaborators the command handlers run against.
type Deps struct {
	Session    *bot.Session
	Config     *config.Config
	DB         *database.Database
	Metrics    *metrics.MetricsRegistry
	Notifier   *notifier.Notifier
	Restrictor workflow.Restrictor
}

// Handler manages all command interactions
type Handler struct {
	session    *bot.Session
	cfg        *config.Config
	db         *database.Database
	metrics    *metrics.MetricsRegistry
	notifier   *notifier.Notifier
	sanctioner *workflow.Sanctioner
	prompts    *promptRegistry
}

var globalHandler *Handler

func NewHandler(d Deps) *Handler {
	return &Handler{
		session:    d.Session,
		cfg:        d.Config,
		db:         d.DB,
		metrics:    d.Metrics,
		notifier:   d.Notifier,
		sanctioner: workflow.NewSanctioner(d.Restrictor, time.Now),
		prompts:    newPromptRegistry(),
	}
}

// Initialize creates the command handler, hooks it into the session and
// registers the slash commands in the guild.
func Initialize(d Deps) error {
	globalHandler = NewHandler(d)

	d.Session.AddHandler(globalHandler.handleInteraction)

	commands := GetAllCommands(d.Config)
	if err := d.Session.RegisterCommands(d.Config.Bot.ClientID, commands); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	logging.Info("Command handler initialized with %d commands", len(commands))
	return nil
}

// GetHandler returns the global command handler
func GetHandler() *Handler {
	return globalHandler
}

// handleInteraction routes all interactions (commands, buttons)
func (h *Handler) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID != h.cfg.Guild.ID {
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		h.handleComponent(s, i)
	}
}

// handleCommand routes slash commands to their handlers
func (h *Handler) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	var err error
	switch data.Name {
	case "channel":
		if len(data.Options) > 0 {
			switch data.Options[0].Name {
			case "create":
				err = h.handleChannelCreate(s, i)
			case "archive":
				err = h.handleChannelArchive(s, i)
			}
		}
	case "imprison":
		err = h.handleImprison(s, i)
	case "modlog":
		err = h.handleModlog(s, i)
	case "ping":
		err = handlePing(s, i)
	case "stats":
		err = h.handleStats(s, i)
	default:
		err = fmt.Errorf("unknown command: %s", data.Name)
	}

	if err != nil {
		logging.Error("Command error [%s]: %v", data.Name, err)
		respondError(s, i, err.Error())
	}
}

// handleComponent routes component interactions
func (h *Handler) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()

	var err error
	switch {
	case strings.HasPrefix(data.CustomID, confirmPrefix):
		err = h.handleConfirmButton(s, i)
	default:
		err = fmt.Errorf("unknown component: %s", data.CustomID)
	}

	if err != nil {
		logging.Error("Component error [%s]: %v", data.CustomID, err)
		respondError(s, i, err.Error())
	}
}

// invocationContext bounds a whole command, confirmation wait included.
func (h *Handler) invocationContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.cfg.ConfirmTimeout()+4*h.cfg.RequestTimeout())
}

// record stores a terminal outcome in the action log and the counters.
func (h *Handler) record(kind database.ActionKind, actorID, targetID, outcome, detail string) {
	if h.metrics != nil {
		h.metrics.RecordOutcome(string(kind), outcome)
	}
	if h.db == nil {
		return
	}
	err := h.db.RecordAction(&database.ModerationAction{
		GuildID:  h.cfg.Guild.ID,
		Kind:     kind,
		ActorID:  actorID,
		TargetID: targetID,
		Outcome:  outcome,
		Detail:   detail,
	})
	if err != nil {
		logging.Error("Failed to record %s action: %v", kind, err)
	}
}

// announce posts a completed action to the log channel.
func (h *Handler) announce(title, actorID, targetMention, detail string) {
	if err := h.notifier.Send(notifier.ModerationAction(title, actorID, targetMention, detail)); err != nil {
		logging.Warn("Failed to announce %q: %v", title, err)
	}
}

// respondError sends an ephemeral error message
func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ Error: %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
