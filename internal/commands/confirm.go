package commands

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go-warden/internal/logging"
	"go-warden/internal/notifier"
	"go-warden/internal/workflow"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

const confirmPrefix = "confirm:"

// responder is the part of *discordgo.Session that answers interactions.
type responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// replier answers one interaction, switching to followups once the
// initial response has been used.
type replier struct {
	r         responder
	i         *discordgo.Interaction
	responded bool
}

func newReplier(r responder, i *discordgo.Interaction) *replier {
	return &replier{r: r, i: i}
}

func (rp *replier) text(content string, ephemeral bool) error {
	return rp.send(content, nil, ephemeral)
}

func (rp *replier) embed(description string, ephemeral bool) error {
	return rp.send("", []*discordgo.MessageEmbed{{Description: description, Color: notifier.ColorInfo}}, ephemeral)
}

func (rp *replier) send(content string, embeds []*discordgo.MessageEmbed, ephemeral bool) error {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	if rp.responded {
		_, err := rp.r.FollowupMessageCreate(rp.i, true, &discordgo.WebhookParams{
			Content: content,
			Embeds:  embeds,
			Flags:   flags,
		})
		return err
	}

	err := rp.r.InteractionRespond(rp.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Embeds:  embeds,
			Flags:   flags,
		},
	})
	if err == nil {
		rp.responded = true
	}
	return err
}

// promptRegistry routes button presses to the gate waiting on them.
type promptRegistry struct {
	mu    sync.Mutex
	gates map[string]*workflow.Gate
}

func newPromptRegistry() *promptRegistry {
	return &promptRegistry{gates: make(map[string]*workflow.Gate)}
}

func (r *promptRegistry) add(id string, g *workflow.Gate) {
	r.mu.Lock()
	r.gates[id] = g
	r.mu.Unlock()
}

func (r *promptRegistry) get(id string) *workflow.Gate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gates[id]
}

func (r *promptRegistry) remove(id string) {
	r.mu.Lock()
	delete(r.gates, id)
	r.mu.Unlock()
}

func (r *promptRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.gates)
}

func confirmID(promptID string, yes bool) string {
	if yes {
		return confirmPrefix + promptID + ":yes"
	}
	return confirmPrefix + promptID + ":no"
}

// parseConfirmID splits "confirm:<prompt>:<yes|no>".
func parseConfirmID(customID string) (promptID string, yes bool, ok bool) {
	rest, found := strings.CutPrefix(customID, confirmPrefix)
	if !found {
		return "", false, false
	}
	promptID, answer, found := strings.Cut(rest, ":")
	if !found || promptID == "" {
		return "", false, false
	}
	switch answer {
	case "yes":
		return promptID, true, true
	case "no":
		return promptID, false, true
	}
	return "", false, false
}

func confirmButtons(promptID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Yes",
					Style:    discordgo.SuccessButton,
					CustomID: confirmID(promptID, true),
				},
				discordgo.Button{
					Label:    "No",
					Style:    discordgo.DangerButton,
					CustomID: confirmID(promptID, false),
				},
			},
		},
	}
}

// buttonConfirmer presents a prompt as the interaction's initial response
// with Yes/No buttons and waits on a gate for the answer.
type buttonConfirmer struct {
	reply    *replier
	registry *promptRegistry
	newID    func() string
}

func newButtonConfirmer(reply *replier, registry *promptRegistry) *buttonConfirmer {
	return &buttonConfirmer{reply: reply, registry: registry, newID: uuid.NewString}
}

func (c *buttonConfirmer) Confirm(ctx context.Context, req workflow.ConfirmationRequest) workflow.ConfirmationResult {
	gate := workflow.NewGate(req)
	id := c.newID()
	c.registry.add(id, gate)
	defer c.registry.remove(id)

	err := c.reply.r.InteractionRespond(c.reply.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{{Description: req.Prompt, Color: notifier.ColorInfo}},
			Components: confirmButtons(id),
		},
	})
	if err != nil {
		logging.Error("[CONFIRM] Failed to present prompt %s: %v", id, err)
		return workflow.TimedOut
	}
	c.reply.responded = true

	waited := make(chan workflow.ConfirmationResult, 1)
	go func() { waited <- gate.Wait() }()

	var result workflow.ConfirmationResult
	select {
	case result = <-waited:
	case <-ctx.Done():
		result = workflow.TimedOut
	}

	// the buttons are dead once the gate resolves
	if _, err := c.reply.r.InteractionResponseEdit(c.reply.i, &discordgo.WebhookEdit{
		Components: &[]discordgo.MessageComponent{},
	}); err != nil {
		logging.Warn("[CONFIRM] Failed to clear buttons on prompt %s: %v", id, err)
	}
	return result
}

func (h *Handler) handleConfirmButton(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return answerPrompt(s, i.Interaction, h.prompts)
}

// answerPrompt feeds a button press into its gate.
func answerPrompt(r responder, i *discordgo.Interaction, registry *promptRegistry) error {
	promptID, yes, ok := parseConfirmID(i.MessageComponentData().CustomID)
	if !ok {
		return errors.New("malformed confirmation button")
	}

	user := interactionUser(i)
	if user == nil {
		return errors.New("button press without a user")
	}

	gate := registry.get(promptID)
	if gate == nil {
		return ephemeral(r, i, "This prompt has expired.")
	}

	switch err := gate.Respond(user.ID, yes); {
	case errors.Is(err, workflow.ErrNotRespondent):
		return ephemeral(r, i, "This prompt is not for you.")
	case errors.Is(err, workflow.ErrGateResolved):
		return ephemeral(r, i, "This prompt has expired.")
	case err != nil:
		return err
	}

	return r.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

func ephemeral(r responder, i *discordgo.Interaction, content string) error {
	return r.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
