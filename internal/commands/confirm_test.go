package commands

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-warden/internal/workflow"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResponder struct {
	mu         sync.Mutex
	responses  []*discordgo.InteractionResponse
	edits      []*discordgo.WebhookEdit
	followups  []*discordgo.WebhookParams
	respondErr error
}

func (f *fakeResponder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.respondErr != nil {
		return f.respondErr
	}
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeResponder) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, edit)
	return &discordgo.Message{}, nil
}

func (f *fakeResponder) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, data)
	return &discordgo.Message{}, nil
}

func (f *fakeResponder) lastResponse() *discordgo.InteractionResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		return nil
	}
	return f.responses[len(f.responses)-1]
}

func buttonPress(userID, customID string) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:   discordgo.InteractionMessageComponent,
		Member: &discordgo.Member{User: &discordgo.User{ID: userID}},
		Data:   discordgo.MessageComponentInteractionData{CustomID: customID},
	}
}

func TestParseConfirmID(t *testing.T) {
	tests := []struct {
		in     string
		id     string
		yes    bool
		wantOK bool
	}{
		{"confirm:abc:yes", "abc", true, true},
		{"confirm:abc:no", "abc", false, true},
		{"confirm:abc:maybe", "", false, false},
		{"confirm::yes", "", false, false},
		{"confirm:abc", "", false, false},
		{"other:abc:yes", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, yes, ok := parseConfirmID(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.yes, yes)
		})
	}

	id, yes, ok := parseConfirmID(confirmID("7c1f", true))
	assert.True(t, ok)
	assert.True(t, yes)
	assert.Equal(t, "7c1f", id)
}

func TestConfirmButtons(t *testing.T) {
	row := confirmButtons("p1")[0].(discordgo.ActionsRow)
	require.Len(t, row.Components, 2)

	yes := row.Components[0].(discordgo.Button)
	no := row.Components[1].(discordgo.Button)
	assert.Equal(t, "Yes", yes.Label)
	assert.Equal(t, discordgo.SuccessButton, yes.Style)
	assert.Equal(t, "confirm:p1:yes", yes.CustomID)
	assert.Equal(t, "No", no.Label)
	assert.Equal(t, discordgo.DangerButton, no.Style)
}

func TestAnswerPrompt(t *testing.T) {
	registry := newPromptRegistry()
	gate := workflow.NewGate(workflow.ConfirmationRequest{Respondent: workflow.Actor{ID: "u1"}})
	registry.add("p1", gate)

	r := &fakeResponder{}

	require.NoError(t, answerPrompt(r, buttonPress("u2", "confirm:p1:yes"), registry))
	assert.Equal(t, "This prompt is not for you.", r.lastResponse().Data.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, r.lastResponse().Data.Flags)

	require.NoError(t, answerPrompt(r, buttonPress("u1", "confirm:p1:no"), registry))
	assert.Equal(t, discordgo.InteractionResponseDeferredMessageUpdate, r.lastResponse().Type)
	assert.Equal(t, workflow.Declined, gate.Wait())

	require.NoError(t, answerPrompt(r, buttonPress("u1", "confirm:p1:yes"), registry))
	assert.Equal(t, "This prompt has expired.", r.lastResponse().Data.Content)

	require.NoError(t, answerPrompt(r, buttonPress("u1", "confirm:gone:yes"), registry))
	assert.Equal(t, "This prompt has expired.", r.lastResponse().Data.Content)

	assert.Error(t, answerPrompt(r, buttonPress("u1", "confirm:bad"), registry))
}

func TestButtonConfirmer(t *testing.T) {
	r := &fakeResponder{}
	registry := newPromptRegistry()
	reply := newReplier(r, &discordgo.Interaction{ID: "i1"})
	c := newButtonConfirmer(reply, registry)
	c.newID = func() string { return "p1" }

	req := workflow.ConfirmationRequest{
		Prompt:     "Are you sure you want to archive <#c1>?",
		Respondent: workflow.Actor{ID: "u1"},
		Timeout:    10 * time.Second,
	}

	got := make(chan workflow.ConfirmationResult, 1)
	go func() { got <- c.Confirm(context.Background(), req) }()

	require.Eventually(t, func() bool { return registry.get("p1") != nil && r.lastResponse() != nil }, time.Second, 5*time.Millisecond)

	prompt := r.lastResponse()
	assert.Equal(t, req.Prompt, prompt.Data.Embeds[0].Description)
	require.Len(t, prompt.Data.Components, 1)

	require.NoError(t, answerPrompt(r, buttonPress("u1", "confirm:p1:yes"), registry))

	select {
	case res := <-got:
		assert.Equal(t, workflow.Confirmed, res)
	case <-time.After(time.Second):
		t.Fatal("confirmer did not return")
	}

	assert.True(t, reply.responded)
	assert.Zero(t, registry.len())
	r.mu.Lock()
	require.Len(t, r.edits, 1)
	assert.Empty(t, *r.edits[0].Components)
	r.mu.Unlock()

	// later replies become followups
	require.NoError(t, reply.text("Action aborted.", false))
	assert.Equal(t, "Action aborted.", r.followups[0].Content)
}

func TestButtonConfirmer_Timeout(t *testing.T) {
	r := &fakeResponder{}
	registry := newPromptRegistry()
	c := newButtonConfirmer(newReplier(r, &discordgo.Interaction{}), registry)

	res := c.Confirm(context.Background(), workflow.ConfirmationRequest{
		Respondent: workflow.Actor{ID: "u1"},
		Timeout:    20 * time.Millisecond,
	})
	assert.Equal(t, workflow.TimedOut, res)
	assert.Zero(t, registry.len())
}

func TestButtonConfirmer_PresentFails(t *testing.T) {
	r := &fakeResponder{respondErr: errors.New("unknown interaction")}
	reply := newReplier(r, &discordgo.Interaction{})
	c := newButtonConfirmer(reply, newPromptRegistry())

	res := c.Confirm(context.Background(), workflow.ConfirmationRequest{Respondent: workflow.Actor{ID: "u1"}})
	assert.Equal(t, workflow.TimedOut, res)
	assert.False(t, reply.responded)
}

func TestButtonConfirmer_ContextCancelled(t *testing.T) {
	r := &fakeResponder{}
	c := newButtonConfirmer(newReplier(r, &discordgo.Interaction{}), newPromptRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.Confirm(ctx, workflow.ConfirmationRequest{Respondent: workflow.Actor{ID: "u1"}, Timeout: time.Minute})
	assert.Equal(t, workflow.TimedOut, res)
}
