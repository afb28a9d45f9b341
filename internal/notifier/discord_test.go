package notifier

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	channelID string
	sent      []*discordgo.MessageSend
	err       error
}

func (f *fakeSender) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channelID = channelID
	f.sent = append(f.sent, data)
	return &discordgo.Message{}, f.err
}

func button(t *testing.T, msg *discordgo.MessageSend) discordgo.Button {
	t.Helper()
	require.Len(t, msg.Components, 1)
	row, ok := msg.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 1)
	btn, ok := row.Components[0].(discordgo.Button)
	require.True(t, ok)
	return btn
}

func TestMessageDeleted(t *testing.T) {
	msg := &discordgo.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   "oops",
		Author:    &discordgo.User{ID: "u1", Username: "alice"},
	}

	out := MessageDeleted(msg, "general")

	require.Len(t, out.Embeds, 1)
	assert.Equal(t, "Message Deleted", out.Embeds[0].Title)
	assert.Equal(t, "oops", out.Embeds[0].Description)
	assert.Equal(t, ColorLog, out.Embeds[0].Color)
	assert.Equal(t, "alice", out.Embeds[0].Author.Name)

	btn := button(t, out)
	assert.Equal(t, "Deleted from #general", btn.Label)
	assert.Equal(t, discordgo.LinkButton, btn.Style)
	assert.Equal(t, "https://discord.com/channels/g1/c1", btn.URL)
}

func TestMessageEdited(t *testing.T) {
	before := &discordgo.Message{ID: "m1", GuildID: "g1", ChannelID: "c1", Content: "helo", Author: &discordgo.User{Username: "bob"}}
	after := &discordgo.Message{ID: "m1", GuildID: "g1", ChannelID: "c1", Content: ""}

	out := MessageEdited(before, after, "chat")

	fields := out.Embeds[0].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, "Before", fields[0].Name)
	assert.Equal(t, "helo", fields[0].Value)
	assert.Equal(t, emptyFieldValue, fields[1].Value)
	assert.False(t, fields[0].Inline)

	btn := button(t, out)
	assert.Equal(t, "Edited in #chat", btn.Label)
	assert.Equal(t, "https://discord.com/channels/g1/c1/m1", btn.URL)
}

func TestForumPostDeleted(t *testing.T) {
	forum := &discordgo.Channel{ID: "f1", Name: "help"}

	t.Run("cached thread", func(t *testing.T) {
		out := ForumPostDeleted("g1", "t1", "My question", "first post", forum)
		embed := out.Embeds[0]
		assert.Equal(t, "Forum Post Deleted", embed.Title)
		require.Len(t, embed.Fields, 2)
		assert.Equal(t, "My question", embed.Fields[0].Value)
		assert.Equal(t, "first post", embed.Fields[1].Value)
		assert.Empty(t, embed.Description)
		assert.Equal(t, "Check the audit logs to see who deleted the thread", embed.Footer.Text)
		assert.Equal(t, "Deleted from in #help", button(t, out).Label)
	})

	t.Run("unknown thread", func(t *testing.T) {
		out := ForumPostDeleted("g1", "t1", "", "", forum)
		assert.Empty(t, out.Embeds[0].Fields)
		assert.Equal(t, "Thread ID: t1", out.Embeds[0].Description)
	})
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("é", maxFieldValue+10)
	got := fieldValue(long)
	assert.Equal(t, maxFieldValue, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, "short", truncate("short", 10))
}

func TestNotifier_Send(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender, "log")

	require.NoError(t, n.Send(ModerationAction("Channel Archived", "u1", "<#c1>", "Archive 2")))
	assert.Equal(t, "log", sender.channelID)
	require.Len(t, sender.sent, 1)

	sender.err = errors.New("missing access")
	assert.ErrorContains(t, n.Send(&discordgo.MessageSend{}), "missing access")
}

func TestNotifier_SendWithoutChannel(t *testing.T) {
	sender := &fakeSender{}
	require.NoError(t, New(sender, "").Send(&discordgo.MessageSend{}))
	assert.Empty(t, sender.sent)

	var nilNotifier *Notifier
	assert.NoError(t, nilNotifier.Send(&discordgo.MessageSend{}))
}
