package bot

import (
	"testing"
	"time"

	"go-warden/internal/metrics"
	"go-warden/internal/notifier"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []*discordgo.MessageSend
}

func (r *recordingSender) ChannelMessageSendComplex(_ string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	r.sent = append(r.sent, data)
	return &discordgo.Message{}, nil
}

func newTestLogger(t *testing.T) (*EventLogger, *recordingSender, *discordgo.Session) {
	t.Helper()

	sess := &discordgo.Session{State: discordgo.NewState()}
	require.NoError(t, sess.State.GuildAdd(&discordgo.Guild{
		ID: "g1",
		Channels: []*discordgo.Channel{
			{ID: "c1", GuildID: "g1", Name: "general", Type: discordgo.ChannelTypeGuildText},
			{ID: "f1", GuildID: "g1", Name: "help", Type: discordgo.ChannelTypeGuildForum},
		},
	}))

	sender := &recordingSender{}
	el := NewEventLogger("g1", notifier.New(sender, "log"), metrics.NewMetricsRegistry())
	return el, sender, sess
}

func cached(content string, bot bool) *discordgo.Message {
	return &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		Content:   content,
		Author:    &discordgo.User{ID: "u1", Username: "alice", Bot: bot},
	}
}

func TestOnMessageDelete(t *testing.T) {
	el, sender, sess := newTestLogger(t)

	el.onMessageDelete(sess, &discordgo.MessageDelete{
		Message:      &discordgo.Message{ID: "m1", GuildID: "g1", ChannelID: "c1"},
		BeforeDelete: cached("hello", false),
	})
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "hello", sender.sent[0].Embeds[0].Description)
	assert.Equal(t, uint64(1), el.metrics.Get("events.message_deleted"))

	// uncached, bot-authored and foreign-guild deletions are ignored
	el.onMessageDelete(sess, &discordgo.MessageDelete{Message: &discordgo.Message{ID: "m2", GuildID: "g1"}})
	el.onMessageDelete(sess, &discordgo.MessageDelete{
		Message:      &discordgo.Message{ID: "m1", GuildID: "g1"},
		BeforeDelete: cached("beep", true),
	})
	el.onMessageDelete(sess, &discordgo.MessageDelete{
		Message:      &discordgo.Message{ID: "m1", GuildID: "other"},
		BeforeDelete: cached("hello", false),
	})
	assert.Len(t, sender.sent, 1)
}

func TestOnMessageUpdate(t *testing.T) {
	el, sender, sess := newTestLogger(t)
	edited := time.Now()

	update := func(content string, ts *time.Time, before *discordgo.Message) *discordgo.MessageUpdate {
		return &discordgo.MessageUpdate{
			Message:      &discordgo.Message{ID: "m1", GuildID: "g1", ChannelID: "c1", Content: content, EditedTimestamp: ts},
			BeforeUpdate: before,
		}
	}

	el.onMessageUpdate(sess, update("hello!", &edited, cached("hello", false)))
	require.Len(t, sender.sent, 1)
	fields := sender.sent[0].Embeds[0].Fields
	assert.Equal(t, "hello", fields[0].Value)
	assert.Equal(t, "hello!", fields[1].Value)

	el.onMessageUpdate(sess, update("hello!", nil, cached("hello", false)))
	el.onMessageUpdate(sess, update("hello", &edited, cached("hello", false)))
	el.onMessageUpdate(sess, update("x", &edited, cached("hello", true)))
	el.onMessageUpdate(sess, update("x", &edited, nil))
	assert.Len(t, sender.sent, 1)
}

func TestOnThreadDelete(t *testing.T) {
	el, sender, sess := newTestLogger(t)

	el.threads.Store("t1", "How do I?")
	el.threads.SetStarter("t1", "question body")

	el.onThreadDelete(sess, &discordgo.ThreadDelete{Channel: &discordgo.Channel{ID: "t1", GuildID: "g1", ParentID: "f1"}})
	require.Len(t, sender.sent, 1)
	embed := sender.sent[0].Embeds[0]
	assert.Equal(t, "How do I?", embed.Fields[0].Value)
	assert.Equal(t, "question body", embed.Fields[1].Value)

	_, ok := el.threads.Take("t1")
	assert.False(t, ok)

	// threads under text channels are not forum posts
	el.onThreadDelete(sess, &discordgo.ThreadDelete{Channel: &discordgo.Channel{ID: "t2", GuildID: "g1", ParentID: "c1"}})
	assert.Len(t, sender.sent, 1)
}

func TestThreadCache_Limit(t *testing.T) {
	c := newThreadCache(2)
	c.Store("a", "A")
	c.Store("b", "B")
	c.Store("c", "C")
	assert.Len(t, c.entries, 2)

	c.SetStarter("missing", "ignored")
	_, ok := c.Take("missing")
	assert.False(t, ok)
}
