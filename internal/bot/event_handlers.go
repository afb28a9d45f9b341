package bot

import (
	"go-warden/internal/logging"
	"go-warden/internal/metrics"
	"go-warden/internal/notifier"

	"github.com/bwmarrin/discordgo"
)

// EventLogger mirrors message edits, deletions and forum post deletions
// in the guild to the log channel.
type EventLogger struct {
	guildID  string
	notifier *notifier.Notifier
	metrics  *metrics.MetricsRegistry
	threads  *threadCache
}

func NewEventLogger(guildID string, n *notifier.Notifier, mr *metrics.MetricsRegistry) *EventLogger {
	return &EventLogger{
		guildID:  guildID,
		notifier: n,
		metrics:  mr,
		threads:  newThreadCache(5000),
	}
}

// SetupEventHandlers registers the discordgo handlers.
func (s *Session) SetupEventHandlers(el *EventLogger) {
	logging.Info("Setting up Discord event handlers...")

	s.discord.AddHandler(func(sess *discordgo.Session, r *discordgo.Ready) {
		logging.Info("Bot ready! Connected as %s", r.User.Username)
	})

	s.discord.AddHandler(func(sess *discordgo.Session, g *discordgo.GuildCreate) {
		if g.ID != el.guildID {
			logging.Warn("Ignoring unconfigured guild %s (%s)", g.Name, g.ID)
			return
		}
		for _, t := range g.Threads {
			el.threads.Store(t.ID, t.Name)
		}
		logging.Info("Loaded guild %s with %d channels", g.Name, len(g.Channels))
	})

	s.discord.AddHandler(func(sess *discordgo.Session, t *discordgo.ThreadCreate) {
		if t.GuildID == el.guildID {
			el.threads.Store(t.ID, t.Name)
		}
	})

	s.discord.AddHandler(func(sess *discordgo.Session, t *discordgo.ThreadUpdate) {
		if t.GuildID == el.guildID {
			el.threads.Store(t.ID, t.Name)
		}
	})

	s.discord.AddHandler(func(sess *discordgo.Session, t *discordgo.ThreadListSync) {
		if t.GuildID != el.guildID {
			return
		}
		for _, th := range t.Threads {
			el.threads.Store(th.ID, th.Name)
		}
	})

	s.discord.AddHandler(func(sess *discordgo.Session, m *discordgo.MessageCreate) {
		if m.GuildID == el.guildID {
			el.threads.SetStarter(m.ID, m.Content)
		}
	})

	s.discord.AddHandler(func(sess *discordgo.Session, m *discordgo.MessageDelete) {
		el.onMessageDelete(sess, m)
	})

	s.discord.AddHandler(func(sess *discordgo.Session, m *discordgo.MessageUpdate) {
		el.onMessageUpdate(sess, m)
	})

	s.discord.AddHandler(func(sess *discordgo.Session, t *discordgo.ThreadDelete) {
		el.onThreadDelete(sess, t)
	})

	logging.Info("Discord event handlers configured")
}

func (el *EventLogger) onMessageDelete(sess *discordgo.Session, m *discordgo.MessageDelete) {
	if m.GuildID != el.guildID {
		return
	}

	before := m.BeforeDelete
	if before == nil {
		logging.Debug("[EVENT] Deleted message %s was not cached", m.ID)
		return
	}
	if before.Author == nil || before.Author.Bot {
		return
	}
	if before.GuildID == "" {
		before.GuildID = m.GuildID
	}

	msg := notifier.MessageDeleted(before, channelName(sess, before.ChannelID))
	el.post("message_deleted", msg)
}

func (el *EventLogger) onMessageUpdate(sess *discordgo.Session, m *discordgo.MessageUpdate) {
	if m.GuildID != el.guildID {
		return
	}

	before := m.BeforeUpdate
	if before == nil || before.Author == nil || before.Author.Bot {
		return
	}
	// Link unfurls arrive as updates without an edit timestamp.
	if m.EditedTimestamp == nil || before.Content == m.Content {
		return
	}
	if before.GuildID == "" {
		before.GuildID = m.GuildID
	}

	msg := notifier.MessageEdited(before, m.Message, channelName(sess, before.ChannelID))
	el.post("message_edited", msg)
}

func (el *EventLogger) onThreadDelete(sess *discordgo.Session, t *discordgo.ThreadDelete) {
	if t.GuildID != el.guildID {
		return
	}

	entry, _ := el.threads.Take(t.ID)

	parent, err := sess.State.Channel(t.ParentID)
	if err != nil {
		parent, err = sess.Channel(t.ParentID)
		if err != nil {
			logging.Warn("[EVENT] Thread %s deleted but parent %s unknown: %v", t.ID, t.ParentID, err)
			return
		}
	}
	if parent.Type != discordgo.ChannelTypeGuildForum {
		return
	}

	name := entry.name
	if name == "" {
		name = t.Name
	}

	msg := notifier.ForumPostDeleted(t.GuildID, t.ID, name, entry.starter, parent)
	el.post("forum_post_deleted", msg)
}

func (el *EventLogger) post(event string, msg *discordgo.MessageSend) {
	if err := el.notifier.Send(msg); err != nil {
		logging.Error("[EVENT] Failed to log %s: %v", event, err)
		return
	}
	if el.metrics != nil {
		el.metrics.Inc("events." + event)
	}
}

func channelName(sess *discordgo.Session, channelID string) string {
	if ch, err := sess.State.Channel(channelID); err == nil {
		return ch.Name
	}
	if ch, err := sess.Channel(channelID); err == nil {
		return ch.Name
	}
	return channelID
}
