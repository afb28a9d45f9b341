package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	ColorLog  = 0xC24B40
	ColorInfo = 0x5A9CD6

	maxFieldValue   = 1024
	maxDescription  = 4096
	maxButtonLabel  = 80
	emptyFieldValue = "*(empty)*"
)

// Sender is the slice of *discordgo.Session the notifier needs.
type Sender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Notifier posts to the guild's log channel.
type Notifier struct {
	sender    Sender
	channelID string
}

func New(sender Sender, channelID string) *Notifier {
	return &Notifier{sender: sender, channelID: channelID}
}

func (n *Notifier) Send(msg *discordgo.MessageSend) error {
	if n == nil || n.sender == nil || n.channelID == "" || msg == nil {
		return nil
	}
	if _, err := n.sender.ChannelMessageSendComplex(n.channelID, msg); err != nil {
		return fmt.Errorf("send to log channel %s: %w", n.channelID, err)
	}
	return nil
}

func ChannelURL(guildID, channelID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s", guildID, channelID)
}

func MessageURL(guildID, channelID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}

// MessageDeleted describes a deleted message, taken from the state cache.
func MessageDeleted(msg *discordgo.Message, channelName string) *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Title:       "Message Deleted",
		Description: truncate(msg.Content, maxDescription),
		Color:       ColorLog,
		Author:      author(msg.Author),
		Timestamp:   time.Now().Format(time.RFC3339),
	}

	return &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: linkButton("Deleted from #"+channelName, ChannelURL(msg.GuildID, msg.ChannelID)),
	}
}

func MessageEdited(before, after *discordgo.Message, channelName string) *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Title:  "Message Edited",
		Color:  ColorLog,
		Author: author(before.Author),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Before", Value: fieldValue(before.Content)},
			{Name: "After", Value: fieldValue(after.Content)},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	return &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: linkButton("Edited in #"+channelName, MessageURL(before.GuildID, before.ChannelID, before.ID)),
	}
}

// ForumPostDeleted describes a deleted forum thread. threadName and
// starter are empty when the thread was never cached.
func ForumPostDeleted(guildID, threadID, threadName, starter string, forum *discordgo.Channel) *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Title: "Forum Post Deleted",
		Color: ColorLog,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Check the audit logs to see who deleted the thread",
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if threadName != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Name", Value: fieldValue(threadName)})
		if starter != "" {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Starter Message (from cache)", Value: fieldValue(starter)})
		}
	} else {
		embed.Description = "Thread ID: " + threadID
	}

	return &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: linkButton("Deleted from in #"+forum.Name, ChannelURL(guildID, forum.ID)),
	}
}

// ModerationAction is posted when a workflow changes something in the guild.
func ModerationAction(title, actorID, targetMention, detail string) *discordgo.MessageSend {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Moderator", Value: fmt.Sprintf("<@%s> (`%s`)", actorID, actorID), Inline: true},
		{Name: "Target", Value: fieldValue(targetMention), Inline: true},
	}
	if detail != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Details", Value: fieldValue(detail)})
	}

	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:     title,
			Color:     ColorInfo,
			Fields:    fields,
			Timestamp: time.Now().Format(time.RFC3339),
		}},
	}
}

func author(u *discordgo.User) *discordgo.MessageEmbedAuthor {
	if u == nil {
		return nil
	}
	return &discordgo.MessageEmbedAuthor{
		Name:    u.Username,
		IconURL: u.AvatarURL(""),
	}
}

func linkButton(label, url string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label: truncate(label, maxButtonLabel),
					Style: discordgo.LinkButton,
					URL:   url,
				},
			},
		},
	}
}

func fieldValue(s string) string {
	if strings.TrimSpace(s) == "" {
		return emptyFieldValue
	}
	return truncate(s, maxFieldValue)
}

// truncate cuts s to at most max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
