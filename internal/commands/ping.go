package commands

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// handlePing shows the gateway heartbeat and REST round-trip latency
func handlePing(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	startTime := time.Now()

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		return err
	}

	apiStart := time.Now()
	_, err = s.Channel(i.ChannelID)
	apiLatency := time.Since(apiStart)
	if err != nil {
		apiLatency = -1
	}

	responseLatency := time.Since(startTime)
	wsLatency := s.HeartbeatLatency()

	embed := &discordgo.MessageEmbed{
		Title: "Pong!",
		Color: latencyColor(wsLatency, apiLatency),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "WebSocket", Value: formatLatency(wsLatency), Inline: true},
			{Name: "API", Value: formatLatency(apiLatency), Inline: true},
			{Name: "Response", Value: formatLatency(responseLatency), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
	return err
}

func latencyColor(ws, api time.Duration) int {
	if api < 0 {
		api = ws
	}
	avg := (ws.Milliseconds() + api.Milliseconds()) / 2

	switch {
	case avg < 100:
		return 0x00FF00
	case avg < 250:
		return 0xFFFF00
	case avg < 500:
		return 0xFFA500
	default:
		return 0xFF0000
	}
}

func formatLatency(d time.Duration) string {
	if d < 0 {
		return "`unavailable`"
	}
	return fmt.Sprintf("`%dms`", d.Milliseconds())
}
