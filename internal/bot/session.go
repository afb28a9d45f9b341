package bot

import (
	"fmt"

	"go-warden/internal/logging"

	"github.com/bwmarrin/discordgo"
)

type Session struct {
	discord *discordgo.Session
	guildID string
	BotID   string
}

// New creates the discordgo session. The message cache backs the
// edit and delete logs, which need the previous content.
func New(token, guildID string) (*Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent
	dg.State.MaxMessageCount = 1000
	dg.State.TrackThreads = true

	return &Session{
		discord: dg,
		guildID: guildID,
	}, nil
}

// GetDiscord returns the underlying discordgo session
func (s *Session) GetDiscord() *discordgo.Session {
	return s.discord
}

func (s *Session) GuildID() string {
	return s.guildID
}

// Connect opens the gateway connection.
func (s *Session) Connect() error {
	if err := s.discord.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if s.discord.State.User != nil {
		s.BotID = s.discord.State.User.ID
		logging.Info("Bot ID: %s", s.BotID)
	}

	logging.Info("Discord bot connected successfully")
	return nil
}

func (s *Session) Close() error {
	if s.discord != nil {
		return s.discord.Close()
	}
	return nil
}

// RegisterCommands replaces the guild's slash commands with commands.
func (s *Session) RegisterCommands(appID string, commands []*discordgo.ApplicationCommand) error {
	if appID == "" && s.discord.State.User != nil {
		appID = s.discord.State.User.ID
	}
	logging.Info("Registering %d slash commands in guild %s...", len(commands), s.guildID)

	registered, err := s.discord.ApplicationCommandBulkOverwrite(appID, s.guildID, commands)
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	for _, cmd := range registered {
		logging.Info("Registered command: /%s", cmd.Name)
	}
	return nil
}

func (s *Session) AddHandler(handler interface{}) func() {
	return s.discord.AddHandler(handler)
}
