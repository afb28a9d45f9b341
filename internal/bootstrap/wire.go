package bootstrap

import (
	"fmt"

	"go-warden/internal/bot"
	"go-warden/internal/commands"
	"go-warden/internal/config"
	"go-warden/internal/database"
	"go-warden/internal/dispatcher"
	"go-warden/internal/logging"
	"go-warden/internal/metrics"
	"go-warden/internal/notifier"
)

func Wire(b *Bootstrap) error {
	logging.Info("Wiring components...")

	cfg := b.Config

	metrics.InitGlobalRegistry()
	metricsRegistry := metrics.GetRegistry()

	session, err := bot.New(cfg.Bot.Token, cfg.Guild.ID)
	if err != nil {
		return err
	}

	notify := notifier.New(session.GetDiscord(), cfg.Guild.LogChannelID)

	rest := dispatcher.NewRESTClient(dispatcher.RESTConfig{
		BaseURL:           cfg.Network.APIBaseURL,
		Token:             cfg.Bot.Token,
		GuildID:           cfg.Guild.ID,
		Timeout:           cfg.RequestTimeout(),
		RequestsPerSecond: cfg.Network.RequestsPerSecond,
		Burst:             cfg.Network.Burst,
		PoolSize:          cfg.Network.HTTPPoolSize,
	})

	b.Components = &Components{
		Session:     session,
		DB:          database.GetDB(),
		Metrics:     metricsRegistry,
		Notifier:    notify,
		EventLogger: bot.NewEventLogger(cfg.Guild.ID, notify, metricsRegistry),
		REST:        rest,
	}

	logging.Info("Component wiring complete")
	return nil
}

func StartAll(cfg *config.Config, c *Components) error {
	logging.Info("Starting components...")

	// handlers go in before the gateway opens so the first GuildCreate is seen
	c.Session.SetupEventHandlers(c.EventLogger)

	if err := c.Session.Connect(); err != nil {
		return fmt.Errorf("gateway connection failed: %w", err)
	}

	err := commands.Initialize(commands.Deps{
		Session:    c.Session,
		Config:     cfg,
		DB:         c.DB,
		Metrics:    c.Metrics,
		Notifier:   c.Notifier,
		Restrictor: c.REST,
	})
	if err != nil {
		return err
	}

	logging.Info("All components started")
	return nil
}
