package bootstrap

import (
	"fmt"

	"go-warden/internal/bot"
	"go-warden/internal/config"
	"go-warden/internal/database"
	"go-warden/internal/dispatcher"
	"go-warden/internal/logging"
	"go-warden/internal/metrics"
	"go-warden/internal/notifier"
)

type Bootstrap struct {
	Config      *config.Config
	Components  *Components
	configPath  string
	initialized bool
}

type Components struct {
	Session     *bot.Session
	DB          *database.Database
	Metrics     *metrics.MetricsRegistry
	Notifier    *notifier.Notifier
	EventLogger *bot.EventLogger
	REST        *dispatcher.RESTClient
}

func New(configPath string) *Bootstrap {
	return &Bootstrap{
		configPath:  configPath,
		initialized: false,
	}
}

func (b *Bootstrap) Initialize() error {
	if err := b.loadConfig(); err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	if err := b.initializeLogging(); err != nil {
		return fmt.Errorf("logging init failed: %w", err)
	}

	if err := b.initializeDatabase(); err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	if err := b.wireComponents(); err != nil {
		return fmt.Errorf("component wiring failed: %w", err)
	}

	b.initialized = true
	logging.Info("Bootstrap complete")
	return nil
}

func (b *Bootstrap) loadConfig() error {
	cfg, err := config.Load(b.configPath)
	if err != nil {
		// the logger is not up yet
		fmt.Printf("Config load failed, using defaults: %v\n", err)
		cfg = config.LoadOrDefault(b.configPath)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	b.Config = cfg
	return nil
}

func (b *Bootstrap) initializeLogging() error {
	lc := b.Config.Logging
	return logging.InitGlobalLogger(logging.Options{
		Level:    logging.ParseLevel(lc.Level),
		Path:     lc.Path,
		Console:  lc.Console,
		Rotation: logging.NewLogRotation(lc.MaxSizeMB, lc.MaxAgeHours),
	})
}

func (b *Bootstrap) initializeDatabase() error {
	if err := database.Initialize(b.Config.Database.Path); err != nil {
		return err
	}
	if !database.IsConnected() {
		return fmt.Errorf("database connection not available")
	}
	logging.Info("Database %s initialized", b.Config.Database.Path)
	return nil
}

func (b *Bootstrap) wireComponents() error {
	return Wire(b)
}

func (b *Bootstrap) Start() error {
	if !b.initialized {
		return fmt.Errorf("bootstrap not initialized")
	}

	return StartAll(b.Config, b.Components)
}

func (b *Bootstrap) Shutdown() error {
	return Shutdown(b.Components)
}
