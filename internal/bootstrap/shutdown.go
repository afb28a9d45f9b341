package bootstrap

import (
	"go-warden/internal/database"
	"go-warden/internal/logging"
)

// Shutdown closes the gateway, then the database, then the log.
func Shutdown(c *Components) error {
	logging.Info("Starting graceful shutdown...")

	var firstErr error
	if c != nil && c.Session != nil {
		logging.Info("Closing Discord session...")
		if err := c.Session.Close(); err != nil {
			logging.Error("Failed to close Discord session: %v", err)
			firstErr = err
		}
	}

	logging.Info("Closing database...")
	if err := database.Close(); err != nil {
		logging.Error("Failed to close database: %v", err)
		if firstErr == nil {
			firstErr = err
		}
	}

	logging.Info("Graceful shutdown complete")
	if logging.GlobalLogger != nil {
		logging.GlobalLogger.Close()
	}
	return firstErr
}
