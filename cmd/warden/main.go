package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-warden/internal/bootstrap"
	"go-warden/internal/logging"
)

func main() {
	configPath := flag.String("config", "config.json", "path to a JSON or YAML config file")
	flag.Parse()

	fmt.Println("Starting warden moderation bot")

	b := bootstrap.New(*configPath)
	if err := b.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}

	if err := b.Start(); err != nil {
		logging.Critical("Start failed: %v", err)
		b.Shutdown()
		os.Exit(1)
	}

	logging.Info("Discord bot connected and commands registered")

	waitForShutdown()

	if err := b.Shutdown(); err != nil {
		os.Exit(1)
	}
}

func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	fmt.Println("\nShutdown signal received")
}
