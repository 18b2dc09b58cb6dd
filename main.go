package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Five-Stack-Club/rift-bot/app"
	"github.com/Five-Stack-Club/rift-bot/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application := &app.App{}
	if err := application.Initialize(ctx, cfg); err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
		<-interrupt
		log.Println("Shutdown signal received")
		cancel()
	}()

	if err := application.Run(ctx); err != nil {
		log.Printf("App stopped with error: %v", err)
	}

	if err := application.Close(); err != nil {
		log.Printf("App shutdown reported errors: %v", err)
	}

	log.Println("Application shut down gracefully.")
}
