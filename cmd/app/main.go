package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"PricePulse/internal/di"
	"PricePulse/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Local overrides; missing .env is fine
	_ = godotenv.Load()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s backend=%s scorer=%q", cfg.Environment, cfg.Backend.Type, cfg.Scorer.URL)

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
