package main

import (
	"flag"
	"log"
	"os"

	"FinSignal/internal/di"
	"FinSignal/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	log.Printf("env=%s redis=%t kafka=%t history=%t", cfg.Environment, cfg.Redis.Enabled, cfg.Kafka.Enabled, cfg.ClickHouse.Enabled)

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
