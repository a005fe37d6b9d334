package main

import (
	"os"

	"aqmon/internal/config"
	"aqmon/internal/db"
	"aqmon/internal/logging"
	"aqmon/internal/transform"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("aggregator", "info").Fatalf("failed to load configuration: %v", err)
	}

	log := logging.New("aggregator", cfg.LogLevel)

	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if _, err := transform.NewDailyAggregator(db.NewStore(gdb), cfg.DailyGroupLimit, log).Run(); err != nil {
		log.Errorf("aggregate stage failed: %v", err)
		os.Exit(1)
	}
}
