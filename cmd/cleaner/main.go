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
		logging.New("cleaner", "info").Fatalf("failed to load configuration: %v", err)
	}

	log := logging.New("cleaner", cfg.LogLevel)

	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if _, err := transform.NewCleaner(db.NewStore(gdb), cfg.CleanBatchLimit, log).Run(); err != nil {
		log.Errorf("transform stage failed: %v", err)
		os.Exit(1)
	}
}
