package main

import (
	"aqmon/internal/config"
	"aqmon/internal/db"
	"aqmon/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("initdb", "info").Fatalf("failed to load configuration: %v", err)
	}

	log := logging.New("initdb", cfg.LogLevel)

	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	if err := db.EnsureProvinceBaseline(gdb); err != nil {
		log.Fatalf("failed to seed province baseline: %v", err)
	}

	log.Info("schema migrated and province baseline seeded")
}
