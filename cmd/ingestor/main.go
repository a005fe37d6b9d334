package main

import (
	"os"

	"aqmon/internal/config"
	"aqmon/internal/db"
	"aqmon/internal/fetch"
	"aqmon/internal/ingest"
	"aqmon/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("ingestor", "info").Fatalf("failed to load configuration: %v", err)
	}

	log := logging.New("ingestor", cfg.LogLevel)

	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	snapshots := fetch.NewSnapshotStore(cfg.RawDataPath)
	if _, err := ingest.NewIngestor(snapshots, db.NewStore(gdb), log).Run(); err != nil {
		log.Errorf("insert stage failed: %v", err)
		os.Exit(1)
	}
}
