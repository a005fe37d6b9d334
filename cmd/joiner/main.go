package main

import (
	"os"

	"aqmon/internal/analysis"
	"aqmon/internal/config"
	"aqmon/internal/db"
	"aqmon/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("joiner", "info").Fatalf("failed to load configuration: %v", err)
	}

	log := logging.New("joiner", cfg.LogLevel)

	mapping, err := config.LoadCityMapping(cfg.CityMappingPath)
	if err != nil {
		log.Fatalf("failed to load city mapping: %v", err)
	}

	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if _, err := analysis.NewJoiner(db.NewStore(gdb), mapping, log).Run(); err != nil {
		log.Errorf("analyze stage failed: %v", err)
		os.Exit(1)
	}
}
