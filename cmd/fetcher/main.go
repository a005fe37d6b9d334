package main

import (
	"os"

	"aqmon/internal/config"
	"aqmon/internal/fetch"
	"aqmon/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("fetcher", "info").Fatalf("failed to load configuration: %v", err)
	}

	log := logging.New("fetcher", cfg.LogLevel)

	client := fetch.NewClient(cfg.WeatherAPIKey, cfg.WeatherAPIBaseURL, cfg.FetchTimeout)
	store := fetch.NewSnapshotStore(cfg.RawDataPath)

	if _, err := fetch.NewFetcher(client, store, cfg.Cities, log).Run(); err != nil {
		log.Errorf("fetch stage failed: %v", err)
		os.Exit(1)
	}
}
