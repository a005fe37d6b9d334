package app

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"aqmon/internal/analysis"
	"aqmon/internal/config"
	"aqmon/internal/db"
	"aqmon/internal/fetch"
	"aqmon/internal/ingest"
	"aqmon/internal/pipeline"
	"aqmon/internal/transform"
)

// BuildStages wires the five pipeline stages in their fixed order. The
// city->province mapping is reloaded on every analyze run so a long
// running scheduled pipeline picks up mapping edits.
func BuildStages(cfg *config.Config, gdb *gorm.DB, log *logrus.Entry) []pipeline.Stage {
	store := db.NewStore(gdb)
	snapshots := fetch.NewSnapshotStore(cfg.RawDataPath)
	client := fetch.NewClient(cfg.WeatherAPIKey, cfg.WeatherAPIBaseURL, cfg.FetchTimeout)

	return []pipeline.Stage{
		{
			Name:        "ingest",
			Description: "fetching snapshots from the weather provider",
			Run: func() (int, error) {
				return fetch.NewFetcher(client, snapshots, cfg.Cities, log.WithField("stage", "ingest")).Run()
			},
		},
		{
			Name:        "insert",
			Description: "inserting raw snapshots into the raw table",
			Run: func() (int, error) {
				return ingest.NewIngestor(snapshots, store, log.WithField("stage", "insert")).Run()
			},
		},
		{
			Name:        "transform",
			Description: "cleaning and deduplicating raw observations",
			Run: func() (int, error) {
				return transform.NewCleaner(store, cfg.CleanBatchLimit, log.WithField("stage", "transform")).Run()
			},
		},
		{
			Name:        "aggregate",
			Description: "aggregating daily metrics per city",
			Run: func() (int, error) {
				return transform.NewDailyAggregator(store, cfg.DailyGroupLimit, log.WithField("stage", "aggregate")).Run()
			},
		},
		{
			Name:        "analyze",
			Description: "building the city-level ISPA join",
			Run: func() (int, error) {
				mapping, err := config.LoadCityMapping(cfg.CityMappingPath)
				if err != nil {
					return 0, err
				}
				return analysis.NewJoiner(store, mapping, log.WithField("stage", "analyze")).Run()
			},
		},
	}
}
