package transform

import (
	"github.com/sirupsen/logrus"

	"aqmon/internal/db"
	"aqmon/internal/pipeline"
)

// CleanerStore is the slice of persistence the cleaner needs.
type CleanerStore interface {
	// UncleanedRaw returns raw rows whose timestamp is absent from the
	// clean table, oldest first, capped at limit.
	UncleanedRaw(limit int) ([]db.RawObservation, error)
	// InsertCleanIgnoreDup inserts a clean row, discarding conflicts on
	// (city, timestamp). Reports whether a row was written.
	InsertCleanIgnoreDup(obs *db.CleanObservation) (bool, error)
}

// Cleaner normalizes newly arrived raw rows into the clean table. Rows
// are selected by timestamp set-difference against the clean table;
// duplicates of the same (city, timestamp) within a batch are discarded
// first-writer-wins. Per-row failures never abort the batch.
type Cleaner struct {
	store      CleanerStore
	batchLimit int
	log        *logrus.Entry
}

func NewCleaner(store CleanerStore, batchLimit int, log *logrus.Entry) *Cleaner {
	return &Cleaner{
		store:      store,
		batchLimit: batchLimit,
		log:        log,
	}
}

// Run cleans one batch and returns the number of rows written.
func (c *Cleaner) Run() (int, error) {
	rows, err := c.store.UncleanedRaw(c.batchLimit)
	if err != nil {
		return 0, err
	}
	c.log.WithField("rows", len(rows)).Info("new raw rows to clean")

	cleaned := 0
	for i := range rows {
		outcome := c.cleanRow(&rows[i])
		pipeline.ObserveRecord("transform", outcome)
		if outcome == pipeline.OutcomeInserted {
			cleaned++
		}
	}

	c.log.WithFields(logrus.Fields{
		"cleaned": cleaned,
		"rows":    len(rows),
	}).Info("cleaning completed")

	return cleaned, nil
}

func (c *Cleaner) cleanRow(raw *db.RawObservation) pipeline.Outcome {
	obs := normalize(raw)

	written, err := c.store.InsertCleanIgnoreDup(obs)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"city":      raw.City,
			"timestamp": raw.Timestamp,
		}).Errorf("clean insert failed: %v", err)
		return pipeline.OutcomeFailed
	}
	if !written {
		return pipeline.OutcomeSkippedDuplicate
	}
	return pipeline.OutcomeInserted
}

// normalize maps raw field names onto the clean schema. The EPA index
// becomes the generic aqi metric.
func normalize(raw *db.RawObservation) *db.CleanObservation {
	var aqi *float64
	if raw.USEPAIndex != nil {
		v := float64(*raw.USEPAIndex)
		aqi = &v
	}

	return &db.CleanObservation{
		City:        raw.City,
		Timestamp:   raw.Timestamp,
		PM25:        raw.PM25,
		PM10:        raw.PM10,
		O3:          raw.O3,
		NO2:         raw.NO2,
		SO2:         raw.SO2,
		CO:          raw.CO,
		AQI:         aqi,
		Temperature: raw.Temperature,
		Humidity:    raw.Humidity,
	}
}
