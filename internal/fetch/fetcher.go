package fetch

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

var errMissingAPIKey = errors.New("weather api key is not configured")

// Fetcher runs the snapshot fetch stage: one provider request per
// configured city, each successful response stored as a snapshot file.
// A failed city never aborts the rest of the batch.
type Fetcher struct {
	client *Client
	store  *SnapshotStore
	cities []string
	log    *logrus.Entry
}

func NewFetcher(client *Client, store *SnapshotStore, cities []string, log *logrus.Entry) *Fetcher {
	return &Fetcher{
		client: client,
		store:  store,
		cities: cities,
		log:    log,
	}
}

// Run fetches every configured city and returns the number of cities
// whose snapshot was stored. A missing API key fails the whole stage
// before any request is made.
func (f *Fetcher) Run() (int, error) {
	if f.client.apiKey == "" {
		return 0, errMissingAPIKey
	}

	if err := f.store.Ensure(); err != nil {
		return 0, err
	}

	fetched := 0
	var failed []string

	for _, city := range f.cities {
		payload, err := f.client.Fetch(city)
		if err != nil {
			f.log.WithFields(logrus.Fields{"city": city}).Warnf("fetch failed: %v", err)
			failed = append(failed, city)
			continue
		}

		name, err := f.store.Save(city, payload, time.Now())
		if err != nil {
			f.log.WithFields(logrus.Fields{"city": city}).Warnf("save failed: %v", err)
			failed = append(failed, city)
			continue
		}

		f.log.WithFields(logrus.Fields{"city": city, "file": name}).Info("snapshot stored")
		fetched++
	}

	f.log.WithFields(logrus.Fields{
		"fetched": fetched,
		"total":   len(f.cities),
	}).Info("fetch completed")
	if len(failed) > 0 {
		f.log.Warnf("failed cities: %v", failed)
	}

	return fetched, nil
}
