package ingest

import (
	"github.com/sirupsen/logrus"

	"aqmon/internal/db"
	"aqmon/internal/pipeline"
)

// RawStore is the slice of persistence the ingestor needs.
type RawStore interface {
	HasFile(name string) (bool, error)
	InsertRaw(obs *db.RawObservation) error
}

// SnapshotSource lists and reads stored snapshot files.
type SnapshotSource interface {
	List() ([]string, error)
	Read(name string) ([]byte, error)
}

// Ingestor appends one raw observation per snapshot file not yet
// recorded. Files with invalid structure are skipped with a warning and
// left un-ingested; one bad file never aborts the batch.
type Ingestor struct {
	snapshots SnapshotSource
	store     RawStore
	log       *logrus.Entry
}

func NewIngestor(snapshots SnapshotSource, store RawStore, log *logrus.Entry) *Ingestor {
	return &Ingestor{
		snapshots: snapshots,
		store:     store,
		log:       log,
	}
}

// Run processes every stored snapshot file and returns the number of
// newly inserted rows.
func (in *Ingestor) Run() (int, error) {
	names, err := in.snapshots.List()
	if err != nil {
		return 0, err
	}
	in.log.WithField("files", len(names)).Info("snapshot files found")

	inserted := 0
	for _, name := range names {
		outcome := in.processFile(name)
		pipeline.ObserveRecord("insert", outcome)
		if outcome == pipeline.OutcomeInserted {
			inserted++
		}
	}

	in.log.WithFields(logrus.Fields{
		"inserted": inserted,
		"files":    len(names),
	}).Info("raw ingestion completed")

	return inserted, nil
}

func (in *Ingestor) processFile(name string) pipeline.Outcome {
	log := in.log.WithField("file", name)

	seen, err := in.store.HasFile(name)
	if err != nil {
		log.Errorf("dedup check failed: %v", err)
		return pipeline.OutcomeFailed
	}
	if seen {
		log.Debug("already ingested, skipping")
		return pipeline.OutcomeSkippedDuplicate
	}

	payload, err := in.snapshots.Read(name)
	if err != nil {
		log.Errorf("read failed: %v", err)
		return pipeline.OutcomeFailed
	}

	obs, err := parseSnapshot(payload, name)
	if err != nil {
		log.Warnf("invalid snapshot, skipping: %v", err)
		return pipeline.OutcomeSkippedInvalid
	}

	if err := in.store.InsertRaw(obs); err != nil {
		log.Errorf("insert failed: %v", err)
		return pipeline.OutcomeFailed
	}

	log.WithField("city", obs.City).Debug("raw observation inserted")
	return pipeline.OutcomeInserted
}
