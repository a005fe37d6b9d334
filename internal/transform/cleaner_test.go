package transform

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqmon/internal/db"
)

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func f64(v float64) *float64 { return &v }

func intp(v int) *int { return &v }

type cleanKey struct {
	city string
	ts   time.Time
}

type fakeCleanerStore struct {
	raw     []db.RawObservation
	clean   map[cleanKey]db.CleanObservation
	failFor string // city whose inserts fail
}

func newFakeCleanerStore(raw ...db.RawObservation) *fakeCleanerStore {
	return &fakeCleanerStore{raw: raw, clean: make(map[cleanKey]db.CleanObservation)}
}

func (f *fakeCleanerStore) UncleanedRaw(limit int) ([]db.RawObservation, error) {
	cleanedTS := make(map[time.Time]bool)
	for k := range f.clean {
		cleanedTS[k.ts] = true
	}

	var out []db.RawObservation
	for _, r := range f.raw {
		if !cleanedTS[r.Timestamp] {
			out = append(out, r)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeCleanerStore) InsertCleanIgnoreDup(obs *db.CleanObservation) (bool, error) {
	if obs.City == f.failFor {
		return false, fmt.Errorf("constraint violation")
	}
	k := cleanKey{city: obs.City, ts: obs.Timestamp}
	if _, ok := f.clean[k]; ok {
		return false, nil
	}
	f.clean[k] = *obs
	return true, nil
}

func rawObs(city string, ts time.Time) db.RawObservation {
	return db.RawObservation{
		City:       city,
		Timestamp:  ts,
		PM25:       f64(42.1),
		USEPAIndex: intp(3),
	}
}

func TestCleanerMapsEPAIndexToAQI(t *testing.T) {
	ts := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)
	store := newFakeCleanerStore(rawObs("Jakarta", ts))

	count, err := NewCleaner(store, 10000, testLogger()).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	row := store.clean[cleanKey{city: "Jakarta", ts: ts}]
	require.NotNil(t, row.AQI)
	assert.Equal(t, 3.0, *row.AQI)
	require.NotNil(t, row.PM25)
	assert.Equal(t, 42.1, *row.PM25)
}

func TestCleanerKeepsBothCitiesSharingTimestamp(t *testing.T) {
	// Two cities observed at the same instant both survive cleaning:
	// uniqueness is on (city, timestamp), not timestamp alone.
	ts := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)
	store := newFakeCleanerStore(rawObs("Jakarta", ts), rawObs("Surabaya", ts))

	count, err := NewCleaner(store, 10000, testLogger()).Run()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, store.clean, 2)
}

func TestCleanerDiscardsDuplicateCityTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)
	first := rawObs("Jakarta", ts)
	second := rawObs("Jakarta", ts)
	second.PM25 = f64(99.9)
	store := newFakeCleanerStore(first, second)

	count, err := NewCleaner(store, 10000, testLogger()).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// First writer wins.
	row := store.clean[cleanKey{city: "Jakarta", ts: ts}]
	assert.Equal(t, 42.1, *row.PM25)
}

func TestCleanerRowFailureDoesNotAbortBatch(t *testing.T) {
	ts := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)
	store := newFakeCleanerStore(
		rawObs("Jakarta", ts),
		rawObs("Surabaya", ts.Add(time.Hour)),
	)
	store.failFor = "Jakarta"

	count, err := NewCleaner(store, 10000, testLogger()).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Contains(t, store.clean, cleanKey{city: "Surabaya", ts: ts.Add(time.Hour)})
}

func TestCleanerRespectsBatchLimit(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var raw []db.RawObservation
	for i := 0; i < 5; i++ {
		raw = append(raw, rawObs("Jakarta", base.Add(time.Duration(i)*time.Hour)))
	}
	store := newFakeCleanerStore(raw...)

	count, err := NewCleaner(store, 3, testLogger()).Run()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// The remaining rows arrive on the next run.
	count, err = NewCleaner(store, 3, testLogger()).Run()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
