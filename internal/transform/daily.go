package transform

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"aqmon/internal/db"
	"aqmon/internal/pipeline"
)

// DailyStore is the slice of persistence the daily aggregator needs.
type DailyStore interface {
	ListClean() ([]db.CleanObservation, error)
	// InsertDailyIfAbsent writes an aggregate unless one exists for the
	// same (date, city). Reports whether a row was written.
	InsertDailyIfAbsent(agg *db.DailyAggregate) (bool, error)
}

// DailyAggregator computes per-(date, city) means over the clean table
// and fills the daily table monotonically: existing rows are never
// updated. Nulls are excluded from each mean; a metric with no recorded
// values on a city-date stays null.
type DailyAggregator struct {
	store      DailyStore
	groupLimit int
	log        *logrus.Entry
}

func NewDailyAggregator(store DailyStore, groupLimit int, log *logrus.Entry) *DailyAggregator {
	return &DailyAggregator{
		store:      store,
		groupLimit: groupLimit,
		log:        log,
	}
}

// Run aggregates all available groups (capped at the group limit) and
// returns the number of newly inserted rows.
func (d *DailyAggregator) Run() (int, error) {
	rows, err := d.store.ListClean()
	if err != nil {
		return 0, err
	}

	groups := groupDaily(rows)
	if len(groups) > d.groupLimit {
		groups = groups[:d.groupLimit]
	}
	d.log.WithField("groups", len(groups)).Info("daily groups to aggregate")

	inserted := 0
	for _, g := range groups {
		agg := aggregateGroup(g)

		written, err := d.store.InsertDailyIfAbsent(agg)
		if err != nil {
			d.log.WithFields(logrus.Fields{
				"city": agg.City,
				"date": agg.Date.Format("2006-01-02"),
			}).Errorf("daily insert failed: %v", err)
			pipeline.ObserveRecord("aggregate", pipeline.OutcomeFailed)
			continue
		}
		if !written {
			pipeline.ObserveRecord("aggregate", pipeline.OutcomeSkippedDuplicate)
			continue
		}

		pipeline.ObserveRecord("aggregate", pipeline.OutcomeInserted)
		inserted++
	}

	d.log.WithFields(logrus.Fields{
		"inserted": inserted,
		"groups":   len(groups),
	}).Info("daily aggregation completed")

	return inserted, nil
}

// dailyGroup collects the clean observations of one city on one date.
type dailyGroup struct {
	date time.Time
	city string
	rows []db.CleanObservation
}

// groupDaily buckets clean rows by (date, city), ordered by date then
// city so runs are deterministic.
func groupDaily(rows []db.CleanObservation) []dailyGroup {
	type key struct {
		date string
		city string
	}

	buckets := make(map[key][]db.CleanObservation)
	for _, r := range rows {
		k := key{date: r.Timestamp.Format("2006-01-02"), city: r.City}
		buckets[k] = append(buckets[k], r)
	}

	keys := make([]key, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].city < keys[j].city
	})

	groups := make([]dailyGroup, 0, len(keys))
	for _, k := range keys {
		date, _ := time.Parse("2006-01-02", k.date)
		groups = append(groups, dailyGroup{date: date, city: k.city, rows: buckets[k]})
	}
	return groups
}

func aggregateGroup(g dailyGroup) *db.DailyAggregate {
	return &db.DailyAggregate{
		Date:        g.date,
		City:        g.city,
		PM25Avg:     meanOf(g.rows, func(o db.CleanObservation) *float64 { return o.PM25 }),
		PM10Avg:     meanOf(g.rows, func(o db.CleanObservation) *float64 { return o.PM10 }),
		AQIAvg:      meanOf(g.rows, func(o db.CleanObservation) *float64 { return o.AQI }),
		TempAvg:     meanOf(g.rows, func(o db.CleanObservation) *float64 { return o.Temperature }),
		HumidityAvg: meanOf(g.rows, func(o db.CleanObservation) *float64 { return o.Humidity }),
	}
}

// meanOf averages the non-null values of one metric across a group.
// Returns nil when every value is missing.
func meanOf(rows []db.CleanObservation, metric func(db.CleanObservation) *float64) *float64 {
	var sum float64
	var n int
	for _, r := range rows {
		if v := metric(r); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}
