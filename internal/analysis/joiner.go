package analysis

import (
	"sort"

	"github.com/sirupsen/logrus"

	"aqmon/internal/config"
	"aqmon/internal/db"
	"aqmon/internal/pipeline"
)

// JoinerStore is the slice of persistence the yearly joiner needs.
type JoinerStore interface {
	TruncateSummaries() error
	ListDailyOrdered() ([]db.DailyAggregate, error)
	// ProvincePrevalence reports the ISPA prevalence for a province;
	// found is false for unknown provinces.
	ProvincePrevalence(province string) (float64, bool, error)
	UpsertSummary(row *db.CitySummary) error
}

// Joiner rebuilds the final city summary table: the table is truncated,
// daily aggregates are rolled up to yearly per-city figures, and each
// city is joined with its province's ISPA prevalence. Cities absent
// from the city->province mapping are excluded with a warning.
type Joiner struct {
	store   JoinerStore
	mapping *config.CityMapping
	log     *logrus.Entry
}

func NewJoiner(store JoinerStore, mapping *config.CityMapping, log *logrus.Entry) *Joiner {
	return &Joiner{
		store:   store,
		mapping: mapping,
		log:     log,
	}
}

// cityMetrics keeps per-metric lists of non-null daily values for one
// city, pending the yearly roll-up.
type cityMetrics struct {
	province    string
	pm25        []float64
	pm10        []float64
	aqi         []float64
	temperature []float64
	humidity    []float64
}

// Run performs the full delete-then-rebuild join and returns the number
// of cities written. A failed truncate aborts the run: partial
// truncation must not be followed by a partial rebuild.
func (j *Joiner) Run() (int, error) {
	if err := j.store.TruncateSummaries(); err != nil {
		return 0, err
	}
	j.log.Info("cleared city summary table")

	daily, err := j.store.ListDailyOrdered()
	if err != nil {
		return 0, err
	}
	j.log.WithField("rows", len(daily)).Info("daily aggregates loaded")

	grouped := j.groupByCity(daily)

	cities := make([]string, 0, len(grouped))
	for city := range grouped {
		cities = append(cities, city)
	}
	sort.Strings(cities)

	written := 0
	for _, city := range cities {
		metrics := grouped[city]

		prevalence, found, err := j.store.ProvincePrevalence(metrics.province)
		if err != nil {
			j.log.WithField("city", city).Errorf("prevalence lookup failed: %v", err)
			pipeline.ObserveRecord("analyze", pipeline.OutcomeFailed)
			continue
		}
		if !found {
			j.log.WithField("province", metrics.province).Warn("no ISPA data for province, using 0.0")
		}

		row := &db.CitySummary{
			City:           city,
			Province:       metrics.province,
			PM25Yearly:     safeAverage(metrics.pm25),
			PM10Yearly:     safeAverage(metrics.pm10),
			AQIYearly:      safeAverage(metrics.aqi),
			TempYearly:     safeAverage(metrics.temperature),
			HumidityYearly: safeAverage(metrics.humidity),
			Prevalence2023: prevalence,
		}

		if err := j.store.UpsertSummary(row); err != nil {
			j.log.WithField("city", city).Errorf("summary upsert failed: %v", err)
			pipeline.ObserveRecord("analyze", pipeline.OutcomeFailed)
			continue
		}

		pipeline.ObserveRecord("analyze", pipeline.OutcomeInserted)
		written++
	}

	j.log.WithField("cities", written).Info("city summary rebuild completed")
	return written, nil
}

// groupByCity collects non-null daily metric values per city, resolving
// each city's province. Unmapped cities are dropped here, warned once
// per run rather than once per daily row.
func (j *Joiner) groupByCity(daily []db.DailyAggregate) map[string]*cityMetrics {
	grouped := make(map[string]*cityMetrics)
	unmapped := make(map[string]bool)

	for _, row := range daily {
		if unmapped[row.City] {
			continue
		}

		metrics, ok := grouped[row.City]
		if !ok {
			province, mapped := j.mapping.Province(row.City)
			if !mapped {
				j.log.WithField("city", row.City).Warn("city not found in province mapping, excluding")
				unmapped[row.City] = true
				continue
			}
			metrics = &cityMetrics{province: province}
			grouped[row.City] = metrics
		}

		appendValue(&metrics.pm25, row.PM25Avg)
		appendValue(&metrics.pm10, row.PM10Avg)
		appendValue(&metrics.aqi, row.AQIAvg)
		appendValue(&metrics.temperature, row.TempAvg)
		appendValue(&metrics.humidity, row.HumidityAvg)
	}

	return grouped
}

func appendValue(dst *[]float64, v *float64) {
	if v != nil {
		*dst = append(*dst, *v)
	}
}

// safeAverage is the mandated yearly policy: mean over contributing
// days, 0.0 when no day contributed.
func safeAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
