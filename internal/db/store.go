package db

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the single GORM-backed implementation of the per-stage store
// interfaces declared next to each stage (ingest.RawStore,
// transform.CleanerStore, transform.DailyStore, analysis.JoinerStore).
type Store struct {
	gdb *gorm.DB
}

func NewStore(gdb *gorm.DB) *Store {
	return &Store{gdb: gdb}
}

// HasFile reports whether a snapshot file was already ingested.
func (s *Store) HasFile(name string) (bool, error) {
	var count int64
	err := s.gdb.Model(&RawObservation{}).Where("file_name = ?", name).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) InsertRaw(obs *RawObservation) error {
	return s.gdb.Create(obs).Error
}

// UncleanedRaw selects raw rows whose timestamp does not yet appear in
// the clean table, oldest first, capped at limit.
func (s *Store) UncleanedRaw(limit int) ([]RawObservation, error) {
	var rows []RawObservation
	sub := s.gdb.Model(&CleanObservation{}).Select("timestamp")
	err := s.gdb.Where("timestamp NOT IN (?)", sub).
		Order("timestamp").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// InsertCleanIgnoreDup inserts a clean observation, silently discarding
// it when a row with the same (city, timestamp) already exists. Reports
// whether a row was actually written.
func (s *Store) InsertCleanIgnoreDup(obs *CleanObservation) (bool, error) {
	res := s.gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "city"}, {Name: "timestamp"}},
		DoNothing: true,
	}).Create(obs)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) ListClean() ([]CleanObservation, error) {
	var rows []CleanObservation
	err := s.gdb.Order("timestamp").Find(&rows).Error
	return rows, err
}

// InsertDailyIfAbsent writes a daily aggregate unless one already exists
// for the same (date, city). Existing rows are never updated.
func (s *Store) InsertDailyIfAbsent(agg *DailyAggregate) (bool, error) {
	res := s.gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "city"}},
		DoNothing: true,
	}).Create(agg)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// TruncateSummaries removes every city summary ahead of a rebuild.
func (s *Store) TruncateSummaries() error {
	return s.gdb.Exec("DELETE FROM city_ispa_joined").Error
}

func (s *Store) ListDailyOrdered() ([]DailyAggregate, error) {
	var rows []DailyAggregate
	err := s.gdb.Order("city, date DESC").Find(&rows).Error
	return rows, err
}

// ProvincePrevalence looks up the ISPA prevalence figure for a province.
// An unknown province is not an error; found is false.
func (s *Store) ProvincePrevalence(province string) (float64, bool, error) {
	var row ProvinceHealth
	err := s.gdb.Where("province = ?", province).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return row.Prevalence2023, true, nil
}

// UpsertSummary inserts a city summary, or on conflict by city updates
// the metric columns, prevalence and updated_at.
func (s *Store) UpsertSummary(row *CitySummary) error {
	return s.gdb.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "city"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"province",
			"pm25_yearly",
			"pm10_yearly",
			"aqi_yearly",
			"temp_yearly",
			"humidity_yearly",
			"prevalence_2023",
			"updated_at",
		}),
	}).Create(row).Error
}
