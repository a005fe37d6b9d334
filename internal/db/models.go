package db

import (
	"time"

	"gorm.io/datatypes"
)

// RawObservation is one parsed snapshot persisted verbatim alongside the
// extracted fields. A snapshot file is never ingested twice: the
// (timestamp, city, file_name) triple is unique and file_name alone is
// checked before insertion.
type RawObservation struct {
	ID uint `gorm:"primaryKey"`

	City      string    `gorm:"size:50;not null;uniqueIndex:idx_raw_air_quality_unique,priority:2"`
	Timestamp time.Time `gorm:"not null;uniqueIndex:idx_raw_air_quality_unique,priority:1"`

	Temperature *float64
	Humidity    *float64
	WindSpeed   *float64

	PM25       *float64 `gorm:"column:pm25"`
	PM10       *float64 `gorm:"column:pm10"`
	O3         *float64 `gorm:"column:o3"`
	NO2        *float64 `gorm:"column:no2"`
	SO2        *float64 `gorm:"column:so2"`
	CO         *float64 `gorm:"column:co"`
	USEPAIndex *int     `gorm:"column:us_epa_index"`

	// RawPayload carries the original provider response for auditability.
	RawPayload datatypes.JSON `gorm:"column:raw_json;type:jsonb"`

	FileName  string `gorm:"size:255;uniqueIndex:idx_raw_air_quality_unique,priority:3"`
	CreatedAt time.Time
}

func (RawObservation) TableName() string { return "raw_air_quality" }

// CleanObservation is a deduplicated, field-normalized observation.
// Uniqueness is on (city, timestamp): two cities sharing an instant are
// both kept, duplicates of the same city-instant are discarded.
type CleanObservation struct {
	ID uint `gorm:"primaryKey"`

	City      string    `gorm:"size:50;not null;uniqueIndex:idx_clean_air_quality_unique,priority:1"`
	Timestamp time.Time `gorm:"not null;uniqueIndex:idx_clean_air_quality_unique,priority:2"`

	PM25 *float64 `gorm:"column:pm25"`
	PM10 *float64 `gorm:"column:pm10"`
	O3   *float64 `gorm:"column:o3"`
	NO2  *float64 `gorm:"column:no2"`
	SO2  *float64 `gorm:"column:so2"`
	CO   *float64 `gorm:"column:co"`
	AQI  *float64 `gorm:"column:aqi"`

	Temperature *float64
	Humidity    *float64
	CreatedAt   time.Time
}

func (CleanObservation) TableName() string { return "clean_air_quality" }

// DailyAggregate holds the mean metrics for one city on one calendar
// date. Rows are written once and never corrected afterwards.
type DailyAggregate struct {
	ID uint `gorm:"primaryKey"`

	Date time.Time `gorm:"type:date;not null;uniqueIndex:idx_daily_air_quality_unique,priority:1"`
	City string    `gorm:"size:50;not null;uniqueIndex:idx_daily_air_quality_unique,priority:2"`

	// Averages are nil when every contributing value for the metric was
	// missing on that city-date.
	PM25Avg     *float64 `gorm:"column:pm25_avg"`
	PM10Avg     *float64 `gorm:"column:pm10_avg"`
	AQIAvg      *float64 `gorm:"column:aqi_avg"`
	TempAvg     *float64 `gorm:"column:temp_avg"`
	HumidityAvg *float64 `gorm:"column:humidity_avg"`

	CreatedAt time.Time
}

func (DailyAggregate) TableName() string { return "daily_air_quality" }

// ProvinceHealth is the static province-level ISPA prevalence reference,
// seeded once and read by the joiner.
type ProvinceHealth struct {
	ID uint `gorm:"primaryKey"`

	Province       string  `gorm:"size:50;not null;uniqueIndex"`
	Prevalence2023 float64 `gorm:"column:prevalence_2023"`

	CreatedAt time.Time
}

func (ProvinceHealth) TableName() string { return "ispa_province" }

// CitySummary is the final analytic row per city: yearly metric figures
// joined with the province prevalence statistic. The table is truncated
// and fully rebuilt on every joiner run.
type CitySummary struct {
	ID uint `gorm:"primaryKey"`

	City     string `gorm:"size:50;not null;uniqueIndex"`
	Province string `gorm:"size:50;not null"`

	PM25Yearly     float64 `gorm:"column:pm25_yearly"`
	PM10Yearly     float64 `gorm:"column:pm10_yearly"`
	AQIYearly      float64 `gorm:"column:aqi_yearly"`
	TempYearly     float64 `gorm:"column:temp_yearly"`
	HumidityYearly float64 `gorm:"column:humidity_yearly"`
	Prevalence2023 float64 `gorm:"column:prevalence_2023"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CitySummary) TableName() string { return "city_ispa_joined" }
