package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aqmon/internal/config"
)

// Connect opens a GORM connection to PostgreSQL and migrates the
// pipeline tables. The province reference table is created but not
// seeded here; see EnsureProvinceBaseline.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{PrepareStmt: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := gdb.AutoMigrate(
		&RawObservation{},
		&CleanObservation{},
		&DailyAggregate{},
		&ProvinceHealth{},
		&CitySummary{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return gdb, nil
}

// provinceBaseline is the 2023 ISPA prevalence per province
// (Riskesdas-derived reference data).
var provinceBaseline = []ProvinceHealth{
	{Province: "Aceh", Prevalence2023: 1.4},
	{Province: "Sumatera Utara", Prevalence2023: 0.5},
	{Province: "Sumatera Barat", Prevalence2023: 1.8},
	{Province: "Riau", Prevalence2023: 0.8},
	{Province: "Jambi", Prevalence2023: 0.9},
	{Province: "Sumatera Selatan", Prevalence2023: 1.7},
	{Province: "Bengkulu", Prevalence2023: 1.9},
	{Province: "Lampung", Prevalence2023: 1.9},
	{Province: "Bangka Belitung", Prevalence2023: 0.6},
	{Province: "Kepulauan Riau", Prevalence2023: 1.0},
	{Province: "DKI Jakarta", Prevalence2023: 2.6},
	{Province: "Jawa Barat", Prevalence2023: 2.2},
	{Province: "Jawa Tengah", Prevalence2023: 2.5},
	{Province: "DI Yogyakarta", Prevalence2023: 0.9},
	{Province: "Jawa Timur", Prevalence2023: 3.2},
	{Province: "Banten", Prevalence2023: 3.6},
	{Province: "Bali", Prevalence2023: 2.1},
	{Province: "Nusa Tenggara Barat", Prevalence2023: 1.9},
	{Province: "Nusa Tenggara Timur", Prevalence2023: 3.1},
	{Province: "Kalimantan Barat", Prevalence2023: 1.0},
	{Province: "Kalimantan Tengah", Prevalence2023: 1.3},
	{Province: "Kalimantan Selatan", Prevalence2023: 0.7},
	{Province: "Kalimantan Timur", Prevalence2023: 1.3},
	{Province: "Kalimantan Utara", Prevalence2023: 1.0},
	{Province: "Sulawesi Utara", Prevalence2023: 1.3},
	{Province: "Sulawesi Tengah", Prevalence2023: 0.9},
	{Province: "Sulawesi Selatan", Prevalence2023: 0.4},
	{Province: "Sulawesi Tenggara", Prevalence2023: 0.6},
	{Province: "Gorontalo", Prevalence2023: 0.5},
	{Province: "Sulawesi Barat", Prevalence2023: 0.4},
	{Province: "Maluku", Prevalence2023: 1.0},
	{Province: "Maluku Utara", Prevalence2023: 1.2},
	{Province: "Papua Barat", Prevalence2023: 2.3},
	{Province: "Papua Barat Daya", Prevalence2023: 2.7},
	{Province: "Papua", Prevalence2023: 4.9},
	{Province: "Papua Selatan", Prevalence2023: 3.6},
	{Province: "Papua Tengah", Prevalence2023: 18.8},
	{Province: "Papua Pegunungan", Prevalence2023: 10.7},
}

// EnsureProvinceBaseline seeds the static province prevalence table.
// Provinces already present are left as-is.
func EnsureProvinceBaseline(gdb *gorm.DB) error {
	for i := range provinceBaseline {
		row := provinceBaseline[i]
		err := gdb.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "province"}},
			DoNothing: true,
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("failed to seed province %s: %w", row.Province, err)
		}
	}
	return nil
}
