package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// CityMapping is the static city->province reference table, loaded once
// per joiner run from a YAML document.
type CityMapping struct {
	provinces map[string]string
}

// NewCityMapping builds a mapping from an in-memory table.
func NewCityMapping(table map[string]string) *CityMapping {
	provinces := make(map[string]string, len(table))
	for city, province := range table {
		provinces[strings.ToLower(city)] = province
	}
	return &CityMapping{provinces: provinces}
}

// LoadCityMapping reads the mapping file at path. The file is a flat
// YAML map of city name to province name.
func LoadCityMapping(path string) (*CityMapping, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read city mapping %s: %w", path, err)
	}

	provinces := make(map[string]string)
	for _, key := range v.AllKeys() {
		provinces[key] = v.GetString(key)
	}
	if len(provinces) == 0 {
		return nil, fmt.Errorf("city mapping %s is empty", path)
	}

	return &CityMapping{provinces: provinces}, nil
}

// Province resolves a city to its province. Lookups are
// case-insensitive because viper lowercases configuration keys.
func (m *CityMapping) Province(city string) (string, bool) {
	p, ok := m.provinces[strings.ToLower(city)]
	return p, ok
}

// Len reports the number of mapped cities.
func (m *CityMapping) Len() int {
	return len(m.provinces)
}
