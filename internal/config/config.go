package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the pipeline and its
// standalone stage binaries. Values are sourced from environment
// variables once, by Load; components receive the resulting value and
// never read the environment themselves.
type Config struct {
	Database DatabaseConfig

	// WeatherAPIKey authenticates against the external weather/air-quality
	// provider. Only the fetch stage needs it.
	WeatherAPIKey string

	// WeatherAPIBaseURL is the current-conditions endpoint of the provider.
	WeatherAPIBaseURL string

	// Cities is the fixed set of cities fetched each run.
	Cities []string

	// RawDataPath is the directory holding raw snapshot files.
	RawDataPath string

	// CityMappingPath points at the static city->province YAML document.
	CityMappingPath string

	ListenAddr string

	// LogLevel is a logrus level name; defaults to info.
	LogLevel string

	// PipelineInterval, when non-zero, makes the orchestrator re-run the
	// pipeline on a schedule instead of running once and exiting.
	PipelineInterval time.Duration

	// FetchTimeout bounds each outbound provider request.
	FetchTimeout time.Duration

	// CleanBatchLimit caps raw rows cleaned per run.
	CleanBatchLimit int

	// DailyGroupLimit caps (date, city) groups aggregated per run.
	DailyGroupLimit int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN renders the keyword/value connection string consumed by the
// postgres driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

const (
	defaultBaseURL     = "https://api.weatherapi.com/v1/current.json"
	defaultCities      = "Jakarta,Surabaya,Bandung,Medan,Semarang,Palembang,Makassar,Pekanbaru"
	defaultRawPath     = "data/raw"
	defaultMappingPath = "config/city_to_province.yaml"
)

// Load reads configuration from the environment (plus an optional .env
// file) and validates the settings every stage depends on. Missing
// database credentials are a configuration error: nothing is partially
// applied.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var missing []string
	for _, key := range []string{"POSTGRES_HOST", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB"} {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     getenvInt("POSTGRES_PORT", 5432),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Name:     os.Getenv("POSTGRES_DB"),
			SSLMode:  getenv("POSTGRES_SSLMODE", "disable"),
		},
		WeatherAPIKey:     os.Getenv("WEATHER_API_KEY"),
		WeatherAPIBaseURL: getenv("WEATHER_API_BASE_URL", defaultBaseURL),
		Cities:            splitList(getenv("CITIES", defaultCities)),
		RawDataPath:       getenv("RAW_DATA_PATH", defaultRawPath),
		CityMappingPath:   getenv("CITY_MAPPING_PATH", defaultMappingPath),
		ListenAddr:        getenv("LISTEN_ADDR", ":8080"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		CleanBatchLimit:   getenvInt("CLEAN_BATCH_LIMIT", 10000),
		DailyGroupLimit:   getenvInt("DAILY_GROUP_LIMIT", 10000),
		FetchTimeout:      getenvDuration("FETCH_TIMEOUT", 10*time.Second),
	}

	if v := os.Getenv("PIPELINE_INTERVAL"); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PIPELINE_INTERVAL: %w", err)
		}
		cfg.PipelineInterval = interval
	}

	return cfg, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
