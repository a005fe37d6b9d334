package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setDBEnv(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_USER", "aq_user")
	t.Setenv("POSTGRES_PASSWORD", "aq_pass")
	t.Setenv("POSTGRES_DB", "aq_db")
}

func TestLoadMissingCredentials(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_USER", "")
	t.Setenv("POSTGRES_PASSWORD", "")
	t.Setenv("POSTGRES_DB", "aq_db")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_USER")
	assert.Contains(t, err.Error(), "POSTGRES_PASSWORD")
}

func TestLoadDefaults(t *testing.T) {
	setDBEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, defaultBaseURL, cfg.WeatherAPIBaseURL)
	assert.Equal(t, defaultRawPath, cfg.RawDataPath)
	assert.Equal(t, 10000, cfg.CleanBatchLimit)
	assert.Equal(t, 10000, cfg.DailyGroupLimit)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Zero(t, cfg.PipelineInterval)
	assert.NotEmpty(t, cfg.Cities)
}

func TestLoadCityList(t *testing.T) {
	setDBEnv(t)
	t.Setenv("CITIES", " Jakarta , Surabaya ,,Bandung")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Jakarta", "Surabaya", "Bandung"}, cfg.Cities)
}

func TestLoadPipelineInterval(t *testing.T) {
	setDBEnv(t)
	t.Setenv("PIPELINE_INTERVAL", "1h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.PipelineInterval)

	t.Setenv("PIPELINE_INTERVAL", "often")
	_, err = Load()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "aq",
		Password: "secret",
		Name:     "airquality",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=db.internal port=5433 user=aq password=secret dbname=airquality sslmode=disable",
		d.DSN())
}
