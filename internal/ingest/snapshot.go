package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"aqmon/internal/db"
)

// localtimeLayout is the provider's location.localtime format.
const localtimeLayout = "2006-01-02 15:04"

type airQualitySection struct {
	PM25       *float64 `json:"pm2_5"`
	PM10       *float64 `json:"pm10"`
	O3         *float64 `json:"o3"`
	NO2        *float64 `json:"no2"`
	SO2        *float64 `json:"so2"`
	CO         *float64 `json:"co"`
	USEPAIndex *int     `json:"us-epa-index"`
}

type snapshotPayload struct {
	Location *struct {
		Name      string `json:"name"`
		Localtime string `json:"localtime"`
	} `json:"location"`
	Current *struct {
		TempC      *float64           `json:"temp_c"`
		Humidity   *float64           `json:"humidity"`
		WindKph    *float64           `json:"wind_kph"`
		AirQuality *airQualitySection `json:"air_quality"`
	} `json:"current"`
}

// parseSnapshot validates a raw snapshot payload and extracts the fixed
// field set into a RawObservation. The original payload is kept
// verbatim. Missing numeric fields stay nil; a missing air_quality
// section leaves every pollutant nil. A payload without both top-level
// sections, without city/localtime, or with an unparseable localtime is
// invalid.
func parseSnapshot(payload []byte, fileName string) (*db.RawObservation, error) {
	var snap snapshotPayload
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if snap.Location == nil || snap.Current == nil {
		return nil, fmt.Errorf("missing location or current section")
	}
	if snap.Location.Name == "" || snap.Location.Localtime == "" {
		return nil, fmt.Errorf("missing city or timestamp")
	}

	ts, err := time.Parse(localtimeLayout, snap.Location.Localtime)
	if err != nil {
		return nil, fmt.Errorf("unparseable localtime %q: %w", snap.Location.Localtime, err)
	}

	obs := &db.RawObservation{
		City:        snap.Location.Name,
		Timestamp:   ts,
		Temperature: snap.Current.TempC,
		Humidity:    snap.Current.Humidity,
		WindSpeed:   snap.Current.WindKph,
		RawPayload:  datatypes.JSON(payload),
		FileName:    fileName,
	}

	if aq := snap.Current.AirQuality; aq != nil {
		obs.PM25 = aq.PM25
		obs.PM10 = aq.PM10
		obs.O3 = aq.O3
		obs.NO2 = aq.NO2
		obs.SO2 = aq.SO2
		obs.CO = aq.CO
		obs.USEPAIndex = aq.USEPAIndex
	}

	return obs, nil
}
