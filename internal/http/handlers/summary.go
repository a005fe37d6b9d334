package handlers

import (
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	dbpkg "aqmon/internal/db"
)

type citySummaryResponse struct {
	City           string  `json:"city"`
	Province       string  `json:"province"`
	PM25Yearly     float64 `json:"pm25_yearly"`
	PM10Yearly     float64 `json:"pm10_yearly"`
	AQIYearly      float64 `json:"aqi_yearly"`
	TempYearly     float64 `json:"temp_yearly"`
	HumidityYearly float64 `json:"humidity_yearly"`
	Prevalence2023 float64 `json:"prevalence_2023"`
	UpdatedAt      string  `json:"updated_at"`
}

// SummaryHandler serves the final joined table consumed by the
// visualization front end. Read-only, no transformation.
func SummaryHandler(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var rows []dbpkg.CitySummary
		if err := db.Order("city").Find(&rows).Error; err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("database error")
			return
		}

		resp := make([]citySummaryResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, citySummaryResponse{
				City:           r.City,
				Province:       r.Province,
				PM25Yearly:     r.PM25Yearly,
				PM10Yearly:     r.PM10Yearly,
				AQIYearly:      r.AQIYearly,
				TempYearly:     r.TempYearly,
				HumidityYearly: r.HumidityYearly,
				Prevalence2023: r.Prevalence2023,
				UpdatedAt:      r.UpdatedAt.Format(time.RFC3339),
			})
		}

		ctx.SetContentType("application/json")
		body, _ := json.Marshal(resp)
		ctx.SetBody(body)
	}
}

type dailyMetricsResponse struct {
	Date        string   `json:"date"`
	City        string   `json:"city"`
	PM25Avg     *float64 `json:"pm25_avg"`
	PM10Avg     *float64 `json:"pm10_avg"`
	AQIAvg      *float64 `json:"aqi_avg"`
	TempAvg     *float64 `json:"temp_avg"`
	HumidityAvg *float64 `json:"humidity_avg"`
}

// DailyHandler serves the raw per-city daily metrics view.
func DailyHandler(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		city := string(ctx.QueryArgs().Peek("city"))
		if city == "" {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			ctx.SetBodyString("missing city query parameter")
			return
		}

		var rows []dbpkg.DailyAggregate
		if err := db.Where("city = ?", city).Order("date").Find(&rows).Error; err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("database error")
			return
		}

		resp := make([]dailyMetricsResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, dailyMetricsResponse{
				Date:        r.Date.Format("2006-01-02"),
				City:        r.City,
				PM25Avg:     r.PM25Avg,
				PM10Avg:     r.PM10Avg,
				AQIAvg:      r.AQIAvg,
				TempAvg:     r.TempAvg,
				HumidityAvg: r.HumidityAvg,
			})
		}

		ctx.SetContentType("application/json")
		body, _ := json.Marshal(resp)
		ctx.SetBody(body)
	}
}
