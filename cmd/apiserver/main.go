package main

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"aqmon/internal/config"
	"aqmon/internal/db"
	"aqmon/internal/http/handlers"
	"aqmon/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("apiserver", "info").Fatalf("failed to load configuration: %v", err)
	}

	log := logging.New("apiserver", cfg.LogLevel)

	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	r := router.New()

	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})

	r.GET("/v1/summary", handlers.SummaryHandler(gdb))
	r.GET("/v1/daily", handlers.DailyHandler(gdb))
	r.GET("/metrics", handlers.PrometheusMetricsHandler())

	log.WithField("addr", cfg.ListenAddr).Info("apiserver listening")
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, r.Handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
