package main

import (
	"os"
	"time"

	"github.com/fasthttp/router"
	"github.com/go-co-op/gocron"
	"github.com/valyala/fasthttp"

	"aqmon/internal/app"
	"aqmon/internal/config"
	"aqmon/internal/db"
	"aqmon/internal/http/handlers"
	"aqmon/internal/logging"
	"aqmon/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("pipeline", "info").Fatalf("failed to load configuration: %v", err)
	}

	log := logging.New("pipeline", cfg.LogLevel)

	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	runner := pipeline.NewRunner(app.BuildStages(cfg, gdb, log), log)

	if cfg.PipelineInterval > 0 {
		log.WithField("interval", cfg.PipelineInterval).Info("running pipeline on a schedule")

		// Stage metrics live in this process, so the scheduled pipeline
		// serves its own exposition endpoint.
		r := router.New()
		r.GET("/metrics", handlers.PrometheusMetricsHandler())
		go func() {
			log.WithField("addr", cfg.ListenAddr).Info("metrics endpoint listening")
			if err := fasthttp.ListenAndServe(cfg.ListenAddr, r.Handler); err != nil {
				log.Errorf("metrics server error: %v", err)
			}
		}()

		s := gocron.NewScheduler(time.UTC)
		if _, err := s.Every(cfg.PipelineInterval).Do(func() {
			runner.Run()
		}); err != nil {
			log.Fatalf("failed to schedule pipeline: %v", err)
		}
		s.StartBlocking()
		return
	}

	summary := runner.Run()
	if !summary.Success() {
		os.Exit(1)
	}
}
