package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"speaking-confidence-go/internal/api"
	"speaking-confidence-go/internal/engine"
	"speaking-confidence-go/internal/logger"
	"speaking-confidence-go/internal/scenario"
	"speaking-confidence-go/internal/signals"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "speaking-confidence-go").Info("starting service")

	// Marker dictionaries: built-in defaults, or a curated file.
	var markers *signals.Dictionary
	var err error
	if path := os.Getenv("MARKERS_PATH"); path != "" {
		log.WithField("markers_path", path).Info("loading marker dictionaries")
		markers, err = signals.LoadDictionary(path)
	} else {
		markers, err = signals.DefaultDictionary()
	}
	if err != nil {
		log.WithError(err).Fatal("failed to load marker dictionaries")
	}

	// Scenario library workbook. Optional for a pure scoring deployment.
	scenarios := map[string]scenario.Scenario{}
	scenarioPath := envOr("SCENARIO_PATH", "scenarios.xlsx")
	if list, err := scenario.Load(scenarioPath); err != nil {
		log.WithError(err).WithField("scenario_path", scenarioPath).
			Warn("scenario library not loaded, tier must come from requests")
	} else {
		scenarios = scenario.Index(list)
		log.WithField("scenarios", len(scenarios)).Info("scenario library loaded")
	}

	eng := engine.New(markers)
	h := api.NewHandler(eng, scenarios)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Info("health check")
		fmt.Fprint(w, "ok")
	})
	mux.HandleFunc("/score", h.Score)
	mux.HandleFunc("/scenarios", h.Scenarios)

	addr := fmt.Sprintf(":%s", envOr("PORT", "8080"))
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
