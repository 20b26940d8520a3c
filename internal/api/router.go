// Package api wires configuration, collaborator clients, the orchestrator,
// and stores into the HTTP surface.
package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/geolens/geolens/internal/agent"
	"github.com/geolens/geolens/internal/api/handlers"
	mw "github.com/geolens/geolens/internal/api/middleware"
	"github.com/geolens/geolens/internal/config"
	"github.com/geolens/geolens/internal/domain"
	"github.com/geolens/geolens/internal/geoclip"
	"github.com/geolens/geolens/internal/llm"
	"github.com/geolens/geolens/internal/store"
	"github.com/geolens/geolens/internal/tools"
	"github.com/geolens/geolens/internal/vlm"
)

// App holds the router plus metrics state for lifecycle management.
type App struct {
	Router *chi.Mux

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewApp builds the full application. db may be nil, which disables run
// persistence and the local cell index but leaves the pipeline functional.
func NewApp(db *pgxpool.Pool, logger *zap.Logger) (*App, error) {
	vlmClient, err := vlm.NewClient(config.VLMProvider(), config.VLMAPIKey())
	if err != nil {
		return nil, err
	}
	logger.Info("vision client initialized", zap.String("provider", config.VLMProvider()))

	llmClient, err := llm.NewClient(config.LLMProvider(), config.LLMAPIKey())
	if err != nil {
		return nil, err
	}
	logger.Info("language model client initialized", zap.String("provider", config.LLMProvider()))

	var cellIndex geoclip.CellSearcher
	if db != nil {
		cellIndex = store.NewCellIndex(db)
	}
	retrievalCache := geoclip.NewCache(config.CacheTTL(), 2*config.CacheTTL())
	retrievalClient, err := geoclip.NewRetrievalClient(
		config.RetrievalProvider(), config.GeoCLIPURL(), retrievalCache, cellIndex)
	if err != nil {
		return nil, err
	}
	logger.Info("retrieval client initialized", zap.String("provider", config.RetrievalProvider()))

	geocoder := tools.NewOSMClient(config.NominatimURL(), config.OverpassURL(), config.CacheTTL())

	locator := agent.New(vlmClient, llmClient, retrievalClient, geocoder, agent.Options{
		MaxIterations:       config.MaxIterations(),
		ConfidenceThreshold: config.ConfidenceThreshold(),
		TopK:                config.TopK(),
		EnableTopology:      config.EnableTopology(),
	}, logger)

	// With a database the coarse city grid backs a second retrieval pass,
	// hedging against a wrong fine-grained hypothesis.
	if cellIndex != nil && config.GeoCLIPURL() != "" {
		embedder := geoclip.NewClient(config.GeoCLIPURL(), retrievalCache)
		locator.SetCoarseRetrieval(geoclip.NewIndexRetriever(embedder, cellIndex, store.GranularityCity))
	}

	var (
		runSaver  handlers.RunSaver
		runReader handlers.RunReader
	)
	if db != nil {
		runStore := store.NewRunStore(db)
		runSaver = runStore
		runReader = runStore
	}

	locateHandler := handlers.NewLocateHandler(locator, runSaver, logger)
	runHandler := handlers.NewRunHandler(runReader)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/locate", locateHandler.Locate)
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", runHandler.List)
			r.Get("/{id}", runHandler.GetByID)
		})
	})

	return app, nil
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure clients and stores satisfy interfaces at compile time.
var (
	_ domain.VisionClient    = (*vlm.OpenAIClient)(nil)
	_ domain.VisionClient    = (*vlm.AnthropicClient)(nil)
	_ domain.VisionClient    = (*vlm.MockClient)(nil)
	_ domain.LLMClient       = (*llm.OpenAIClient)(nil)
	_ domain.LLMClient       = (*llm.AnthropicClient)(nil)
	_ domain.LLMClient       = (*llm.MockClient)(nil)
	_ domain.RetrievalClient = (*geoclip.Client)(nil)
	_ domain.RetrievalClient = (*geoclip.IndexRetriever)(nil)
	_ domain.RetrievalClient = (*geoclip.MockClient)(nil)
	_ domain.Geocoder        = (*tools.OSMClient)(nil)
	_ geoclip.CellSearcher   = (*store.CellIndex)(nil)
	_ handlers.Locator       = (*agent.Agent)(nil)
	_ handlers.RunSaver      = (*store.RunStore)(nil)
	_ handlers.RunReader     = (*store.RunStore)(nil)
)
