// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/edwinlov3tt/report-ai-sub000/cmd/reportai-api/handlers"
	"github.com/edwinlov3tt/report-ai-sub000/cmd/reportai-api/middleware"
	"github.com/edwinlov3tt/report-ai-sub000/internal/app"
)

// NewRouter creates the main API router with all routes configured.
func NewRouter(a *app.App) http.Handler {
	logger := a.Logger
	cfg := a.Config

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"report-ai"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if a.Store != nil {
			if err := a.Store.DB().PingContext(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.Write([]byte(`{"status":"ready"}`))
	})

	// Initialize handlers
	campaignHandler := handlers.NewCampaignHandler(logger, a.Lumina)
	analysisHandler := handlers.NewAnalysisHandler(logger, a.Pipeline)
	sectionsHandler := handlers.NewSectionsHandler(logger, a.Sections)
	aiHandler := handlers.NewAIHandler(logger, a.LLM)
	schemaHandler := handlers.NewSchemaHandler(logger, handlers.SchemaDeps{
		Schema:   a.Schema,
		Settings: a.Settings,
		Resolver: a.Resolver,
		Pipeline: a.Pipeline,
		Tables:   a.Tables,
	})

	// Campaign data
	r.Post("/lumina", campaignHandler.Lumina)
	r.Post("/tactics", campaignHandler.Tactics)

	// Report generation
	r.Post("/analyze", analysisHandler.Analyze)
	r.Get("/analyses/{id}", analysisHandler.Get)
	r.Get("/analyses/{id}/html", analysisHandler.HTML)

	// Configuration store
	r.HandleFunc("/schema-crud.php", schemaHandler.Legacy)
	r.Mount("/api/schema", schemaHandler.Routes())
	r.Handle("/sections.php", sectionsHandler)

	// Model harness
	r.Post("/ai-test.php", aiHandler.Test)
	r.Get("/models.php", aiHandler.Models)

	return r
}
