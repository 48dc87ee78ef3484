package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route (ingestion + autofill progress events)
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Jobs (scored cross-pipeline listing)
	mux.HandleFunc("/api/jobs", s.app.JobsHandler.ListHandler)

	// API routes - Pipeline
	mux.HandleFunc("/api/pipeline/stats", s.app.PipelineHandler.StatsHandler)
	mux.HandleFunc("/api/pipeline/all", s.app.PipelineHandler.ListHandler("all"))
	mux.HandleFunc("/api/pipeline/new", s.app.PipelineHandler.ListHandler("new"))
	mux.HandleFunc("/api/pipeline/active", s.app.PipelineHandler.ListHandler("active"))
	mux.HandleFunc("/api/pipeline/archive", s.app.PipelineHandler.ListHandler("archive"))
	mux.HandleFunc("/api/pipeline/job/", s.app.PipelineHandler.JobHandler) // GET /{id}
	mux.HandleFunc("/api/pipeline/add", s.app.PipelineHandler.AddHandler)
	mux.HandleFunc("/api/pipeline/status", s.app.PipelineHandler.StatusHandler)
	mux.HandleFunc("/api/pipeline/remove/", s.app.PipelineHandler.RemoveHandler) // DELETE /{id}
	mux.HandleFunc("/api/pipeline/unreject", s.app.PipelineHandler.UnrejectHandler)

	// API routes - Ingestion
	mux.HandleFunc("/api/companies", s.app.CompaniesHandler.ListHandler)
	mux.HandleFunc("/api/ingest/trigger", s.app.IngestHandler.TriggerHandler)
	mux.HandleFunc("/api/ingest/status", s.app.IngestHandler.StatusHandler)

	// API routes - Autofill
	mux.HandleFunc("/api/autofill/run", s.app.AutofillHandler.RunHandler)
	mux.HandleFunc("/api/autofill/sessions", s.app.SessionsHandler.ListHandler)
	mux.HandleFunc("/api/autofill/session/", s.app.SessionsHandler.GetHandler) // GET /{id}

	// API routes - Documents
	mux.HandleFunc("/api/docs/coverletter", s.app.DocsHandler.CoverLetterHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	// Unprefixed aliases for CLI and curl use
	mux.HandleFunc("/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/jobs", s.app.JobsHandler.ListHandler)
	mux.HandleFunc("/companies", s.app.CompaniesHandler.ListHandler)
	mux.HandleFunc("/pipeline/stats", s.app.PipelineHandler.StatsHandler)
	mux.HandleFunc("/pipeline/all", s.app.PipelineHandler.ListHandler("all"))
	mux.HandleFunc("/pipeline/new", s.app.PipelineHandler.ListHandler("new"))
	mux.HandleFunc("/pipeline/active", s.app.PipelineHandler.ListHandler("active"))
	mux.HandleFunc("/pipeline/archive", s.app.PipelineHandler.ListHandler("archive"))
	mux.HandleFunc("/pipeline/job/", s.app.PipelineHandler.JobHandler)
	mux.HandleFunc("/pipeline/add", s.app.PipelineHandler.AddHandler)
	mux.HandleFunc("/pipeline/status", s.app.PipelineHandler.StatusHandler)
	mux.HandleFunc("/pipeline/remove/", s.app.PipelineHandler.RemoveHandler)
	mux.HandleFunc("/pipeline/unreject", s.app.PipelineHandler.UnrejectHandler)

	return mux
}
