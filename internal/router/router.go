package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/koereq/docpipeline/internal/handlers"
	"github.com/koereq/docpipeline/internal/middleware"
	"github.com/koereq/docpipeline/internal/utils"
)

func New(analysisHandler *handlers.AnalysisHandler, sessionHandler *handlers.SessionHandler, promptHandler *handlers.PromptHandler, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Recovery(logger))

	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	// Analysis pipeline
	api.HandleFunc("/analyses", analysisHandler.Analyze).Methods(http.MethodPost)

	// Session records
	api.HandleFunc("/sessions", sessionHandler.ListSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions", sessionHandler.SaveSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", sessionHandler.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", sessionHandler.DeleteSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/qr", sessionHandler.MarkQRExported).Methods(http.MethodPost)

	// Prompt templates
	api.HandleFunc("/prompts", promptHandler.ListPrompts).Methods(http.MethodGet)
	api.HandleFunc("/prompts", promptHandler.SavePrompt).Methods(http.MethodPost)
	api.HandleFunc("/prompts/{id}", promptHandler.DeletePrompt).Methods(http.MethodDelete)

	return r
}
