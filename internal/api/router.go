// Package api exposes the worker's job queue and statement inbox over HTTP.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/dvloznov/statement-ledger/internal/api/handlers"
	"github.com/dvloznov/statement-ledger/internal/api/middleware"
	"github.com/dvloznov/statement-ledger/internal/jobs"
	"github.com/dvloznov/statement-ledger/internal/pdftext"
	"github.com/dvloznov/statement-ledger/internal/statement"
	"github.com/rs/zerolog"
)

// Deps are the collaborators served by the API. Transactions may be nil,
// in which case /api/transactions is not registered.
type Deps struct {
	Source       jobs.PendingLister
	Publisher    jobs.Publisher
	JobStore     jobs.JobStore
	MaxRetries   int
	Extractor    pdftext.Extractor
	Parser       *statement.Parser
	Transactions handlers.TransactionQuerier
	Token        string
}

func method(m string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != m {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}

// NewHandler builds the HTTP handler with the middleware chain applied.
func NewHandler(d Deps, log zerolog.Logger) http.Handler {
	statementsHandler := handlers.NewStatementsHandler(d.Source, d.Publisher, d.JobStore, d.MaxRetries, d.Extractor, d.Parser)
	jobsHandler := handlers.NewJobsHandler(d.JobStore)

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/api/statements", method(http.MethodGet, statementsHandler.ListPending))
	apiMux.HandleFunc("/api/statements/scan", method(http.MethodPost, statementsHandler.Scan))
	apiMux.HandleFunc("/api/statements/preview", method(http.MethodPost, statementsHandler.Preview))
	apiMux.HandleFunc("/api/jobs", method(http.MethodGet, jobsHandler.ListJobs))
	apiMux.HandleFunc("/api/jobs/", method(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		jobsHandler.GetJob(w, r, jobID)
	}))
	if d.Transactions != nil {
		apiMux.HandleFunc("/api/transactions", method(http.MethodGet, handlers.NewTransactionsHandler(d.Transactions).ListTransactions))
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", middleware.Auth(d.Token)(apiMux))

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(mux),
		),
	)
}

// NewServer wraps handler in an http.Server with the usual timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
}
