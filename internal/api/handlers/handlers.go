package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/statement-ledger/internal/api/middleware"
	"github.com/dvloznov/statement-ledger/internal/domain"
	infraBQ "github.com/dvloznov/statement-ledger/internal/infra/bigquery"
	"github.com/dvloznov/statement-ledger/internal/jobs"
	"github.com/dvloznov/statement-ledger/internal/logger"
	"github.com/dvloznov/statement-ledger/internal/pdftext"
	"github.com/dvloznov/statement-ledger/internal/statement"
)

// MaxPreviewBytes caps the PDF body accepted by Preview.
const MaxPreviewBytes = 20 << 20

// StatementsHandler handles statement-related endpoints.
type StatementsHandler struct {
	source     jobs.PendingLister
	publisher  jobs.Publisher
	store      jobs.JobStore
	maxRetries int
	extractor  pdftext.Extractor
	parser     *statement.Parser
}

// NewStatementsHandler creates a new statements handler.
func NewStatementsHandler(source jobs.PendingLister, publisher jobs.Publisher, store jobs.JobStore, maxRetries int, extractor pdftext.Extractor, parser *statement.Parser) *StatementsHandler {
	return &StatementsHandler{
		source:     source,
		publisher:  publisher,
		store:      store,
		maxRetries: maxRetries,
		extractor:  extractor,
		parser:     parser,
	}
}

// ListPending handles GET /api/statements
func (h *StatementsHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	files, err := h.source.ListPending(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list pending statements")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list pending statements")
		return
	}
	if files == nil {
		files = []domain.StatementFile{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"statements": files,
		"count":      len(files),
	})
}

// Scan handles POST /api/statements/scan
func (h *StatementsHandler) Scan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	res, err := jobs.Scan(ctx, h.source, h.publisher, h.store, h.maxRetries)
	if err != nil {
		log.Error().Err(err).Msg("Failed to scan inbox")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to scan inbox")
		return
	}

	log.Info().Int("pending", res.Pending).Int("enqueued", res.Enqueued).Msg("Inbox scan requested")
	middleware.WriteJSON(w, http.StatusAccepted, res)
}

type previewResponse struct {
	OpeningBalance float64              `json:"opening_balance"`
	ClosingBalance float64              `json:"closing_balance"`
	Transactions   []domain.Transaction `json:"transactions"`
	Skipped        int                  `json:"skipped"`
}

// Preview handles POST /api/statements/preview?year=YYYY. The body is the
// statement PDF; nothing is written to the ledger.
func (h *StatementsHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1000 || year > 9999 {
		middleware.WriteError(w, http.StatusBadRequest, "year must be a four digit number")
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxPreviewBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Statement too large")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	lines, err := h.extractor.Lines(ctx, data)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to extract statement text")
		middleware.WriteError(w, http.StatusUnprocessableEntity, "Body is not a readable PDF")
		return
	}

	res, err := h.parser.Parse(lines, strconv.Itoa(year))
	if err != nil {
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	txs := res.Transactions
	if txs == nil {
		txs = []domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, previewResponse{
		OpeningBalance: res.Opening.Value,
		ClosingBalance: res.Closing.Value,
		Transactions:   txs,
		Skipped:        res.Skipped,
	})
}

// TransactionQuerier reads mirrored ledger transactions.
type TransactionQuerier interface {
	QueryTransactions(ctx context.Context, start, end civil.Date) ([]*infraBQ.TransactionRow, error)
}

// TransactionsHandler handles transaction-related endpoints.
type TransactionsHandler struct {
	repo TransactionQuerier
	now  func() time.Time
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(repo TransactionQuerier) *TransactionsHandler {
	return &TransactionsHandler{repo: repo, now: time.Now}
}

type transactionResponse struct {
	TransactionID string `json:"transaction_id"`
	ParsingRunID  string `json:"parsing_run_id"`
	FileName      string `json:"file_name"`
	SpreadsheetID string `json:"spreadsheet_id"`
	Date          string `json:"date"`
	Amount        string `json:"amount"`
	Direction     string `json:"direction"`
	Name          string `json:"name"`
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	// Parse query parameters
	query := r.URL.Query()
	now := h.now()
	startDate := civil.DateOf(now.AddDate(-1, 0, 0)) // 1 year ago
	endDate := civil.DateOf(now)

	if s := query.Get("start_date"); s != "" {
		d, err := civil.ParseDate(s)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid start_date format")
			return
		}
		startDate = d
	}

	if s := query.Get("end_date"); s != "" {
		d, err := civil.ParseDate(s)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid end_date format")
			return
		}
		endDate = d
	}

	if endDate.Before(startDate) {
		middleware.WriteError(w, http.StatusBadRequest, "end_date is before start_date")
		return
	}

	rows, err := h.repo.QueryTransactions(ctx, startDate, endDate)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query transactions")
		return
	}

	// Return array directly for frontend compatibility
	out := make([]transactionResponse, 0, len(rows))
	for _, row := range rows {
		amount := ""
		if row.Amount != nil {
			amount = row.Amount.FloatString(2)
		}
		out = append(out, transactionResponse{
			TransactionID: row.TransactionID,
			ParsingRunID:  row.ParsingRunID,
			FileName:      row.FileName,
			SpreadsheetID: row.SpreadsheetID,
			Date:          row.TransactionDate.String(),
			Amount:        amount,
			Direction:     row.Direction,
			Name:          row.Name,
		})
	}
	middleware.WriteJSON(w, http.StatusOK, out)
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore) *JobsHandler {
	return &JobsHandler{store: store}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		log.Warn().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	// Parse query parameters
	query := r.URL.Query()
	filter := jobs.JobFilter{
		FileID: query.Get("file_id"),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
