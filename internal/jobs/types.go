package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/statement-ledger/internal/domain"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeProcessStatement represents a statement processing job.
	JobTypeProcessStatement JobType = "process_statement"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
	// JobStatusSkipped indicates the job finished without work to do.
	JobStatusSkipped JobStatus = "skipped"
)

// ProcessStatementJob represents a job to process one statement from the inbox.
type ProcessStatementJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// File is the statement in the document store.
	File domain.StatementFile `json:"file"`

	// Transactions is the number of ledger rows appended by the job.
	Transactions int `json:"transactions"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *ProcessStatementJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *ProcessStatementJob) GetType() JobType {
	return JobTypeProcessStatement
}

// GetStatus implements the Job interface.
func (j *ProcessStatementJob) GetStatus() JobStatus {
	return j.Status
}

// IsFinal reports whether the job will not run again.
func (j *ProcessStatementJob) IsFinal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed || j.Status == JobStatusSkipped
}

// Publisher defines the interface for publishing jobs to a queue.
// This abstraction allows for different queue implementations (in-memory, Cloud Tasks, Pub/Sub).
type Publisher interface {
	// PublishProcessStatement publishes a statement processing job.
	PublishProcessStatement(ctx context.Context, job *ProcessStatementJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
// This abstraction allows for different queue implementations (in-memory, Cloud Tasks, Pub/Sub).
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// It should return an error if the job failed and should be retried.
// An error wrapping ErrPermanent fails the job without retries.
type JobHandler func(ctx context.Context, job *ProcessStatementJob) error

// ErrPermanent marks handler errors that retrying cannot fix.
var ErrPermanent = errors.New("permanent job failure")

// ErrSkipped marks a job that had nothing to do.
var ErrSkipped = errors.New("job skipped")

// JobStore defines the interface for storing and retrieving job status.
// This allows tracking job execution across service restarts.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ProcessStatementJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ProcessStatementJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ProcessStatementJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// FileID filters jobs by statement file ID.
	FileID string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}

var _ Job = (*ProcessStatementJob)(nil)

// IsActive reports whether a job is queued, running or waiting for a retry.
func IsActive(job *ProcessStatementJob) bool {
	return !job.IsFinal()
}

// EnqueueFiles publishes one job per file, leaving out files that already
// have an active job in store. It returns the number of jobs published.
func EnqueueFiles(ctx context.Context, pub Publisher, store JobStore, files []domain.StatementFile, maxRetries int) (int, error) {
	published := 0
	for _, file := range files {
		existing, err := store.ListJobs(ctx, JobFilter{FileID: file.ID})
		if err != nil {
			return published, fmt.Errorf("EnqueueFiles: list jobs: %w", err)
		}
		active := false
		for _, j := range existing {
			if IsActive(j) {
				active = true
				break
			}
		}
		if active {
			continue
		}

		if err := pub.PublishProcessStatement(ctx, &ProcessStatementJob{File: file, MaxRetries: maxRetries}); err != nil {
			return published, fmt.Errorf("EnqueueFiles: publish %s: %w", file.Name, err)
		}
		published++
	}
	return published, nil
}

// PendingLister lists statements waiting in the inbox.
type PendingLister interface {
	ListPending(ctx context.Context) ([]domain.StatementFile, error)
}

// ScanResult reports one inbox scan.
type ScanResult struct {
	Pending  int `json:"pending"`
	Enqueued int `json:"enqueued"`
}

// Scan lists pending statements and enqueues the ones without an active job.
func Scan(ctx context.Context, lister PendingLister, pub Publisher, store JobStore, maxRetries int) (ScanResult, error) {
	files, err := lister.ListPending(ctx)
	if err != nil {
		return ScanResult{}, fmt.Errorf("Scan: %w", err)
	}
	n, err := EnqueueFiles(ctx, pub, store, files, maxRetries)
	res := ScanResult{Pending: len(files), Enqueued: n}
	if err != nil {
		return res, fmt.Errorf("Scan: %w", err)
	}
	return res, nil
}
