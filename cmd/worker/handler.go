package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/statement-ledger/internal/docstore"
	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/jobs"
	"github.com/dvloznov/statement-ledger/internal/logger"
	"github.com/dvloznov/statement-ledger/internal/pipeline"
	"github.com/dvloznov/statement-ledger/internal/statement"
	"github.com/dvloznov/statement-ledger/internal/statementfile"
)

type statementProcessor interface {
	ProcessStatement(ctx context.Context, file domain.StatementFile) (*pipeline.PipelineState, error)
}

// classifyError maps a pipeline error onto the queue's retry semantics.
func classifyError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pipeline.ErrSkipStatement):
		return fmt.Errorf("%w: %v", jobs.ErrSkipped, err)
	case errors.Is(err, statement.ErrMarkerNotFound), errors.Is(err, statementfile.ErrNoYear),
		errors.Is(err, docstore.ErrExists):
		return fmt.Errorf("%w: %v", jobs.ErrPermanent, err)
	default:
		return err
	}
}

func newHandler(p statementProcessor) jobs.JobHandler {
	return func(ctx context.Context, job *jobs.ProcessStatementJob) error {
		log := logger.FromContext(ctx).With().
			Str("job_id", job.JobID).
			Str("file", job.File.Name).
			Logger()

		log.Info().Int("retry", job.RetryCount).Msg("Processing statement job")

		state, err := p.ProcessStatement(logger.WithContext(ctx, log), job.File)
		if state != nil {
			job.Transactions = state.Appended
		}
		if err = classifyError(err); err != nil {
			if !errors.Is(err, jobs.ErrSkipped) {
				log.Error().Err(err).Msg("Statement job failed")
			}
			return err
		}

		log.Info().Int("transactions", job.Transactions).Msg("Statement job completed")
		return nil
	}
}
