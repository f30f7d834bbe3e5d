package worker

import (
	"context"
	"fmt"
	"mailtrust/internal/verifier"
	"mailtrust/pkg/domain"
	"mailtrust/pkg/emailcheck"
	"mailtrust/pkg/logger"
	"mailtrust/pkg/storage"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// AddressVerifierWorker is a River worker that scores candidate addresses
// with the emailcheck engine and records the report on every pending
// validation sharing the job's key.
//
// The engine treats malformed addresses and unreachable domains as data, so
// a job only fails when storage itself fails. In that case the pending
// validations record the error and only flip to FAILED once the attempt
// count reaches maxAttempts, letting River retry in between.
type AddressVerifierWorker struct {
	river.WorkerDefaults[verifier.JobArgs]

	// storage persists the scoring outcome onto pending validations.
	storage storage.ValidationStorage
	// checker is the scoring engine used to produce reports.
	checker *emailcheck.Checker
	// maxAttempts bounds how often a validation is retried before it is
	// marked failed.
	maxAttempts int
}

// NewAddressVerifierWorker constructs an AddressVerifierWorker using the
// provided storage and scoring engine.
func NewAddressVerifierWorker(st storage.ValidationStorage,
	checker *emailcheck.Checker,
	maxAttempts int) *AddressVerifierWorker {
	return &AddressVerifierWorker{
		storage:     st,
		checker:     checker,
		maxAttempts: maxAttempts,
	}
}

// Work executes a single validation job. When no pending validation remains
// for the key (all were deleted or already satisfied), the job completes
// without scoring.
func (a *AddressVerifierWorker) Work(ctx context.Context, job *river.Job[verifier.JobArgs]) error {
	ctx = logger.WithFields(ctx, zap.Int64("jobID", job.ID), zap.String("address", job.Args.Address))

	key := storage.ValidationKey{
		Address:  job.Args.Address,
		Brand:    job.Args.Brand,
		CheckDNS: job.Args.CheckDNS,
	}

	pending, err := a.storage.PendingValidationCountByKey(ctx, key)
	if err != nil {
		logger.Error(ctx, "error counting pending validations", zap.Error(err))

		return fmt.Errorf("could not count pending validations: %w", err)
	}
	if pending == 0 {
		logger.Info(ctx, "no pending validations for key, skipping")

		return nil
	}

	report := a.checker.Validate(ctx, job.Args.Address, job.Args.Brand, job.Args.CheckDNS)

	noError := ""
	if err := a.storage.UpdatePendingValidationsByKey(ctx, key, storage.ValidationUpdates{
		Status:    domain.ValidationStatusCompleted,
		Report:    &report,
		LastError: &noError,
	}); err != nil {
		logger.Error(ctx, "error recording validation report", zap.Error(err))

		// record the failure so the validation eventually flips to FAILED
		// once retries are exhausted. best effort: storage may still be down.
		failure := err.Error()
		if uerr := a.storage.UpdatePendingValidationsByKey(ctx, key, storage.ValidationUpdates{
			Status:      domain.ValidationStatusFailed,
			LastError:   &failure,
			MaxAttempts: a.maxAttempts,
		}); uerr != nil {
			logger.Error(ctx, "error recording validation failure", zap.Error(uerr))
		}

		return fmt.Errorf("could not record validation report: %w", err)
	}

	logger.Info(ctx, "address validated successfully", zap.Float64("score", report.Score))

	return nil
}
