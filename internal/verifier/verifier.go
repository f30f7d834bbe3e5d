package verifier

import (
	"context"
	"fmt"
	"mailtrust/internal/config"
	"mailtrust/pkg/domain"
	"mailtrust/pkg/emailcheck"
	"mailtrust/pkg/serrors"
	"mailtrust/pkg/storage"
	"strings"
	"time"
)

// Options configure how validation jobs are enqueued and how completed
// reports are reused. These settings are typically derived from application
// configuration.
type Options struct {
	// MaxAttempts is the maximum number of attempts the background worker should
	// make when processing a validation job before marking it failed.
	MaxAttempts int
	// ResultCacheTTL is the duration during which a completed report makes new
	// requests for the same address, brand and DNS setting reuse that report
	// instead of enqueueing a duplicate job.
	ResultCacheTTL time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		MaxAttempts:    cfg.Verifier.MaxAttempts,
		ResultCacheTTL: cfg.Verifier.ResultCacheTTL,
	}
}

// verifier is the concrete implementation of the Verifier interface.
// It coordinates persistence with the storage layer and job enqueueing.
type verifier struct {
	// options holds runtime configuration that affects enqueueing and reuse.
	options Options
	// storage is the persistence layer used to store validations and manage jobs.
	storage storage.Storage
}

// enqueue stores one pending validation and schedules its job inside the
// given transaction. When the job already exists and a completed report is
// available for the key, the stored validation completes immediately.
func (v verifier) enqueue(ctx context.Context,
	tx storage.AllStorage,
	userID domain.UserID,
	address, brand string,
	checkDNS bool) (*domain.Validation, error) {
	res, err := tx.StoreValidations(ctx, domain.Validation{
		UserID:   userID,
		Address:  address,
		Brand:    brand,
		CheckDNS: checkDNS,
		Status:   domain.ValidationStatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("could not store validation: %w", err)
	}
	validation := &res[0]

	jobAdded, err := tx.AddJob(ctx, JobArgs{
		Address:         address,
		Brand:           brand,
		CheckDNS:        checkDNS,
		maxAttempts:     v.options.MaxAttempts,
		uniqueJobPeriod: v.options.ResultCacheTTL,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("could not add job: %w", err)
	}

	// if a job was not added, it means that another job already exists for
	// this key. river unique jobs prevent duplicate work for the same address.
	if !jobAdded {
		// if the existing job already completed, reuse its report for the
		// new validation instead of waiting for the queue.
		key := storage.ValidationKey{Address: address, Brand: brand, CheckDNS: checkDNS}
		lastResult, err := tx.LastCompletedValidationByKey(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("could not get last completed validation: %w", err)
		}

		if lastResult != nil {
			updated, err := tx.UpdateValidationByID(ctx, validation.ID, storage.ValidationUpdates{
				Status: domain.ValidationStatusCompleted,
				Report: &lastResult.Report,
			})
			if err != nil {
				return nil, fmt.Errorf("could not update validation: %w", err)
			}
			validation = updated
		} // else: the job is in the queue and will be processed soon.
		// The worker updates all pending validations by key upon completion.
	}

	return validation, nil
}

// Request stores a new validation for the given address and user, and
// attempts to enqueue a background job to score it.
func (v verifier) Request(ctx context.Context,
	userID domain.UserID,
	address, brand string,
	checkDNS bool) (*domain.Validation, error) {
	address, err := NormalizeAddress(address)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid address")
	}
	brand = strings.TrimSpace(brand)

	var validation *domain.Validation
	if err := v.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		validation, err = v.enqueue(ctx, tx, userID, address, brand, checkDNS)

		return err
	}); err != nil {
		return nil, fmt.Errorf("could not enqueue address: %w", err)
	}

	return validation, nil
}

// RequestFromText extracts every address from the given text and stores one
// pending validation per distinct address, all within a single transaction.
// Texts without any address produce an empty result rather than an error.
func (v verifier) RequestFromText(ctx context.Context,
	userID domain.UserID,
	text, brand string,
	checkDNS bool) ([]domain.Validation, error) {
	addresses := emailcheck.Extract(text)
	if len(addresses) == 0 {
		return []domain.Validation{}, nil
	}
	brand = strings.TrimSpace(brand)

	validations := make([]domain.Validation, 0, len(addresses))
	if err := v.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		for _, address := range addresses {
			validation, err := v.enqueue(ctx, tx, userID, address, brand, checkDNS)
			if err != nil {
				return err
			}

			validations = append(validations, *validation)
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not enqueue extracted addresses: %w", err)
	}

	return validations, nil
}

// UserValidations returns a page of validations for the given user filtered
// by status. It supports cursor-based pagination using an RFC3339 timestamp
// string and returns the next cursor when more results are available.
func (v verifier) UserValidations(ctx context.Context,
	userID domain.UserID,
	status domain.ValidationStatus,
	cursor string,
	limit uint) ([]domain.Validation, string, error) {
	var cursorTime time.Time
	if cursor != "" {
		t, err := time.Parse(time.RFC3339, cursor)
		if err != nil {
			return nil, "", serrors.Wrap(serrors.ErrBadRequest, err, "invalid cursor")
		}
		cursorTime = t
	}

	page, err := v.storage.UserValidations(ctx, userID, status, cursorTime, limit)
	if err != nil {
		return nil, "", fmt.Errorf("could not get user validations: %w", err)
	}

	var next string
	if page.NextCursor != nil {
		next = page.NextCursor.Format(time.RFC3339)
	}

	return page.Validations, next, nil
}

// Result fetches a single validation by ID for the given user. It returns a
// not-found error when no matching validation exists.
func (v verifier) Result(ctx context.Context,
	userID domain.UserID,
	id domain.ValidationID) (*domain.Validation, error) {
	res, err := v.storage.ValidationByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("could not get validation result: %w", err)
	}
	if res == nil {
		return nil, serrors.With(serrors.ErrNotFound, "validation not found")
	}

	return res, nil
}

// Delete removes a validation belonging to the given user. If the validation
// does not exist, a not-found error is returned. Jobs are not cancelled here
// because other pending validations may still depend on the same key job.
func (v verifier) Delete(ctx context.Context, userID domain.UserID, id domain.ValidationID) error {
	res, err := v.storage.DeleteValidation(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("could not delete validation: %w", err)
	}
	if res == nil {
		return serrors.With(serrors.ErrNotFound, "validation not found")
	}

	// we don't delete jobs from the queue here because there might be other
	// validations depending on the job. the worker makes sure there are still
	// pending validations for the key before scoring.

	return nil
}

// New creates a new Verifier instance backed by the provided storage and
// configured with the given options.
func New(storage storage.Storage, options Options) Verifier {
	return &verifier{
		options: options,
		storage: storage,
	}
}
