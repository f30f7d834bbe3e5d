package storage

import (
	"context"
	"mailtrust/pkg/domain"
	"mailtrust/pkg/emailcheck"
	"time"
)

// ValidationKey identifies the unit of deduplicated scoring work: every
// pending validation with the same key is satisfied by one engine run.
type ValidationKey struct {
	// Address is the normalized candidate address.
	Address string
	// Brand is the expected organization name, empty for none.
	Brand string
	// CheckDNS is whether mail-routing capability is part of the scoring.
	CheckDNS bool
}

// ValidationUpdates describes optional fields applied to existing
// validations during an update. Only provided fields are changed.
type ValidationUpdates struct {
	// Status is the new status to set.
	Status domain.ValidationStatus
	// Report, when provided, replaces the stored scoring report.
	Report *emailcheck.ValidationReport
	// LastError, when provided, sets the last error text. An empty string
	// clears it (sets NULL).
	LastError *string
	// MaxAttempts, when provided alongside a Failed status, ensures the
	// status only flips to Failed once the incremented attempt count
	// reaches this threshold. A value <= 0 disables the guard.
	MaxAttempts int
}

// UserValidations groups a page of validations with an optional cursor for
// fetching the next page.
type UserValidations struct {
	Validations []domain.Validation
	// NextCursor is the timestamp cursor of the next page, nil when there
	// is no next page.
	NextCursor *time.Time
}

// ValidationStorage defines CRUD and query operations for validation
// requests. Implementations handle soft deletes and must be idempotent
// where applicable.
type ValidationStorage interface {
	// StoreValidations inserts one or more validations and returns the
	// stored rows as they exist in the database, generated fields included.
	StoreValidations(ctx context.Context, validations ...domain.Validation) ([]domain.Validation, error)
	// UpdatePendingValidationsByKey updates all pending validations for the
	// given key. Attempts is incremented by 1 and updated_at is set
	// automatically. If Status is Failed and MaxAttempts > 0, status only
	// flips to Failed when the incremented attempts reach MaxAttempts;
	// otherwise it stays Pending.
	UpdatePendingValidationsByKey(ctx context.Context, key ValidationKey, updates ValidationUpdates) error
	// PendingValidationCountByKey returns the number of pending validations
	// for the key across all users, excluding soft-deleted rows.
	PendingValidationCountByKey(ctx context.Context, key ValidationKey) (int64, error)
	// UpdateValidationByID updates a single validation and returns the
	// updated row, ignoring soft-deleted rows.
	UpdateValidationByID(ctx context.Context,
		id domain.ValidationID,
		updates ValidationUpdates) (*domain.Validation, error)
	// DeleteValidation soft-deletes the validation for the given user and
	// returns it, or nil when not found.
	DeleteValidation(ctx context.Context, userID domain.UserID, id domain.ValidationID) (*domain.Validation, error)
	// UserValidations returns a page of a user's validations created before
	// the optional cursor time. If status is non-empty, results are
	// filtered to it.
	UserValidations(ctx context.Context,
		userID domain.UserID,
		status domain.ValidationStatus,
		cursor time.Time,
		limit uint) (UserValidations, error)
	// ValidationByID fetches a validation by ID for the given user,
	// excluding soft-deleted rows. Returns nil when not found.
	ValidationByID(ctx context.Context, userID domain.UserID, id domain.ValidationID) (*domain.Validation, error)
	// LastCompletedValidationByKey returns the most recent completed
	// validation for the key across all users, or nil when none exists.
	LastCompletedValidationByKey(ctx context.Context, key ValidationKey) (*domain.Validation, error)
}
