package verifier

import (
	"context"
	"mailtrust/pkg/domain"
)

// Verifier coordinates validation requests: it persists them, schedules the
// background scoring work and exposes queries over stored results.
type Verifier interface {
	// Request stores a validation for a single address and schedules it for
	// scoring. When a fresh completed report already exists for the same
	// address, brand and DNS setting, the stored validation completes
	// immediately with that report.
	Request(ctx context.Context, userID domain.UserID, address, brand string, checkDNS bool) (*domain.Validation, error)
	// RequestFromText extracts every address from the free-form text and
	// stores one validation per distinct address, scheduling each one.
	RequestFromText(ctx context.Context,
		userID domain.UserID,
		text, brand string,
		checkDNS bool) ([]domain.Validation, error)
	// UserValidations returns a page of the user's validations, optionally
	// filtered by status, with an RFC3339 cursor for the next page.
	UserValidations(ctx context.Context,
		userID domain.UserID,
		status domain.ValidationStatus,
		cursor string,
		limit uint) ([]domain.Validation, string, error)
	// Result fetches a single validation by ID for the given user.
	Result(ctx context.Context, userID domain.UserID, id domain.ValidationID) (*domain.Validation, error)
	// Delete removes a validation belonging to the given user.
	Delete(ctx context.Context, userID domain.UserID, id domain.ValidationID) error
}
