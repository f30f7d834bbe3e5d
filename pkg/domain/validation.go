package domain

import (
	"time"

	"github.com/google/uuid"

	"mailtrust/pkg/emailcheck"
)

// ValidationID uniquely identifies a validation request.
// It wraps uuid.UUID to provide type safety at the domain layer.
type ValidationID uuid.UUID

// ValidationStatus represents the lifecycle state of a validation request.
type ValidationStatus string

const (
	// ValidationStatusPending indicates the request has been enqueued but not scored yet.
	ValidationStatusPending ValidationStatus = "PENDING"
	// ValidationStatusCompleted indicates scoring finished and a report is available.
	ValidationStatusCompleted ValidationStatus = "COMPLETED"
	// ValidationStatusFailed indicates scoring could not be completed; see LastError and Attempts.
	ValidationStatusFailed ValidationStatus = "FAILED"
)

// Validation represents a single address validation request and its current
// state. The report is the engine output described in pkg/emailcheck; a DNS
// failure still produces a COMPLETED validation whose report simply says the
// domain does not exist.
type Validation struct {
	// ID is the unique identifier of the validation request.
	ID ValidationID `json:"id"`
	// UserID is the identifier of the user who requested the validation.
	UserID UserID `json:"userId"`

	// Address is the normalized candidate address being scored.
	Address string `json:"address"`
	// Brand is the expected organization name, empty when none was supplied.
	Brand string `json:"brand,omitempty"`
	// CheckDNS records whether mail-routing capability is part of the scoring.
	CheckDNS bool `json:"checkDns"`

	// Status is the current lifecycle state of the request.
	Status ValidationStatus `json:"status"`
	// Report contains the trust scoring outcome once the request completes.
	Report emailcheck.ValidationReport `json:"report"`

	// Attempts is the number of times the system has tried to score this request.
	Attempts uint `json:"attempts"`
	// LastError stores the most recent infrastructure error, if any.
	LastError string `json:"-"`

	// CreatedAt is the time when the request was created.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the time when the request last changed.
	UpdatedAt time.Time `json:"updatedAt"`
	// DeletedAt marks when the request was soft-deleted; zero means not deleted.
	DeletedAt time.Time `json:"-"`
}
