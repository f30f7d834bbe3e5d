package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"mailtrust/pkg/domain"
	"mailtrust/pkg/emailcheck"
	"time"

	"github.com/google/uuid"
)

type PgValidation struct {
	ID     uuid.UUID `db:"id"      goqu:"skipinsert"`
	UserID uuid.UUID `db:"user_id"`

	Address  string          `db:"address"`
	Brand    string          `db:"brand"`
	CheckDNS bool            `db:"check_dns"`
	Status   string          `db:"status"`
	Report   json.RawMessage `db:"report" goqu:"skipinsert"`

	Attempts  uint           `db:"attempts"   goqu:"skipinsert"`
	LastError sql.NullString `db:"last_error" goqu:"skipinsert"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
	DeletedAt sql.NullTime `db:"deleted_at" goqu:"skipinsert"`
}

func (p *PgValidation) ToDomain() (*domain.Validation, error) {
	var report emailcheck.ValidationReport
	if err := json.Unmarshal(p.Report, &report); err != nil {
		return nil, fmt.Errorf("could not unmarshal validation report: %w", err)
	}

	return &domain.Validation{
		ID:        domain.ValidationID(p.ID),
		UserID:    domain.UserID(p.UserID),
		Address:   p.Address,
		Brand:     p.Brand,
		CheckDNS:  p.CheckDNS,
		Status:    domain.ValidationStatus(p.Status),
		Report:    report,
		Attempts:  p.Attempts,
		LastError: p.LastError.String,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt.Time,
		DeletedAt: p.DeletedAt.Time,
	}, nil
}

func (p *PgValidation) FromDomain(validation domain.Validation) error {
	report, err := json.Marshal(validation.Report)
	if err != nil {
		return fmt.Errorf("could not marshal validation report: %w", err)
	}

	*p = PgValidation{
		ID:       uuid.UUID(validation.ID),
		UserID:   uuid.UUID(validation.UserID),
		Address:  validation.Address,
		Brand:    validation.Brand,
		CheckDNS: validation.CheckDNS,
		Status:   string(validation.Status),
		Report:   report,
		Attempts: validation.Attempts,
		LastError: sql.NullString{
			String: validation.LastError,
			Valid:  validation.LastError != "",
		},
		CreatedAt: validation.CreatedAt,
		UpdatedAt: sql.NullTime{
			Time:  validation.UpdatedAt,
			Valid: !validation.UpdatedAt.IsZero(),
		},
		DeletedAt: sql.NullTime{
			Time:  validation.DeletedAt,
			Valid: !validation.DeletedAt.IsZero(),
		},
	}

	return nil
}

func domainValidationsToPg(validations []domain.Validation) ([]PgValidation, error) {
	out := make([]PgValidation, len(validations))
	for i := range out {
		if err := out[i].FromDomain(validations[i]); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func pgValidationsToDomain(validations []PgValidation) ([]domain.Validation, error) {
	out := make([]domain.Validation, 0, len(validations))
	for _, validation := range validations {
		d, err := validation.ToDomain()
		if err != nil {
			return nil, err
		}

		out = append(out, *d)
	}

	return out, nil
}
