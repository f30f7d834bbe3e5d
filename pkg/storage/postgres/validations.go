package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"mailtrust/pkg/domain"
	"mailtrust/pkg/storage"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	validationsTable = "validations"
)

// keyConditions returns the where clauses selecting live rows for a
// deduplication key.
func keyConditions(key storage.ValidationKey) []goqu.Expression {
	return []goqu.Expression{
		goqu.I("address").Eq(key.Address),
		goqu.I("brand").Eq(key.Brand),
		goqu.I("check_dns").Eq(key.CheckDNS),
		goqu.I("deleted_at").IsNull(),
	}
}

func (p *PgSQL) StoreValidations(ctx context.Context, validations ...domain.Validation) ([]domain.Validation, error) {
	if len(validations) == 0 {
		return nil, nil
	}

	pgValidations, err := domainValidationsToPg(validations)
	if err != nil {
		return nil, err
	}

	var result []PgValidation
	if err := p.Builder.Insert(validationsTable).
		Rows(pgValidations).
		Returning(&PgValidation{}).
		Executor().ScanStructsContext(ctx, &result); err != nil {
		return nil, fmt.Errorf("could not store validations into pg: %w", err)
	}

	return pgValidationsToDomain(result)
}

// UpdatePendingValidationsByKey updates all pending validations matching the
// given key with the provided fields. Only non-nil fields from updates are
// set. Attempts is incremented by 1 and updated_at is set. When the target
// status is FAILED and MaxAttempts > 0, the status only flips once the
// incremented attempt count reaches MaxAttempts, otherwise the row stays
// pending so the queue can retry it.
func (p *PgSQL) UpdatePendingValidationsByKey(ctx context.Context,
	key storage.ValidationKey,
	updates storage.ValidationUpdates) error {
	rec := goqu.Record{
		"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		"attempts":   goqu.L("attempts + 1"),
		"status":     string(updates.Status),
	}
	if updates.Status == domain.ValidationStatusFailed && updates.MaxAttempts > 0 {
		rec["status"] = goqu.L("CASE WHEN attempts + 1 >= ? THEN ? ELSE ? END",
			updates.MaxAttempts,
			string(domain.ValidationStatusFailed),
			string(domain.ValidationStatusPending))
	}
	if updates.Report != nil {
		b, err := json.Marshal(updates.Report)
		if err != nil {
			return fmt.Errorf("could not marshal report: %w", err)
		}

		rec["report"] = b
	}
	if updates.LastError != nil {
		if *updates.LastError == "" {
			// set to NULL when empty string provided
			rec["last_error"] = goqu.L("NULL")
		} else {
			rec["last_error"] = *updates.LastError
		}
	}

	w := append(keyConditions(key), goqu.I("status").Eq(string(domain.ValidationStatusPending)))
	_, err := p.Builder.Update(validationsTable).
		Set(rec).Where(w...).Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not update pending validations by key in pg: %w", err)
	}

	return nil
}

// PendingValidationCountByKey counts live pending validations for the key
// across all users.
func (p *PgSQL) PendingValidationCountByKey(ctx context.Context, key storage.ValidationKey) (int64, error) {
	w := append(keyConditions(key), goqu.I("status").Eq(string(domain.ValidationStatusPending)))
	count, err := p.Builder.From(validationsTable).
		Where(w...).
		CountContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not count pending validations by key in pg: %w", err)
	}

	return count, nil
}

// UpdateValidationByID updates a single validation and returns the updated
// row, ignoring soft-deleted rows. Returns nil when the row does not exist.
func (p *PgSQL) UpdateValidationByID(ctx context.Context,
	id domain.ValidationID,
	updates storage.ValidationUpdates) (*domain.Validation, error) {
	rec := goqu.Record{
		"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		"status":     string(updates.Status),
	}
	if updates.Report != nil {
		b, err := json.Marshal(updates.Report)
		if err != nil {
			return nil, fmt.Errorf("could not marshal report: %w", err)
		}

		rec["report"] = b
	}
	if updates.LastError != nil {
		if *updates.LastError == "" {
			rec["last_error"] = goqu.L("NULL")
		} else {
			rec["last_error"] = *updates.LastError
		}
	}

	var row PgValidation
	found, err := p.Builder.Update(validationsTable).
		Set(rec).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgValidation{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update validation by id in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// DeleteValidation performs a soft delete by setting deleted_at timestamp
// for a given validation id and user, returning the deleted record.
func (p *PgSQL) DeleteValidation(ctx context.Context,
	userID domain.UserID,
	id domain.ValidationID) (*domain.Validation, error) {
	var row PgValidation
	found, err := p.Builder.Update(validationsTable).
		Set(goqu.Record{
			"deleted_at": goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("user_id").Eq(uuid.UUID(userID)),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgValidation{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not delete validation in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// UserValidations returns a list of validations for a user filtered by an
// optional status and cursor, limited by limit. Results are ordered by
// created_at DESC, id DESC. Returns a cursor for the next page when one
// exists.
func (p *PgSQL) UserValidations(ctx context.Context,
	userID domain.UserID,
	status domain.ValidationStatus,
	cursor time.Time,
	limit uint) (storage.UserValidations, error) {
	w := []goqu.Expression{
		goqu.I("user_id").Eq(uuid.UUID(userID)),
		goqu.I("deleted_at").IsNull(),
	}
	if status != "" {
		w = append(w, goqu.I("status").Eq(string(status)))
	}
	if !cursor.IsZero() {
		w = append(w, goqu.I("created_at").Lt(cursor))
	}

	// fetch one extra to determine if there is a next page
	fetch := limit + 1
	ds := p.Builder.From(validationsTable).
		Where(w...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(fetch)

	var rows []PgValidation
	if err := ds.Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.UserValidations{}, fmt.Errorf("could not fetch user validations from pg: %w", err)
	}

	// if we fetched more than the limit, there is a next page
	var nextCursor *time.Time
	if uint(len(rows)) > limit {
		trimmed := rows[:limit]
		nextCursor = &trimmed[len(trimmed)-1].CreatedAt
		rows = trimmed
	}

	domainRows, err := pgValidationsToDomain(rows)
	if err != nil {
		return storage.UserValidations{}, err
	}

	return storage.UserValidations{
		Validations: domainRows,
		NextCursor:  nextCursor,
	}, nil
}

// ValidationByID returns a validation by its ID, excluding soft-deleted rows.
func (p *PgSQL) ValidationByID(ctx context.Context,
	userID domain.UserID,
	id domain.ValidationID) (*domain.Validation, error) {
	var row PgValidation
	found, err := p.Builder.From(validationsTable).
		Where(
			goqu.I("id").Eq(uuid.UUID(id)),
			goqu.I("user_id").Eq(uuid.UUID(userID)),
			goqu.I("deleted_at").IsNull(),
		).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch validation by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// LastCompletedValidationByKey returns the most recent completed validation
// for the key across all users, or nil when none exists. Used to reuse a
// fresh report instead of scoring the same address again.
func (p *PgSQL) LastCompletedValidationByKey(ctx context.Context,
	key storage.ValidationKey) (*domain.Validation, error) {
	w := append(keyConditions(key), goqu.I("status").Eq(string(domain.ValidationStatusCompleted)))

	var row PgValidation
	found, err := p.Builder.From(validationsTable).
		Where(w...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(1).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch last completed validation by key: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}
