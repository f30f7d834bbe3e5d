package verifier_test

import (
	"context"
	"errors"
	"mailtrust/internal/verifier"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/stretchr/testify/require"

	"mailtrust/pkg/domain"
	"mailtrust/pkg/emailcheck"
	"mailtrust/pkg/serrors"
	"mailtrust/pkg/storage"
)

// fakeStorage implements storage.Storage with configurable function fields.
// WithTx simply runs the callback against the fake itself, mirroring the
// transactional contract without a database.
type fakeStorage struct {
	storeValidations   func(ctx context.Context, validations ...domain.Validation) ([]domain.Validation, error)
	addJob             func(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error)
	lastCompletedByKey func(ctx context.Context, key storage.ValidationKey) (*domain.Validation, error)
	updateByID         func(ctx context.Context,
		id domain.ValidationID,
		updates storage.ValidationUpdates) (*domain.Validation, error)
	deleteValidation func(ctx context.Context,
		userID domain.UserID,
		id domain.ValidationID) (*domain.Validation, error)
	userValidations func(ctx context.Context,
		userID domain.UserID,
		status domain.ValidationStatus,
		cursor time.Time,
		limit uint) (storage.UserValidations, error)
	validationByID func(ctx context.Context,
		userID domain.UserID,
		id domain.ValidationID) (*domain.Validation, error)

	addedJobs []river.JobArgs
}

func (f *fakeStorage) StoreValidations(ctx context.Context,
	validations ...domain.Validation) ([]domain.Validation, error) {
	if f.storeValidations != nil {
		return f.storeValidations(ctx, validations...)
	}

	// default: echo back with generated IDs, like the database would
	out := make([]domain.Validation, len(validations))
	copy(out, validations)
	for i := range out {
		out[i].ID = domain.ValidationID(uuid.New())
		out[i].CreatedAt = time.Now()
	}

	return out, nil
}

func (f *fakeStorage) UpdatePendingValidationsByKey(context.Context,
	storage.ValidationKey, storage.ValidationUpdates) error {
	return nil
}

func (f *fakeStorage) PendingValidationCountByKey(context.Context, storage.ValidationKey) (int64, error) {
	return 0, nil
}

func (f *fakeStorage) UpdateValidationByID(ctx context.Context,
	id domain.ValidationID,
	updates storage.ValidationUpdates) (*domain.Validation, error) {
	if f.updateByID != nil {
		return f.updateByID(ctx, id, updates)
	}

	return nil, nil
}

func (f *fakeStorage) DeleteValidation(ctx context.Context,
	userID domain.UserID,
	id domain.ValidationID) (*domain.Validation, error) {
	if f.deleteValidation != nil {
		return f.deleteValidation(ctx, userID, id)
	}

	return nil, nil
}

func (f *fakeStorage) UserValidations(ctx context.Context,
	userID domain.UserID,
	status domain.ValidationStatus,
	cursor time.Time,
	limit uint) (storage.UserValidations, error) {
	if f.userValidations != nil {
		return f.userValidations(ctx, userID, status, cursor, limit)
	}

	return storage.UserValidations{}, nil
}

func (f *fakeStorage) ValidationByID(ctx context.Context,
	userID domain.UserID,
	id domain.ValidationID) (*domain.Validation, error) {
	if f.validationByID != nil {
		return f.validationByID(ctx, userID, id)
	}

	return nil, nil
}

func (f *fakeStorage) LastCompletedValidationByKey(ctx context.Context,
	key storage.ValidationKey) (*domain.Validation, error) {
	if f.lastCompletedByKey != nil {
		return f.lastCompletedByKey(ctx, key)
	}

	return nil, nil
}

func (f *fakeStorage) AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error) {
	f.addedJobs = append(f.addedJobs, args)
	if f.addJob != nil {
		return f.addJob(ctx, args, opts)
	}

	return true, nil
}

func (f *fakeStorage) Close() error { return nil }

func (f *fakeStorage) Begin(context.Context) (storage.TxStorage, error) {
	return nil, errors.New("not supported in fake")
}

func (f *fakeStorage) WithTx(ctx context.Context, cb func(storage storage.AllStorage) error) error {
	return cb(f)
}

func newTestVerifier(st storage.Storage) verifier.Verifier {
	return verifier.New(st, verifier.Options{MaxAttempts: 3, ResultCacheTTL: time.Hour})
}

func TestVerifier_Request_JobAdded(t *testing.T) {
	t.Parallel()

	st := &fakeStorage{}
	v := newTestVerifier(st)

	validation, err := v.Request(context.Background(), domain.UserID(uuid.New()), "  Contact@Sony.COM ", "Sony", true)
	require.NoError(t, err)
	require.NotNil(t, validation)
	require.Equal(t, "contact@sony.com", validation.Address)
	require.Equal(t, "Sony", validation.Brand)
	require.True(t, validation.CheckDNS)
	require.Equal(t, domain.ValidationStatusPending, validation.Status)

	require.Len(t, st.addedJobs, 1)
	args, ok := st.addedJobs[0].(verifier.JobArgs)
	require.True(t, ok)
	require.Equal(t, "contact@sony.com", args.Address)
	require.Equal(t, "Sony", args.Brand)
	require.True(t, args.CheckDNS)
}

func TestVerifier_Request_EmptyAddress(t *testing.T) {
	t.Parallel()

	v := newTestVerifier(&fakeStorage{})

	_, err := v.Request(context.Background(), domain.UserID(uuid.New()), "   ", "", true)
	require.Error(t, err)
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestVerifier_Request_ReusesCompletedReport(t *testing.T) {
	t.Parallel()

	report := emailcheck.ValidationReport{IsValid: true, Score: 0.92}
	st := &fakeStorage{
		addJob: func(context.Context, river.JobArgs, *river.InsertOpts) (bool, error) {
			// duplicate job, nothing inserted
			return false, nil
		},
		lastCompletedByKey: func(_ context.Context, key storage.ValidationKey) (*domain.Validation, error) {
			require.Equal(t, "contact@sony.com", key.Address)

			return &domain.Validation{Status: domain.ValidationStatusCompleted, Report: report}, nil
		},
		updateByID: func(_ context.Context,
			id domain.ValidationID,
			updates storage.ValidationUpdates) (*domain.Validation, error) {
			require.Equal(t, domain.ValidationStatusCompleted, updates.Status)
			require.NotNil(t, updates.Report)

			return &domain.Validation{
				ID:     id,
				Status: domain.ValidationStatusCompleted,
				Report: *updates.Report,
			}, nil
		},
	}
	v := newTestVerifier(st)

	validation, err := v.Request(context.Background(), domain.UserID(uuid.New()), "contact@sony.com", "", true)
	require.NoError(t, err)
	require.Equal(t, domain.ValidationStatusCompleted, validation.Status)
	require.InDelta(t, 0.92, validation.Report.Score, 1e-9)
}

func TestVerifier_Request_DuplicateJobStillPending(t *testing.T) {
	t.Parallel()

	st := &fakeStorage{
		addJob: func(context.Context, river.JobArgs, *river.InsertOpts) (bool, error) {
			return false, nil
		},
		// no completed validation for the key yet
	}
	v := newTestVerifier(st)

	validation, err := v.Request(context.Background(), domain.UserID(uuid.New()), "contact@sony.com", "", true)
	require.NoError(t, err)
	require.Equal(t, domain.ValidationStatusPending, validation.Status)
}

func TestVerifier_RequestFromText(t *testing.T) {
	t.Parallel()

	st := &fakeStorage{}
	v := newTestVerifier(st)

	text := "Reach us at Support@Example.com or sales@example.com, again support@example.com."
	validations, err := v.RequestFromText(context.Background(), domain.UserID(uuid.New()), text, "Example", false)
	require.NoError(t, err)
	require.Len(t, validations, 2)
	require.Equal(t, "support@example.com", validations[0].Address)
	require.Equal(t, "sales@example.com", validations[1].Address)
	for _, validation := range validations {
		require.Equal(t, "Example", validation.Brand)
		require.False(t, validation.CheckDNS)
		require.Equal(t, domain.ValidationStatusPending, validation.Status)
	}
	require.Len(t, st.addedJobs, 2)
}

func TestVerifier_RequestFromText_NoAddresses(t *testing.T) {
	t.Parallel()

	st := &fakeStorage{}
	v := newTestVerifier(st)

	validations, err := v.RequestFromText(context.Background(), domain.UserID(uuid.New()), "no addresses here", "", true)
	require.NoError(t, err)
	require.Empty(t, validations)
	require.Empty(t, st.addedJobs)
}

func TestVerifier_UserValidations_CursorHandling(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)
	st := &fakeStorage{
		userValidations: func(_ context.Context,
			_ domain.UserID,
			status domain.ValidationStatus,
			cursor time.Time,
			_ uint) (storage.UserValidations, error) {
			require.Equal(t, domain.ValidationStatusCompleted, status)
			require.True(t, cursor.Equal(now))

			next := now.Add(-time.Hour)

			return storage.UserValidations{
				Validations: []domain.Validation{{Address: "a@b.co"}},
				NextCursor:  &next,
			}, nil
		},
	}
	v := newTestVerifier(st)

	validations, next, err := v.UserValidations(context.Background(),
		domain.UserID(uuid.New()),
		domain.ValidationStatusCompleted,
		now.Format(time.RFC3339),
		10)
	require.NoError(t, err)
	require.Len(t, validations, 1)
	require.Equal(t, now.Add(-time.Hour).Format(time.RFC3339), next)

	// invalid cursor is a bad request
	_, _, err = v.UserValidations(context.Background(),
		domain.UserID(uuid.New()),
		"",
		"not-a-timestamp",
		10)
	require.Error(t, err)
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestVerifier_Result(t *testing.T) {
	t.Parallel()

	id := domain.ValidationID(uuid.New())
	st := &fakeStorage{
		validationByID: func(_ context.Context,
			_ domain.UserID,
			got domain.ValidationID) (*domain.Validation, error) {
			if got == id {
				return &domain.Validation{ID: id, Status: domain.ValidationStatusCompleted}, nil
			}

			return nil, nil
		},
	}
	v := newTestVerifier(st)

	res, err := v.Result(context.Background(), domain.UserID(uuid.New()), id)
	require.NoError(t, err)
	require.Equal(t, id, res.ID)

	_, err = v.Result(context.Background(), domain.UserID(uuid.New()), domain.ValidationID(uuid.New()))
	require.Error(t, err)
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestVerifier_Delete(t *testing.T) {
	t.Parallel()

	id := domain.ValidationID(uuid.New())
	st := &fakeStorage{
		deleteValidation: func(_ context.Context,
			_ domain.UserID,
			got domain.ValidationID) (*domain.Validation, error) {
			if got == id {
				return &domain.Validation{ID: id}, nil
			}

			return nil, nil
		},
	}
	v := newTestVerifier(st)

	require.NoError(t, v.Delete(context.Background(), domain.UserID(uuid.New()), id))

	err := v.Delete(context.Background(), domain.UserID(uuid.New()), domain.ValidationID(uuid.New()))
	require.Error(t, err)
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestVerifier_Request_StorageError(t *testing.T) {
	t.Parallel()

	st := &fakeStorage{
		storeValidations: func(context.Context, ...domain.Validation) ([]domain.Validation, error) {
			return nil, errors.New("pg down")
		},
	}
	v := newTestVerifier(st)

	_, err := v.Request(context.Background(), domain.UserID(uuid.New()), "a@b.co", "", true)
	require.Error(t, err)
	require.Contains(t, err.Error(), "pg down")
}
