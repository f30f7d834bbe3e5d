package serrors_test

import (
	"errors"
	"fmt"
	"mailtrust/pkg/serrors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithMatchesKind(t *testing.T) {
	err := serrors.With(serrors.ErrNotFound, "validation %s not found", "abc")

	require.ErrorIs(t, err, serrors.ErrNotFound)
	require.NotErrorIs(t, err, serrors.ErrBadRequest)
	require.Equal(t, "validation abc not found", err.Error())
}

func TestWrapMatchesKindAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := serrors.Wrap(serrors.ErrUnavailable, cause, "could not reach resolver")

	require.ErrorIs(t, err, serrors.ErrUnavailable)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "could not reach resolver: connection refused", err.Error())
	require.Equal(t, cause, err.Cause())
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", serrors.KindOnly(serrors.ErrConflict))
	require.ErrorIs(t, err, serrors.ErrConflict)
}

func TestKindOnlyError(t *testing.T) {
	err := serrors.KindOnly(serrors.ErrTimeout)
	require.Equal(t, "TIMEOUT", err.Error())
	require.Equal(t, serrors.ErrTimeout, err.Kind())
}

func TestAsFindsWrappedType(t *testing.T) {
	type myErr struct{ error }
	inner := &myErr{errors.New("boom")}
	err := serrors.Wrap(serrors.ErrInternal, inner, "wrapped")

	var target *myErr
	require.ErrorAs(t, err, &target)
	require.Equal(t, inner, target)
}
