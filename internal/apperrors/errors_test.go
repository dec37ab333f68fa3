package apperrors

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"unknown", errors.New("boom"), "internal"},
		{"plain sentinel", ErrSlippageExceeded, "slippage_exceeded"},
		{"wrapped sentinel", errors.Wrap(ErrTransferFailed, "asset.Transfer"), "transfer_failed"},
		{"below minimum a", errors.Wrapf(ErrBelowMinimumA, "implied %d", 1), "below_minimum_a"},
		{"below minimum b", errors.Wrap(ErrBelowMinimumB, "withdraw"), "below_minimum_b"},
		{"reentrant", ErrReentrant, "reentrant"},
		{"unauthorized", errors.Wrap(ErrUnauthorized, "reconcile"), "unauthorized"},
		{"unauthenticated", ErrUnauthenticated, "unauthenticated"},
		{"not configured", errors.Wrap(ErrNotConfigured, "faucet is disabled"), "not_configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestBelowMinimumHierarchy(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, ErrBelowMinimumA, ErrBelowMinimum)
	require.ErrorIs(t, ErrBelowMinimumB, ErrBelowMinimum)
	require.NotErrorIs(t, ErrBelowMinimumA, ErrBelowMinimumB)
}
