package apperrors

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is returned when the request parameters are invalid.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInsufficientLiquidity is returned when a reserve needed for a ratio
	// computation is zero.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrInsufficientAmount is returned when a required input amount is zero.
	ErrInsufficientAmount = errors.New("insufficient amount")

	// ErrBelowMinimum is the parent of ErrBelowMinimumA and ErrBelowMinimumB.
	ErrBelowMinimum = errors.New("below minimum")

	// ErrBelowMinimumA is returned when the computed amount of asset A is under
	// the caller-supplied floor.
	ErrBelowMinimumA = errors.Wrap(ErrBelowMinimum, "amount A")

	// ErrBelowMinimumB is returned when the computed amount of asset B is under
	// the caller-supplied floor.
	ErrBelowMinimumB = errors.Wrap(ErrBelowMinimum, "amount B")

	// ErrConstraintViolation is returned when no deposit split satisfies both
	// desired amounts.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrSlippageExceeded is returned when a swap output is below its floor.
	ErrSlippageExceeded = errors.New("slippage exceeded")

	// ErrDeadlineExpired is returned when a call arrives after its deadline.
	ErrDeadlineExpired = errors.New("deadline expired")

	// ErrInvalidPath is returned for a swap path whose length is not 2 or for
	// a pair made of identical assets.
	ErrInvalidPath = errors.New("invalid path")

	// ErrTransferFailed is returned when the external asset capability fails.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrUnderflow is returned when a ledger decrease exceeds the tracked value.
	ErrUnderflow = errors.New("underflow")

	// ErrOverflow is returned when an amount does not fit in 256 bits.
	ErrOverflow = errors.New("overflow")

	// ErrReentrant is returned when a state-mutating call is made while another
	// one is in flight.
	ErrReentrant = errors.New("reentrant call")

	// ErrUnauthorized is returned for an owner-gated call from a non-owner.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnauthenticated is returned when a request carries no valid credential.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotConfigured is returned when a call needs a feature this deployment
	// does not enable.
	ErrNotConfigured = errors.New("not configured")
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidArgument, "invalid_argument"},
	{ErrInsufficientLiquidity, "insufficient_liquidity"},
	{ErrInsufficientAmount, "insufficient_amount"},
	{ErrBelowMinimumA, "below_minimum_a"},
	{ErrBelowMinimumB, "below_minimum_b"},
	{ErrConstraintViolation, "constraint_violation"},
	{ErrSlippageExceeded, "slippage_exceeded"},
	{ErrDeadlineExpired, "deadline_expired"},
	{ErrInvalidPath, "invalid_path"},
	{ErrTransferFailed, "transfer_failed"},
	{ErrUnderflow, "underflow"},
	{ErrOverflow, "overflow"},
	{ErrReentrant, "reentrant"},
	{ErrUnauthorized, "unauthorized"},
	{ErrUnauthenticated, "unauthenticated"},
	{ErrNotConfigured, "not_configured"},
}

// Kind returns a stable code for err, or "internal" when err does not belong
// to the taxonomy. Kind(nil) is "".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}
