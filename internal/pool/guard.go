package pool

import (
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fleshka4/ammpool/internal/apperrors"
)

// guard is set for the duration of one state-mutating call.
type guard struct {
	busy atomic.Bool
}

func (g *guard) enter() bool {
	return g.busy.CompareAndSwap(false, true)
}

func (g *guard) exit() {
	g.busy.Store(false)
}

// Journal is implemented by state holders that can undo changes made after a
// checkpoint.
type Journal interface {
	Checkpoint() int
	RevertTo(id int)
	Commit()
}

// transferError marks a failure of the external asset capability while
// keeping the original cause reachable through Unwrap.
type transferError struct {
	op    string
	asset common.Address
	cause error
}

func (e *transferError) Error() string {
	return apperrors.ErrTransferFailed.Error() + ": " + e.op + " " + e.asset.Hex() + ": " + e.cause.Error()
}

func (e *transferError) Is(target error) bool {
	return target == apperrors.ErrTransferFailed
}

func (e *transferError) Unwrap() error {
	return e.cause
}
