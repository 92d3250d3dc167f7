package polymer

import "errors"

// Contract violations: raised synchronously, kernel state unchanged, with
// one exception: Genome.BindPolymerase returns ErrEmptyTranscript after the
// walker has already been bound to the genome, and leaves it bound.
var (
	ErrNotFound            = errors.New("no free promoter of that name was found")
	ErrIncompatibleBinding = errors.New("polymerase does not interact with that promoter")
	ErrFootprintTooLarge   = errors.New("polymerase footprint is larger than the promoter it is binding to")
	ErrOverlapsMask        = errors.New("polymerase would overlap the mask upon binding")
	ErrAlreadyBound        = errors.New("polymerase is already present on this polymer")
	ErrNoActivity          = errors.New("polymer has zero move propensity")
	ErrEmptyTranscript     = errors.New("transcript template yielded no elements in the given range")
)

// ErrCorruption indicates an invariant was violated (a driver bug): a
// walker overlapped its neighbor or the mask by more than one position.
// Per spec this is fatal to the enclosing simulation; callers that need to
// isolate failures (simrun) should recover it at a goroutine boundary.
type ErrCorruption struct {
	Reason string
}

func (e *ErrCorruption) Error() string {
	return "polymer invariant corrupted: " + e.Reason
}
