package polymer

// ElementType distinguishes the three kinds of fixed sites a Polymer can
// carry. Masks are modeled as a distinguished Element so that the same
// Intersects/Cover bookkeeping applies uniformly to them.
type ElementType int

const (
	Promoter ElementType = iota
	Terminator
	MaskType
)

func (t ElementType) String() string {
	switch t {
	case Promoter:
		return "promoter"
	case Terminator:
		return "terminator"
	case MaskType:
		return "mask"
	default:
		return "unknown"
	}
}

// TerminatorParams holds the per-walker-name interaction parameters a
// terminator carries, e.g. the probability it actually terminates a given
// walker rather than letting it read through.
type TerminatorParams struct {
	Efficiency float64
}

// Element is an immobile site on a Polymer: a promoter, terminator, or the
// mask. Covering is reference-counted: Cover/Uncover track how many
// overlapping occluders (walkers, the mask) currently intersect it.
type Element struct {
	Name  string
	Type  ElementType
	Start int
	Stop  int

	// Interactions lists, for a promoter or mask, the walker names allowed
	// to bind/push it; for a terminator, a name -> efficiency/params table.
	// Promoters and masks only consult presence in this map; terminators
	// also read TerminatorParams.
	Interactions map[string]TerminatorParams

	// Gene is the gene name a terminator is associated with, set when the
	// terminator is constructed as part of a transcript (spec.md §4.2).
	// Empty for promoters and the mask.
	Gene string

	// ReadingFrame lets a terminator require its reading frame to match a
	// walker's before termination is even considered (spec.md §4.1.5,
	// "optional refinement"). Zero means "no constraint" when combined with
	// the default TerminationPredicate.
	ReadingFrame int

	// Readthrough is a terminator's sticky "failed-termination" memory: once
	// a termination draw fails, it stays true across consecutive overlapping
	// frames and is reset only when the terminator is fully uncovered (see
	// spec.md §4.1.4). It is not reset by a different walker entering before
	// full uncovering completes — this mirrors the original implementation's
	// behavior exactly (see DESIGN.md, open question 3) and is a real
	// (if surprising) source of cross-walker readthrough inheritance.
	Readthrough bool

	covered    int
	oldCovered int
}

// Interacts reports whether the given walker name may bind/terminate/push
// this element.
func (e *Element) Interacts(walkerName string) bool {
	_, ok := e.Interactions[walkerName]
	return ok
}

// Cover increments the covering reference count.
func (e *Element) Cover() {
	e.covered++
}

// Uncover decrements the covering reference count, saturating at 0. A
// negative count would indicate invariant corruption by an unbalanced
// Cover/Uncover pairing; the kernel never calls Uncover more often than a
// matching Cover, so this saturates defensively rather than panicking. No
// caller checks for or reports such an imbalance.
func (e *Element) Uncover() {
	if e.covered > 0 {
		e.covered--
	}
}

// Covered reports the current covering reference count.
func (e *Element) Covered() int {
	return e.covered
}

// IsCovered reports whether the element currently has any occluder.
func (e *Element) IsCovered() bool {
	return e.covered > 0
}

// SaveState snapshots the current covering count for the edge detector to
// compare against after the next Cover/Uncover sequence.
func (e *Element) SaveState() {
	e.oldCovered = e.covered
}

// WasCovered reports a 0 -> >=1 covering transition since the last SaveState.
func (e *Element) WasCovered() bool {
	return e.oldCovered == 0 && e.covered >= 1
}

// WasUncovered reports a >=1 -> 0 covering transition since the last SaveState.
func (e *Element) WasUncovered() bool {
	return e.oldCovered >= 1 && e.covered == 0
}

// Intersects reports whether two intervals overlap, using the half/fully
// inclusive rule from spec.md §3: a.Stop >= b.Start && b.Stop >= a.Start.
func Intersects(aStart, aStop, bStart, bStop int) bool {
	return aStop >= bStart && bStop >= aStart
}

// Polymerase is a mobile walker occupying a contiguous footprint of a
// Polymer track.
type Polymerase struct {
	Name      string
	Speed     float64
	Footprint int

	Start int
	Stop  int

	Attached     bool
	LastGene     string
	ReadingFrame int

	// MoveSignal fires after a successful, collision-free move. Genome wires
	// it to the child Transcript's ShiftMask so the transcript's mask
	// retreats in lockstep with the parent walker (spec.md §4.2).
	MoveSignal Signal0

	// ReleaseSignal fires with the terminator's stop position when this
	// walker terminates, letting a subscribed child Transcript roll its mask
	// forward to that position (spec.md §9 supplemented feature; named
	// `release_signal` in the original implementation's tests).
	ReleaseSignal SignalInt
}

// NewPolymerase returns an unbound walker. Start/Stop are meaningless until
// BindPolymerase sets them.
func NewPolymerase(name string, speed float64, footprint int) *Polymerase {
	return &Polymerase{
		Name:      name,
		Speed:     speed,
		Footprint: footprint,
		Attached:  true,
	}
}

// Move advances both endpoints by one position.
func (p *Polymerase) Move() {
	p.Start++
	p.Stop++
}

// MoveBack rolls both endpoints back by one position.
func (p *Polymerase) MoveBack() {
	p.Start--
	p.Stop--
}

// Mask is the distinguished element hiding the right-hand, not-yet-
// accessible territory of a Polymer. Recede advances Start toward Stop and
// never past it.
type Mask struct {
	Element
}

// NewMask constructs a mask spanning [start, stop], with the given walker
// names whitelisted to push it back.
func NewMask(start, stop int, pushers []string) *Mask {
	interactions := make(map[string]TerminatorParams, len(pushers))
	for _, name := range pushers {
		interactions[name] = TerminatorParams{}
	}
	return &Mask{Element: Element{
		Name:         "mask",
		Type:         MaskType,
		Start:        start,
		Stop:         stop,
		Interactions: interactions,
	}}
}

// Recede advances the mask's start by one position, never past Stop.
func (m *Mask) Recede() {
	if m.Start < m.Stop {
		m.Start++
	}
}

// NewPromoter constructs a promoter element whose Interactions whitelist is
// the given walker names (no per-name parameters needed).
func NewPromoter(name string, start, stop int, walkers []string) *Element {
	interactions := make(map[string]TerminatorParams, len(walkers))
	for _, w := range walkers {
		interactions[w] = TerminatorParams{}
	}
	return &Element{
		Name:         name,
		Type:         Promoter,
		Start:        start,
		Stop:         stop,
		Interactions: interactions,
	}
}

// NewTerminator constructs a terminator element with per-walker-name
// termination efficiencies.
func NewTerminator(name string, start, stop int, interactions map[string]TerminatorParams) *Element {
	return &Element{
		Name:         name,
		Type:         Terminator,
		Start:        start,
		Stop:         stop,
		Interactions: interactions,
	}
}
