// Package polymer implements the single-molecule tracking kernel shared by
// transcription (genomes) and translation (transcripts): an ordered list of
// walkers moving along a 1-D track of fixed elements, with reference-counted
// covering, collision resolution, and event signalling. See SPEC_FULL.md.
package polymer

// TerminationPredicate decides whether a walker is even eligible to attempt
// termination at a terminator it has entered, before the stochastic
// readthrough draw runs. The default (AlwaysEligible) matches spec.md's
// core rule; a reading-frame-aware predicate is the "optional refinement"
// from spec.md §4.1.5.
type TerminationPredicate func(walker *Polymerase, terminator *Element) bool

// AlwaysEligible is the default TerminationPredicate: every walker/terminator
// interaction pair proceeds to the stochastic readthrough draw.
func AlwaysEligible(*Polymerase, *Element) bool { return true }

// ReadingFrameMatch skips termination unconditionally when the walker's and
// terminator's reading frames disagree (spec.md §4.1.5 optional refinement).
func ReadingFrameMatch(walker *Polymerase, terminator *Element) bool {
	return walker.ReadingFrame == terminator.ReadingFrame
}

// Polymer is a 1-D track carrying fixed Elements, a mobile Mask, and an
// ordered, non-overlapping list of Polymerase walkers. It is the base
// capability both Genome and Transcript build on, via composition rather
// than a class hierarchy (spec.md §9).
type Polymer struct {
	Name    string
	Length  int
	Mask    *Mask
	Walkers []*Polymerase

	// Elements is the immutable set of fixed sites handed in at construction.
	// The slice itself is never resized after NewPolymer runs; only the
	// Elements' internal covering state mutates.
	Elements []*Element

	PropSum  float64
	PropList []float64

	// Uncovered caches, per element name, how many elements of that name are
	// currently free (covered == 0) and not terminators (spec.md invariant 5).
	Uncovered map[string]int

	// TerminationPredicate gates whether a walker/terminator encounter even
	// reaches the stochastic readthrough draw. Defaults to AlwaysEligible.
	TerminationPredicate TerminationPredicate

	Chooser *Chooser

	PromoterSignal          SignalString
	BlockSignal             SignalString
	TerminationSignal       SignalTermination
	PropensityChangedSignal Signal0
}

// NewPolymer constructs a Polymer, initializing element covering against the
// mask: elements intersecting the mask start covered (and contribute 0 to
// Uncovered), everything else starts free.
func NewPolymer(name string, length int, elements []*Element, mask *Mask, chooser *Chooser) *Polymer {
	p := &Polymer{
		Name:                 name,
		Length:               length,
		Elements:             elements,
		Mask:                 mask,
		Uncovered:            make(map[string]int),
		TerminationPredicate: AlwaysEligible,
		Chooser:              chooser,
	}

	for _, e := range p.Elements {
		if Intersects(e.Start, e.Stop, mask.Start, mask.Stop) {
			e.Cover()
			if _, ok := p.Uncovered[e.Name]; !ok {
				p.Uncovered[e.Name] = 0
			}
		} else if e.Type != Terminator {
			p.Uncovered[e.Name]++
		}
	}

	return p
}

// BindPolymerase binds a walker to a free promoter of the given name,
// placing the walker at that promoter's start. See spec.md §4.1.
func (p *Polymer) BindPolymerase(walker *Polymerase, promoterName string) error {
	if p.indexOf(walker) >= 0 {
		return ErrAlreadyBound
	}

	var candidates []*Element
	for _, e := range p.Elements {
		if e.Name == promoterName && !e.IsCovered() {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return ErrNotFound
	}

	weights := make([]float64, len(candidates))
	for i := range weights {
		weights[i] = 1.0
	}
	element := candidates[p.Chooser.WeightedIndex(weights)]

	if !element.Interacts(walker.Name) {
		return ErrIncompatibleBinding
	}

	walker.Start = element.Start
	walker.Stop = element.Start + walker.Footprint - 1

	if element.Stop < walker.Stop {
		return ErrFootprintTooLarge
	}
	if walker.Stop >= p.Mask.Start {
		return ErrOverlapsMask
	}

	element.Cover()
	element.SaveState()
	p.Uncovered[element.Name]--

	if err := p.insertWalker(walker); err != nil {
		return err
	}

	p.PropSum += walker.Speed
	p.PropensityChangedSignal.Fire()
	return nil
}

// insertWalker inserts a walker into the ordered (ascending Start) list,
// keeping PropList in lockstep. See spec.md §4.1.1.
func (p *Polymer) insertWalker(walker *Polymerase) error {
	for _, existing := range p.Walkers {
		if existing == walker {
			return ErrAlreadyBound
		}
	}

	insertAt := len(p.Walkers)
	for i, existing := range p.Walkers {
		if existing.Start > walker.Start {
			insertAt = i
			break
		}
	}

	p.Walkers = append(p.Walkers, nil)
	copy(p.Walkers[insertAt+1:], p.Walkers[insertAt:])
	p.Walkers[insertAt] = walker

	p.PropList = append(p.PropList, 0)
	copy(p.PropList[insertAt+1:], p.PropList[insertAt:])
	p.PropList[insertAt] = walker.Speed

	return nil
}

// Execute selects one walker weighted by speed and moves it. See spec.md
// §4.1.2.
func (p *Polymer) Execute() error {
	if p.PropSum == 0 {
		return ErrNoActivity
	}
	idx := p.Chooser.WeightedIndex(p.PropList)
	return p.moveWalker(p.Walkers[idx])
}

// moveWalker is the heart of the kernel: the save/uncover, advance, resolve,
// re-cover sequence described in spec.md §4.1.3.
func (p *Polymer) moveWalker(walker *Polymerase) error {
	idx := p.indexOf(walker)

	// 1. Save-and-uncover: an element overlapping both the walker and the
	// mask is uncovered twice, intentionally (its count drops to 0 either
	// way; this is what lets the edge detector see a clean transition for
	// every element touched by this step).
	for _, e := range p.Elements {
		if Intersects(walker.Start, walker.Stop, e.Start, e.Stop) {
			e.SaveState()
			e.Uncover()
		}
		if Intersects(p.Mask.Start, p.Mask.Stop, e.Start, e.Stop) {
			e.SaveState()
			e.Uncover()
		}
	}

	// 2. Advance.
	walker.Move()

	// 3. Collision with the next downstream walker.
	polCollision := p.resolveWalkerCollision(idx, walker)

	// 4. Collision with the mask.
	maskCollision := p.resolveMaskCollision(walker)

	// 5. Fire move, only if this step didn't stall against anything.
	if !polCollision && !maskCollision {
		walker.MoveSignal.Fire()
	}

	// 6. Recover and react, element-list order.
	for _, e := range p.Elements {
		if Intersects(p.Mask.Start, p.Mask.Stop, e.Start, e.Stop) {
			e.Cover()
			p.checkState(e)
		}
		if Intersects(walker.Start, walker.Stop, e.Start, e.Stop) {
			e.Cover()
			if e.Type == Terminator && e.Interacts(walker.Name) {
				if err := p.resolveTermination(walker, e); err != nil {
					return err
				}
			}
		}
		p.checkState(e)
	}

	return nil
}

func (p *Polymer) indexOf(walker *Polymerase) int {
	for i, w := range p.Walkers {
		if w == walker {
			return i
		}
	}
	return -1
}

// resolveWalkerCollision rolls walker back if it has run into the next
// downstream walker. See spec.md §4.1.3 step 3. Panics with ErrCorruption if
// the overlap exceeds one position, which cannot arise from a single legal
// one-position move and indicates the invariant was already broken upstream.
func (p *Polymer) resolveWalkerCollision(idx int, walker *Polymerase) bool {
	if idx < 0 || idx+1 >= len(p.Walkers) {
		return false
	}
	next := p.Walkers[idx+1]
	if !Intersects(walker.Start, walker.Stop, next.Start, next.Stop) {
		return false
	}
	if walker.Stop-next.Start > 0 {
		panic(&ErrCorruption{Reason: "walker overlaps its downstream neighbor by more than one position"})
	}
	walker.MoveBack()
	return true
}

// resolveMaskCollision either lets the mask recede (for whitelisted walkers)
// or rolls the walker back. See spec.md §4.1.3 step 4 and DESIGN.md open
// question 2. Panics with ErrCorruption on overlap by more than one position.
func (p *Polymer) resolveMaskCollision(walker *Polymerase) bool {
	if !Intersects(walker.Start, walker.Stop, p.Mask.Start, p.Mask.Stop) {
		return false
	}
	if walker.Stop-p.Mask.Start > 0 {
		panic(&ErrCorruption{Reason: "walker overlaps the mask by more than one position"})
	}
	if p.Mask.Interacts(walker.Name) {
		p.Mask.Recede()
		return false
	}
	walker.MoveBack()
	return true
}

// checkState runs the edge detector for a single element: spec.md §4.1.4.
func (p *Polymer) checkState(e *Element) {
	if e.WasCovered() && e.Type != Terminator {
		p.Uncovered[e.Name]--
		p.BlockSignal.Fire(e.Name)
		e.SaveState()
	}
	if e.WasUncovered() {
		e.SaveState()
		if e.Type == Terminator {
			e.Readthrough = false
		} else {
			p.Uncovered[e.Name]++
			p.PromoterSignal.Fire(e.Name)
		}
	}
}

// resolveTermination implements spec.md §4.1.5: a walker inside a terminator
// either passes through (already in readthrough), rolls a readthrough draw,
// or detaches.
func (p *Polymer) resolveTermination(walker *Polymerase, terminator *Element) error {
	if terminator.Readthrough {
		return nil
	}
	if !p.TerminationPredicate(walker, terminator) {
		return nil
	}

	params := terminator.Interactions[walker.Name]
	u := p.Chooser.Float64()
	if u > params.Efficiency {
		terminator.Readthrough = true
		return nil
	}

	walker.Attached = false
	walker.LastGene = terminator.Gene
	walker.ReleaseSignal.Fire(terminator.Stop)
	return p.Terminate(walker)
}

// ShiftMask advances the mask by one position, re-covering/uncovering the
// one element (if any) it currently straddles. See spec.md §4.1.6.
func (p *Polymer) ShiftMask() {
	if p.Mask.Start == p.Mask.Stop {
		return
	}

	var straddled *Element
	for _, e := range p.Elements {
		if Intersects(p.Mask.Start, p.Mask.Stop, e.Start, e.Stop) {
			e.SaveState()
			e.Uncover()
			straddled = e
			break
		}
	}

	p.Mask.Recede()

	if straddled == nil {
		return
	}
	if Intersects(p.Mask.Start, p.Mask.Stop, straddled.Start, straddled.Stop) {
		straddled.Cover()
	}
	p.checkState(straddled)
}

// Terminate detaches a walker: spec.md §4.1.7.
func (p *Polymer) Terminate(walker *Polymerase) error {
	idx := p.indexOf(walker)
	if idx < 0 {
		return nil
	}

	p.PropSum -= walker.Speed
	p.Walkers = append(p.Walkers[:idx], p.Walkers[idx+1:]...)
	p.PropList = append(p.PropList[:idx], p.PropList[idx+1:]...)

	p.PropensityChangedSignal.Fire()
	p.TerminationSignal.Fire(walker.Name, walker.LastGene)
	return nil
}

// CountUncovered returns the cached count of free (uncovered) elements with
// the given name. See spec.md §4.1.8.
func (p *Polymer) CountUncovered(name string) int {
	return p.Uncovered[name]
}

// CalculatePropensity returns the total move propensity of this polymer.
func (p *Polymer) CalculatePropensity() float64 {
	return p.PropSum
}

// Render produces a one-rune-per-position debug string of the track:
// 'x' for masked, 'o' for open, and one letter per walker's footprint ('A'
// for the first walker in list order, 'B' for the second, wrapping after 'Z').
// Grounded on pysinthe/polymer.go's __str__ (spec.md §9 supplemented
// feature); used by simrun's snapshots, which trackview renders.
func (p *Polymer) Render() string {
	cells := make([]byte, p.Length)
	for i := range cells {
		cells[i] = 'o'
	}
	for pos := p.Mask.Start; pos <= p.Mask.Stop && pos <= p.Length; pos++ {
		if pos >= 1 {
			cells[pos-1] = 'x'
		}
	}
	for i, w := range p.Walkers {
		marker := byte('A' + (i % 26))
		for pos := w.Start; pos <= w.Stop && pos <= p.Length; pos++ {
			if pos >= 1 {
				cells[pos-1] = marker
			}
		}
	}
	return string(cells)
}
