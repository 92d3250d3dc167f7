package polymer

// GeneDef describes one gene in a Genome's transcript template, matching
// spec.md §6's schema: {name, start, stop, rbs, length}. Start/Stop are the
// gene's own coding bounds; RBS is an offset (commonly negative) from Start
// to the upstream edge of its ribosome binding site, not an absolute
// position. Grounded on pysinthe/polymer.py::Genome._build_transcript, which
// reads an equivalent structure out of the genome's "transcript_template".
type GeneDef struct {
	Name string

	// Start/Stop are the gene's coding bounds within the genome. A gene is
	// only exposed on a transcript built over [start, stop] when
	// Start >= start && Stop <= stop (pysinthe/polymer.py:426).
	Start int
	Stop  int

	// RBS is the offset from Start to the upstream edge of this gene's
	// ribosome binding site: the site spans [Start+RBS, Start].
	RBS int

	// Length is the gene's coding length, carried through from the
	// scenario template for callers that need it (spec.md §6); buildTranscript
	// itself derives element positions from Start/Stop/RBS alone.
	Length int
}

// Genome is a Polymer specialized to build a child Transcript each time an
// RNA polymerase binds one of its promoters (spec.md §4.2).
type Genome struct {
	Polymer

	// Template lists every gene a bound walker's transcript may eventually
	// expose, in genome order.
	Template []GeneDef

	// TranscriptSignal fires once per successfully built Transcript, handing
	// callers (simrun) the new transcript to track.
	TranscriptSignal SignalTranscript
}

// NewGenome constructs a Genome around an already-built Polymer core.
func NewGenome(name string, length int, elements []*Element, mask *Mask, chooser *Chooser, template []GeneDef) *Genome {
	return &Genome{
		Polymer:  *NewPolymer(name, length, elements, mask, chooser),
		Template: template,
	}
}

// BindPolymerase binds walker to a promoter as the base Polymer does, then
// builds and wires up the child Transcript that walker will transcribe as it
// moves (spec.md §4.2). If no template gene lies in the transcript's range it
// returns ErrEmptyTranscript; the walker stays bound to the genome and no
// transcript is built or signalled.
func (g *Genome) BindPolymerase(walker *Polymerase, promoterName string) error {
	if err := g.Polymer.BindPolymerase(walker, promoterName); err != nil {
		return err
	}

	transcript, err := g.buildTranscript(walker)
	if err != nil {
		return err
	}

	walker.MoveSignal.Connect(transcript.ShiftMask)
	walker.ReleaseSignal.Connect(transcript.Release)

	g.TranscriptSignal.Fire(transcript)
	return nil
}

// ribosomeTerminates is the tstop terminator's fixed interaction table: every
// transcript stop codon terminates a ribosome with certainty on the first
// encounter, per pysinthe/polymer.py:433 (not configurable per gene).
var ribosomeTerminates = map[string]TerminatorParams{"ribosome": {Efficiency: 1.0}}

// buildTranscript assembles the Transcript covering [walker.Start, g.Length]:
// one rbs promoter and one tstop terminator per gene whose own coding bounds
// lie entirely within that window (pysinthe/polymer.py:426). Every gene's
// promoter is named the literal "rbs" and every terminator the literal
// "tstop" — not gene-suffixed — so that a ribosome binding "rbs" is
// weighted-chosen across every currently exposed site on the transcript
// (polysome semantics), exactly as BindPolymerase already pools promoter
// candidates by shared Name.
func (g *Genome) buildTranscript(walker *Polymerase) (*Transcript, error) {
	var elements []*Element

	for _, gene := range g.Template {
		if gene.Start < walker.Start || gene.Stop > g.Length {
			continue
		}

		rbs := NewPromoter("rbs", gene.Start+gene.RBS, gene.Start, []string{"ribosome"})

		tstop := NewTerminator("tstop", gene.Stop-1, gene.Stop, ribosomeTerminates)
		tstop.Gene = gene.Name

		elements = append(elements, rbs, tstop)
	}

	if len(elements) == 0 {
		return nil, ErrEmptyTranscript
	}

	return NewTranscript(walker.Name+"_transcript", g.Length, elements, walker.Start, g.Chooser), nil
}
