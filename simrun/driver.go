// Package simrun runs one or more polymers concurrently to completion,
// periodically publishing snapshots for the view layer. The kernel itself
// (package polymer) stays synchronous; simrun is the one place this module
// introduces goroutines, each exclusively owning one genome and the
// transcripts it spawns — no two goroutines ever touch the same Polymer.
package simrun

import (
	"context"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"

	"polytrace/metrics"
	"polytrace/polymer"
)

// Snapshot is an idempotent, cheap-to-copy rendering of one polymer's track
// at a point in time, suitable for sending across a channel to the view
// layer without aliasing the live polymer.
type Snapshot struct {
	Name   string
	Length int
	Render string
}

// RibosomeSpec describes one species of ribosome that binds the "rbs" site
// of every newly spawned Transcript, in the given quantity, as soon as that
// site becomes exposed (spec.md §4.2/§9: translation is wired symmetrically
// to transcription, rather than left unexercised).
type RibosomeSpec struct {
	Name      string
	Speed     float64
	Footprint int
	Count     int
}

// snapshotOf copies out everything a view needs from a live polymer.Polymer.
func snapshotOf(name string, p *polymer.Polymer) Snapshot {
	return Snapshot{
		Name:   name,
		Length: p.Length,
		Render: p.Render(),
	}
}

// Run drives every genome in genomes to completion concurrently (one
// goroutine per genome, per spec.md's single-writer-per-polymer invariant),
// publishing a batch of Snapshots to updates roughly every period until all
// genomes run dry or ctx is cancelled. Run blocks until every genome
// finishes or the first error occurs; a panic'd ErrCorruption inside any one
// genome's goroutine is recovered and returned as an error instead of
// crashing the process. The first error from any genome cancels the shared
// context, which stops every other genome's goroutine as well, and Run
// returns that error to its caller.
func Run(
	ctx context.Context,
	genomes []*polymer.Genome,
	ribosomes []RibosomeSpec,
	maxSteps int,
	period time.Duration,
	updates chan<- []Snapshot,
	propensityGauge *metrics.Gauge,
) error {
	group, groupCtx := errgroup.WithContext(ctx)

	for _, g := range genomes {
		g := g
		group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					if corruption, ok := r.(*polymer.ErrCorruption); ok {
						err = corruption
						return
					}
					panic(r)
				}
			}()
			return runGenome(groupCtx, g, ribosomes, maxSteps, period, updates, propensityGauge)
		})
	}

	return group.Wait()
}

// pendingRibosomes tracks, per transcript, how many ribosomes of each
// species still need binding to its "rbs" site. A binding attempt fails with
// polymer.ErrNotFound while the site remains masked or already occupied;
// that's not an error here, just "not yet" — it's retried on a later step.
type pendingRibosomes struct {
	transcript *polymer.Transcript
	spec       RibosomeSpec
	remaining  int
}

// tryBindRibosomes attempts one ribosome-binding for every pending entry
// still owed a walker, dropping entries once fully bound. Returns the
// pending slice with satisfied entries removed.
func tryBindRibosomes(pending []*pendingRibosomes) ([]*pendingRibosomes, error) {
	live := pending[:0]
	for _, pr := range pending {
		ribosome := polymer.NewPolymerase(pr.spec.Name, pr.spec.Speed, pr.spec.Footprint)
		if err := pr.transcript.BindPolymerase(ribosome, "rbs"); err != nil {
			if err == polymer.ErrNotFound {
				live = append(live, pr)
				continue
			}
			return nil, err
		}
		pr.remaining--
		if pr.remaining > 0 {
			live = append(live, pr)
		}
	}
	return live, nil
}

// runGenome owns g and every Transcript it spawns for the lifetime of this
// call. It alone reads and writes their state, so no locking is needed here.
func runGenome(
	ctx context.Context,
	g *polymer.Genome,
	ribosomes []RibosomeSpec,
	maxSteps int,
	period time.Duration,
	updates chan<- []Snapshot,
	propensityGauge *metrics.Gauge,
) error {
	var transcripts []*polymer.Transcript
	var pending []*pendingRibosomes
	g.TranscriptSignal.Connect(func(t *polymer.Transcript) {
		transcripts = append(transcripts, t)
		for _, rs := range ribosomes {
			pending = append(pending, &pendingRibosomes{transcript: t, spec: rs, remaining: rs.Count})
		}
	})

	ticker := channerics.NewTicker(ctx.Done(), period)
	lastPropensity := 0.0

	publish := func() error {
		snapshots := make([]Snapshot, 0, len(transcripts)+1)
		snapshots = append(snapshots, snapshotOf(g.Name, &g.Polymer))
		for _, t := range transcripts {
			snapshots = append(snapshots, snapshotOf(t.Name, &t.Polymer))
		}

		select {
		case updates <- snapshots:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	}

	for step := 0; maxSteps <= 0 || step < maxSteps; step++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var err error
		if pending, err = tryBindRibosomes(pending); err != nil {
			return err
		}

		active := activePolymers(g, transcripts)
		if len(active) == 0 && len(pending) == 0 {
			break
		}

		for _, p := range active {
			if p.CalculatePropensity() == 0 {
				continue
			}
			if err := p.Execute(); err != nil && err != polymer.ErrNoActivity {
				return err
			}
		}

		totalPropensity := g.CalculatePropensity()
		for _, t := range transcripts {
			totalPropensity += t.CalculatePropensity()
		}
		if totalPropensity != lastPropensity {
			delta := totalPropensity - lastPropensity
			for _, added := propensityGauge.Add(delta); !added; _, added = propensityGauge.Add(delta) {
			}
			lastPropensity = totalPropensity
		}

		select {
		case <-ticker:
			if err := publish(); err != nil {
				return err
			}
		default:
		}
	}

	return publish()
}

// activePolymers returns every polymer (the genome plus its transcripts)
// that still has at least one bound walker.
func activePolymers(g *polymer.Genome, transcripts []*polymer.Transcript) []*polymer.Polymer {
	active := make([]*polymer.Polymer, 0, len(transcripts)+1)
	if len(g.Walkers) > 0 {
		active = append(active, &g.Polymer)
	}
	for _, t := range transcripts {
		if len(t.Walkers) > 0 {
			active = append(active, &t.Polymer)
		}
	}
	return active
}
