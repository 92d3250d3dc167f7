package polymer

import "math/rand"

// Chooser is the sole source of randomness inside the kernel: propensity-
// weighted polymerase selection and termination-readthrough draws both go
// through it. Per spec.md §9 ("PRNG as process-wide state... thread a seeded
// generator explicitly through the Polymer"), it wraps a *rand.Rand rather
// than relying on the package-level global so that a scenario's outcome is
// reproducible from its seed alone, independent of what else in the process
// happens to call math/rand.
type Chooser struct {
	rng *rand.Rand
}

// NewChooser returns a Chooser seeded deterministically.
func NewChooser(seed int64) *Chooser {
	return &Chooser{rng: rand.New(rand.NewSource(seed))}
}

// Float64 draws a uniform value in [0, 1), used for termination/readthrough
// decisions.
func (c *Chooser) Float64() float64 {
	return c.rng.Float64()
}

// WeightedIndex picks an index into weights with probability proportional
// to weights[i]. weights must be non-negative and sum to a positive value;
// callers already guarantee that (Polymer.Execute checks PropSum > 0, and
// Polymer.BindPolymerase passes a weight of 1 per candidate).
func (c *Chooser) WeightedIndex(weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	target := c.rng.Float64() * total
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if target < cumulative {
			return i
		}
	}
	// Floating-point rounding can leave target fractionally past the last
	// cumulative boundary; fall back to the last index rather than -1.
	return len(weights) - 1
}
