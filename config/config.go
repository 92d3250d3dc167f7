// Package config loads simulation scenarios from YAML: a genome's fixed
// elements, its gene template, walker species, and run parameters.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"polytrace/polymer"
)

// outerConfig is the polymorphic envelope viper decodes first. Its Def
// field is re-marshaled and decoded a second time, through yaml.v3, into the
// strongly-typed Scenario below — viper's own decoder is weak on nested
// interface{} structures, so it only ever sees the envelope.
type outerConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// Scenario is a complete, ready-to-run simulation definition.
type Scenario struct {
	Name   string       `yaml:"name"`
	Length int          `yaml:"length"`
	Seed   int64        `yaml:"seed"`

	Elements []ElementSpec `yaml:"elements"`
	Mask     MaskSpec      `yaml:"mask"`
	Genes    []GeneSpec    `yaml:"genes"`
	Walkers  []WalkerSpec  `yaml:"walkers"`

	// Ribosomes lists each species of translating walker that binds the
	// "rbs" site of every transcript a bound RNA polymerase spawns, in the
	// given quantity, as soon as that site is exposed. Per
	// pysinthe/polymer.py's hardcoded rbs interaction list, a ribosome's
	// Name must be "ribosome" for its binding to succeed.
	Ribosomes []WalkerSpec `yaml:"ribosomes,omitempty"`
}

// ElementSpec describes one fixed promoter or terminator on the root genome.
type ElementSpec struct {
	Name         string                        `yaml:"name"`
	Kind         string                        `yaml:"kind"` // "promoter" | "terminator"
	Start        int                           `yaml:"start"`
	Stop         int                           `yaml:"stop"`
	Walkers      []string                      `yaml:"walkers,omitempty"`
	Efficiencies map[string]float64            `yaml:"efficiencies,omitempty"`
}

// MaskSpec describes the genome's initial mask.
type MaskSpec struct {
	Start   int      `yaml:"start"`
	Stop    int      `yaml:"stop"`
	Pushers []string `yaml:"pushers,omitempty"`
}

// GeneSpec describes one gene in the transcript template RNA polymerases
// build when they bind, matching spec.md §6's schema: {name, start, stop,
// rbs, length}. RBS is an offset from Start (commonly negative) to the
// upstream edge of the gene's ribosome binding site, not an absolute
// position — polymer.Genome.buildTranscript computes the site's absolute
// bounds itself. Unlike ElementSpec, there is no per-gene efficiencies
// table: a gene's tstop terminator always terminates a ribosome with
// certainty on first encounter (pysinthe/polymer.py:433).
type GeneSpec struct {
	Name   string `yaml:"name"`
	Start  int    `yaml:"start"`
	Stop   int    `yaml:"stop"`
	RBS    int    `yaml:"rbs"`
	Length int    `yaml:"length"`
}

// WalkerSpec describes one species of polymerase participating in the run,
// and which promoter it binds at startup.
type WalkerSpec struct {
	Name      string  `yaml:"name"`
	Speed     float64 `yaml:"speed"`
	Footprint int     `yaml:"footprint"`
	Promoter  string  `yaml:"promoter"`
	Count     int     `yaml:"count"`
}

// Load reads a scenario from path, decoding it through viper (for the
// polymorphic top-level envelope) and then yaml.v3 (for the strongly-typed
// Scenario body), matching the teacher's FromYaml double-decode shape.
func Load(path string) (*Scenario, error) {
	vp := viper.New()
	vp.SetConfigFile(filepath.Base(path))
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading scenario config: %w", err)
	}

	outer := &outerConfig{}
	if err := vp.Unmarshal(outer); err != nil {
		return nil, fmt.Errorf("unmarshaling scenario envelope: %w", err)
	}

	body, err := yaml.Marshal(outer.Def)
	if err != nil {
		return nil, fmt.Errorf("remarshaling scenario body: %w", err)
	}

	scenario := &Scenario{}
	if err := yaml.Unmarshal(body, scenario); err != nil {
		return nil, fmt.Errorf("unmarshaling scenario body: %w", err)
	}

	return scenario, nil
}

// BuildGenome constructs a polymer.Genome from a loaded Scenario.
func (s *Scenario) BuildGenome() (*polymer.Genome, error) {
	chooser := polymer.NewChooser(s.Seed)

	elements := make([]*polymer.Element, 0, len(s.Elements))
	for _, es := range s.Elements {
		switch es.Kind {
		case "promoter":
			elements = append(elements, polymer.NewPromoter(es.Name, es.Start, es.Stop, es.Walkers))
		case "terminator":
			params := make(map[string]polymer.TerminatorParams, len(es.Efficiencies))
			for name, eff := range es.Efficiencies {
				params[name] = polymer.TerminatorParams{Efficiency: eff}
			}
			elements = append(elements, polymer.NewTerminator(es.Name, es.Start, es.Stop, params))
		default:
			return nil, fmt.Errorf("unknown element kind %q for element %q", es.Kind, es.Name)
		}
	}

	mask := polymer.NewMask(s.Mask.Start, s.Mask.Stop, s.Mask.Pushers)

	template := make([]polymer.GeneDef, 0, len(s.Genes))
	for _, gs := range s.Genes {
		template = append(template, polymer.GeneDef{
			Name:   gs.Name,
			Start:  gs.Start,
			Stop:   gs.Stop,
			RBS:    gs.RBS,
			Length: gs.Length,
		})
	}

	return polymer.NewGenome(s.Name, s.Length, elements, mask, chooser, template), nil
}
