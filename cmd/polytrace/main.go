/*
polytrace simulates transcription and translation on a single genome as a
stochastic walk of polymerases along fixed elements, visualized in real time
over a websocket as each RNA polymerase (and the transcripts it spawns)
advances, collides, and terminates.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"polytrace/config"
	"polytrace/metrics"
	"polytrace/polymer"
	"polytrace/server"
	"polytrace/simrun"
)

var (
	scenarioPath *string
	host         *string
	port         *string
	maxSteps     *int
	addr         string
)

func init() {
	scenarioPath = flag.String("scenario", "./scenario.yaml", "path to the scenario YAML file")
	host = flag.String("host", "", "the host ip")
	port = flag.String("port", "8080", "the host port")
	maxSteps = flag.Int("maxsteps", 0, "maximum simulation steps per genome (0 means unbounded)")
	flag.Parse()
	addr = *host + ":" + *port
}

func runApp() (err error) {
	scenario, err := config.Load(*scenarioPath)
	if err != nil {
		return err
	}

	genome, err := scenario.BuildGenome()
	if err != nil {
		return err
	}

	if err := bindWalkers(genome, scenario); err != nil {
		return err
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	snapshotUpdates := make(chan []simrun.Snapshot)
	propensityGauge := metrics.NewGauge(0)
	ribosomes := ribosomeSpecs(scenario)

	go func() {
		if runErr := simrun.Run(
			appCtx,
			[]*polymer.Genome{genome},
			ribosomes,
			*maxSteps,
			100*time.Millisecond,
			snapshotUpdates,
			propensityGauge,
		); runErr != nil {
			fmt.Println("simulation run ended:", runErr)
		}
	}()

	srv, err := server.NewServer(appCtx, addr, nil, snapshotUpdates)
	if err != nil {
		return err
	}

	return srv.Serve()
}

// bindWalkers attaches each scenario-declared walker species, in the
// quantity requested, to its starting promoter.
func bindWalkers(genome *polymer.Genome, scenario *config.Scenario) error {
	for _, ws := range scenario.Walkers {
		for i := 0; i < ws.Count; i++ {
			walker := polymer.NewPolymerase(ws.Name, ws.Speed, ws.Footprint)
			if err := genome.BindPolymerase(walker, ws.Promoter); err != nil {
				return fmt.Errorf("binding walker %q to %q: %w", ws.Name, ws.Promoter, err)
			}
		}
	}
	return nil
}

// ribosomeSpecs converts the scenario's declared ribosome species into the
// shape simrun.Run needs to bind them to each transcript's "rbs" site.
func ribosomeSpecs(scenario *config.Scenario) []simrun.RibosomeSpec {
	specs := make([]simrun.RibosomeSpec, 0, len(scenario.Ribosomes))
	for _, rs := range scenario.Ribosomes {
		specs = append(specs, simrun.RibosomeSpec{
			Name:      rs.Name,
			Speed:     rs.Speed,
			Footprint: rs.Footprint,
			Count:     rs.Count,
		})
	}
	return specs
}

func main() {
	if err := runApp(); err != nil {
		fmt.Println(err)
	}
}
