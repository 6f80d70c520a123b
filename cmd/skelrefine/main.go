package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/profile"
	"gonum.org/v1/gonum/spatial/r3"

	"skelrefine/internal/diag"
	"skelrefine/internal/models"
	"skelrefine/pkg/config"
	"skelrefine/pkg/mesh"
	"skelrefine/pkg/refinement"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "skelrefine.yaml", "YAML configuration file")
	initConfig := flag.Bool("init-config", false, "Write the default configuration to -config and exit")
	shape := flag.String("shape", "sphere", "Fixture surface: sphere or box")
	numSpokes := flag.Int("n", 200, "Number of spokes per subfield")
	seed := flag.Uint64("seed", 1, "Random seed for the synthetic spokes")
	numCores := flag.Int("cores", 0, "Goroutines per refinement stage (default: from config)")
	subject := flag.String("subject", "S01", "Subject label")
	timepoint := flag.String("timepoint", "bl", "Timepoint label")
	followup := flag.Bool("followup", false, "Treat the timepoint as a follow-up scan")
	cpuProfile := flag.String("cpuprofile", "", "Write a CPU profile to this directory")
	logFile := flag.String("logfile", "", "Append diagnostics to this file (default: from config)")
	flag.Parse()

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *numCores > 0 {
		cfg.Processing.NumCores = *numCores
	}
	if *logFile != "" {
		cfg.Output.LogFile = *logFile
	}

	opts := options{
		shape:     *shape,
		numSpokes: *numSpokes,
		seed:      *seed,
		unit:      models.Unit{Subject: *subject, Timepoint: *timepoint, Followup: *followup},
	}
	if *cpuProfile != "" {
		stop := profile.Start(profile.CPUProfile, profile.ProfilePath(*cpuProfile), profile.NoShutdownHook).Stop
		err = run(cfg, opts)
		stop()
	} else {
		err = run(cfg, opts)
	}
	if err != nil {
		log.Fatalf("Refinement failed: %v", err)
	}
}

// options are the command line settings that shape the synthetic run
type options struct {
	shape     string
	numSpokes int
	seed      uint64

	// unit carries subject, timepoint and follow-up; the subfield is filled per job
	unit models.Unit
}

func run(cfg *config.Config, opts options) error {
	var sink diag.Sink
	if cfg.Output.LogFile != "" {
		fileSink, err := diag.OpenLogFile(cfg.Output.LogFile)
		if err != nil {
			return err
		}
		defer fileSink.Close()
		sink = fileSink
	} else {
		sink = diag.NewLogSink(os.Stderr)
	}
	if !cfg.Output.Verbose {
		sink = diag.WarningsOnly(sink)
	}

	params, err := refinement.ParamsFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("invalid crest table: %w", err)
	}

	fmt.Println("================================")
	fmt.Println("SKELETAL SPOKE REFINEMENT")
	fmt.Println("================================")

	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	jobs := make([]refinement.Job, 0, len(cfg.Subfields.Names))
	for i, name := range cfg.Subfields.Names {
		surface, err := fixture(opts.shape, i)
		if err != nil {
			return err
		}
		unit := opts.unit
		unit.Subfield = name
		jobs = append(jobs, refinement.Job{
			Unit:    unit,
			Surface: surface,
			Spokes:  randomSpokes(rng, surface, opts.numSpokes),
		})
	}

	fmt.Printf("Refining %d subfields of %d spokes on a %s...\n", len(jobs), opts.numSpokes, opts.shape)
	startTime := time.Now()
	results := refinement.RunBatch(jobs, params, sink, cfg.Processing.NumUnits)
	processingTime := time.Since(startTime)

	fmt.Printf("\nRefinement finished in %.2f seconds\n\n", processingTime.Seconds())
	fmt.Printf("%-24s %6s %6s %6s %8s %8s %8s %8s\n", "unit", "spokes", "invalid", "capped", "length", "std", "1-cos", "on-surf")

	failed := 0
	for i, res := range results {
		if res.Err != nil {
			failed++
			fmt.Printf("%-24s failed: %v\n", res.Unit.Label(), res.Err)
			continue
		}
		locator, err := mesh.NewLocator(jobs[i].Surface, params.InsideTolerance)
		if err != nil {
			return err
		}
		rep := refinement.NewRefiner(locator, params, diag.Discard, res.Unit).Assess(res.Spokes, params.Step)
		fmt.Printf("%-24s %6d %6d %6d %8.3f %8.3f %8.4f %7.1f%%\n",
			res.Unit.Label(), rep.Count, res.Invalid, res.NonConverged,
			rep.MeanLength, rep.StdLength, rep.MeanDeviation, 100*rep.OnSurface)
	}

	fmt.Println("\nParallel processing:")
	fmt.Printf("- %d goroutines per stage, %d units at once\n", cfg.Processing.NumCores, cfg.Processing.NumUnits)
	fmt.Printf("- %d CPUs available\n", runtime.NumCPU())

	if failed > 0 {
		return fmt.Errorf("%d of %d units failed", failed, len(results))
	}
	return nil
}

// fixture builds the boundary surface for the i-th subfield. Subfields get
// slightly different ellipsoids or boxes so their spokes refine differently.
func fixture(shape string, i int) (*mesh.Surface, error) {
	s := 1 + 0.1*float64(i%4)
	place := mgl64.Translate3D(0, 0, 0.05*float64(i)).Mul4(mgl64.Scale3D(s, 0.8*s, 0.6*s))

	switch shape {
	case "sphere":
		return mesh.NewIcosphere(1, 3).Transform(place), nil
	case "box":
		return mesh.NewBox(1, 1, 1).Transform(place), nil
	default:
		return nil, fmt.Errorf("unknown shape %q", shape)
	}
}

// randomSpokes scatters skeletal points through the surface's bounding box,
// so some start outside, and points each spoke in a random direction.
func randomSpokes(rng *rand.Rand, s *mesh.Surface, n int) []models.Spoke {
	box := s.Bounds()
	size := r3.Sub(box.Max, box.Min)
	center := r3.Scale(0.5, r3.Add(box.Min, box.Max))

	spokes := make([]models.Spoke, n)
	for i := range spokes {
		// Concentrate skeletal points toward the middle of the box
		skel := r3.Add(center, r3.Vec{
			X: 0.35 * size.X * (rng.Float64()*2 - 1),
			Y: 0.35 * size.Y * (rng.Float64()*2 - 1),
			Z: 0.35 * size.Z * (rng.Float64()*2 - 1),
		})
		theta := 2 * math.Pi * rng.Float64()
		z := rng.Float64()*2 - 1
		rxy := math.Sqrt(1 - z*z)
		dir := r3.Vec{X: rxy * math.Cos(theta), Y: rxy * math.Sin(theta), Z: z}
		length := 0.2 + 0.3*rng.Float64()

		spokes[i] = models.Spoke{
			Index:    i,
			Skeletal: skel,
			Tip:      r3.Add(skel, r3.Scale(length, dir)),
		}
	}
	return spokes
}
