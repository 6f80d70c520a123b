// Package refinement corrects skeletal spokes against a closed boundary
// surface: tips are moved onto the boundary, turned toward the outward
// normal, equalized across paired sheets, and rebuilt when the skeletal end
// lies outside the shape.
package refinement

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"skelrefine/internal/diag"
	"skelrefine/internal/models"
	"skelrefine/pkg/config"
)

var (
	// ErrEmptySpokes is returned when a unit of work has no spokes.
	ErrEmptySpokes = errors.New("no spokes to refine")
	// ErrLengthMismatch is returned when skeletal and tip sequences differ in length.
	ErrLengthMismatch = errors.New("skeletal and tip point counts differ")
	// ErrCrestIndex is returned when a crest correspondence points past the spokes.
	ErrCrestIndex = errors.New("crest index out of range")
)

// Surface is the geometry refinement queries. *mesh.Locator implements it.
type Surface interface {
	// IsInside reports containment; points on the boundary count as inside
	IsInside(p r3.Vec) bool

	// ClosestPoint returns the nearest surface point
	ClosestPoint(p r3.Vec) r3.Vec

	// LocalNormal returns the nearest surface point and the outward unit normal there
	LocalNormal(p r3.Vec) (r3.Vec, r3.Vec)
}

// Params holds the refinement parameters.
type Params struct {
	// NumCores is the number of goroutines a stage fans out to
	NumCores int

	// Step is eps_s, how far the length refiner moves a tip per iteration
	Step float64

	// DirectionTol is eps_d, the 1 - cos(angle) at which direction refinement stops
	DirectionTol float64

	// EqualTol is eps_e, the largest accepted length difference of paired spokes
	EqualTol float64

	// InsideTolerance is handed to the containment oracle built for each unit
	InsideTolerance float64

	MaxLengthIter    int
	MaxDirectionIter int

	// MarchStep is the step of the crossing counter
	MarchStep float64

	// Alpha weights the current direction against the normal when blending
	Alpha float64

	// ExtendLength is how far outside spokes are stretched before recovery
	ExtendLength float64

	// PairCount is the size of each half of the paired spoke range
	PairCount int

	// CrestLambda scales the synthesized crest spokes
	CrestLambda float64

	// CrestOrder and CrestNeighbor are 0-based crest correspondences
	CrestOrder    []int
	CrestNeighbor []int

	// RestoreOrder sorts merged output by original index
	RestoreOrder bool

	// CombinedSubfield is refined with the combined path
	CombinedSubfield string

	// EqualizeSubfields get symmetric lengths after the ordinary path
	EqualizeSubfields []string
}

// DefaultParams returns the parameters of config.DefaultConfig.
func DefaultParams() *Params {
	p, err := ParamsFromConfig(config.DefaultConfig())
	if err != nil {
		panic(err)
	}
	return p
}

// ParamsFromConfig converts the YAML configuration, turning the crest table
// into 0-based indices.
func ParamsFromConfig(cfg *config.Config) (*Params, error) {
	order, neighbor, err := cfg.Crest.ZeroBased()
	if err != nil {
		return nil, err
	}
	return &Params{
		NumCores:          cfg.Processing.NumCores,
		Step:              cfg.Tolerances.Step,
		DirectionTol:      cfg.Tolerances.Direction,
		EqualTol:          cfg.Tolerances.Equal,
		InsideTolerance:   cfg.Tolerances.Inside,
		MaxLengthIter:     cfg.Limits.MaxLengthIter,
		MaxDirectionIter:  cfg.Limits.MaxDirectionIter,
		MarchStep:         cfg.Limits.MarchStep,
		Alpha:             cfg.Limits.Alpha,
		ExtendLength:      cfg.Limits.ExtendLength,
		PairCount:         cfg.Limits.PairCount,
		CrestLambda:       cfg.Limits.CrestLambda,
		CrestOrder:        order,
		CrestNeighbor:     neighbor,
		RestoreOrder:      cfg.Processing.RestoreOrder,
		CombinedSubfield:  cfg.Subfields.Combined,
		EqualizeSubfields: cfg.Subfields.Equalize,
	}, nil
}

// Result is the refined output of one unit of work.
type Result struct {
	Unit models.Unit

	// Spokes are the refined, index-tagged spokes
	Spokes []models.Spoke

	// Invalid counts spokes that could not be recovered and were collapsed
	// onto their skeletal point
	Invalid int

	// NonConverged counts refinement loops that hit their iteration cap
	NonConverged int

	// Err is set when the unit failed; only batch runs fill it
	Err error
}

// Points splits the result into the (ps, pt) sequences for persistence.
func (r *Result) Points() (ps, pt []r3.Vec) {
	return models.Points(r.Spokes)
}

// Refiner runs the refinement stages for one unit of work. The surface is
// only read, so stages may process spokes concurrently.
type Refiner struct {
	surface Surface
	params  *Params
	sink    diag.Sink
	unit    models.Unit
}

// NewRefiner binds a surface and parameters to a unit of work. A nil sink
// discards diagnostics.
func NewRefiner(surface Surface, params *Params, sink diag.Sink, unit models.Unit) *Refiner {
	if params == nil {
		params = DefaultParams()
	}
	if sink == nil {
		sink = diag.Discard
	}
	return &Refiner{
		surface: surface,
		params:  params,
		sink:    sink,
		unit:    unit,
	}
}

// Pair builds index-tagged spokes from skeletal and tip sequences.
func Pair(ps, pt []r3.Vec) ([]models.Spoke, error) {
	if len(ps) != len(pt) {
		return nil, fmt.Errorf("%d skeletal vs %d tip points: %w", len(ps), len(pt), ErrLengthMismatch)
	}
	if len(ps) == 0 {
		return nil, ErrEmptySpokes
	}
	return models.FromPoints(ps, pt), nil
}

// forEach calls fn for every index in [0, n), spreading the indices over
// NumCores goroutines. fn must only write state owned by its index.
func (r *Refiner) forEach(n int, fn func(i int)) {
	if n == 0 {
		return
	}
	numCores := r.params.NumCores
	if numCores < 1 {
		numCores = runtime.NumCPU()
	}
	if numCores > n {
		numCores = n
	}

	// Divide the work among available cores
	perCore := (n + numCores - 1) / numCores

	var wg sync.WaitGroup
	for c := 0; c < numCores; c++ {
		start := c * perCore
		end := min(start+perCore, n)
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}

func (r *Refiner) warnf(format string, args ...any) {
	r.sink.Warnf(r.unit.Label(), format, args...)
}

func (r *Refiner) infof(format string, args ...any) {
	r.sink.Infof(r.unit.Label(), format, args...)
}
