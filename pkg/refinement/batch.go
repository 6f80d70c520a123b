package refinement

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"skelrefine/internal/diag"
	"skelrefine/internal/models"
	"skelrefine/pkg/mesh"
)

// Job is one unit of work: a boundary surface and the spokes to refine
// against it.
type Job struct {
	Unit    models.Unit
	Surface *mesh.Surface
	Spokes  []models.Spoke
}

// RunBatch refines every job with at most limit jobs in flight. A failing
// job records its error in its Result and does not stop the others. Results
// are returned in job order.
func RunBatch(jobs []Job, params *Params, sink diag.Sink, limit int) []Result {
	if params == nil {
		params = DefaultParams()
	}
	if sink == nil {
		sink = diag.Discard
	}
	results := make([]Result, len(jobs))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range jobs {
		g.Go(func() error {
			results[i] = runJob(jobs[i], params, sink)
			if err := results[i].Err; err != nil {
				sink.Warnf(jobs[i].Unit.Label(), "unit failed: %v", err)
			}
			return nil
		})
	}
	// Failures stay in each job's Result, so Wait only drains the pool.
	g.Wait()

	return results
}

func runJob(job Job, params *Params, sink diag.Sink) Result {
	locator, err := mesh.NewLocator(job.Surface, params.InsideTolerance)
	if err != nil {
		return Result{Unit: job.Unit, Err: fmt.Errorf("%s: invalid surface: %w", job.Unit.Label(), err)}
	}

	res, err := NewRefiner(locator, params, sink, job.Unit).Process(job.Spokes)
	if err != nil {
		return Result{Unit: job.Unit, Err: err}
	}
	return *res
}
