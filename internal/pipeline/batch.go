package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/suneung/internal/problem"
)

// Report is the outcome of a batch.
type Report struct {
	// Candidates are in request order, one per request.
	Candidates []*problem.Candidate
	Elapsed    time.Duration
}

// Accepted returns the candidates that reached ACCEPTED.
func (r *Report) Accepted() []*problem.Candidate {
	return r.filter(func(s problem.Status) bool { return s == problem.StatusAccepted })
}

// Unresolved returns the rejected and failed candidates.
func (r *Report) Unresolved() []*problem.Candidate {
	return r.filter(func(s problem.Status) bool { return s != problem.StatusAccepted })
}

// Counts tallies candidates by terminal status.
func (r *Report) Counts() map[problem.Status]int {
	counts := make(map[problem.Status]int)
	for _, c := range r.Candidates {
		counts[c.Status]++
	}
	return counts
}

func (r *Report) filter(keep func(problem.Status) bool) []*problem.Candidate {
	var out []*problem.Candidate
	for _, c := range r.Candidates {
		if keep(c.Status) {
			out = append(out, c)
		}
	}
	return out
}

// RunBatch runs one pipeline instance per request, at most cfg.Workers at
// a time. A failing instance does not stop the others; its candidate is
// reported as FAILED. Cancelling ctx fails the instances still running.
func (o *Orchestrator) RunBatch(ctx context.Context, reqs []problem.Request) *Report {
	start := time.Now()
	out := make([]*problem.Candidate, len(reqs))

	var g errgroup.Group
	g.SetLimit(o.cfg.Workers)
	for i, req := range reqs {
		g.Go(func() error {
			out[i] = o.run(ctx, i, req)
			return nil
		})
	}
	_ = g.Wait()

	rep := &Report{Candidates: out, Elapsed: time.Since(start)}
	counts := rep.Counts()
	o.deps.Logger.Info("batch finished",
		"requests", len(reqs),
		"accepted", counts[problem.StatusAccepted],
		"rejected", counts[problem.StatusRejected],
		"failed", counts[problem.StatusFailed],
		"elapsed", rep.Elapsed)
	return rep
}
