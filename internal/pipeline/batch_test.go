package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/suneung/internal/llm"
	"github.com/abhisek/suneung/internal/problem"
)

// scriptedProvider answers by purpose so concurrent runs do not depend on
// call order. It tracks the peak number of calls in flight.
type scriptedProvider struct {
	delay time.Duration

	mu       sync.Mutex
	inFlight int
	peak     int
	calls    atomic.Int64
}

func (p *scriptedProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	p.calls.Add(1)
	p.mu.Lock()
	p.inFlight++
	p.peak = max(p.peak, p.inFlight)
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.inFlight--
		p.mu.Unlock()
	}()

	if err := llm.Sleep(ctx, p.delay); err != nil {
		return nil, err
	}
	content := plainProblem
	if llm.PurposeFrom(ctx) == llm.PurposeReview {
		content = reviewPass
	}
	return &llm.Response{Content: json.RawMessage(content), Model: "scripted"}, nil
}

func (p *scriptedProvider) ModelID() string { return "scripted" }

func TestRunBatch(t *testing.T) {
	p := &scriptedProvider{}
	cfg := testConfig()
	cfg.Workers = 2
	o, _ := newTestOrchestrator(t, p, cfg, FixedDecider(false))

	bad := midRequest()
	bad.Points = 7
	reqs := []problem.Request{midRequest(), bad, midRequest(), midRequest()}

	rep := o.RunBatch(context.Background(), reqs)

	require.Len(t, rep.Candidates, 4)
	assert.Len(t, rep.Accepted(), 3)
	unresolved := rep.Unresolved()
	require.Len(t, unresolved, 1)
	assert.Same(t, rep.Candidates[1], unresolved[0], "results keep request order")
	assert.Equal(t, problem.StatusFailed, unresolved[0].Status)
	assert.Equal(t, map[problem.Status]int{
		problem.StatusAccepted: 3,
		problem.StatusFailed:   1,
	}, rep.Counts())
	assert.EqualValues(t, 6, p.calls.Load())
}

func TestRunBatch_ConcurrencyCeiling(t *testing.T) {
	p := &scriptedProvider{delay: 5 * time.Millisecond}
	cfg := testConfig()
	cfg.Workers = 6
	cfg.Concurrency = 2
	o, _ := newTestOrchestrator(t, p, cfg, FixedDecider(false))

	reqs := make([]problem.Request, 6)
	for i := range reqs {
		reqs[i] = midRequest()
	}
	rep := o.RunBatch(context.Background(), reqs)

	assert.Len(t, rep.Accepted(), 6)
	assert.LessOrEqual(t, p.peak, 2)
}

func TestRunBatch_ObserverSeesIndexes(t *testing.T) {
	p := &scriptedProvider{}
	cfg := testConfig()
	o, log := newTestOrchestrator(t, p, cfg, FixedDecider(false))

	o.RunBatch(context.Background(), []problem.Request{midRequest(), midRequest(), midRequest()})

	seen := map[int]bool{}
	for _, tr := range log.all {
		seen[tr.Index] = true
	}
	assert.Equal(t, map[int]bool{0: true, 1: true, 2: true}, seen)
}

func TestRunBatch_Cancelled(t *testing.T) {
	p := &scriptedProvider{delay: time.Hour}
	o, _ := newTestOrchestrator(t, p, testConfig(), FixedDecider(false))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	rep := o.RunBatch(ctx, []problem.Request{midRequest(), midRequest()})

	assert.Empty(t, rep.Accepted())
	assert.Equal(t, 2, rep.Counts()[problem.StatusFailed])
}
