// Package pipeline drives problem requests through generation, curriculum
// filtering, difficulty scoring, review and revision until they are
// accepted, rejected or failed.
//
// The per-candidate flow is an explicit state machine:
//
//	REQUESTED → GENERATED → FILTERED → SCORED → REVIEWED → ACCEPTED
//	                            ↓         ↓  ↘       ↓
//	                            NEEDS_REVISION  REQUESTED (escalation, once)
//	                            ↓          ↓
//	                         REVISED    REJECTED
//	                            ↓
//	                         FILTERED
//
// Any non-terminal state may move to FAILED. A candidate passes through
// NEEDS_REVISION at most MaxRevisions+1 times and escalates at most once,
// so every run terminates.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/abhisek/suneung/internal/curriculum"
	"github.com/abhisek/suneung/internal/difficulty"
	"github.com/abhisek/suneung/internal/llm"
	"github.com/abhisek/suneung/internal/problem"
	"github.com/abhisek/suneung/internal/problemgen"
	"github.com/abhisek/suneung/internal/store"
)

// Evaluator reviews a candidate.
type Evaluator interface {
	Evaluate(ctx context.Context, c *problem.Candidate) (*problem.ReviewCritique, error)
}

// Reviser produces replacement content for a candidate and its critique.
type Reviser interface {
	Revise(ctx context.Context, c *problem.Candidate) (*problem.Draft, error)
}

// Transition is a state change reported to an Observer.
type Transition struct {
	Index       int // position in the batch; 0 for single runs
	CandidateID string
	Request     problem.Request
	From, To    problem.Status
	Revision    int
	Reason      string
}

// Observer receives every transition. It is called from the goroutine
// running the candidate and must be safe for concurrent use.
type Observer func(Transition)

// Deps are the collaborators of an Orchestrator. Generator, Evaluator and
// Reviser are required; everything else has a default.
type Deps struct {
	Generator problemgen.Generator
	Evaluator Evaluator
	Reviser   Reviser

	Filter  *curriculum.Filter // default: curriculum.DefaultRules()
	Decider Decider            // default: NewDecider(cfg.Seed)

	Records  store.RecordRepo // optional
	Events   store.EventRepo  // optional
	Observer Observer         // optional
	Logger   *slog.Logger     // default: slog.Default()

	NewID func() string // default: uuid.NewString
}

// Orchestrator runs pipeline instances. Runs share no mutable state except
// the Decider and the call semaphore, both safe for concurrent use.
type Orchestrator struct {
	deps Deps
	cfg  Config

	// calls caps in-flight external calls at cfg.Concurrency.
	calls *semaphore.Weighted
}

// New creates an Orchestrator with its own copy of cfg.
func New(deps Deps, cfg Config) (*Orchestrator, error) {
	if deps.Generator == nil || deps.Evaluator == nil || deps.Reviser == nil {
		return nil, errors.New("pipeline: generator, evaluator and reviser are required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Filter == nil {
		deps.Filter = curriculum.NewFilter(curriculum.DefaultRules())
	}
	if deps.Decider == nil {
		deps.Decider = NewDecider(cfg.Seed)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	return &Orchestrator{
		deps:  deps,
		cfg:   cfg.clone(),
		calls: semaphore.NewWeighted(int64(cfg.Concurrency)),
	}, nil
}

// run is the per-candidate state the orchestrator keeps outside the
// candidate itself.
type run struct {
	index     int
	c         *problem.Candidate
	log       *slog.Logger
	escalated bool
	prior     []string
}

// Run drives req to a terminal status. It never returns nil; a candidate
// that is not ACCEPTED carries its last critique or error in Failure.
func (o *Orchestrator) Run(ctx context.Context, req problem.Request) *problem.Candidate {
	return o.run(ctx, 0, req)
}

func (o *Orchestrator) run(ctx context.Context, index int, req problem.Request) *problem.Candidate {
	c := problem.NewCandidate(o.deps.NewID(), req)
	r := &run{
		index: index,
		c:     c,
		log:   o.deps.Logger.With("candidate", c.ID, "request", req.String()),
	}
	ctx = llm.WithCandidate(ctx, c.ID)

	if err := req.Validate(); err != nil {
		o.fail(ctx, r, err)
		return c
	}
	o.save(ctx, r)

	for !c.Status.Terminal() {
		if err := ctx.Err(); err != nil {
			o.fail(ctx, r, err)
			break
		}

		var err error
		switch c.Status {
		case problem.StatusRequested:
			err = o.generate(ctx, r)
		case problem.StatusGenerated, problem.StatusRevised:
			err = o.filter(ctx, r)
		case problem.StatusFiltered:
			err = o.score(ctx, r)
		case problem.StatusScored:
			err = o.review(ctx, r)
		case problem.StatusReviewed:
			err = o.decide(ctx, r)
		case problem.StatusNeedsRevision:
			err = o.revise(ctx, r)
		default:
			err = fmt.Errorf("pipeline: unexpected status %s", c.Status)
		}
		if err != nil {
			o.fail(ctx, r, err)
		}
	}

	r.log.Info("candidate finished",
		"status", c.Status,
		"revision", c.RevisionCount,
		"score", scoreOf(c),
		"err", c.Failure)
	return c
}

// generate obtains a parsed draft: REQUESTED → GENERATED.
func (o *Orchestrator) generate(ctx context.Context, r *run) error {
	input := problemgen.GenerateInput{Request: r.c.Request, PriorStems: r.prior}

	var d *problem.Draft
	err := o.retry(ctx, r, "generate", 1+o.cfg.ParseRetries, func(ctx context.Context) error {
		var err error
		d, err = o.deps.Generator.Generate(ctx, input)
		return err
	})
	if err != nil {
		return err
	}
	r.c.Apply(*d)
	return o.transition(ctx, r, problem.StatusGenerated, "")
}

// filter applies the curriculum filter: → FILTERED, then NEEDS_REVISION if
// a violation or validation issue remains.
func (o *Orchestrator) filter(ctx context.Context, r *run) error {
	res := o.deps.Filter.Filter(r.c.Draft(), r.c.Request)
	if len(res.Corrections) > 0 {
		r.c.Correct(res.Draft, res.Corrections)
		r.log.Debug("curriculum corrections applied", "corrections", res.Corrections)
	}
	if err := o.transition(ctx, r, problem.StatusFiltered, ""); err != nil {
		return err
	}
	if !res.Approved() {
		r.c.SetCritique(res.Critique())
		return o.transition(ctx, r, problem.StatusNeedsRevision, "curriculum filter")
	}
	r.c.CurriculumApproved = true
	return nil
}

// score computes the difficulty analysis: FILTERED → SCORED, then
// NEEDS_REVISION on an ultra-hard shortfall or REQUESTED on escalation.
func (o *Orchestrator) score(ctx context.Context, r *run) error {
	c := r.c
	a := difficulty.Analyze(c.Draft(), c.Request)
	c.SetDifficulty(a)
	if err := o.transition(ctx, r, problem.StatusScored, fmt.Sprintf("score %d (%s)", a.Score, a.Grade)); err != nil {
		return err
	}

	req := c.Request
	if floor := req.Category.MinScore(); req.UltraHard() && a.Score < floor {
		c.SetCritique(difficultyCritique(req, a, floor))
		return o.transition(ctx, r, problem.StatusNeedsRevision, "below category minimum")
	}

	if o.shouldEscalate(r, a) {
		r.escalated = true
		r.prior = append(r.prior, c.Stem)
		c.Request = req.Escalate()
		r.log.Info("escalating to ultra-hard", "score", a.Score, "escalated_request", c.Request.String())
		return o.transition(ctx, r, problem.StatusRequested, "escalated")
	}
	return nil
}

func (o *Orchestrator) shouldEscalate(r *run, a problem.DifficultyAnalysis) bool {
	req := r.c.Request
	if r.escalated || req.Escalated || req.UltraHard() || req.Tier != problem.TierHigh {
		return false
	}
	floor, ok := o.cfg.TierMinimum[req.Tier]
	if !ok || a.Score >= floor {
		return false
	}
	return o.deps.Decider.Decide(o.cfg.EscalationProbability)
}

// difficultyCritique is the locally synthesized critique of an ultra-hard
// candidate that scored below its category minimum.
func difficultyCritique(req problem.Request, a problem.DifficultyAnalysis, floor int) problem.ReviewCritique {
	return problem.ReviewCritique{
		Score: 1,
		Issues: []problem.Issue{{
			Kind:   problem.IssueDifficulty,
			Detail: fmt.Sprintf("난이도 점수 %d점이 %s 최소 점수 %d점에 미달", a.Score, req.Category, floor),
		}},
		Suggestions: "여러 단원을 융합하고, 풀이 과정에서 항등식을 발견해 활용하게 하며, 해의 범위를 제한하는 부등식 조건을 추가하십시오.",
		Synthesized: true,
	}
}

// review calls the review service: SCORED → REVIEWED.
func (o *Orchestrator) review(ctx context.Context, r *run) error {
	var crit *problem.ReviewCritique
	err := o.retry(ctx, r, "review", o.cfg.ReviewAttempts, func(ctx context.Context) error {
		var err error
		crit, err = o.deps.Evaluator.Evaluate(ctx, r.c)
		return err
	})
	if err != nil {
		return err
	}
	r.c.SetCritique(*crit)
	return o.transition(ctx, r, problem.StatusReviewed, fmt.Sprintf("pass=%t score=%d", crit.Pass, crit.Score))
}

// decide accepts a passing critique: REVIEWED → ACCEPTED or NEEDS_REVISION.
func (o *Orchestrator) decide(ctx context.Context, r *run) error {
	crit := r.c.Critique
	if crit.Pass && crit.Score >= o.cfg.ReviewPassScore && !crit.Blocking() {
		return o.transition(ctx, r, problem.StatusAccepted, "")
	}
	return o.transition(ctx, r, problem.StatusNeedsRevision, "review")
}

// revise replaces the content: NEEDS_REVISION → REVISED, or REJECTED once
// the revision limit is reached.
func (o *Orchestrator) revise(ctx context.Context, r *run) error {
	c := r.c
	if c.RevisionCount >= o.cfg.MaxRevisions {
		c.Failure = &problem.RevisionExhausted{
			Revisions: c.RevisionCount,
			Last:      problem.CritiqueError(c.Request.Track, *c.Critique),
		}
		return o.transition(ctx, r, problem.StatusRejected, c.Failure.Error())
	}

	var d *problem.Draft
	err := o.retry(ctx, r, "revise", 1+o.cfg.ParseRetries, func(ctx context.Context) error {
		var err error
		d, err = o.deps.Reviser.Revise(ctx, c)
		return err
	})
	if err != nil {
		return err
	}
	c.Apply(*d)
	c.RevisionCount++
	return o.transition(ctx, r, problem.StatusRevised, "")
}

// retry calls fn up to attempts times while it fails with a retryable
// error, waiting with exponential backoff in between. Each call runs under
// CallTimeout. Cancellation of ctx ends the loop with ctx's error.
func (o *Orchestrator) retry(ctx context.Context, r *run, op string, attempts int, fn func(context.Context) error) error {
	backoff := o.cfg.retryConfig()
	var err error
	for attempt := range max(attempts, 1) {
		err = o.call(ctx, fn)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !problem.Retryable(err) || attempt == attempts-1 {
			break
		}

		wait := backoff.Delay(attempt, err)
		r.log.Warn("retrying", "op", op, "attempt", attempt+1, "wait", wait, "err", err)
		if err := llm.Sleep(ctx, wait); err != nil {
			return err
		}
	}
	return err
}

// call runs fn while holding a concurrency slot. The slot is released when
// fn returns; waiting for one ends early if ctx is cancelled. CallTimeout
// covers fn only, not the wait.
func (o *Orchestrator) call(ctx context.Context, fn func(context.Context) error) error {
	if err := o.calls.Acquire(ctx, 1); err != nil {
		return err
	}
	defer o.calls.Release(1)

	if o.cfg.CallTimeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, o.cfg.CallTimeout)
	defer cancel()
	return fn(ctx)
}

// transition moves the candidate, records the event and notifies the
// observer.
func (o *Orchestrator) transition(ctx context.Context, r *run, to problem.Status, reason string) error {
	from := r.c.Status
	if err := r.c.Transition(to); err != nil {
		return err
	}
	o.record(ctx, r, from, to, reason)
	return nil
}

// fail moves the candidate to FAILED with err.
func (o *Orchestrator) fail(ctx context.Context, r *run, err error) {
	from := r.c.Status
	r.c.Fail(err)
	r.log.Warn("candidate failed", "from", from, "err", err)
	o.record(ctx, r, from, problem.StatusFailed, err.Error())
}

func (o *Orchestrator) record(ctx context.Context, r *run, from, to problem.Status, reason string) {
	c := r.c
	r.log.Debug("transition", "from", from, "to", to, "revision", c.RevisionCount, "reason", reason)

	// Persistence outlives cancellation of the run.
	persistCtx := context.WithoutCancel(ctx)
	if o.deps.Events != nil {
		err := o.deps.Events.AppendTransition(persistCtx, store.TransitionEventData{
			CandidateID: c.ID,
			From:        from,
			To:          to,
			Revision:    c.RevisionCount,
			Reason:      reason,
		})
		if err != nil {
			r.log.Warn("failed to record transition", "err", err)
		}
	}
	o.save(persistCtx, r)

	if o.deps.Observer != nil {
		o.deps.Observer(Transition{
			Index:       r.index,
			CandidateID: c.ID,
			Request:     c.Request,
			From:        from,
			To:          to,
			Revision:    c.RevisionCount,
			Reason:      reason,
		})
	}
}

func (o *Orchestrator) save(ctx context.Context, r *run) {
	if o.deps.Records == nil {
		return
	}
	if err := o.deps.Records.Save(ctx, r.c.ToRecord()); err != nil {
		r.log.Warn("failed to save record", "err", err)
	}
}

func scoreOf(c *problem.Candidate) int {
	if c.Difficulty == nil {
		return 0
	}
	return c.Difficulty.Score
}
