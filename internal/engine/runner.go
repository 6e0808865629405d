// Package engine runs chapter suites on a bounded worker pool and
// assembles the run report.
package engine

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/psi-verify/internal/check"
	"github.com/talgya/psi-verify/internal/entropy"
)

// Hooks observe a run as it progresses. Calls are serialized, so hooks
// need no locking of their own.
type Hooks struct {
	OnSuiteStart func(s *check.Suite)
	OnCheck      func(suiteID string, res check.CheckResult)
	OnSuiteDone  func(res check.SuiteResult)
	OnRunDone    func(rep *Report)
}

// Chain combines hooks so each event reaches every non-nil callback in
// order.
func Chain(hs ...Hooks) Hooks {
	return Hooks{
		OnSuiteStart: func(s *check.Suite) {
			for _, h := range hs {
				if h.OnSuiteStart != nil {
					h.OnSuiteStart(s)
				}
			}
		},
		OnCheck: func(suiteID string, res check.CheckResult) {
			for _, h := range hs {
				if h.OnCheck != nil {
					h.OnCheck(suiteID, res)
				}
			}
		},
		OnSuiteDone: func(res check.SuiteResult) {
			for _, h := range hs {
				if h.OnSuiteDone != nil {
					h.OnSuiteDone(res)
				}
			}
		},
		OnRunDone: func(rep *Report) {
			for _, h := range hs {
				if h.OnRunDone != nil {
					h.OnRunDone(rep)
				}
			}
		},
	}
}

// Runner executes suites.
type Runner struct {
	workers  int
	failFast bool
	seed     int64
	hooks    Hooks
	now      func() time.Time

	mu sync.Mutex // serializes hook calls
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds the number of suites running at once. Values below
// one select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Runner) { r.workers = n }
}

// WithFailFast skips the remaining suites after the first failing one.
// Strict violations do not count as failures here.
func WithFailFast(on bool) Option {
	return func(r *Runner) { r.failFast = on }
}

// WithHooks installs progress callbacks.
func WithHooks(h Hooks) Option {
	return func(r *Runner) { r.hooks = h }
}

// WithSeed fixes the run seed. Zero draws a fresh one per run.
func WithSeed(seed int64) Option {
	return func(r *Runner) { r.seed = seed }
}

// WithClock replaces time.Now for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a runner with default settings.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers < 1 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	return r
}

// Workers returns the effective worker count.
func (r *Runner) Workers() int { return r.workers }

// Run executes suites and returns a report whose Suites follow the input
// order. If ctx is cancelled, suites that had not started are skipped and
// the partial report is returned together with ctx.Err().
func (r *Runner) Run(ctx context.Context, suites []*check.Suite) (*Report, error) {
	seed := entropy.ResolveSeed(r.seed)
	rep := &Report{
		RunID:     uuid.NewString(),
		StartedAt: r.now(),
		Seed:      seed,
		Workers:   r.workers,
		Suites:    make([]check.SuiteResult, len(suites)),
	}
	slog.Info("run started", "run", rep.RunID, "suites", len(suites), "workers", r.workers, "seed", seed)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var stopped atomic.Bool
	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, s := range suites {
		g.Go(func() error {
			if err := runCtx.Err(); err != nil {
				reason := err.Error()
				if stopped.Load() && ctx.Err() == nil {
					reason = "fail-fast: an earlier suite failed"
				}
				res := s.Skip(reason)
				rep.Suites[i] = res
				r.emit(func() {
					if r.hooks.OnSuiteDone != nil {
						r.hooks.OnSuiteDone(res)
					}
				})
				return nil
			}

			r.emit(func() {
				if r.hooks.OnSuiteStart != nil {
					r.hooks.OnSuiteStart(s)
				}
			})
			res := s.Run(runCtx, seed, func(cr check.CheckResult) {
				r.emit(func() {
					if r.hooks.OnCheck != nil {
						r.hooks.OnCheck(s.ID, cr)
					}
				})
			})
			rep.Suites[i] = res

			if res.Verdict == check.VerdictFail {
				slog.Warn("suite failed", "suite", s.ID, "err", res.Err())
				if r.failFast && stopped.CompareAndSwap(false, true) {
					cancel()
				}
			}
			r.emit(func() {
				if r.hooks.OnSuiteDone != nil {
					r.hooks.OnSuiteDone(res)
				}
			})
			return nil
		})
	}
	_ = g.Wait()

	rep.FinishedAt = r.now()
	rep.Recount()
	err := ctx.Err()
	if err != nil {
		rep.Cancelled = true
		slog.Warn("run cancelled", "run", rep.RunID, "skipped", rep.Stats.Skipped)
	} else {
		slog.Info("run finished",
			"run", rep.RunID,
			"passed", rep.Stats.Passed,
			"failed", rep.Stats.Failed+rep.Stats.Errored,
			"violations", rep.Stats.Violations,
			"elapsed", rep.FinishedAt.Sub(rep.StartedAt).Round(time.Millisecond),
		)
	}
	r.emit(func() {
		if r.hooks.OnRunDone != nil {
			r.hooks.OnRunDone(rep)
		}
	})
	return rep, err
}

func (r *Runner) emit(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}
