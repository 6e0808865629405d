package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/talgya/psi-verify/internal/check"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func suite(id string, fns ...func(*check.C)) *check.Suite {
	s := &check.Suite{ID: id, Book: "test", Variant: check.VariantBase}
	for i, fn := range fns {
		s.Checks = append(s.Checks, check.Check{Name: fmt.Sprintf("check-%d", i), Fn: fn})
	}
	return s
}

func passing(c *check.C) { c.AlmostEqual(1, 1, 0) }
func failing(c *check.C) { c.Less(2, 1) }

func sleeping(d time.Duration) func(*check.C) {
	return func(c *check.C) {
		time.Sleep(d)
		c.True(true)
	}
}

func TestRunPreservesOrder(t *testing.T) {
	var suites []*check.Suite
	for i := range 8 {
		// Earlier suites sleep longer so they finish last.
		suites = append(suites, suite(fmt.Sprintf("s%d", i), sleeping(time.Duration(8-i)*2*time.Millisecond)))
	}

	rep, err := NewRunner(WithWorkers(4), WithSeed(3)).Run(context.Background(), suites)
	require.NoError(t, err)
	require.Len(t, rep.Suites, len(suites))
	for i, sr := range rep.Suites {
		assert.Equal(t, suites[i].ID, sr.ID)
		assert.Equal(t, check.VerdictPass, sr.Verdict)
	}
	assert.Equal(t, ExitPass, rep.ExitCode())
	assert.NoError(t, rep.Err())
	assert.Equal(t, int64(3), rep.Seed)
	assert.NotEmpty(t, rep.RunID)
}

func TestRunStats(t *testing.T) {
	suites := []*check.Suite{
		suite("a", passing, passing),
		suite("b", passing, failing),
		suite("c", func(c *check.C) { panic("boom") }),
	}
	strict := suite("d", passing)
	strict.Violations = []string{"assumed"}
	suites = append(suites, strict)

	rep, err := NewRunner(WithWorkers(2), WithSeed(1)).Run(context.Background(), suites)
	require.NoError(t, err)

	assert.Equal(t, Stats{
		Suites:     4,
		Checks:     6,
		Passed:     4,
		Failed:     1,
		Errored:    1,
		Violations: 1,
		Assertions: 5,
	}, rep.Stats)
	assert.Equal(t, ExitFail, rep.ExitCode())
	assert.Equal(t, map[check.Verdict]int{
		check.VerdictPass:      1,
		check.VerdictFail:      2,
		check.VerdictViolation: 1,
	}, rep.Verdicts())

	saved := rep.Stats
	rep.Stats = Stats{}
	rep.Recount()
	assert.Equal(t, saved, rep.Stats)

	err = rep.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, check.ErrCheckFailed)
	assert.ErrorIs(t, err, check.ErrStrictViolation)
}

func TestViolationExitCode(t *testing.T) {
	strict := suite("strict", passing)
	strict.Chapter = 48
	strict.Violations = []string{"one", "two"}

	rep, err := NewRunner(WithFailFast(true), WithWorkers(1)).Run(context.Background(),
		[]*check.Suite{strict, suite("after", passing)})
	require.NoError(t, err)
	assert.Equal(t, ExitViolation, rep.ExitCode())
	assert.Equal(t, check.VerdictPass, rep.Suites[1].Verdict, "violations do not trigger fail-fast")
}

func TestFailFast(t *testing.T) {
	suites := []*check.Suite{
		suite("first", passing),
		suite("broken", failing),
		suite("third", passing),
		suite("fourth", passing),
	}

	rep, err := NewRunner(WithWorkers(1), WithFailFast(true)).Run(context.Background(), suites)
	require.NoError(t, err)
	assert.Equal(t, check.VerdictPass, rep.Suites[0].Verdict)
	assert.Equal(t, check.VerdictFail, rep.Suites[1].Verdict)
	for _, sr := range rep.Suites[2:] {
		assert.Equal(t, check.VerdictSkipped, sr.Verdict, sr.ID)
		assert.Contains(t, sr.Checks[0].Message, "fail-fast")
	}
	assert.Equal(t, ExitFail, rep.ExitCode())
	assert.False(t, rep.Cancelled)
	assert.Equal(t, 2, rep.Stats.Skipped)
}

func TestWithoutFailFastRunsEverything(t *testing.T) {
	suites := []*check.Suite{suite("broken", failing), suite("after", passing)}

	rep, err := NewRunner(WithWorkers(1)).Run(context.Background(), suites)
	require.NoError(t, err)
	assert.Equal(t, check.VerdictPass, rep.Suites[1].Verdict)
}

func TestCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := NewRunner().Run(ctx, []*check.Suite{suite("a", passing), suite("b", passing)})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, rep)
	assert.True(t, rep.Cancelled)
	assert.Equal(t, ExitCancelled, rep.ExitCode())
	for _, sr := range rep.Suites {
		assert.Equal(t, check.VerdictSkipped, sr.Verdict)
	}
	assert.Equal(t, 2, rep.Stats.Skipped)
}

func TestCancelMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var finished *Report
	hooks := Hooks{
		OnSuiteDone: func(res check.SuiteResult) {
			if res.ID == "first" {
				cancel()
			}
		},
		OnRunDone: func(rep *Report) { finished = rep },
	}
	suites := []*check.Suite{suite("first", passing), suite("second", passing), suite("third", passing)}

	rep, err := NewRunner(WithWorkers(1), WithHooks(hooks)).Run(ctx, suites)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, check.VerdictPass, rep.Suites[0].Verdict)
	assert.Equal(t, check.VerdictSkipped, rep.Suites[1].Verdict)
	assert.Equal(t, check.VerdictSkipped, rep.Suites[2].Verdict)
	assert.Equal(t, ExitCancelled, rep.ExitCode())
	require.NotNil(t, finished)
	assert.Same(t, rep, finished)
	assert.True(t, finished.Cancelled)
}

func TestHooksFireOncePerCheck(t *testing.T) {
	var started, checks, done, runs atomic.Int32
	hooks := Hooks{
		OnSuiteStart: func(*check.Suite) { started.Add(1) },
		OnCheck:      func(string, check.CheckResult) { checks.Add(1) },
		OnSuiteDone:  func(check.SuiteResult) { done.Add(1) },
		OnRunDone:    func(*Report) { runs.Add(1) },
	}
	suites := []*check.Suite{
		suite("a", passing, passing, passing),
		suite("b", passing, failing),
		suite("c", passing),
	}

	_, err := NewRunner(WithWorkers(3), WithHooks(hooks)).Run(context.Background(), suites)
	require.NoError(t, err)
	assert.Equal(t, int32(3), started.Load())
	assert.Equal(t, int32(6), checks.Load())
	assert.Equal(t, int32(3), done.Load())
	assert.Equal(t, int32(1), runs.Load())
}

func TestChainHooks(t *testing.T) {
	var order []string
	first := Hooks{OnSuiteDone: func(res check.SuiteResult) { order = append(order, "first:"+res.ID) }}
	second := Hooks{
		OnSuiteDone: func(res check.SuiteResult) { order = append(order, "second:"+res.ID) },
		OnRunDone:   func(*Report) { order = append(order, "run") },
	}

	_, err := NewRunner(WithWorkers(1), WithHooks(Chain(first, second))).
		Run(context.Background(), []*check.Suite{suite("x", passing)})
	require.NoError(t, err)
	assert.Equal(t, []string{"first:x", "second:x", "run"}, order)
}

func TestSeededChecksIgnoreWorkerCount(t *testing.T) {
	draw := func(c *check.C) {
		c.Logf("%.12f", c.Rand().Float())
	}
	build := func() []*check.Suite {
		return []*check.Suite{suite("x", draw), suite("y", draw), suite("z", draw)}
	}

	one, err := NewRunner(WithWorkers(1), WithSeed(99)).Run(context.Background(), build())
	require.NoError(t, err)
	many, err := NewRunner(WithWorkers(3), WithSeed(99)).Run(context.Background(), build())
	require.NoError(t, err)

	for i := range one.Suites {
		assert.Equal(t, one.Suites[i].Checks[0].Notes, many.Suites[i].Checks[0].Notes)
	}
	assert.NotEqual(t, one.Suites[0].Checks[0].Notes, one.Suites[1].Checks[0].Notes)
}

func TestClockAndDefaults(t *testing.T) {
	fixed := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	r := NewRunner(WithClock(func() time.Time { return fixed }), WithWorkers(0))
	assert.Positive(t, r.Workers())

	rep, err := r.Run(context.Background(), []*check.Suite{suite("a", passing)})
	require.NoError(t, err)
	assert.Equal(t, fixed, rep.StartedAt)
	assert.Zero(t, rep.Duration())
	assert.NotZero(t, rep.Seed, "zero seed is resolved")

	sr, ok := rep.Suite("a")
	assert.True(t, ok)
	assert.Equal(t, "a", sr.ID)
	_, ok = rep.Suite("missing")
	assert.False(t, ok)
}
