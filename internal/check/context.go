package check

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"

	"github.com/talgya/psi-verify/internal/entropy"
)

// C is the context handed to a check function. Every assertion counts
// once; the first failing assertion ends the check.
type C struct {
	name       string
	assertions int
	notes      []string
	rand       *entropy.Source
	seed       int64
}

// failure unwinds a check on the first failed assertion.
type failure struct {
	msg string
}

func newC(name string, seed int64) *C {
	return &C{name: name, seed: seed}
}

// Name returns the name of the running check.
func (c *C) Name() string { return c.name }

// Rand returns the check's deterministic random source.
func (c *C) Rand() *entropy.Source {
	if c.rand == nil {
		c.rand = entropy.ForSuite(c.seed, c.name)
	}
	return c.rand
}

// Seed returns the seed the check's random source derives from.
func (c *C) Seed() int64 { return c.seed }

// Logf records a narration line.
func (c *C) Logf(format string, args ...any) {
	c.notes = append(c.notes, fmt.Sprintf(format, args...))
}

// Fatalf fails the check unconditionally.
func (c *C) Fatalf(format string, args ...any) {
	c.assertions++
	panic(failure{msg: fmt.Sprintf(format, args...)})
}

func (c *C) fail(msg string, label []any) {
	if len(label) > 0 {
		if f, ok := label[0].(string); ok {
			msg = fmt.Sprintf(f, label[1:]...) + ": " + msg
		}
	}
	panic(failure{msg: msg})
}

// AlmostEqual asserts |got−want| ≤ delta.
func (c *C) AlmostEqual(got, want, delta float64, label ...any) {
	c.assertions++
	if got == want {
		return
	}
	if diff := math.Abs(got - want); !(diff <= delta) {
		c.fail(fmt.Sprintf("%v != %v within %v delta (%v difference)", got, want, delta, diff), label)
	}
}

// Places asserts that got−want rounds to zero at the given number of
// decimal places.
func (c *C) Places(got, want float64, places int, label ...any) {
	c.assertions++
	if got == want {
		return
	}
	if !roundsToZero(got-want, places) {
		c.fail(fmt.Sprintf("%v != %v within %d places (%v difference)", got, want, places, math.Abs(got-want)), label)
	}
}

// NotPlaces asserts that got and want differ at the given number of
// decimal places.
func (c *C) NotPlaces(got, want float64, places int, label ...any) {
	c.assertions++
	if got == want || roundsToZero(got-want, places) {
		c.fail(fmt.Sprintf("%v == %v within %d places", got, want, places), label)
	}
}

func roundsToZero(diff float64, places int) bool {
	scaled := diff * math.Pow(10, float64(places))
	return math.RoundToEven(scaled) == 0
}

// Relative asserts |got−want| ≤ rel·|want|.
func (c *C) Relative(got, want, rel float64, label ...any) {
	c.assertions++
	err := math.Abs(got - want)
	if want != 0 {
		err /= math.Abs(want)
	}
	if !(err <= rel) {
		c.fail(fmt.Sprintf("%v != %v within relative %v (%.3g relative error)", got, want, rel, err), label)
	}
}

// Less asserts got < bound.
func (c *C) Less(got, bound float64, label ...any) {
	c.assertions++
	if !(got < bound) {
		c.fail(fmt.Sprintf("%v not less than %v", got, bound), label)
	}
}

// LessOrEqual asserts got ≤ bound.
func (c *C) LessOrEqual(got, bound float64, label ...any) {
	c.assertions++
	if !(got <= bound) {
		c.fail(fmt.Sprintf("%v not less than or equal to %v", got, bound), label)
	}
}

// Greater asserts got > bound.
func (c *C) Greater(got, bound float64, label ...any) {
	c.assertions++
	if !(got > bound) {
		c.fail(fmt.Sprintf("%v not greater than %v", got, bound), label)
	}
}

// GreaterOrEqual asserts got ≥ bound.
func (c *C) GreaterOrEqual(got, bound float64, label ...any) {
	c.assertions++
	if !(got >= bound) {
		c.fail(fmt.Sprintf("%v not greater than or equal to %v", got, bound), label)
	}
}

// Between asserts lo < got < hi.
func (c *C) Between(got, lo, hi float64, label ...any) {
	c.assertions++
	if !(got > lo && got < hi) {
		c.fail(fmt.Sprintf("%v not in (%v, %v)", got, lo, hi), label)
	}
}

// Equal asserts structural equality.
func (c *C) Equal(got, want any, label ...any) {
	c.assertions++
	if !cmp.Equal(got, want) {
		c.fail("values differ (-got +want):\n"+cmp.Diff(got, want), label)
	}
}

// NotEqual asserts structural inequality.
func (c *C) NotEqual(got, other any, label ...any) {
	c.assertions++
	if cmp.Equal(got, other) {
		c.fail(fmt.Sprintf("%v unexpectedly equal", got), label)
	}
}

// True asserts cond.
func (c *C) True(cond bool, label ...any) {
	c.assertions++
	if !cond {
		c.fail("false is not true", label)
	}
}

// False asserts !cond.
func (c *C) False(cond bool, label ...any) {
	c.assertions++
	if cond {
		c.fail("true is not false", label)
	}
}

// NoError asserts err is nil.
func (c *C) NoError(err error, label ...any) {
	c.assertions++
	if err != nil {
		c.fail("unexpected error: "+err.Error(), label)
	}
}

// MatrixClose asserts element-wise |got−want| ≤ tol.
func (c *C) MatrixClose(got, want mat.Matrix, tol float64, label ...any) {
	c.assertions++
	gr, gc := got.Dims()
	wr, wc := want.Dims()
	if gr != wr || gc != wc {
		c.fail(fmt.Sprintf("shape %dx%d != %dx%d", gr, gc, wr, wc), label)
	}
	var bad []string
	for i := range gr {
		for j := range gc {
			if d := math.Abs(got.At(i, j) - want.At(i, j)); !(d <= tol) {
				bad = append(bad, fmt.Sprintf("[%d,%d] %v != %v", i, j, got.At(i, j), want.At(i, j)))
			}
		}
	}
	if len(bad) > 0 {
		c.fail(fmt.Sprintf("matrices differ beyond %v: %s", tol, strings.Join(bad, "; ")), label)
	}
}
