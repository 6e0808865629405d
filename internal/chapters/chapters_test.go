package chapters

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/psi-verify/internal/check"
)

func TestDefaultCatalogVerdicts(t *testing.T) {
	cat := Default()
	require.Equal(t, len(constructors()), cat.Len())

	for _, seed := range []int64{1, 42, 20261015} {
		for _, s := range cat.All() {
			res := s.Run(context.Background(), seed, nil)
			for _, cr := range res.Checks {
				assert.Equal(t, check.OutcomePass, cr.Outcome, "%s/%s (seed %d): %s", s.ID, cr.Name, seed, cr.Message)
				assert.Positive(t, cr.Assertions, "%s/%s made no assertions", s.ID, cr.Name)
			}
			want := check.VerdictPass
			if len(s.Violations) > 0 {
				want = check.VerdictViolation
			}
			assert.Equal(t, want, res.Verdict, s.ID)
		}
	}
}

func TestStrictViolationSuite(t *testing.T) {
	s, err := Default().Lookup("structum-048-strict")
	require.NoError(t, err)

	res := s.Run(context.Background(), 7, nil)
	assert.Equal(t, check.VerdictViolation, res.Verdict)
	assert.Len(t, res.Violations, 10)
	assert.Len(t, res.Issues, 8)

	err = res.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, check.ErrStrictViolation))
	assert.True(t, check.IsKind(err, check.KindViolation))
	assert.Contains(t, err.Error(), "chapter 48 has 10 critical first principles violations")
}

func TestCorrectedAndStrictDisagree(t *testing.T) {
	cat := Default()
	corrected, err := cat.Lookup("structum-048-corrected")
	require.NoError(t, err)
	strict, err := cat.Lookup("structum-048-strict")
	require.NoError(t, err)

	assert.Equal(t, corrected.Chapter, strict.Chapter)
	assert.Equal(t, check.VerdictPass, corrected.Run(context.Background(), 1, nil).Verdict)
	assert.Equal(t, check.VerdictViolation, strict.Run(context.Background(), 1, nil).Verdict)
}

func TestGoldenTraceSuites(t *testing.T) {
	cat := Default()
	cases := []struct {
		id         string
		verdict    check.Verdict
		violations int
		issues     int
	}{
		{"structum-017-honest", check.VerdictPass, 0, 2},
		{"structum-018-final", check.VerdictPass, 0, 0},
		{"structum-024-corrected", check.VerdictPass, 0, 3},
		{"structum-024-strict", check.VerdictViolation, 8, 3},
		{"structum-028-corrected", check.VerdictPass, 0, 3},
		{"structum-028-strict", check.VerdictViolation, 10, 4},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			s, err := cat.Lookup(tc.id)
			require.NoError(t, err)
			assert.Equal(t, "book-1-collapse-ontology/part-02-golden-trace-spectral", s.Part)

			res := s.Run(context.Background(), 3, nil)
			assert.Equal(t, tc.verdict, res.Verdict)
			assert.Len(t, res.Violations, tc.violations)
			assert.Len(t, res.Issues, tc.issues)
		})
	}

	strict, err := cat.Lookup("structum-028-strict")
	require.NoError(t, err)
	assert.ErrorContains(t, strict.Run(context.Background(), 3, nil).Err(),
		"chapter 28 has 10 critical first principles violations")
}

func TestLookupAndSelect(t *testing.T) {
	cat := Default()

	s, err := cat.Lookup("constants-029")
	require.NoError(t, err)
	assert.Equal(t, 29, s.Chapter)

	_, err = cat.Lookup("constants-999")
	assert.ErrorIs(t, err, ErrUnknownChapter)

	got, err := cat.Select([]string{"constants-051", "constants-001"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "constants-051", got[0].ID)
	assert.Equal(t, "constants-001", got[1].ID)

	all, err := cat.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, cat.Len())

	_, err = cat.Select([]string{"constants-001", "nope"})
	assert.ErrorIs(t, err, ErrUnknownChapter)
}

func TestFilter(t *testing.T) {
	cat := Default()

	for _, s := range cat.Filter(BookStructum, "") {
		assert.Equal(t, BookStructum, s.Book)
	}
	strict := cat.Filter("", check.VariantStrict)
	require.NotEmpty(t, strict)
	for _, s := range strict {
		assert.Equal(t, check.VariantStrict, s.Variant)
	}
	assert.Len(t, cat.Filter("", ""), cat.Len())
	assert.Empty(t, cat.Filter("nonexistent", ""))
	assert.Equal(t, []string{BookConstants, BookScripts, BookStructum}, cat.Books())
}

func TestCatalogOrderAndIDs(t *testing.T) {
	cat := Default()
	ids := cat.IDs()
	assert.Equal(t, "constants-001", ids[0])
	assert.Equal(t, "scripts-zeta-equivalence", ids[len(ids)-1])

	ids[0] = "mutated"
	assert.Equal(t, "constants-001", cat.IDs()[0])
}

func TestNewCatalogRejectsBadSuites(t *testing.T) {
	_, err := NewCatalog(Constants001Foundations, Constants001Foundations)
	assert.ErrorContains(t, err, "duplicate id")

	_, err = NewCatalog(func() *check.Suite { return &check.Suite{ID: "empty"} })
	assert.ErrorIs(t, err, check.ErrInvalid)
}

func TestConstructorsBuildFreshSuites(t *testing.T) {
	a, b := Constants029MasterMatrix(), Constants029MasterMatrix()
	assert.NotSame(t, a, b)
	a.Checks[0].Name = "changed"
	assert.NotEqual(t, a.Checks[0].Name, b.Checks[0].Name)
}
