// Package chapters is the catalog of chapter suites. Each suite is built
// fresh by its constructor and shares no state with any other suite.
package chapters

import (
	"errors"
	"fmt"
	"sort"

	"github.com/talgya/psi-verify/internal/check"
)

// ErrUnknownChapter is returned by Lookup for an unregistered ID.
var ErrUnknownChapter = errors.New("unknown chapter")

// Books.
const (
	BookConstants = "constants"
	BookStructum  = "structum"
	BookScripts   = "scripts"
)

// Constructor builds a suite.
type Constructor func() *check.Suite

// Catalog is an ordered set of suites keyed by ID.
type Catalog struct {
	order []string
	byID  map[string]*check.Suite
}

// NewCatalog builds a catalog from constructors, keeping their order.
// Invalid or duplicate suites are rejected.
func NewCatalog(ctors ...Constructor) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*check.Suite, len(ctors))}
	for _, ctor := range ctors {
		s := ctor()
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("register: %w", err)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("register %s: duplicate id", s.ID)
		}
		c.order = append(c.order, s.ID)
		c.byID[s.ID] = s
	}
	return c, nil
}

// Default returns the full catalog in book and chapter order.
func Default() *Catalog {
	c, err := NewCatalog(constructors()...)
	if err != nil {
		panic(err)
	}
	return c
}

func constructors() []Constructor {
	return []Constructor{
		Constants001Foundations,
		Constants002SpeedLimit,
		Constants003PlanckConstant,
		Constants004Gravitation,
		Constants006PlanckUnits,
		Constants020SpeedSI,
		Constants022GravitationSI,
		Constants029MasterMatrix,
		Constants033AlphaPaths,
		ConstantsBinaryAlpha,
		Constants035PathFilters,
		Constants037GaugeStructure,
		Constants051DarkEnergy,
		Structum012Strict,
		Structum013Strict,
		Structum017Honest,
		Structum018Final,
		Structum024Corrected,
		Structum024Strict,
		Structum028Corrected,
		Structum028Strict,
		Structum048Corrected,
		Structum048Strict,
		Structum056Corrected,
		ScriptsZetaEquivalence,
	}
}

// Len returns the number of suites.
func (c *Catalog) Len() int { return len(c.order) }

// All returns every suite in catalog order.
func (c *Catalog) All() []*check.Suite {
	out := make([]*check.Suite, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// IDs returns suite IDs in catalog order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

// Lookup returns the suite with the given ID.
func (c *Catalog) Lookup(id string) (*check.Suite, error) {
	s, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrUnknownChapter)
	}
	return s, nil
}

// Select resolves IDs in the order given. An empty list selects everything.
func (c *Catalog) Select(ids []string) ([]*check.Suite, error) {
	if len(ids) == 0 {
		return c.All(), nil
	}
	out := make([]*check.Suite, 0, len(ids))
	for _, id := range ids {
		s, err := c.Lookup(id)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Filter returns the suites matching book and variant. Empty arguments
// match everything.
func (c *Catalog) Filter(book string, variant check.Variant) []*check.Suite {
	var out []*check.Suite
	for _, s := range c.All() {
		if book != "" && s.Book != book {
			continue
		}
		if variant != "" && s.Variant != variant {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Books returns the distinct books in the catalog, sorted.
func (c *Catalog) Books() []string {
	seen := make(map[string]bool)
	for _, s := range c.byID {
		seen[s.Book] = true
	}
	books := make([]string, 0, len(seen))
	for b := range seen {
		books = append(books, b)
	}
	sort.Strings(books)
	return books
}
