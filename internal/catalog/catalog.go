// Package catalog holds the filter category catalog: the fixed table that maps
// URL filter keys and values to display titles and labels.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// Param is a filter key as it appears in the URL query string.
type Param string

const (
	TotalRisk   Param = "total_risk"
	ResRisk     Param = "res_risk"
	Impact      Param = "impact"
	Likelihood  Param = "likelihood"
	Category    Param = "category"
	Incident    Param = "incident"
	HasPlaybook Param = "has_playbook"
	Reboot      Param = "reboot"
	RuleStatus  Param = "rule_status"
	Impacting   Param = "impacting"
)

// KnownParams lists every Param the embedded catalog must define.
var KnownParams = []Param{
	TotalRisk, ResRisk, Impact, Likelihood, Category,
	Incident, HasPlaybook, Reboot, RuleStatus, Impacting,
}

// ErrCatalogMismatch marks a filter key or value absent from the catalog. It
// indicates client/catalog version skew, not a user error.
var ErrCatalogMismatch = errors.New("filter not in category catalog")

// MismatchError describes a failed lookup.
type MismatchError struct {
	Param      Param
	Value      string
	KeyMissing bool
}

func (e *MismatchError) Error() string {
	if e.KeyMissing {
		return fmt.Sprintf("%v: unknown key %q", ErrCatalogMismatch, e.Param)
	}
	return fmt.Sprintf("%v: unknown value %q for key %q", ErrCatalogMismatch, e.Value, e.Param)
}

func (e *MismatchError) Unwrap() error { return ErrCatalogMismatch }

// Value is one selectable value of a category.
type Value struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// CategoryDef is one filter category.
type CategoryDef struct {
	URLParam Param   `yaml:"url_param"`
	Title    string  `yaml:"title"`
	Values   []Value `yaml:"values"`
}

// Label returns the label of value v.
func (c CategoryDef) Label(v string) (string, bool) {
	for _, val := range c.Values {
		if val.Value == v {
			return val.Label, true
		}
	}
	return "", false
}

// Resolution is the display form of one filter value.
type Resolution struct {
	CategoryTitle string
	ValueLabel    string
}

// Catalog is an immutable, ordered set of categories.
type Catalog struct {
	order []CategoryDef
	index map[Param]int
}

//go:embed categories.yaml
var embedded []byte

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog, parsed once per process.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Parse(embedded)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("catalog: embedded categories.yaml is invalid: %v", defaultErr))
	}
	return defaultCat
}

// Parse builds a catalog from YAML. Parameters and the values within each
// category must be unique.
func Parse(data []byte) (*Catalog, error) {
	var defs []CategoryDef
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(defs)
}

// New validates defs and returns a catalog owning a copy of them.
func New(defs []CategoryDef) (*Catalog, error) {
	c := &Catalog{
		order: make([]CategoryDef, 0, len(defs)),
		index: make(map[Param]int, len(defs)),
	}
	for _, d := range defs {
		if d.URLParam == "" {
			return nil, fmt.Errorf("category %q has no url_param", d.Title)
		}
		if _, dup := c.index[d.URLParam]; dup {
			return nil, fmt.Errorf("duplicate url_param %q", d.URLParam)
		}
		seen := make(map[string]bool, len(d.Values))
		for _, v := range d.Values {
			if seen[v.Value] {
				return nil, fmt.Errorf("duplicate value %q in %q", v.Value, d.URLParam)
			}
			seen[v.Value] = true
		}
		d.Values = append([]Value(nil), d.Values...)
		c.index[d.URLParam] = len(c.order)
		c.order = append(c.order, d)
	}
	return c, nil
}

// Categories returns the categories in catalog order.
func (c *Catalog) Categories() []CategoryDef {
	out := make([]CategoryDef, len(c.order))
	copy(out, c.order)
	return out
}

// Lookup returns the category for p.
func (c *Catalog) Lookup(p Param) (CategoryDef, bool) {
	i, ok := c.index[p]
	if !ok {
		return CategoryDef{}, false
	}
	return c.order[i], true
}

// Resolve maps a filter key and raw value to display strings.
func (c *Catalog) Resolve(p Param, value string) (Resolution, bool) {
	cat, ok := c.Lookup(p)
	if !ok {
		return Resolution{}, false
	}
	label, ok := cat.Label(value)
	if !ok {
		return Resolution{}, false
	}
	return Resolution{CategoryTitle: cat.Title, ValueLabel: label}, true
}

// Check is Resolve with a descriptive error on a miss.
func (c *Catalog) Check(p Param, value string) (Resolution, error) {
	if _, ok := c.Lookup(p); !ok {
		return Resolution{}, &MismatchError{Param: p, KeyMissing: true}
	}
	r, ok := c.Resolve(p, value)
	if !ok {
		return Resolution{}, &MismatchError{Param: p, Value: value}
	}
	return r, nil
}

// MustResolve is Check that panics on a miss.
func (c *Catalog) MustResolve(p Param, value string) Resolution {
	r, err := c.Check(p, value)
	if err != nil {
		panic(err)
	}
	return r
}
