package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_DefinesEveryKnownParam(t *testing.T) {
	c := Default()
	for _, p := range KnownParams {
		_, ok := c.Lookup(p)
		assert.True(t, ok, "missing category %s", p)
	}
	assert.Len(t, c.Categories(), len(KnownParams))
	assert.Same(t, c, Default(), "catalog must be loaded once")
}

func TestResolve(t *testing.T) {
	c := Default()

	r, ok := c.Resolve(TotalRisk, "4")
	require.True(t, ok)
	assert.Equal(t, Resolution{CategoryTitle: "Total risk", ValueLabel: "Critical"}, r)

	r, ok = c.Resolve(Category, "2")
	require.True(t, ok)
	assert.Equal(t, "Security", r.ValueLabel)

	_, ok = c.Resolve(TotalRisk, "9")
	assert.False(t, ok, "unknown value")

	_, ok = c.Resolve(Param("os"), "rhel8")
	assert.False(t, ok, "unknown key")
}

func TestCheck_MismatchErrors(t *testing.T) {
	c := Default()

	_, err := c.Check(Param("os"), "rhel8")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCatalogMismatch))
	var me *MismatchError
	require.True(t, errors.As(err, &me))
	assert.True(t, me.KeyMissing)
	assert.Contains(t, err.Error(), `unknown key "os"`)

	_, err = c.Check(Incident, "maybe")
	require.ErrorAs(t, err, &me)
	assert.False(t, me.KeyMissing)
	assert.Equal(t, "maybe", me.Value)
}

func TestMustResolve_PanicsOnMiss(t *testing.T) {
	c := Default()
	assert.NotPanics(t, func() { c.MustResolve(Reboot, "true") })
	assert.Panics(t, func() { c.MustResolve(Reboot, "sometimes") })
}

func TestParse_Validation(t *testing.T) {
	_, err := Parse([]byte(`
- url_param: a
  title: A
- url_param: a
  title: A again
`))
	assert.ErrorContains(t, err, "duplicate url_param")

	_, err = Parse([]byte(`
- url_param: a
  title: A
  values: [{value: "1", label: x}, {value: "1", label: y}]
`))
	assert.ErrorContains(t, err, "duplicate value")

	_, err = Parse([]byte(`- title: nameless`))
	assert.ErrorContains(t, err, "no url_param")

	_, err = Parse([]byte(`{not a list`))
	assert.Error(t, err)
}

func TestCategories_ReturnsCopy(t *testing.T) {
	c, err := New([]CategoryDef{{URLParam: "a", Title: "A", Values: []Value{{Value: "1", Label: "one"}}}})
	require.NoError(t, err)

	cats := c.Categories()
	cats[0].Title = "mutated"

	got, _ := c.Lookup("a")
	assert.Equal(t, "A", got.Title)
}
